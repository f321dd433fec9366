// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gate

import (
	"regexp"
	"strings"

	"github.com/wgold/splitmon/pkg/types"
)

// Security-type filters. Each requires strong, explicit evidence and
// defaults to "not disqualified" when the data is missing or ambiguous.

// adrPattern uses word boundaries so "ads" inside a longer token never
// matches.
var adrPattern = regexp.MustCompile(`\b(?:adr|ads)\b|american depositary|american depository|depositary (?:receipt|share)`)

var depositaryPhrases = []string{
	"american depositary",
	"american depository",
	"depositary receipt",
	"depositary share",
}

// securityHeaderSlice bounds the body scan to the SEC header and early
// cover page; full-body scans produce false positives from incidental
// mentions.
const securityHeaderSlice = 12000

// IsADR reports whether the security is an American depositary receipt or
// share. The title is the best signal; a bare ADR/ADS token in the header
// without depositary wording is treated as not an ADR.
func IsADR(text string, info types.SecurityInfo) bool {
	title := strings.ToLower(strings.TrimSpace(info.Title))
	if title != "" && adrPattern.MatchString(title) {
		return true
	}

	head := strings.ToLower(text)
	if len(head) > securityHeaderSlice {
		head = head[:securityHeaderSlice]
	}
	if head != "" && adrPattern.MatchString(head) {
		for _, phrase := range depositaryPhrases {
			if strings.Contains(head, phrase) {
				return true
			}
		}
	}
	return false
}

var (
	etfStrongSignals = []string{
		"exchange-traded fund",
		"exchange traded fund",
		"open-end fund",
		"closed-end fund",
	}
	etfWeakSignals = []string{
		"investment company act of 1940",
		"unit investment trust",
	}
)

// IsETF reports whether the security is a fund rather than an operating
// company: an "ETF" token in the title, a strong fund phrase in the text,
// or two or more weak signals.
func IsETF(text string, info types.SecurityInfo) bool {
	title := strings.ToLower(strings.TrimSpace(info.Title))
	padded := " " + title + " "
	if strings.Contains(padded, " etf ") || strings.HasSuffix(title, " etf") || strings.HasPrefix(title, "etf ") {
		return true
	}

	lower := strings.ToLower(text)
	for _, s := range etfStrongSignals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	weak := 0
	for _, s := range etfWeakSignals {
		if strings.Contains(lower, s) {
			weak++
		}
	}
	return weak >= 2
}

var canadianExchanges = map[string]bool{
	"TSX": true, "TSXV": true, "CSE": true, "NEO": true, "CNQ": true,
}

var canadianTitleMarks = []string{
	" inc. (canada)",
	" corp. (canada)",
}

// IsCanadian reports whether the issuer is Canadian, from country or
// exchange metadata, with an explicit title marker as a last resort.
func IsCanadian(info types.SecurityInfo) bool {
	switch strings.ToUpper(strings.TrimSpace(info.Country)) {
	case "CA", "CAN", "CANADA":
		return true
	}
	if canadianExchanges[strings.ToUpper(strings.TrimSpace(info.Exchange))] {
		return true
	}
	title := strings.ToLower(strings.TrimSpace(info.Title))
	for _, mark := range canadianTitleMarks {
		if strings.Contains(title, mark) {
			return true
		}
	}
	return false
}

// nonCommonSuffixes mark warrants and rights on US exchanges.
var nonCommonSuffixes = []string{"W", "WS", "WT", "RT"}

// IsNonCommon reports whether a ticker denotes something other than common
// stock: warrant/rights suffixes, or class/unit separators in the symbol.
func IsNonCommon(ticker string) bool {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return true
	}
	for _, suffix := range nonCommonSuffixes {
		if strings.HasSuffix(t, suffix) {
			return true
		}
	}
	return strings.ContainsAny(t, "^/-")
}

// SecurityRejection returns a human-readable reason when the security type
// disqualifies the filing, "" when it passes.
func SecurityRejection(text string, info types.SecurityInfo) string {
	switch {
	case IsADR(text, info):
		return "excluded security type: ADR/ADS"
	case IsETF(text, info):
		return "excluded security type: fund"
	case IsCanadian(info):
		return "excluded security type: Canadian issuer"
	case IsNonCommon(info.Ticker):
		return "excluded non-common security (warrant/rights/unit)"
	}
	return ""
}
