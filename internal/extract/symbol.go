// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// 8-K cover pages carry a registered-securities table whose "Trading
// Symbol(s)" column is more current than the bulk ticker mapping, which
// lags new listings and symbol changes.

// symbolTableHeader locates the cover-page table.
var symbolTableHeader = regexp.MustCompile(`trading\s+symbol`)

// coverSymbol matches a plausible ticker token after the header: 1-5
// capitals with an optional class suffix.
var coverSymbol = regexp.MustCompile(`\b([A-Z]{1,5}(?:\.[A-Z])?)\b`)

// exchangeParenSymbol matches inline forms like "(Nasdaq: NVVE)" or
// "(NYSE American: XYZ)".
var exchangeParenSymbol = regexp.MustCompile(`\((?:nasdaq|nyse american|nyse|amex)[^)]{0,10}?:\s*([A-Za-z.]{1,7})\)`)

// symbolStopWords are capitalized tokens that appear inside the table but
// are never tickers.
var symbolStopWords = map[string]bool{
	"N": true, "A": true, "NA": true, "NONE": true, "EACH": true,
	"LLC": true, "INC": true, "CORP": true, "THE": true, "OF": true,
	"PER": true, "CIK": true, "USD": true,
}

// TradingSymbol extracts the ticker from the filing's own cover page,
// preferring the registered-securities table, then inline "(Nasdaq: XYZ)"
// forms. Returns "" when neither is present.
func TradingSymbol(text string) string {
	head := head(text, 20000)
	lower := strings.ToLower(head)

	if loc := symbolTableHeader.FindStringIndex(lower); loc != nil {
		end := loc[1] + 300
		if end > len(head) {
			end = len(head)
		}
		for _, m := range coverSymbol.FindAllString(head[loc[1]:end], -1) {
			if !symbolStopWords[m] {
				return m
			}
		}
	}

	if m := exchangeParenSymbol.FindStringSubmatch(lower); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
