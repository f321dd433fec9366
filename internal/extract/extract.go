// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw filing text into structured reverse-split
// facts: the ratio, the market-effective date, and the fractional-share
// rounding policy. Everything here is a pure function of the text (plus
// the filing date); candidates are generated, scored, and ranked rather
// than taken first-match, so new anchor or penalty terms slot in without
// restructuring control flow.
package extract

import (
	"strings"
	"time"

	"github.com/wgold/splitmon/pkg/types"
)

// splitKeywords and roundingTerms gate whether a filing is about a reverse
// split at all. Both must hit: split language alone covers plenty of
// authorization boilerplate with no fractional-share treatment.
var splitKeywords = []string{
	"reverse stock split",
	"reverse split",
	"share consolidation",
	"share combination",
}

var roundingTerms = []string{"rounded up", "rounding up", "in lieu", "fractional"}

// ContainsReverseSplitLanguage reports whether text mentions a reverse
// split together with some fractional-share treatment.
func ContainsReverseSplitLanguage(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, splitKeywords) && containsAny(lower, roundingTerms)
}

// delistingPhrases mark exchange deficiency/delisting notices. An 8-K that
// only reports one of these mentions reverse splits hypothetically (as a
// cure) without announcing one.
var delistingPhrases = []string{
	"notice of delisting",
	"notification of delisting",
	"failure to satisfy a continued listing",
	"continued listing standard",
	"minimum bid price requirement",
	"deficiency letter",
	"listing qualifications department",
}

// executedSplitPhrases mark an actually announced split rather than a
// contemplated cure.
var executedSplitPhrases = []string{
	"will effect a reverse",
	"effected a reverse",
	"will become effective",
	"became effective",
	"has approved a reverse",
	"board approved a reverse",
	"fixed the ratio",
}

// IsDelistingNoticeOnly reports whether text is a deficiency/delisting
// notice with no executed split announcement.
func IsDelistingNoticeOnly(text string) bool {
	lower := strings.ToLower(text)
	if !containsAny(lower, delistingPhrases) {
		return false
	}
	return !containsAny(lower, executedSplitPhrases)
}

// Extract runs all engines over one filing's text. Ratio and rounding
// extraction prefer the selected context window and fall back to the full
// document when the window yields nothing; date extraction scans the full
// document because effective-time definitions often sit outside the
// densest split paragraph.
func Extract(text string, filedAt time.Time) types.Extraction {
	window := SelectContext(text)

	var ex types.Extraction
	if n, o, ok := ExtractRatio(window); ok {
		ex.RatioNew, ex.RatioOld = n, o
	} else if n, o, ok := ExtractRatio(text); ok {
		ex.RatioNew, ex.RatioOld = n, o
	}

	if d, ok := ExtractEffectiveDate(text, filedAt); ok {
		ex.EffectiveDate = d
	}

	policy, rule := ClassifyRoundingRule(window)
	if policy == types.PolicyUnknown && rule == "" {
		policy, rule = ClassifyRoundingRule(text)
	}
	ex.RoundingPolicy, ex.RoundingRule = policy, rule
	ex.MatchesRounding = ex.RoundingPolicy != types.PolicyUnknown

	return ex
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
