// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/wgold/splitmon/pkg/types"
)

// The classifier is an ordered cascade: the first rule whose predicate
// matches decides the policy. Ambiguity and explicit round-down are
// checked before the broader round-up heuristics, otherwise disjunctive
// or negated language produces false ROUND_UP classifications.
type roundingRule struct {
	name      string
	predicate func(lower string) bool
	outcome   types.RoundingPolicy
}

var (
	roundUpTerm   = regexp.MustCompile(`round(?:ed|ing)?\s+up`)
	roundDownTerm = regexp.MustCompile(`round(?:ed|ing)?\s+down`)

	// "pay in cash ... or ... rounded up" in either order: holders get
	// one treatment or the other at someone's election, so guessing
	// ROUND_UP would be wrong half the time.
	disjunctiveCashOrUp = regexp.MustCompile(
		`(?:cash|pay(?:ment)?\s+in\s+cash)[^.]{0,200}\bor\b[^.]{0,200}round(?:ed|ing)?\s+up` +
			`|round(?:ed|ing)?\s+up[^.]{0,200}\bor\b[^.]{0,200}cash`)

	cashTiedTerm = regexp.MustCompile(`cash\s+in\s+lieu|paid\s+in\s+cash|cash\s+payment`)
)

var roundingRules = []roundingRule{
	{
		name: RuleDisjunctive,
		predicate: func(lower string) bool {
			return disjunctiveCashOrUp.MatchString(lower)
		},
		outcome: types.PolicyUnknown,
	},
	{
		name: "explicit-round-down",
		predicate: func(lower string) bool {
			return matchNear(lower, roundDownTerm, "fractional", 400)
		},
		outcome: types.RoundDown,
	},
	{
		name: "explicit-round-up",
		predicate: func(lower string) bool {
			return matchNear(lower, roundUpTerm, "fractional", 400) ||
				matchNear(lower, roundUpTerm, "whole share", 400) ||
				matchNear(lower, roundUpTerm, "whole number", 400)
		},
		outcome: types.RoundUp,
	},
	{
		name: "whole-share-in-lieu",
		predicate: func(lower string) bool {
			if !strings.Contains(lower, "in lieu") || !strings.Contains(lower, "fractional") {
				return false
			}
			return strings.Contains(lower, "additional share") ||
				strings.Contains(lower, "one whole share")
		},
		outcome: types.RoundUp,
	},
	{
		name: "cash-in-lieu",
		predicate: func(lower string) bool {
			return matchNear(lower, cashTiedTerm, "fractional", 400)
		},
		outcome: types.CashInLieu,
	},
}

// RuleDisjunctive is the ambiguity guard's rule name. The gating pipeline
// checks it: disjunctive phrasing suppresses acceptance, not just
// classification.
const RuleDisjunctive = "disjunctive-cash-or-round-up"

// ClassifyRounding maps filing text to the fractional-share policy
// taxonomy. Unmatched text is UNKNOWN, never a guess.
func ClassifyRounding(text string) types.RoundingPolicy {
	policy, _ := ClassifyRoundingRule(text)
	return policy
}

// ClassifyRoundingRule additionally names the cascade rule that fired,
// "" when none matched, so callers can audit why a classification fired.
func ClassifyRoundingRule(text string) (types.RoundingPolicy, string) {
	lower := strings.ToLower(text)
	for _, rule := range roundingRules {
		if rule.predicate(lower) {
			return rule.outcome, rule.name
		}
	}
	return types.PolicyUnknown, ""
}

// matchNear reports whether any match of re sits within dist bytes of an
// occurrence of term.
func matchNear(lower string, re *regexp.Regexp, term string, dist int) bool {
	matches := re.FindAllStringIndex(lower, -1)
	if len(matches) == 0 {
		return false
	}

	from := 0
	for {
		i := strings.Index(lower[from:], term)
		if i < 0 {
			return false
		}
		at := from + i
		for _, m := range matches {
			d := m[0] - at
			if d < 0 {
				d = -d
			}
			if d <= dist {
				return true
			}
		}
		from = at + len(term)
	}
}
