// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// effectiveTimeDef matches an explicit defined term, e.g.
// `effective as of 5:00 p.m. on March 3, 2026 (the "Effective Time")`.
// A date bound to this definition wins outright.
var effectiveTimeDef = regexp.MustCompile(`\(\s*the\s+["'\x{201c}\x{2018}]*effective\s+(?:time|date)["'\x{201d}\x{2019}]*\s*\)`)

// Date token patterns.
var (
	monthDayYear = regexp.MustCompile(
		`(january|february|march|april|may|june|july|august|september|october|november|december)` +
			`\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	numericDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
)

var monthIndex = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// dateTrigger anchors date scanning. Market triggers phrase the moment the
// split hits trading; non-market triggers phrase corporate approval or
// charter mechanics, which often carry a different (useless) date.
type dateTrigger struct {
	phrase string
	market bool
}

var dateTriggers = []dateTrigger{
	{"will become effective", true},
	{"became effective at", true},
	{"becomes effective", true},
	{"effective as of", true},
	{"implemented effective", true},
	{"reflected in the trading", true},
	{"split-adjusted", true},
	{"begin trading", true},
	{"commence trading", true},
	{"open of trading", true},
	{"effective date of the reverse", true},
	{"certificate of amendment", false},
	{"articles of amendment", false},
	{"filed with the secretary of state", false},
	{"state of incorporation", false},
	{"approved by the board", false},
	{"approved by stockholders", false},
	{"approved by shareholders", false},
}

// triggerReach is how far past a trigger phrase a date token is still
// considered bound to it.
const triggerReach = 220

type dateCandidate struct {
	date   time.Time
	market bool
	score  float64
}

// ExtractEffectiveDate returns the market-effective date of the split, or
// ok=false when no candidate is trustworthy. Explicit "(the 'Effective
// Time')" definitions are matched first and returned immediately. Other
// candidates are bucketed market vs non-market — if any market candidate
// exists, non-market ones are discarded rather than risking a corporate
// approval date. Candidates far before filedAt are penalized; when filedAt
// is known the best candidate on or after filedAt minus one day is
// preferred. Ties break to the lowest score, then the latest date.
func ExtractEffectiveDate(text string, filedAt time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)

	// Highest priority: a date bound to the defined Effective Time.
	if loc := effectiveTimeDef.FindStringIndex(lower); loc != nil {
		start := loc[0] - 180
		if start < 0 {
			start = 0
		}
		if d, ok := lastDateIn(lower[start:loc[0]]); ok {
			return d, true
		}
	}

	var cands []dateCandidate
	for _, trig := range dateTriggers {
		from := 0
		for {
			i := strings.Index(lower[from:], trig.phrase)
			if i < 0 {
				break
			}
			at := from + i
			end := at + len(trig.phrase) + triggerReach
			if end > len(lower) {
				end = len(lower)
			}
			for _, found := range datesIn(lower[at:end]) {
				c := dateCandidate{date: found.date, market: trig.market}
				c.score = float64(found.offset) / 50
				if !trig.market {
					c.score += 5
				}
				// Reverse splits are rarely announced long after the
				// fact; a date well before the filing is suspect.
				if !filedAt.IsZero() && found.date.Before(filedAt.AddDate(0, 0, -2)) {
					c.score += 50
				}
				cands = append(cands, c)
			}
			from = at + len(trig.phrase)
		}
	}

	if len(cands) == 0 {
		return time.Time{}, false
	}

	// Market candidates, when present, are the only ones eligible.
	if hasMarket(cands) {
		filtered := cands[:0]
		for _, c := range cands {
			if c.market {
				filtered = append(filtered, c)
			}
		}
		cands = filtered
	}

	// Prefer candidates that respect filing-date ordering.
	if !filedAt.IsZero() {
		var onOrAfter []dateCandidate
		for _, c := range cands {
			if !c.date.Before(filedAt.AddDate(0, 0, -1)) {
				onOrAfter = append(onOrAfter, c)
			}
		}
		if len(onOrAfter) > 0 {
			cands = onOrAfter
		}
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.score < best.score || (c.score == best.score && c.date.After(best.date)) {
			best = c
		}
	}
	return best.date, true
}

func hasMarket(cands []dateCandidate) bool {
	for _, c := range cands {
		if c.market {
			return true
		}
	}
	return false
}

type foundDate struct {
	date   time.Time
	offset int
}

// datesIn returns every parsable date token in s with its byte offset.
func datesIn(s string) []foundDate {
	var out []foundDate

	for _, m := range monthDayYear.FindAllStringSubmatchIndex(s, -1) {
		month := monthIndex[s[m[2]:m[3]]]
		day, _ := strconv.Atoi(s[m[4]:m[5]])
		year, _ := strconv.Atoi(s[m[6]:m[7]])
		if d, ok := makeDate(year, month, day); ok {
			out = append(out, foundDate{date: d, offset: m[0]})
		}
	}
	for _, m := range numericDate.FindAllStringSubmatchIndex(s, -1) {
		month, _ := strconv.Atoi(s[m[2]:m[3]])
		day, _ := strconv.Atoi(s[m[4]:m[5]])
		year, _ := strconv.Atoi(s[m[6]:m[7]])
		if year < 100 {
			year += 2000
		}
		if month >= 1 && month <= 12 {
			if d, ok := makeDate(year, time.Month(month), day); ok {
				out = append(out, foundDate{date: d, offset: m[0]})
			}
		}
	}
	return out
}

// lastDateIn returns the final date token in s, used to bind a date to a
// defined term that follows it.
func lastDateIn(s string) (time.Time, bool) {
	found := datesIn(s)
	if len(found) == 0 {
		return time.Time{}, false
	}
	last := found[0]
	for _, f := range found[1:] {
		if f.offset > last.offset {
			last = f
		}
	}
	return last.date, true
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 || year < 1990 || year > 2100 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflows like February 31.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}
