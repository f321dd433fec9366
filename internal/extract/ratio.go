// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Ratio candidate patterns. Group order is always (new, old) except the
// parenthetical prose form, which reads old-then-new ("every (20) shares
// ... combined into one (1) share").
var (
	// "1-for-20", "1 for 20", "1-for 20"
	ratioForPattern = regexp.MustCompile(`\b(\d{1,4})\s*[- ]\s*for\s*[- ]\s*(\d{1,4})\b`)

	// "one-for-twenty", "one-for-20"
	wordForPattern = regexp.MustCompile(`\b(` + wordNumberToken + `|\d{1,4})[- ]for[- ](` + wordNumberToken + `|\d{1,4})\b`)

	// "1:20" — ambiguous with clock times, calendar-guarded.
	ratioColonPattern = regexp.MustCompile(`\b(\d{1,4})\s*:\s*(\d{1,4})\b`)

	// "ratio of 1 to 20" — ambiguous with date spans, calendar-guarded.
	ratioToPattern = regexp.MustCompile(`\bratio of\s+(\d{1,4})\s+to\s+(\d{1,4})\b`)

	// "each/every twenty (20) shares ... combined/converted into one (1) share"
	parentheticalPattern = regexp.MustCompile(
		`(?:each|every)[^.()]{0,60}\((\d{1,4})\)\s*shares?[^.]{0,160}?` +
			`(?:combined|converted|reclassified|changed|exchanged)[^.]{0,60}?into[^.()]{0,60}\((\d{1,4})\)`)

	// "will receive one share for every two hundred and twenty shares"
	wordRatioPattern = regexp.MustCompile(
		`receive\s+(one|\d{1,4})\s+(?:new\s+)?shares?\s+(?:of[^.]{0,40}?\s+)?for\s+(?:each|every)\s+(` +
			wordNumberToken + `|\d{1,4})\s*shares?`)
)

// rangeLanguage marks authorization/"range" framing: a board asking for
// discretion over a ratio span has not executed a split at that ratio.
var rangeLanguage = regexp.MustCompile(
	`ranging from|range of|and not more than|not (?:less|more) than|` +
		`discretion|to be determined|up to a maximum|between\s+(?:one|1)[- ]for`)

// calendarAdjacent catches date and clock text that mimics ratio digits
// ("on 1/2/2026", "January 1 to 15", "5:00 p.m.").
var calendarAdjacent = regexp.MustCompile(
	`\d{1,2}/\d{1,2}/\d{2,4}|(?:january|february|march|april|may|june|july|august|` +
		`september|october|november|december)\.?\s+\d{1,2}|\d{1,2}:\d{2}\s*(?:a\.m\.|p\.m\.|am|pm)`)

// executionTriggers open the windows searched first: phrasing that marks a
// ratio as fixed and operative rather than merely authorized.
var executionTriggers = []string{
	"became effective",
	"will become effective",
	"becomes effective",
	"begin trading",
	"commence trading",
	"board of directors has fixed",
	"board has fixed",
	"board fixed",
	"board determined",
	"fixed the ratio",
	"determined the ratio",
	"approved a final ratio",
	"will effect a reverse",
	"effected a reverse",
}

// reinforcing terms lower a candidate's error cost when found nearby.
var ratioReinforcers = []string{"ratio", "basis", "effective time"}

// commonDenominators are frequent reverse-split old-share counts; matching
// one earns a small bonus in tie-breaks.
var commonDenominators = map[int]bool{
	2: true, 3: true, 4: true, 5: true, 8: true, 10: true, 15: true,
	20: true, 25: true, 30: true, 40: true, 50: true, 100: true, 200: true,
}

type ratioCandidate struct {
	newShares int
	oldShares int
	pos       int
	score     float64
}

// ExtractRatio returns the best "new-for-old" reverse-split ratio pair in
// text, with ok=false when no credible candidate survives the guardrails.
// Search is two-phase: windows following execution triggers are scanned
// first, and only when none yields a candidate does the engine fall back
// to a scored full-document scan. Scores are error-cost units: lowest wins.
func ExtractRatio(text string) (newShares, oldShares int, ok bool) {
	lower := strings.ToLower(text)

	// Phase 1: execution-context windows.
	var execCands []ratioCandidate
	for _, trigger := range executionTriggers {
		from := 0
		for {
			i := strings.Index(lower[from:], trigger)
			if i < 0 {
				break
			}
			start := from + i
			end := start + 600
			if end > len(lower) {
				end = len(lower)
			}
			for _, c := range ratioCandidates(lower[start:end]) {
				c.pos += start
				c.score = scoreRatio(lower, c)
				execCands = append(execCands, c)
			}
			from = start + len(trigger)
		}
	}
	if best, found := bestRatio(execCands); found {
		return best.newShares, best.oldShares, true
	}

	// Phase 2: full-document scan.
	cands := ratioCandidates(lower)
	for i := range cands {
		cands[i].score = scoreRatio(lower, cands[i])
	}
	if best, found := bestRatio(cands); found {
		return best.newShares, best.oldShares, true
	}
	return 0, 0, false
}

// ratioCandidates generates candidates from every phrasing pattern,
// applying the structural guardrails: reverse-split orientation, calendar
// adjacency for the ambiguous forms, and range/discretion language.
func ratioCandidates(lower string) []ratioCandidate {
	var out []ratioCandidate

	add := func(newShares, oldShares, pos int, guardCalendar bool) {
		if newShares <= 0 || oldShares <= 0 || newShares >= oldShares {
			return
		}
		if guardCalendar && calendarAdjacent.MatchString(sliceAround(lower, pos, 14)) {
			return
		}
		if nearRangeLanguage(lower, pos) {
			return
		}
		out = append(out, ratioCandidate{newShares: newShares, oldShares: oldShares, pos: pos})
	}

	for _, m := range ratioForPattern.FindAllStringSubmatchIndex(lower, -1) {
		n, _ := strconv.Atoi(lower[m[2]:m[3]])
		o, _ := strconv.Atoi(lower[m[4]:m[5]])
		add(n, o, m[0], false)
	}
	for _, m := range wordForPattern.FindAllStringSubmatchIndex(lower, -1) {
		n, okN := parseNumberToken(lower[m[2]:m[3]])
		o, okO := parseNumberToken(lower[m[4]:m[5]])
		if okN && okO {
			add(n, o, m[0], false)
		}
	}
	for _, m := range ratioColonPattern.FindAllStringSubmatchIndex(lower, -1) {
		n, _ := strconv.Atoi(lower[m[2]:m[3]])
		o, _ := strconv.Atoi(lower[m[4]:m[5]])
		add(n, o, m[0], true)
	}
	for _, m := range ratioToPattern.FindAllStringSubmatchIndex(lower, -1) {
		n, _ := strconv.Atoi(lower[m[2]:m[3]])
		o, _ := strconv.Atoi(lower[m[4]:m[5]])
		add(n, o, m[0], true)
	}
	for _, m := range parentheticalPattern.FindAllStringSubmatchIndex(lower, -1) {
		// Old first, new second in this prose form.
		o, _ := strconv.Atoi(lower[m[2]:m[3]])
		n, _ := strconv.Atoi(lower[m[4]:m[5]])
		add(n, o, m[0], false)
	}
	for _, m := range wordRatioPattern.FindAllStringSubmatchIndex(lower, -1) {
		n, okN := parseNumberToken(lower[m[2]:m[3]])
		o, okO := parseNumberToken(lower[m[4]:m[5]])
		if okN && okO {
			add(n, o, m[0], false)
		}
	}
	return out
}

// parseNumberToken accepts either digits or an English word numeral.
func parseNumberToken(tok string) (int, bool) {
	tok = strings.TrimSpace(tok)
	if v, err := strconv.Atoi(tok); err == nil {
		return v, true
	}
	return ParseWordNumber(tok)
}

// scoreRatio computes the error cost of a candidate: proximity to split
// anchors, reinforcing terms, discretion-language penalty, and a small
// bonus for common reverse-split denominators.
func scoreRatio(lower string, c ratioCandidate) float64 {
	score := 10.0

	if d, found := distanceToAnchor(lower, c.pos); found {
		score += float64(d) / 100
	} else {
		score += 50
	}

	local := sliceAround(lower, c.pos, 200)
	for _, term := range ratioReinforcers {
		if strings.Contains(local, term) {
			score -= 2
		}
	}

	// Discretion framing further out than the hard guardrail still makes
	// a candidate suspect.
	if rangeLanguage.MatchString(sliceAround(lower, c.pos, 400)) {
		score += 25
	}
	if commonDenominators[c.oldShares] {
		score -= 1
	}
	return score
}

var splitAnchorsForRatio = []string{"reverse stock split", "reverse split", "share consolidation", "stock consolidation"}

func distanceToAnchor(lower string, pos int) (int, bool) {
	best := -1
	for _, anchor := range splitAnchorsForRatio {
		from := 0
		for {
			i := strings.Index(lower[from:], anchor)
			if i < 0 {
				break
			}
			at := from + i
			d := pos - at
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best {
				best = d
			}
			from = at + len(anchor)
		}
	}
	return best, best >= 0
}

func nearRangeLanguage(lower string, pos int) bool {
	return rangeLanguage.MatchString(sliceAround(lower, pos, 120))
}

func sliceAround(s string, pos, radius int) string {
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

func bestRatio(cands []ratioCandidate) (ratioCandidate, bool) {
	if len(cands) == 0 {
		return ratioCandidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.score < best.score {
			best = c
		}
	}
	return best, true
}
