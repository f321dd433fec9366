// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Window geometry for context selection. Filings run to hundreds of
// kilobytes; the operative split description fits comfortably in a few
// thousand characters around an anchor phrase.
const (
	contextRadius    = 2500
	maxPerAnchor     = 4
	overlapTolerance = contextRadius // windows closer than this collapse into one
)

// contextAnchors are scanned in order; earlier anchors mark stronger
// framing of the operative split language.
var contextAnchors = []string{
	"effective time",
	"will become effective",
	"begin trading",
	"commence trading",
	"split-adjusted",
	"reverse stock split",
	"reverse split",
	"share consolidation",
	"stock consolidation",
	"fractional shares",
}

// Strong-signal terms and their weights for window scoring.
var contextSignals = []struct {
	term   string
	weight int
}{
	{"effective time", 4},
	{"will become effective", 3},
	{"begin trading", 2},
	{"split-adjusted", 2},
	{"fractional", 3},
	{"rounded up", 2},
	{"in lieu", 1},
}

// ratioHint is a cheap presence test for ratio phrasing inside a window.
var ratioHint = regexp.MustCompile(`\d{1,4}\s*[-: ]\s*for\s*[-: ]\s*\d{1,4}`)

// amendmentTrap marks the classic false positive: a certificate of
// amendment "became effective" dates the charter filing, not the market
// event.
var amendmentTrap = regexp.MustCompile(`certificate of amendment[^.]{0,200}(?:became|become[s]?) effective`)

type contextWindow struct {
	start, end int
	score      int
}

// SelectContext returns the sub-window of text most likely to contain the
// operative split description, or the document head when no anchor is
// found. Ratio and rounding-policy extraction operate preferentially on
// this window.
func SelectContext(text string) string {
	lower := strings.ToLower(text)

	var windows []contextWindow
	for _, anchor := range contextAnchors {
		from, hits := 0, 0
		for hits < maxPerAnchor {
			i := strings.Index(lower[from:], anchor)
			if i < 0 {
				break
			}
			center := from + i
			windows = append(windows, windowAround(lower, center))
			from = center + len(anchor)
			hits++
		}
	}

	if len(windows) == 0 {
		return head(text, 2*contextRadius)
	}

	windows = dedupWindows(windows)
	for i := range windows {
		windows[i].score = scoreWindow(lower[windows[i].start:windows[i].end])
	}

	best := windows[0]
	for _, w := range windows[1:] {
		if w.score > best.score {
			best = w
		}
	}
	// Lowercasing can shift byte lengths for exotic input; clamp.
	if best.end > len(text) {
		best.end = len(text)
	}
	if best.start > best.end {
		best.start = best.end
	}
	return text[best.start:best.end]
}

func windowAround(text string, center int) contextWindow {
	start := center - contextRadius
	if start < 0 {
		start = 0
	}
	end := center + contextRadius
	if end > len(text) {
		end = len(text)
	}
	return contextWindow{start: start, end: end}
}

// dedupWindows collapses windows whose centers sit within overlapTolerance
// of each other, keeping the earliest.
func dedupWindows(windows []contextWindow) []contextWindow {
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	out := windows[:1]
	for _, w := range windows[1:] {
		last := out[len(out)-1]
		if w.start-last.start < overlapTolerance {
			continue
		}
		out = append(out, w)
	}
	return out
}

// scoreWindow weighs strong split signals against known traps. Higher is
// better.
func scoreWindow(window string) int {
	score := 0
	for _, sig := range contextSignals {
		if strings.Contains(window, sig.term) {
			score += sig.weight
		}
	}
	if ratioHint.MatchString(window) {
		score += 3
	}
	if amendmentTrap.MatchString(window) {
		score -= 6
	}
	return score
}

func head(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
