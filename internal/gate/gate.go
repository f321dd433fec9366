// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gate applies the fixed-order accept/reject pipeline to crawled
// filings. Each filing either becomes a Record or produces exactly one
// RejectionRecord tagged with the stage that terminated it, so every
// outcome is auditable after the run.
package gate

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wgold/splitmon/internal/extract"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// Stage names, in pipeline order. Each is a potential terminal rejection.
const (
	StageAgeWindow      = "age-window"
	StageSeenDedup      = "seen-dedup"
	StageTextFetch      = "text-fetch"
	StageDelistingOnly  = "delisting-notice-only"
	StageSplitLanguage  = "reverse-split-language-present"
	StageEventFreshness = "event-date-freshness"
	StageDatePresent    = "effective-date-present"
	StageDateNotPast    = "effective-date-not-past"
	StageRounding       = "rounding-policy"
	StageSecurityType   = "security-type"
)

// TextFetcher returns the sanitized full text for one filing.
type TextFetcher func(ctx context.Context, filing types.Filing) (string, error)

// Pipeline evaluates filings against the gate sequence. Store and Fetch
// are required; Now defaults to time.Now and Progress to stderr.
type Pipeline struct {
	Store *store.Store
	Fetch TextFetcher

	// WindowHours is the filed-at freshness window; zero disables the
	// age-window gate (the crawler already filtered).
	WindowHours int

	// EventHorizonDays bounds how far in the future an effective date may
	// sit and still be actionable.
	EventHorizonDays int

	// ForceReprocess skips the seen-dedup gate and suppresses seen
	// marking, so a filing can run through tuned gates again.
	ForceReprocess bool

	Progress io.Writer
	Now      func() time.Time
}

// NewPipeline wires a pipeline from the run configuration.
func NewPipeline(st *store.Store, fetch TextFetcher, cfg types.PipelineConfig, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = os.Stderr
	}
	horizon := cfg.EventHorizonDays
	if horizon <= 0 {
		horizon = 5
	}
	return &Pipeline{
		Store:            st,
		Fetch:            fetch,
		WindowHours:      cfg.Crawl.WindowHours,
		EventHorizonDays: horizon,
		ForceReprocess:   cfg.ForceReprocess,
		Progress:         progress,
		Now:              time.Now,
	}
}

// Evaluate runs one filing through every gate in order. It returns either
// an accepted record or a rejection, never both. The error return is
// reserved for store failures; fetch and extraction problems terminate at
// their gate instead of aborting the batch.
func (p *Pipeline) Evaluate(ctx context.Context, f types.Filing) (*types.Record, *types.RejectionRecord, error) {
	now := p.now()
	today := now.Truncate(24 * time.Hour)

	if p.WindowHours > 0 {
		cutoff := now.Add(-time.Duration(p.WindowHours) * time.Hour)
		if f.FiledAt.Before(cutoff) {
			return nil, p.reject(f, nil, "", StageAgeWindow,
				fmt.Sprintf("filed %s, outside the %d-hour window", f.FiledAt.Format("2006-01-02"), p.WindowHours)), nil
		}
	}

	if !p.ForceReprocess {
		seen, err := p.Store.Seen(ctx, f.Accession)
		if err != nil {
			return nil, nil, err
		}
		if seen {
			return nil, p.reject(f, nil, "", StageSeenDedup, "confirmed in a prior run"), nil
		}
	}

	text, err := p.Fetch(ctx, f)
	if err != nil {
		return nil, p.reject(f, nil, "", StageTextFetch, fmt.Sprintf("fetching filing text: %v", err)), nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, p.reject(f, nil, "", StageTextFetch, "empty filing text"), nil
	}

	if extract.IsDelistingNoticeOnly(text) {
		return nil, p.reject(f, nil, "", StageDelistingOnly,
			"deficiency/delisting notice with no announced split"), nil
	}

	if !extract.ContainsReverseSplitLanguage(text) {
		return nil, p.reject(f, nil, "", StageSplitLanguage, "no reverse-split language"), nil
	}

	// Marked seen only after the split language is confirmed: earlier
	// rejections may be transient or policy-tunable, and those filings
	// must stay eligible for later runs.
	if !p.ForceReprocess {
		if err := p.Store.MarkSeen(ctx, f.Accession); err != nil {
			return nil, nil, err
		}
	}

	ex := extract.Extract(text, f.FiledAt)

	if !ex.EffectiveDate.IsZero() {
		horizon := today.AddDate(0, 0, p.EventHorizonDays)
		if ex.EffectiveDate.After(horizon) {
			return nil, p.reject(f, &ex, "", StageEventFreshness,
				fmt.Sprintf("effective %s, beyond the %d-day horizon", ex.EffectiveDate.Format("2006-01-02"), p.EventHorizonDays)), nil
		}
	}

	if ex.EffectiveDate.IsZero() {
		return nil, p.reject(f, &ex, "", StageDatePresent, "no trustworthy effective date"), nil
	}

	if ex.EffectiveDate.Before(today) {
		return nil, p.reject(f, &ex, "", StageDateNotPast,
			fmt.Sprintf("effective %s is already past", ex.EffectiveDate.Format("2006-01-02"))), nil
	}

	if ex.RoundingPolicy == types.RoundDown {
		return nil, p.reject(f, &ex, "", StageRounding, "fractional shares are rounded down"), nil
	}
	// The disjunctive guard suppresses acceptance outright: cash-or-round-up
	// at someone's election is not a round-up candidate.
	if ex.RoundingRule == extract.RuleDisjunctive {
		return nil, p.reject(f, &ex, "", StageRounding, "ambiguous cash-or-round-up treatment"), nil
	}

	info, err := p.resolveSecurity(ctx, f, text)
	if err != nil {
		return nil, nil, err
	}
	if reason := SecurityRejection(text, info); reason != "" {
		return nil, p.reject(f, &ex, info.Ticker, StageSecurityType, reason), nil
	}

	return &types.Record{Filing: f, Extraction: ex, Security: info}, nil, nil
}

// resolveSecurity looks up the listed security for the filer and refines
// the ticker from the filing's own cover page, which is more current than
// the bulk mapping. A filer with no mapping falls back to its CIK so the
// record still carries a stable key.
func (p *Pipeline) resolveSecurity(ctx context.Context, f types.Filing, text string) (types.SecurityInfo, error) {
	info, ok, err := p.Store.TickerInfo(ctx, f.CIK)
	if err != nil {
		return types.SecurityInfo{}, err
	}
	if !ok || info.Title == "" {
		info.Title = f.Company
	}
	if sym := extract.TradingSymbol(text); sym != "" {
		info.Ticker = sym
	}
	if info.Ticker == "" {
		info.Ticker = f.CIK
	}
	return info, nil
}

func (p *Pipeline) reject(f types.Filing, ex *types.Extraction, ticker, stage, reason string) *types.RejectionRecord {
	rej := &types.RejectionRecord{
		Stage:     stage,
		Reason:    reason,
		Accession: f.Accession,
		CIK:       f.CIK,
		Company:   f.Company,
		Form:      f.Form,
		FiledAt:   f.FiledAt,
		Ticker:    ticker,
	}
	if ex != nil {
		rej.RatioNew = ex.RatioNew
		rej.RatioOld = ex.RatioOld
		rej.RoundingPolicy = ex.RoundingPolicy
		if !ex.EffectiveDate.IsZero() {
			d := ex.EffectiveDate
			rej.EffectiveDate = &d
		}
	}
	fmt.Fprintf(p.progress(), "  reject %s (%s) at %s: %s\n", f.Accession, f.Company, stage, reason)
	return rej
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) progress() io.Writer {
	if p.Progress != nil {
		return p.Progress
	}
	return os.Stderr
}
