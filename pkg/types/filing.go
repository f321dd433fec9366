// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the reverse-split monitor.
package types

import (
	"fmt"
	"time"
)

// Filing identifies one EDGAR submission. It is immutable once fetched:
// the crawler creates it and every downstream stage only reads it.
type Filing struct {
	// Accession is the unique submission identifier, e.g. "0001213900-26-001234".
	Accession string `json:"accession" yaml:"accession"`

	// CIK is the ten-digit, zero-padded issuer identifier.
	CIK string `json:"cik" yaml:"cik"`

	// Company is the issuer name as reported by the filing index.
	Company string `json:"company" yaml:"company"`

	// Form is the filing form type, e.g. "8-K" or "DEF 14A".
	Form string `json:"form" yaml:"form"`

	// FiledAt is the filing date (midnight UTC; EDGAR reports dates, not times).
	FiledAt time.Time `json:"filed_at" yaml:"filed_at"`

	// IndexURL is the filing index page.
	IndexURL string `json:"index_url" yaml:"index_url"`

	// TextURL is the full-text (.txt) document for the submission.
	TextURL string `json:"text_url" yaml:"text_url"`
}

// RoundingPolicy is the fractional-share treatment taxonomy.
type RoundingPolicy string

const (
	RoundUp       RoundingPolicy = "ROUND_UP"
	RoundDown     RoundingPolicy = "ROUND_DOWN"
	CashInLieu    RoundingPolicy = "CASH_IN_LIEU"
	PolicyUnknown RoundingPolicy = "UNKNOWN"
)

// Extraction holds the structured facts pulled from one filing's text.
// It is a pure function of the text plus the filing date.
type Extraction struct {
	// RatioNew and RatioOld form the "new-for-old" split ratio with
	// RatioNew < RatioOld. Both are zero when no ratio was found.
	RatioNew int `json:"ratio_new" yaml:"ratio_new"`
	RatioOld int `json:"ratio_old" yaml:"ratio_old"`

	// EffectiveDate is the market-effective date of the split, zero when
	// no date could be extracted.
	EffectiveDate time.Time `json:"effective_date" yaml:"effective_date"`

	// RoundingPolicy classifies the fractional-share treatment.
	RoundingPolicy RoundingPolicy `json:"rounding_policy" yaml:"rounding_policy"`

	// RoundingRule names the classifier rule that fired, "" when the
	// classification fell through to the default.
	RoundingRule string `json:"rounding_rule,omitempty" yaml:"rounding_rule,omitempty"`

	// MatchesRounding reports whether the classifier reached a definite
	// (non-UNKNOWN) policy.
	MatchesRounding bool `json:"matches_rounding" yaml:"matches_rounding"`
}

// HasRatio reports whether a split ratio was extracted.
func (e Extraction) HasRatio() bool {
	return e.RatioNew > 0 && e.RatioOld > 0
}

// RatioDisplay formats the ratio as "1-for-20", or "" when absent.
func (e Extraction) RatioDisplay() string {
	if !e.HasRatio() {
		return ""
	}
	return fmt.Sprintf("%d-for-%d", e.RatioNew, e.RatioOld)
}

// SecurityInfo describes the listed security behind a CIK, resolved from
// the ticker map and refined by the in-text trading-symbol table.
type SecurityInfo struct {
	Ticker   string `json:"ticker" yaml:"ticker"`
	Exchange string `json:"exchange" yaml:"exchange"`
	Title    string `json:"title" yaml:"title"`
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Record is one accepted round-up candidate event.
type Record struct {
	Filing     Filing       `json:"filing" yaml:"filing"`
	Extraction Extraction   `json:"extraction" yaml:"extraction"`
	Security   SecurityInfo `json:"security" yaml:"security"`

	// Price is the latest known close for the ticker, nil when the price
	// provider had nothing. Enrichment only; never gates acceptance.
	Price *float64 `json:"price,omitempty" yaml:"price,omitempty"`

	// PotentialProfit estimates the value of the rounded-up fractional
	// share at the theoretical post-split price.
	PotentialProfit *float64 `json:"potential_profit,omitempty" yaml:"potential_profit,omitempty"`
}

// RejectionRecord captures why a filing did not become a Record. Every
// filing that is not accepted produces exactly one of these.
type RejectionRecord struct {
	// Stage is the gate that terminated processing, e.g. "effective-date-present".
	Stage string `json:"stage" yaml:"stage"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason" yaml:"reason"`

	Accession string    `json:"accession" yaml:"accession"`
	CIK       string    `json:"cik" yaml:"cik"`
	Company   string    `json:"company" yaml:"company"`
	Form      string    `json:"form" yaml:"form"`
	FiledAt   time.Time `json:"filed_at" yaml:"filed_at"`

	// Partial extraction facts known at rejection time.
	Ticker         string         `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	RatioNew       int            `json:"ratio_new,omitempty" yaml:"ratio_new,omitempty"`
	RatioOld       int            `json:"ratio_old,omitempty" yaml:"ratio_old,omitempty"`
	EffectiveDate  *time.Time     `json:"effective_date,omitempty" yaml:"effective_date,omitempty"`
	RoundingPolicy RoundingPolicy `json:"rounding_policy,omitempty" yaml:"rounding_policy,omitempty"`
}

// Checkpoint is the persisted round-robin position over the issuer
// universe. It is loaded at run start, advanced once, and saved at run
// end; repeated runs cover the full universe eventually.
type Checkpoint struct {
	// Cursor is the index into the sorted CIK universe where the next
	// batch starts.
	Cursor int `json:"cursor" yaml:"cursor"`

	// UniverseSize is the universe length the cursor was computed
	// against, kept so a resized universe can re-normalize the cursor.
	UniverseSize int `json:"universe_size" yaml:"universe_size"`

	// UpdatedAt is when the checkpoint was last saved.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
