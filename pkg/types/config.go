// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every EDGAR request.
	// SEC rejects requests that do not carry contact information, so it
	// must look like "splitmon/0.1 (name@example.com)".
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Validate fails fast when the identity string cannot satisfy SEC's
// contact-information requirement. Called before any network activity.
func (c HTTPConfig) Validate() error {
	if !strings.Contains(c.UserAgent, "@") {
		return fmt.Errorf("user agent %q must include contact information (name and email)", c.UserAgent)
	}
	return nil
}

// CrawlConfig holds settings for the filing universe crawler.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// Forms is the set of form types of interest.
	Forms []string `json:"forms" yaml:"forms"`

	// WindowHours is the freshness window: filings older than this are
	// out of scope for the run.
	WindowHours int `json:"window_hours" yaml:"window_hours"`

	// BatchSize is how many issuers one run samples from the universe.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// PerIssuerCap limits how many recent matching filings are taken
	// from a single issuer's submission history.
	PerIssuerCap int `json:"per_issuer_cap" yaml:"per_issuer_cap"`

	// FetchDelay is the pause between consecutive issuer fetches.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// StoreConfig holds settings for the on-disk cache store.
type StoreConfig struct {
	// DataDir is the base directory for the cache database and outputs.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// TickerTTL is how long the CIK→ticker mapping stays fresh before a
	// refresh is attempted (default 7 days).
	TickerTTL time.Duration `json:"ticker_ttl" yaml:"ticker_ttl"`
}

// NotifyConfig holds SMTP settings for the alert digest. The digest is a
// no-op when Enabled is false or the accepted record set is empty.
type NotifyConfig struct {
	SMTPServer string   `json:"smtp_server" yaml:"smtp_server"`
	SMTPPort   int      `json:"smtp_port" yaml:"smtp_port"`
	Sender     string   `json:"sender" yaml:"sender"`
	Password   string   `json:"password,omitempty" yaml:"password,omitempty"`
	Recipients []string `json:"recipients" yaml:"recipients"`
	Enabled    bool     `json:"enabled" yaml:"enabled"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Crawl  CrawlConfig  `json:"crawl" yaml:"crawl"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Notify NotifyConfig `json:"notify" yaml:"notify"`

	// ForceReprocess ignores the seen-accession cache so previously
	// confirmed filings run through the gates again.
	ForceReprocess bool `json:"force_reprocess" yaml:"force_reprocess"`

	// EventHorizonDays is how far in the future an effective date may sit
	// and still be actionable (default 5 days).
	EventHorizonDays int `json:"event_horizon_days" yaml:"event_horizon_days"`
}
