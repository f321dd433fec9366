package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wgold/splitmon/internal/edgar"
	"github.com/wgold/splitmon/internal/gate"
	"github.com/wgold/splitmon/internal/notify"
	"github.com/wgold/splitmon/internal/output"
	"github.com/wgold/splitmon/internal/price"
	"github.com/wgold/splitmon/internal/secrets"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultWindowHours = 72
	defaultBatchSize   = 200
	defaultIssuerCap   = 5
	defaultFetchDelay  = 150 * time.Millisecond
	defaultTickerTTL   = 7 * 24 * time.Hour
	defaultDataDir     = "data"
	defaultUserAgent   = "splitmon/0.1"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl recent filings and report round-up candidates",
	Long: `Run executes one monitoring pass: refresh the CIK-to-ticker universe,
collect recent filings of interest, gate each one through the extraction
pipeline, enrich survivors with close prices, and write the accepted
records and the rejection ledger as JSON and CSV under the data directory.

Two acquisition sources are available: "crawl" walks the issuer universe
with a persisted cursor (eventual full coverage across runs), "feed"
polls EDGAR's current-filings feed (lowest latency for fresh filings).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("data-dir", defaultDataDir, "base directory for the cache database and outputs")
	runCmd.Flags().String("user-agent", "", "SEC request identity, e.g. \"splitmon/0.1 (name@example.com)\"")
	runCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	runCmd.Flags().Int("window-hours", defaultWindowHours, "freshness window in hours")
	runCmd.Flags().Int("batch-size", defaultBatchSize, "issuers sampled per run (crawl source)")
	runCmd.Flags().Int("issuer-cap", defaultIssuerCap, "max recent matching filings per issuer")
	runCmd.Flags().String("source", "crawl", "filing source: crawl or feed")
	runCmd.Flags().StringSlice("forms", nil, "form types of interest (default 8-K, 8-K/A, DEF 14A, PRE 14A, S-1, S-1/A, F-1, F-1/A)")
	runCmd.Flags().Bool("force-reprocess", false, "ignore the seen-accession cache and reprocess filings in-window")
	runCmd.Flags().Bool("notify", false, "send the email digest for accepted records")

	rootCmd.AddCommand(runCmd)
}

func runConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	windowHours, _ := cmd.Flags().GetInt("window-hours")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	issuerCap, _ := cmd.Flags().GetInt("issuer-cap")
	forms, _ := cmd.Flags().GetStringSlice("forms")
	forceReprocess, _ := cmd.Flags().GetBool("force-reprocess")
	notifyFlag, _ := cmd.Flags().GetBool("notify")

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	cfg := types.PipelineConfig{
		Crawl: types.CrawlConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: userAgent,
			},
			Forms:        forms,
			WindowHours:  windowHours,
			BatchSize:    batchSize,
			PerIssuerCap: issuerCap,
			FetchDelay:   defaultFetchDelay,
		},
		Store: types.StoreConfig{
			DataDir:   dataDir,
			TickerTTL: defaultTickerTTL,
		},
		ForceReprocess: forceReprocess,
	}
	cfg.Notify.Enabled = notifyFlag

	secrets.Apply(&cfg, loadedSecrets)

	// Fail fast: SEC rejects anonymous clients, so there is no point
	// opening the store or touching the network without a contact string.
	if err := cfg.Crawl.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Notify.Enabled && len(cfg.Notify.Recipients) == 0 {
		return cfg, fmt.Errorf("notify requested but no alert-recipients secret is configured")
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}
	source, _ := cmd.Flags().GetString("source")
	if source != "crawl" && source != "feed" {
		return fmt.Errorf("unknown source %q (want crawl or feed)", source)
	}

	st, err := store.New(cfg.Store, os.Stderr)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	client := &http.Client{Timeout: cfg.Crawl.Timeout}
	now := time.Now().UTC()

	refreshed, err := edgar.RefreshUniverse(ctx, client, st, cfg.Crawl, cfg.Store.TickerTTL, os.Stderr)
	if err != nil {
		return err
	}
	if refreshed {
		fmt.Fprintln(os.Stderr, "Refreshed ticker universe")
	}

	var (
		filings    []types.Filing
		checkpoint types.Checkpoint
	)
	switch source {
	case "crawl":
		filings, checkpoint, err = edgar.CrawlBatch(ctx, client, st, cfg.Crawl, now, os.Stderr)
	case "feed":
		filings, err = edgar.FetchCurrentFeed(ctx, client, st, cfg.Crawl, now, os.Stderr)
	}
	if err != nil {
		return err
	}

	pipeline := gate.NewPipeline(st, edgar.NewTextFetcher(client, st, cfg.Crawl.UserAgent), cfg, os.Stderr)

	var (
		records    []types.Record
		rejections []types.RejectionRecord
	)
	for _, f := range filings {
		rec, rej, err := pipeline.Evaluate(ctx, f)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "  warning: evaluating %s: %v\n", f.Accession, err)
		case rec != nil:
			records = append(records, *rec)
		case rej != nil:
			rejections = append(rejections, *rej)
		}
	}
	records = gate.Dedup(records)

	price.Enrich(ctx, client, st, records, now, os.Stderr)

	if err := writeOutputs(cfg.Store.DataDir, records, rejections); err != nil {
		return err
	}

	notify.SendDigest(records, cfg.Notify)

	// The cursor only advances after the batch has been fully processed,
	// so a crash mid-run re-covers the same issuers next time.
	if source == "crawl" {
		checkpoint.UpdatedAt = now
		if err := st.SaveCheckpoint(ctx, checkpoint); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "Processed %d filing(s): %d accepted, %d rejected\n",
		len(filings), len(records), len(rejections))
	return nil
}

func writeOutputs(dataDir string, records []types.Record, rejections []types.RejectionRecord) error {
	steps := []struct {
		name string
		fn   func(string) error
	}{
		{"records.json", func(p string) error { return output.WriteJSON(p, records) }},
		{"records.csv", func(p string) error { return output.WriteRecordsCSV(p, records) }},
		{"rejections.json", func(p string) error { return output.WriteJSON(p, rejections) }},
		{"rejections.csv", func(p string) error { return output.WriteRejectionsCSV(p, rejections) }},
	}
	for _, s := range steps {
		if err := s.fn(filepath.Join(dataDir, s.name)); err != nil {
			return err
		}
	}
	return nil
}
