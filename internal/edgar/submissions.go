// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wgold/splitmon/internal/httputil"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// submissionsResponse is the per-issuer history at
// data.sec.gov/submissions/CIK##########.json. Recent filings are columnar:
// parallel arrays indexed together.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
}

// FetchIssuerFilings returns one issuer's filings of interest: matching
// form type, filed within the freshness window, capped at the configured
// number of most recent matches.
func FetchIssuerFilings(ctx context.Context, client *http.Client, cik string, cfg types.CrawlConfig, now time.Time) ([]types.Filing, error) {
	cik = PadCIK(cik)

	var resp submissionsResponse
	url := fmt.Sprintf("%sCIK%s.json", submissionsURL, cik)
	if err := httputil.GetJSON(ctx, client, url, cfg.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("fetching submissions for %s: %w", cik, err)
	}

	forms := formSet(cfg.Forms)
	cutoff := now.Add(-time.Duration(cfg.WindowHours) * time.Hour)
	limit := cfg.PerIssuerCap
	if limit <= 0 {
		limit = 5
	}

	recent := resp.Filings.Recent
	var filings []types.Filing
	for i, accession := range recent.AccessionNumber {
		if len(filings) >= limit {
			break
		}
		if i >= len(recent.Form) || i >= len(recent.FilingDate) {
			break
		}
		if !forms[recent.Form[i]] {
			continue
		}
		filedAt, err := parseFilingDate(recent.FilingDate[i])
		if err != nil {
			continue
		}
		if cfg.WindowHours > 0 && filedAt.Before(cutoff) {
			// The recent list is newest-first; everything past the
			// window is older still.
			break
		}

		indexURL, textURL := filingURLs(cik, accession)
		filings = append(filings, types.Filing{
			Accession: accession,
			CIK:       cik,
			Company:   resp.Name,
			Form:      recent.Form[i],
			FiledAt:   filedAt,
			IndexURL:  indexURL,
			TextURL:   textURL,
		})
	}
	return filings, nil
}

// CrawlBatch samples the next batch of issuers from the universe using the
// persisted round-robin cursor, fetches each issuer's filings of interest,
// and returns the deduplicated set plus the advanced checkpoint (which the
// caller persists at run end). One issuer's failure logs and continues.
func CrawlBatch(ctx context.Context, client *http.Client, st *store.Store, cfg types.CrawlConfig, now time.Time, w io.Writer) ([]types.Filing, types.Checkpoint, error) {
	universe, err := st.Universe(ctx)
	if err != nil {
		return nil, types.Checkpoint{}, err
	}
	if len(universe) == 0 {
		return nil, types.Checkpoint{}, fmt.Errorf("issuer universe is empty; refresh the ticker map first")
	}

	cp, err := st.Checkpoint(ctx)
	if err != nil {
		return nil, types.Checkpoint{}, err
	}

	// A resized universe re-normalizes the cursor instead of failing.
	cursor := cp.Cursor
	if cursor < 0 || cursor >= len(universe) {
		cursor = cursor % len(universe)
		if cursor < 0 {
			cursor = 0
		}
	}

	batch := cfg.BatchSize
	if batch <= 0 || batch > len(universe) {
		batch = len(universe)
	}

	seen := make(map[string]bool)
	var filings []types.Filing
	failed := 0
	for i := 0; i < batch; i++ {
		if i > 0 && cfg.FetchDelay > 0 {
			time.Sleep(cfg.FetchDelay)
		}
		cik := universe[(cursor+i)%len(universe)]
		got, err := FetchIssuerFilings(ctx, client, cik, cfg, now)
		if err != nil {
			fmt.Fprintf(w, "  warning: issuer %s: %v\n", cik, err)
			failed++
			continue
		}
		for _, f := range got {
			if seen[f.Accession] {
				continue
			}
			seen[f.Accession] = true
			filings = append(filings, f)
		}
	}

	next := types.Checkpoint{
		Cursor:       (cursor + batch) % len(universe),
		UniverseSize: len(universe),
	}
	fmt.Fprintf(w, "crawled %d issuers (%d failed): %d filings in window\n", batch, failed, len(filings))
	return filings, next, nil
}
