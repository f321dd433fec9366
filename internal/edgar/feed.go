// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/wgold/splitmon/internal/httputil"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// Legacy bulk path: the browse-edgar "current events" Atom feed, one fetch
// per form type. Less precise than the submissions API but covers filers
// outside the ticker universe.

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	ID      string     `xml:"id"`
	Updated string     `xml:"updated"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

var (
	feedAccessionPattern = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)
	feedCIKPattern       = regexp.MustCompile(`\((\d{10})\)`)
	feedFormPattern      = regexp.MustCompile(`^([A-Z0-9\-/ ]+?)\s+-\s+`)
	feedFilerSuffix      = regexp.MustCompile(`\(\d{10}\)\s*\(Filer\)\s*$`)
)

// FetchCurrentFeed returns recent filings from the bulk Atom feed,
// deduplicated by accession and filtered to the freshness window. When
// every form's fetch fails, the last good snapshot from the store is
// served instead; on success the snapshot is replaced.
func FetchCurrentFeed(ctx context.Context, client *http.Client, st *store.Store, cfg types.CrawlConfig, now time.Time, w io.Writer) ([]types.Filing, error) {
	forms := cfg.Forms
	if len(forms) == 0 {
		forms = DefaultForms
	}
	cutoff := now.Add(-time.Duration(cfg.WindowHours) * time.Hour)

	seen := make(map[string]bool)
	var filings []types.Filing
	fetched := 0
	for _, form := range forms {
		url := fmt.Sprintf(currentFeedURL, strings.ReplaceAll(form, " ", "+"))
		body, err := httputil.GetBody(ctx, client, url, cfg.UserAgent)
		if err != nil {
			fmt.Fprintf(w, "  warning: feed fetch for %s: %v\n", form, err)
			continue
		}
		fetched++

		var feed atomFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			fmt.Fprintf(w, "  warning: feed parse for %s: %v\n", form, err)
			continue
		}
		for _, entry := range feed.Entries {
			f, ok := parseFeedEntry(entry)
			if !ok || seen[f.Accession] {
				continue
			}
			if cfg.WindowHours > 0 && f.FiledAt.Before(cutoff) {
				continue
			}
			seen[f.Accession] = true
			filings = append(filings, f)
		}
	}

	if fetched == 0 {
		snapshot, err := st.FeedSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			return nil, fmt.Errorf("feed unavailable and no cached snapshot")
		}
		fmt.Fprintf(w, "feed unavailable, serving cached snapshot (%d filings)\n", len(snapshot))
		return snapshot, nil
	}

	if err := st.SaveFeedSnapshot(ctx, filings); err != nil {
		return nil, err
	}
	return filings, nil
}

// parseFeedEntry maps one Atom entry onto a Filing. Entries missing an
// accession or link are dropped.
func parseFeedEntry(entry atomEntry) (types.Filing, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return types.Filing{}, false
	}

	link := ""
	for _, l := range entry.Links {
		if l.Href != "" {
			link = l.Href
			break
		}
	}
	if link == "" {
		link = entry.ID
	}
	if link == "" {
		return types.Filing{}, false
	}

	accession := feedAccessionPattern.FindString(link)
	if accession == "" {
		if i := strings.Index(entry.ID, "accession-number="); i >= 0 {
			accession = strings.TrimSpace(entry.ID[i+len("accession-number="):])
		}
	}
	if accession == "" {
		return types.Filing{}, false
	}

	cik := ""
	if m := feedCIKPattern.FindStringSubmatch(title); m != nil {
		cik = m[1]
	}

	form := ""
	if m := feedFormPattern.FindStringSubmatch(title); m != nil {
		form = strings.TrimSpace(m[1])
	}

	// "8-K - Example Corp. (0001234567) (Filer)" → "Example Corp."
	company := title
	if _, rest, found := strings.Cut(company, " - "); found {
		company = rest
	}
	company = strings.TrimSpace(feedFilerSuffix.ReplaceAllString(company, ""))

	filedAt := time.Now().UTC().Truncate(24 * time.Hour)
	if entry.Updated != "" {
		stamp, _, _ := strings.Cut(entry.Updated, "T")
		if d, err := parseFilingDate(stamp); err == nil {
			filedAt = d
		}
	}

	return types.Filing{
		Accession: accession,
		CIK:       cik,
		Company:   company,
		Form:      form,
		FiledAt:   filedAt,
		IndexURL:  link,
		TextURL:   strings.Replace(link, "-index.htm", ".txt", 1),
	}, true
}
