// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgold/splitmon/internal/httputil"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

var testNow = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(types.StoreConfig{DataDir: t.TempDir()}, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCrawlConfig() types.CrawlConfig {
	return types.CrawlConfig{
		HTTPConfig:   types.HTTPConfig{UserAgent: "splitmon/0.1 (dev@example.com)"},
		WindowHours:  720,
		BatchSize:    2,
		PerIssuerCap: 5,
	}
}

func TestParseTickerPayload_Columnar(t *testing.T) {
	body := `{"fields":["cik","name","ticker","exchange"],
		"data":[[320193,"Apple Inc.","aapl","Nasdaq"],[1234567,"Example Holdings Inc.","exmp","NYSE"]]}`

	mapping, err := ParseTickerPayload([]byte(body))
	require.NoError(t, err)
	require.Len(t, mapping, 2)
	assert.Equal(t, "AAPL", mapping["0000320193"].Ticker)
	assert.Equal(t, "NASDAQ", mapping["0000320193"].Exchange)
	assert.Equal(t, "Example Holdings Inc.", mapping["0001234567"].Title)
}

func TestParseTickerPayload_LegacyKeyed(t *testing.T) {
	body := `{"0":{"cik_str":320193,"ticker":"AAPL","title":"Apple Inc."},
		"1":{"cik_str":1234567,"ticker":"EXMP","title":"Example Holdings Inc."}}`

	mapping, err := ParseTickerPayload([]byte(body))
	require.NoError(t, err)
	require.Len(t, mapping, 2)
	assert.Equal(t, "AAPL", mapping["0000320193"].Ticker)
}

func TestParseTickerPayload_LegacyList(t *testing.T) {
	body := `[{"cik":320193,"ticker":"AAPL","name":"Apple Inc."}]`

	mapping, err := ParseTickerPayload([]byte(body))
	require.NoError(t, err)
	require.Len(t, mapping, 1)
	assert.Equal(t, "Apple Inc.", mapping["0000320193"].Title)
}

func TestParseTickerPayload_Unrecognized(t *testing.T) {
	_, err := ParseTickerPayload([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestRefreshUniverse_HonorsTTL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(rw, `{"fields":["cik","name","ticker","exchange"],"data":[[320193,"Apple Inc.","AAPL","Nasdaq"]]}`)
	}))
	defer srv.Close()

	orig := tickerMapURL
	tickerMapURL = srv.URL
	defer func() { tickerMapURL = orig }()

	s := newTestStore(t)
	ctx := context.Background()

	refreshed, err := RefreshUniverse(ctx, srv.Client(), s, testCrawlConfig(), 7*24*time.Hour, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 1, hits)

	// Mapping is within TTL now; no second fetch.
	refreshed, err = RefreshUniverse(ctx, srv.Client(), s, testCrawlConfig(), 7*24*time.Hour, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, 1, hits)

	info, ok, err := s.TickerInfo(ctx, "0000320193")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAPL", info.Ticker)
}

const submissionsBody = `{
	"cik": "1234567",
	"name": "Example Holdings Inc.",
	"filings": {"recent": {
		"accessionNumber": ["0001213900-26-000300", "0001213900-26-000200", "0001213900-25-000100"],
		"filingDate":      ["2026-03-01",           "2026-02-28",           "2025-06-01"],
		"form":            ["8-K",                  "10-Q",                 "8-K"]
	}}
}`

func TestFetchIssuerFilings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CIK0001234567.json", r.URL.Path)
		fmt.Fprint(rw, submissionsBody)
	}))
	defer srv.Close()

	orig := submissionsURL
	submissionsURL = srv.URL + "/"
	defer func() { submissionsURL = orig }()

	filings, err := FetchIssuerFilings(context.Background(), srv.Client(), "1234567", testCrawlConfig(), testNow)
	require.NoError(t, err)

	// The 10-Q fails the form filter; the 2025 8-K is outside the window.
	require.Len(t, filings, 1)
	f := filings[0]
	assert.Equal(t, "0001213900-26-000300", f.Accession)
	assert.Equal(t, "0001234567", f.CIK)
	assert.Equal(t, "Example Holdings Inc.", f.Company)
	assert.Equal(t, "8-K", f.Form)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), f.FiledAt)
	assert.Contains(t, f.TextURL, "/1234567/000121390026000300/0001213900-26-000300.txt")
	assert.Contains(t, f.IndexURL, "0001213900-26-000300-index.htm")
}

func TestCrawlBatch_CursorWraparound(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		cik := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/CIK"), ".json")
		requested = append(requested, cik)
		fmt.Fprintf(rw, `{"cik":"%s","name":"Issuer %s","filings":{"recent":{
			"accessionNumber":["0001213900-26-%s"],
			"filingDate":["2026-03-01"],
			"form":["8-K"]}}}`, cik, cik, cik[4:])
	}))
	defer srv.Close()

	orig := submissionsURL
	submissionsURL = srv.URL + "/"
	defer func() { submissionsURL = orig }()

	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceTickers(ctx, map[string]types.SecurityInfo{
		"0000000001": {Ticker: "AAAA"},
		"0000000002": {Ticker: "BBBB"},
		"0000000003": {Ticker: "CCCC"},
	}))

	filings, cp, err := CrawlBatch(ctx, srv.Client(), s, testCrawlConfig(), testNow, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, filings, 2)
	assert.Equal(t, 2, cp.Cursor)
	assert.Equal(t, 3, cp.UniverseSize)
	assert.Equal(t, []string{"0000000001", "0000000002"}, requested)

	// The next run picks up at the cursor and wraps past the boundary.
	require.NoError(t, s.SaveCheckpoint(ctx, cp))
	requested = nil

	_, cp, err = CrawlBatch(ctx, srv.Client(), s, testCrawlConfig(), testNow, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0000000003", "0000000001"}, requested)
	assert.Equal(t, 1, cp.Cursor)
}

func TestCrawlBatch_IssuerFailureContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "0000000001") {
			http.NotFound(rw, r)
			return
		}
		fmt.Fprint(rw, `{"cik":"2","name":"Issuer Two","filings":{"recent":{
			"accessionNumber":["0001213900-26-000002"],
			"filingDate":["2026-03-01"],
			"form":["8-K"]}}}`)
	}))
	defer srv.Close()

	orig := submissionsURL
	submissionsURL = srv.URL + "/"
	defer func() { submissionsURL = orig }()

	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceTickers(ctx, map[string]types.SecurityInfo{
		"0000000001": {Ticker: "AAAA"},
		"0000000002": {Ticker: "BBBB"},
	}))

	var progress bytes.Buffer
	filings, _, err := CrawlBatch(ctx, srv.Client(), s, testCrawlConfig(), testNow, &progress)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "0001213900-26-000002", filings[0].Accession)
	assert.Contains(t, progress.String(), "warning: issuer 0000000001")
}

const feedBody = `<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry>
<title>8-K - Example Corp. (0001234567) (Filer)</title>
<link rel="alternate" href="https://www.sec.gov/Archives/edgar/data/1234567/000121390026001234/0001213900-26-001234-index.htm"/>
<id>urn:tag:sec.gov,2008:accession-number=0001213900-26-001234</id>
<updated>2026-03-01T12:30:00-04:00</updated>
</entry>
</feed>`

func TestFetchCurrentFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, feedBody)
	}))
	defer srv.Close()

	orig := currentFeedURL
	currentFeedURL = srv.URL + "?type=%s"
	defer func() { currentFeedURL = orig }()

	cfg := testCrawlConfig()
	cfg.Forms = []string{"8-K"}
	s := newTestStore(t)

	filings, err := FetchCurrentFeed(context.Background(), srv.Client(), s, cfg, testNow, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, filings, 1)

	f := filings[0]
	assert.Equal(t, "0001213900-26-001234", f.Accession)
	assert.Equal(t, "0001234567", f.CIK)
	assert.Equal(t, "Example Corp.", f.Company)
	assert.Equal(t, "8-K", f.Form)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), f.FiledAt)
	assert.True(t, strings.HasSuffix(f.TextURL, "0001213900-26-001234.txt"))
}

func TestFetchCurrentFeed_SnapshotFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, feedBody)
	}))

	orig := currentFeedURL
	currentFeedURL = srv.URL + "?type=%s"
	defer func() { currentFeedURL = orig }()

	cfg := testCrawlConfig()
	cfg.Forms = []string{"8-K"}
	s := newTestStore(t)
	ctx := context.Background()

	// A successful fetch replaces the snapshot.
	_, err := FetchCurrentFeed(ctx, srv.Client(), s, cfg, testNow, &bytes.Buffer{})
	require.NoError(t, err)

	// With the feed down, the snapshot is served instead of failing the run.
	srv.Close()
	origDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = origDelay }()
	var progress bytes.Buffer
	filings, err := FetchCurrentFeed(ctx, http.DefaultClient, s, cfg, testNow, &progress)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "0001213900-26-001234", filings[0].Accession)
	assert.Contains(t, progress.String(), "serving cached snapshot")
}

func TestSanitizeHTML(t *testing.T) {
	raw := `<SEC-HEADER>ACCESSION NUMBER: 0001213900-26-001234</SEC-HEADER>
<html><head><style>p { color: red }</style><script>var x = 1;</script></head>
<body><p>The Company will effect a&nbsp;reverse stock&nbsp;split.</p></body></html>`

	text := SanitizeHTML(raw)
	assert.Contains(t, text, "ACCESSION NUMBER: 0001213900-26-001234")
	assert.Contains(t, text, "reverse stock split")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "<p>")
}

func TestFilingText_CachesSanitizedText(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(rw, `<SEC-HEADER>ACCESSION NUMBER: 0001213900-26-001234</SEC-HEADER>
<html><body><p>reverse stock split at a ratio of 1-for-20</p></body></html>`)
	}))
	defer srv.Close()

	s := newTestStore(t)
	f := types.Filing{Accession: "0001213900-26-001234", TextURL: srv.URL + "/filing.txt"}
	ctx := context.Background()

	text, err := FilingText(ctx, srv.Client(), s, f, "splitmon/0.1 (dev@example.com)")
	require.NoError(t, err)
	assert.Contains(t, text, "1-for-20")
	assert.NotContains(t, text, "<p>")
	assert.Equal(t, 1, hits)

	// Second read is served from the store.
	again, err := FilingText(ctx, srv.Client(), s, f, "splitmon/0.1 (dev@example.com)")
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Equal(t, 1, hits)
}
