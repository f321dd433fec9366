// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgold/splitmon/pkg/types"
)

func newTestStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var logw bytes.Buffer
	s, err := New(types.StoreConfig{DataDir: t.TempDir()}, &logw)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, &logw
}

const sampleHeader = `<SEC-DOCUMENT>0001213900-26-001234.txt : 20260301
<SEC-HEADER>0001213900-26-001234.hdr.sgml : 20260301
ACCESSION NUMBER:		0001213900-26-001234
CONFORMED SUBMISSION TYPE:	8-K
</SEC-HEADER>
The company will effect a reverse stock split.
`

func TestFilingText_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.FilingText(ctx, "0001213900-26-001234")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetFilingText(ctx, "0001213900-26-001234", sampleHeader))

	body, ok, err := s.FilingText(ctx, "0001213900-26-001234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleHeader, body)
}

func TestFilingText_IdentityMismatchIsMiss(t *testing.T) {
	s, logw := newTestStore(t)
	ctx := context.Background()

	// Blob self-identifies as a different accession than its key.
	require.NoError(t, s.SetFilingText(ctx, "0009999999-26-000001", sampleHeader))

	_, ok, err := s.FilingText(ctx, "0009999999-26-000001")
	require.NoError(t, err)
	assert.False(t, ok, "mismatched blob must be a cache miss, never stale content")
	assert.Contains(t, logw.String(), "cache identity mismatch")

	// The poisoned entry is evicted, so a refetched blob can be stored.
	_, ok, err = s.FilingText(ctx, "0009999999-26-000001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilingText_BlobWithoutTokenIsServed(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFilingText(ctx, "0001213900-26-009999", "plain text with no header token"))

	body, ok, err := s.FilingText(ctx, "0001213900-26-009999")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, body)
}

func TestAccessionToken(t *testing.T) {
	assert.Equal(t, "0001213900-26-001234", AccessionToken(sampleHeader))
	assert.Equal(t, "", AccessionToken("no token here"))
}

func TestSeen(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seen, err := s.Seen(ctx, "0001213900-26-001234")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkSeen(ctx, "0001213900-26-001234"))

	seen, err = s.Seen(ctx, "0001213900-26-001234")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestTickers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.TickersFresh(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.False(t, fresh, "empty mapping is never fresh")

	mapping := map[string]types.SecurityInfo{
		"0000320193": {Ticker: "AAPL", Exchange: "NASDAQ", Title: "Apple Inc."},
		"0000012345": {Ticker: "ZZZZ", Exchange: "NYSE", Title: "Example Corp."},
	}
	require.NoError(t, s.ReplaceTickers(ctx, mapping))

	fresh, err = s.TickersFresh(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = s.TickersFresh(ctx, 0)
	require.NoError(t, err)
	assert.False(t, fresh, "zero TTL forces refresh")

	info, ok, err := s.TickerInfo(ctx, "0000320193")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAPL", info.Ticker)

	universe, err := s.Universe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0000012345", "0000320193"}, universe, "universe is sorted by CIK")
}

func TestPrices(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, ok, err := s.Price(ctx, "AAPL", day)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPrice(ctx, "AAPL", day, 1.23))

	px, ok, err := s.Price(ctx, "AAPL", day)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1.23, px, 1e-9)
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cp, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Zero(t, cp.Cursor)

	require.NoError(t, s.SaveCheckpoint(ctx, types.Checkpoint{Cursor: 120, UniverseSize: 9000}))

	cp, err = s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, cp.Cursor)
	assert.Equal(t, 9000, cp.UniverseSize)
	assert.False(t, cp.UpdatedAt.IsZero())
}

func TestFeedSnapshot_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	snap, err := s.FeedSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)

	filings := []types.Filing{{
		Accession: "0001213900-26-001234",
		CIK:       "0000320193",
		Form:      "8-K",
		FiledAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, s.SaveFeedSnapshot(ctx, filings))

	snap, err = s.FeedSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "0001213900-26-001234", snap[0].Accession)
}

func TestCacheStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFilingText(ctx, "0001213900-26-001234", sampleHeader))
	require.NoError(t, s.MarkSeen(ctx, "0001213900-26-001234"))

	st, err := s.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Filings)
	assert.Equal(t, 1, st.Seen)
	assert.Equal(t, 0, st.Tickers)
}
