// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package price enriches accepted records with the latest close price.
// Pricing is strictly additive: a provider failure leaves the record
// without a price but never rejects it.
package price

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// stooqURL is the no-auth CSV quote endpoint. Declared as a var so tests
// can substitute an httptest server.
var stooqURL = "https://stooq.pl/q/l/?s=%s&f=sd2t2ohlcv&h&e=csv"

// FetchClose returns the latest close for a US-listed ticker, cached per
// (ticker, day) in the store. ok=false covers every failure mode: unknown
// symbol, network trouble, malformed payload.
func FetchClose(ctx context.Context, client *http.Client, st *store.Store, ticker string, now time.Time, w io.Writer) (float64, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return 0, false
	}

	day := now.UTC().Truncate(24 * time.Hour)
	if px, ok, err := st.Price(ctx, ticker, day); err == nil && ok {
		return px, true
	}

	url := fmt.Sprintf(stooqURL, strings.ToLower(ticker)+".us")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(w, "  warning: price fetch for %s: %v\n", ticker, err)
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "  warning: price fetch for %s: HTTP %d\n", ticker, resp.StatusCode)
		return 0, false
	}

	px, ok := parseQuoteCSV(resp.Body)
	if !ok {
		return 0, false
	}

	if err := st.SetPrice(ctx, ticker, day, px); err != nil {
		fmt.Fprintf(w, "  warning: caching price for %s: %v\n", ticker, err)
	}
	return px, true
}

// parseQuoteCSV pulls the Close column from a single-row stooq quote.
// Unknown symbols come back as "N/D", which fails the float parse.
func parseQuoteCSV(r io.Reader) (float64, bool) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil || len(rows) < 2 {
		return 0, false
	}

	closeIdx := -1
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "close") {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 || closeIdx >= len(rows[1]) {
		return 0, false
	}

	px, err := strconv.ParseFloat(strings.TrimSpace(rows[1][closeIdx]), 64)
	if err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

// Enrich attaches the latest close and the potential profit to each
// record in place. The profit is the value gained by the rounded-up
// fractional share: the theoretical post-split price minus the pre-split
// price, price*(old/new) - price.
func Enrich(ctx context.Context, client *http.Client, st *store.Store, records []types.Record, now time.Time, w io.Writer) {
	for i := range records {
		px, ok := FetchClose(ctx, client, st, records[i].Security.Ticker, now, w)
		if !ok {
			continue
		}
		records[i].Price = &px

		if ex := records[i].Extraction; ex.HasRatio() {
			profit := px*float64(ex.RatioOld)/float64(ex.RatioNew) - px
			records[i].PotentialProfit = &profit
		}
	}
}
