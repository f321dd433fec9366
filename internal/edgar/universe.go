// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wgold/splitmon/internal/httputil"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// RefreshUniverse fetches the CIK→ticker mapping and swaps it into the
// store, unless the stored mapping is still within ttl. Returns whether a
// refresh actually happened.
func RefreshUniverse(ctx context.Context, client *http.Client, st *store.Store, cfg types.CrawlConfig, ttl time.Duration, w io.Writer) (bool, error) {
	fresh, err := st.TickersFresh(ctx, ttl)
	if err != nil {
		return false, err
	}
	if fresh {
		return false, nil
	}

	body, err := httputil.GetBody(ctx, client, tickerMapURL, cfg.UserAgent)
	if err != nil {
		return false, fmt.Errorf("fetching ticker map: %w", err)
	}

	mapping, err := ParseTickerPayload(body)
	if err != nil {
		return false, fmt.Errorf("parsing ticker map: %w", err)
	}
	if len(mapping) == 0 {
		return false, fmt.Errorf("ticker map payload contained no usable rows")
	}

	if err := st.ReplaceTickers(ctx, mapping); err != nil {
		return false, err
	}
	fmt.Fprintf(w, "refreshed ticker map: %d issuers\n", len(mapping))
	return true, nil
}

// columnarTickerPayload is the current SEC shape:
// {"fields":["cik","name","ticker","exchange"],"data":[[320193,"Apple Inc.","AAPL","Nasdaq"],...]}.
type columnarTickerPayload struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// legacyTickerEntry covers the older row-object shapes, both the map keyed
// by row number and the bare list.
type legacyTickerEntry struct {
	CIKStr   json.Number `json:"cik_str"`
	CIK      json.Number `json:"cik"`
	Ticker   string      `json:"ticker"`
	Exchange string      `json:"exchange"`
	Title    string      `json:"title"`
	Name     string      `json:"name"`
}

// ParseTickerPayload decodes any of the ticker-map shapes SEC has served
// over the years into a CIK→security mapping. Malformed rows are skipped,
// never fatal.
func ParseTickerPayload(body []byte) (map[string]types.SecurityInfo, error) {
	var columnar columnarTickerPayload
	if err := json.Unmarshal(body, &columnar); err == nil && len(columnar.Fields) > 0 && len(columnar.Data) > 0 {
		return parseColumnar(columnar), nil
	}

	var keyed map[string]legacyTickerEntry
	if err := json.Unmarshal(body, &keyed); err == nil && len(keyed) > 0 {
		mapping := make(map[string]types.SecurityInfo, len(keyed))
		for _, entry := range keyed {
			addLegacyEntry(mapping, entry)
		}
		return mapping, nil
	}

	var listed []legacyTickerEntry
	if err := json.Unmarshal(body, &listed); err == nil {
		mapping := make(map[string]types.SecurityInfo, len(listed))
		for _, entry := range listed {
			addLegacyEntry(mapping, entry)
		}
		return mapping, nil
	}

	return nil, fmt.Errorf("unrecognized ticker map shape")
}

func parseColumnar(payload columnarTickerPayload) map[string]types.SecurityInfo {
	idx := make(map[string]int, len(payload.Fields))
	for i, name := range payload.Fields {
		idx[name] = i
	}

	mapping := make(map[string]types.SecurityInfo, len(payload.Data))
	for _, row := range payload.Data {
		cik := cellString(row, idx, "cik")
		if cik == "" {
			continue
		}
		mapping[PadCIK(cik)] = types.SecurityInfo{
			Ticker:   strings.ToUpper(cellString(row, idx, "ticker")),
			Exchange: strings.ToUpper(cellString(row, idx, "exchange")),
			Title:    cellString(row, idx, "name"),
		}
	}
	return mapping
}

func addLegacyEntry(mapping map[string]types.SecurityInfo, entry legacyTickerEntry) {
	cik := entry.CIKStr.String()
	if cik == "" || cik == "0" {
		cik = entry.CIK.String()
	}
	if cik == "" || cik == "0" || strings.Trim(cik, "0") == "" {
		return
	}
	title := entry.Title
	if title == "" {
		title = entry.Name
	}
	mapping[PadCIK(cik)] = types.SecurityInfo{
		Ticker:   strings.ToUpper(entry.Ticker),
		Exchange: strings.ToUpper(entry.Exchange),
		Title:    title,
	}
}

// cellString reads a named column from a row, tolerating JSON numbers and
// strings interchangeably.
func cellString(row []any, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// PadCIK zero-pads an issuer identifier to EDGAR's ten-digit form.
func PadCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}
