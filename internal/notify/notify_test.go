// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wgold/splitmon/pkg/types"
)

func sampleRecord() types.Record {
	price := 0.20
	profit := 3.80
	return types.Record{
		Filing: types.Filing{
			Accession: "0001213900-26-001234",
			CIK:       "0000123456",
			Company:   "Example Holdings Inc.",
			Form:      "8-K",
			FiledAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			IndexURL:  "https://www.sec.gov/Archives/edgar/data/123456/000121390026001234/0001213900-26-001234-index.htm",
		},
		Extraction: types.Extraction{
			RatioNew:        1,
			RatioOld:        20,
			EffectiveDate:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			RoundingPolicy:  types.RoundUp,
			MatchesRounding: true,
		},
		Security: types.SecurityInfo{
			Ticker:   "EXMP",
			Exchange: "NASDAQ",
			Title:    "Example Holdings Inc. Common Stock",
		},
		Price:           &price,
		PotentialProfit: &profit,
	}
}

func TestRenderDigest(t *testing.T) {
	body := RenderDigest([]types.Record{sampleRecord()})

	assert.Contains(t, body, "Reverse split opportunities (round-up only):")
	assert.Contains(t, body, "EXMP (Example Holdings Inc.) - 8-K 0001213900-26-001234")
	assert.Contains(t, body, "Ratio: 1-for-20 | Effective: 2026-03-03")
	assert.Contains(t, body, "Rounding: ROUND_UP | Exchange: NASDAQ")
	assert.Contains(t, body, "Filing: https://www.sec.gov/Archives/edgar/data/123456/")
	assert.Contains(t, body, "Potential profit: $3.8000 (pre-split close $0.2000)")
}

func TestRenderDigest_MissingFields(t *testing.T) {
	r := sampleRecord()
	r.Extraction.EffectiveDate = time.Time{}
	r.Security.Exchange = ""
	r.Price = nil
	r.PotentialProfit = nil

	body := RenderDigest([]types.Record{r})

	assert.Contains(t, body, "Effective: unknown")
	assert.Contains(t, body, "Exchange: unknown")
	assert.NotContains(t, body, "Potential profit")
}

func TestSendDigest_NoOpWhenDisabled(t *testing.T) {
	// Disabled config must return without dialing; a send attempt against
	// the unroutable server below would stall for the full timeout.
	cfg := types.NotifyConfig{Enabled: false, SMTPServer: "smtp.invalid", SMTPPort: 587}
	SendDigest([]types.Record{sampleRecord()}, cfg)
}

func TestSendDigest_NoOpWhenEmpty(t *testing.T) {
	cfg := types.NotifyConfig{Enabled: true, SMTPServer: "smtp.invalid", SMTPPort: 587}
	SendDigest(nil, cfg)
}
