// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
		Security:        types.SecurityInfo{Ticker: "EXMP", Exchange: "NASDAQ"},
		Price:           &price,
		PotentialProfit: &profit,
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, WriteJSON(path, []types.Record{sampleRecord()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {") // indented

	var got []types.Record
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "0001213900-26-001234", got[0].Filing.Accession)
	require.NotNil(t, got[0].PotentialProfit)
	assert.InDelta(t, 3.80, *got[0].PotentialProfit, 1e-9)
}

func TestWriteRecordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")
	require.NoError(t, WriteRecordsCSV(path, []types.Record{sampleRecord()}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, recordHeader, rows[0])
	assert.Equal(t, []string{
		"EXMP", "Example Holdings Inc.", "0000123456", "8-K",
		"0001213900-26-001234", "2026-03-01", "1-for-20", "2026-03-03",
		"ROUND_UP", "NASDAQ", "0.2000", "3.8000",
		"https://www.sec.gov/Archives/edgar/data/123456/000121390026001234/0001213900-26-001234-index.htm",
	}, rows[1])
}

func TestWriteRejectionsCSV(t *testing.T) {
	effective := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	rejections := []types.RejectionRecord{
		{
			Stage:          "effective-date-not-past",
			Reason:         "effective date 2026-02-20 already passed",
			Accession:      "0001213900-26-000777",
			CIK:            "0000765432",
			Company:        "Maple Mining Corp.",
			Form:           "8-K",
			FiledAt:        time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC),
			Ticker:         "MAPL",
			RatioNew:       1,
			RatioOld:       10,
			EffectiveDate:  &effective,
			RoundingPolicy: types.RoundUp,
		},
		{
			Stage:     "reverse-split-language-present",
			Reason:    "no reverse split language",
			Accession: "0001213900-26-000778",
			CIK:       "0000111222",
			Form:      "DEF 14A",
			FiledAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "rejections.csv")
	require.NoError(t, WriteRejectionsCSV(path, rejections))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, rejectionHeader, rows[0])
	assert.Equal(t, []string{
		"effective-date-not-past", "effective date 2026-02-20 already passed",
		"0001213900-26-000777", "0000765432", "Maple Mining Corp.", "8-K",
		"2026-02-19", "MAPL", "1-for-10", "2026-02-20", "ROUND_UP",
	}, rows[1])
	// Partial facts absent at rejection time stay blank.
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "", rows[2][9])
}
