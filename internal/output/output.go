// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes run results to disk as JSON and CSV. JSON is the
// full-fidelity form; CSV flattens the same records for spreadsheet use.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wgold/splitmon/pkg/types"
)

// WriteJSON marshals v with two-space indentation to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

var recordHeader = []string{
	"ticker", "company", "cik", "form", "accession", "filed_at",
	"ratio", "effective_date", "rounding_policy", "exchange",
	"price", "potential_profit", "filing_url",
}

// WriteRecordsCSV flattens accepted records into one row each.
func WriteRecordsCSV(path string, records []types.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Security.Ticker,
			r.Filing.Company,
			r.Filing.CIK,
			r.Filing.Form,
			r.Filing.Accession,
			dateField(r.Filing.FiledAt),
			r.Extraction.RatioDisplay(),
			dateField(r.Extraction.EffectiveDate),
			string(r.Extraction.RoundingPolicy),
			r.Security.Exchange,
			floatField(r.Price),
			floatField(r.PotentialProfit),
			r.Filing.IndexURL,
		})
	}
	return writeCSV(path, recordHeader, rows)
}

var rejectionHeader = []string{
	"stage", "reason", "accession", "cik", "company", "form", "filed_at",
	"ticker", "ratio", "effective_date", "rounding_policy",
}

// WriteRejectionsCSV flattens rejection records into one row each.
func WriteRejectionsCSV(path string, rejections []types.RejectionRecord) error {
	rows := make([][]string, 0, len(rejections))
	for _, rj := range rejections {
		ratio := ""
		if rj.RatioNew > 0 && rj.RatioOld > 0 {
			ratio = fmt.Sprintf("%d-for-%d", rj.RatioNew, rj.RatioOld)
		}
		effective := ""
		if rj.EffectiveDate != nil {
			effective = dateField(*rj.EffectiveDate)
		}
		rows = append(rows, []string{
			rj.Stage,
			rj.Reason,
			rj.Accession,
			rj.CIK,
			rj.Company,
			rj.Form,
			dateField(rj.FiledAt),
			rj.Ticker,
			ratio,
			effective,
			string(rj.RoundingPolicy),
		})
	}
	return writeCSV(path, rejectionHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func dateField(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func floatField(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 4, 64)
}
