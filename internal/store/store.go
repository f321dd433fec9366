// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the durable caches behind the monitor: filing
// text, seen accessions, the CIK→ticker mapping, daily prices, the crawl
// checkpoint, and the last good feed snapshot. Everything lives in one
// SQLite database so a run's incremental additions are durable as soon as
// they are written.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wgold/splitmon/pkg/types"
)

const dbFile = "splitmon.db"

// metaKeys for the single-row settings table.
const (
	metaCheckpoint   = "checkpoint"
	metaTickersStamp = "tickers_refreshed_at"
	metaFeedSnapshot = "feed_snapshot"
)

// Store manages the monitor's SQLite cache database.
type Store struct {
	db   *sql.DB
	logw io.Writer
}

// New opens or creates the cache database at dataDir/splitmon.db and
// creates the schema if it does not exist. Warnings (cache identity
// mismatches) are written to logw; pass nil for stderr.
func New(cfg types.StoreConfig, logw io.Writer) (*Store, error) {
	if logw == nil {
		logw = os.Stderr
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, logw: logw}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS filings (
			accession TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS seen (
			accession TEXT PRIMARY KEY,
			seen_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickers (
			cik TEXT PRIMARY KEY,
			ticker TEXT,
			exchange TEXT,
			title TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			ticker TEXT NOT NULL,
			day TEXT NOT NULL,
			close REAL NOT NULL,
			PRIMARY KEY (ticker, day)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// accessionPattern matches an EDGAR accession number, e.g. "0001213900-26-001234".
var accessionPattern = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)

// headerSlice bounds how far into a filing blob the identity token is
// expected; the <SEC-HEADER> block sits at the very top.
const headerSlice = 4096

// AccessionToken recomputes the self-identifying accession from a cached
// filing blob's header, or "" when none is present.
func AccessionToken(body string) string {
	head := body
	if len(head) > headerSlice {
		head = head[:headerSlice]
	}
	return accessionPattern.FindString(head)
}

// FilingText returns the cached full text for an accession. A cached blob
// whose embedded header token does not match the requested accession is
// treated as a miss: the entry is evicted and a warning logged, never
// silently served.
func (s *Store) FilingText(ctx context.Context, accession string) (string, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM filings WHERE accession = ?`, accession,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading filing cache: %w", err)
	}

	if token := AccessionToken(body); token != "" && token != accession {
		fmt.Fprintf(s.logw, "warning: cache identity mismatch for %s (blob claims %s), refetching\n", accession, token)
		if _, err := s.db.ExecContext(ctx, `DELETE FROM filings WHERE accession = ?`, accession); err != nil {
			return "", false, fmt.Errorf("evicting mismatched cache entry: %w", err)
		}
		return "", false, nil
	}
	return body, true, nil
}

// SetFilingText caches the full text for an accession.
func (s *Store) SetFilingText(ctx context.Context, accession, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO filings (accession, body, fetched_at) VALUES (?, ?, ?)`,
		accession, body, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching filing text: %w", err)
	}
	return nil
}

// Seen reports whether the accession was already confirmed as a
// reverse-split candidate in a prior run.
func (s *Store) Seen(ctx context.Context, accession string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM seen WHERE accession = ?`, accession,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading seen cache: %w", err)
	}
	return true, nil
}

// MarkSeen records the accession with the current timestamp.
func (s *Store) MarkSeen(ctx context.Context, accession string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO seen (accession, seen_at) VALUES (?, ?)`,
		accession, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking seen: %w", err)
	}
	return nil
}

// TickerInfo resolves a CIK to its listed-security metadata.
func (s *Store) TickerInfo(ctx context.Context, cik string) (types.SecurityInfo, bool, error) {
	var info types.SecurityInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT ticker, exchange, title FROM tickers WHERE cik = ?`, cik,
	).Scan(&info.Ticker, &info.Exchange, &info.Title)
	if err == sql.ErrNoRows {
		return types.SecurityInfo{}, false, nil
	}
	if err != nil {
		return types.SecurityInfo{}, false, fmt.Errorf("reading ticker map: %w", err)
	}
	return info, true, nil
}

// TickersFresh reports whether the ticker mapping is non-empty and was
// refreshed within ttl.
func (s *Store) TickersFresh(ctx context.Context, ttl time.Duration) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM tickers`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting tickers: %w", err)
	}
	if count == 0 {
		return false, nil
	}

	stamp, ok, err := s.metaValue(ctx, metaTickersStamp)
	if err != nil || !ok {
		return false, err
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return false, nil
	}
	return time.Since(t) < ttl, nil
}

// ReplaceTickers swaps in a freshly fetched CIK→ticker mapping and stamps
// the refresh time.
func (s *Store) ReplaceTickers(ctx context.Context, mapping map[string]types.SecurityInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickers`); err != nil {
		return fmt.Errorf("clearing ticker map: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tickers (cik, ticker, exchange, title) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for cik, info := range mapping {
		if _, err := stmt.ExecContext(ctx, cik, info.Ticker, info.Exchange, info.Title); err != nil {
			return fmt.Errorf("inserting ticker %s: %w", cik, err)
		}
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, metaTickersStamp, stamp,
	); err != nil {
		return fmt.Errorf("stamping ticker refresh: %w", err)
	}

	return tx.Commit()
}

// Universe returns the full sorted set of known CIKs.
func (s *Store) Universe(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cik FROM tickers ORDER BY cik`)
	if err != nil {
		return nil, fmt.Errorf("reading universe: %w", err)
	}
	defer rows.Close()

	var ciks []string
	for rows.Next() {
		var cik string
		if err := rows.Scan(&cik); err != nil {
			return nil, fmt.Errorf("scanning universe row: %w", err)
		}
		ciks = append(ciks, cik)
	}
	return ciks, rows.Err()
}

// Price returns the cached close for ticker on day.
func (s *Store) Price(ctx context.Context, ticker string, day time.Time) (float64, bool, error) {
	var px float64
	err := s.db.QueryRowContext(ctx,
		`SELECT close FROM prices WHERE ticker = ? AND day = ?`,
		ticker, day.Format("2006-01-02"),
	).Scan(&px)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading price cache: %w", err)
	}
	return px, true, nil
}

// SetPrice caches the close for ticker on day.
func (s *Store) SetPrice(ctx context.Context, ticker string, day time.Time, px float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO prices (ticker, day, close) VALUES (?, ?, ?)`,
		ticker, day.Format("2006-01-02"), px,
	)
	if err != nil {
		return fmt.Errorf("caching price: %w", err)
	}
	return nil
}

// Checkpoint loads the persisted crawl cursor; a zero Checkpoint is
// returned when no run has saved one yet.
func (s *Store) Checkpoint(ctx context.Context) (types.Checkpoint, error) {
	raw, ok, err := s.metaValue(ctx, metaCheckpoint)
	if err != nil || !ok {
		return types.Checkpoint{}, err
	}
	var cp types.Checkpoint
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		// A corrupt checkpoint restarts coverage from zero rather than
		// failing the run.
		fmt.Fprintf(s.logw, "warning: corrupt checkpoint, resetting: %v\n", err)
		return types.Checkpoint{}, nil
	}
	return cp, nil
}

// SaveCheckpoint persists the crawl cursor.
func (s *Store) SaveCheckpoint(ctx context.Context, cp types.Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	return s.setMetaValue(ctx, metaCheckpoint, string(raw))
}

// FeedSnapshot loads the last good bulk-feed result, used when the live
// feed fetch fails.
func (s *Store) FeedSnapshot(ctx context.Context) ([]types.Filing, error) {
	raw, ok, err := s.metaValue(ctx, metaFeedSnapshot)
	if err != nil || !ok {
		return nil, err
	}
	var filings []types.Filing
	if err := json.Unmarshal([]byte(raw), &filings); err != nil {
		fmt.Fprintf(s.logw, "warning: corrupt feed snapshot, ignoring: %v\n", err)
		return nil, nil
	}
	return filings, nil
}

// SaveFeedSnapshot persists the bulk-feed result for fallback.
func (s *Store) SaveFeedSnapshot(ctx context.Context, filings []types.Filing) error {
	raw, err := json.Marshal(filings)
	if err != nil {
		return fmt.Errorf("marshaling feed snapshot: %w", err)
	}
	return s.setMetaValue(ctx, metaFeedSnapshot, string(raw))
}

// Stats summarizes cache contents for inspection.
type Stats struct {
	Filings int
	Seen    int
	Tickers int
	Prices  int
}

// CacheStats returns row counts for each cache table.
func (s *Store) CacheStats(ctx context.Context) (Stats, error) {
	var st Stats
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"filings", &st.Filings},
		{"seen", &st.Seen},
		{"tickers", &st.Tickers},
		{"prices", &st.Prices},
	} {
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+q.table).Scan(q.dst); err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", q.table, err)
		}
	}
	return st, nil
}

func (s *Store) metaValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading meta %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setMetaValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}
