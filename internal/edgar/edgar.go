// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package edgar crawls the SEC EDGAR filing universe: the CIK→ticker
// mapping, per-issuer submission histories, the legacy bulk Atom feed, and
// full filing text. Every fetch goes through the retry client and carries
// the contact-bearing identity header EDGAR requires.
package edgar

import (
	"fmt"
	"strings"
	"time"
)

// Endpoint bases. Declared as vars so tests can substitute httptest servers.
var (
	tickerMapURL   = "https://www.sec.gov/files/company_tickers_exchange.json"
	submissionsURL = "https://data.sec.gov/submissions/"
	archivesURL    = "https://www.sec.gov/Archives/edgar/data/"
	currentFeedURL = "https://www.sec.gov/cgi-bin/browse-edgar?action=getcurrent&owner=include&type=%s&count=200&output=atom"
)

// DefaultForms are the form types a reverse split announcement can arrive
// in: current reports, proxy statements, and registration statements.
var DefaultForms = []string{
	"8-K", "8-K/A", "DEF 14A", "PRE 14A", "S-1", "S-1/A", "F-1", "F-1/A",
}

// formSet builds a lookup over the configured forms, defaulting to
// DefaultForms when the config leaves them empty.
func formSet(forms []string) map[string]bool {
	if len(forms) == 0 {
		forms = DefaultForms
	}
	set := make(map[string]bool, len(forms))
	for _, f := range forms {
		set[strings.ToUpper(strings.TrimSpace(f))] = true
	}
	return set
}

// filingURLs derives the index and full-text URLs for an accession. EDGAR
// archives strip the dashes from the accession in the directory name but
// keep them in the document name.
func filingURLs(cik, accession string) (indexURL, textURL string) {
	dir := fmt.Sprintf("%s%s/%s/", archivesURL, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", ""))
	return dir + accession + "-index.htm", dir + accession + ".txt"
}

// parseFilingDate parses EDGAR's date-only stamps (midnight UTC; EDGAR
// reports dates, not times).
func parseFilingDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
