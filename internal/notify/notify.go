// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers the end-of-run alert digest over SMTP.
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/wgold/splitmon/pkg/types"
)

const digestSubject = "Reverse split round-up alerts"

// SendDigest emails the accepted records as a single plain-text digest.
// It is a no-op when notification is disabled or there is nothing to
// report, and a send failure is logged rather than returned: alerting is
// best-effort and must not fail the run that produced the records.
func SendDigest(records []types.Record, cfg types.NotifyConfig) {
	if !cfg.Enabled || len(records) == 0 {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.Sender)
	m.SetHeader("To", cfg.Recipients...)
	m.SetHeader("Subject", digestSubject)
	m.SetBody("text/plain", RenderDigest(records))

	d := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Sender, cfg.Password)
	d.Timeout = 10 * time.Second

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Email error: %v", err)
		return
	}
	log.Printf("Email sent for %d record(s)", len(records))
}

// RenderDigest formats the digest body. Split out from SendDigest so the
// rendering is testable without an SMTP server.
func RenderDigest(records []types.Record) string {
	var b strings.Builder
	b.WriteString("Reverse split opportunities (round-up only):\n")

	for _, r := range records {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s (%s) - %s %s\n", r.Security.Ticker, r.Filing.Company, r.Filing.Form, r.Filing.Accession)
		fmt.Fprintf(&b, "  Ratio: %s | Effective: %s\n", orUnknown(r.Extraction.RatioDisplay()), effectiveDisplay(r.Extraction.EffectiveDate))
		fmt.Fprintf(&b, "  Rounding: %s | Exchange: %s\n", r.Extraction.RoundingPolicy, orUnknown(r.Security.Exchange))
		fmt.Fprintf(&b, "  Filing: %s\n", r.Filing.IndexURL)
		if r.PotentialProfit != nil && r.Price != nil {
			fmt.Fprintf(&b, "  Potential profit: $%.4f (pre-split close $%.4f)\n", *r.PotentialProfit, *r.Price)
		}
	}
	return b.String()
}

func effectiveDisplay(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
