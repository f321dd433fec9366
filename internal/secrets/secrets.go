// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value. Secrets overlay the
// config so SMTP credentials and the SEC contact string stay out of
// splitmon.yaml.
//
// Supported key files: smtp-password, sec-user-agent, alert-recipients.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wgold/splitmon/pkg/types"
)

// Key file names the overlay recognizes.
const (
	KeySMTPPassword    = "smtp-password"
	KeySECUserAgent    = "sec-user-agent"
	KeyAlertRecipients = "alert-recipients"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unreadable files produce a warning on stderr but
// do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply overlays loaded secrets onto the run configuration. Values already
// present in the config win only when the corresponding secret file is
// absent; a secret file is the more deliberate source.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	if v, ok := secrets[KeySMTPPassword]; ok {
		cfg.Notify.Password = v
	}
	if v, ok := secrets[KeySECUserAgent]; ok {
		cfg.Crawl.UserAgent = v
	}
	if v, ok := secrets[KeyAlertRecipients]; ok {
		cfg.Notify.Recipients = splitRecipients(v)
	}
}

// splitRecipients accepts comma- or newline-separated address lists.
func splitRecipients(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
