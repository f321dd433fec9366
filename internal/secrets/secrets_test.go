// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wgold/splitmon/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeySMTPPassword, "  hunter2  \n")
				writeFile(t, dir, KeySECUserAgent, "splitmon/0.1 (ops@example.com)")
				writeFile(t, dir, KeyAlertRecipients, "alerts@example.com\n")
				return dir
			},
			want: map[string]string{
				KeySMTPPassword:    "hunter2",
				KeySECUserAgent:    "splitmon/0.1 (ops@example.com)",
				KeyAlertRecipients: "alerts@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeySMTPPassword, "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				KeySMTPPassword: "valid",
			},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeySMTPPassword, "real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				KeySMTPPassword: "real",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, KeySMTPPassword, "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got[KeySMTPPassword])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestApply(t *testing.T) {
	cfg := types.PipelineConfig{}
	cfg.Crawl.UserAgent = "from-config (cfg@example.com)"
	cfg.Notify.Recipients = []string{"old@example.com"}

	Apply(&cfg, map[string]string{
		KeySMTPPassword:    "hunter2",
		KeySECUserAgent:    "splitmon/0.1 (ops@example.com)",
		KeyAlertRecipients: "a@example.com, b@example.com\nc@example.com",
	})

	assert.Equal(t, "hunter2", cfg.Notify.Password)
	assert.Equal(t, "splitmon/0.1 (ops@example.com)", cfg.Crawl.UserAgent)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, cfg.Notify.Recipients)
}

func TestApply_AbsentSecretsLeaveConfig(t *testing.T) {
	cfg := types.PipelineConfig{}
	cfg.Crawl.UserAgent = "from-config (cfg@example.com)"
	cfg.Notify.Password = "configured"

	Apply(&cfg, map[string]string{})

	assert.Equal(t, "from-config (cfg@example.com)", cfg.Crawl.UserAgent)
	assert.Equal(t, "configured", cfg.Notify.Password)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
