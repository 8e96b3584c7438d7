package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[skill]
name = "Night Shift Radio"

[server]
addr = ":9090"

[feed]
url = "https://feeds.test/podcast/rss"
max_retries = 5

[feed.auth]
client_id = "cid"
client_secret = "shh"
token_url = "https://auth.test/token"
scopes = ["feed:read"]

[art]
base_url = "https://assets.test"
signing_key = "topsecret"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Skill.Name != "Night Shift Radio" {
		t.Fatalf("unexpected skill name: %q", cfg.Skill.Name)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Feed.URL != "https://feeds.test/podcast/rss" || cfg.Feed.MaxRetries != 5 {
		t.Fatalf("unexpected feed config: %+v", cfg.Feed)
	}
	if !cfg.Feed.Auth.Enabled() {
		t.Fatal("expected auth to be enabled")
	}
	// Unset fields keep their defaults.
	if cfg.Feed.BackoffMs != 500 || cfg.Feed.RequestsPerSecond != 1 {
		t.Fatalf("defaults not preserved: %+v", cfg.Feed)
	}
	if cfg.Database.Path != "earshot.db" {
		t.Fatalf("default database path lost: %q", cfg.Database.Path)
	}
	if cfg.Art.BaseURL != "https://assets.test" || cfg.Art.TTLMinutes != 100 {
		t.Fatalf("unexpected art config: %+v", cfg.Art)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[feed`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestFeedAuthConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		auth FeedAuthConfig
		want bool
	}{
		{
			name: "all set",
			auth: FeedAuthConfig{ClientID: "a", ClientSecret: "b", TokenURL: "c"},
			want: true,
		},
		{name: "empty", auth: FeedAuthConfig{}, want: false},
		{
			name: "missing secret",
			auth: FeedAuthConfig{ClientID: "a", TokenURL: "c"},
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.auth.Enabled(); got != tc.want {
				t.Fatalf("Enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %q", cfg.Server.Addr)
	}
	if cfg.Feed.URL != "" {
		t.Fatalf("feed url must have no default, got %q", cfg.Feed.URL)
	}
	if cfg.Probe.Workers != 2 || cfg.Probe.QueueSize != 100 {
		t.Fatalf("unexpected probe defaults: %+v", cfg.Probe)
	}
}
