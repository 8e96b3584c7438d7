// Package config loads the deployment configuration from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration. It is loaded once in main and
// threaded explicitly; no package reads configuration ambiently.
type Config struct {
	Skill    SkillConfig    `toml:"skill"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Feed     FeedConfig     `toml:"feed"`
	Art      ArtConfig      `toml:"art"`
	Probe    ProbeConfig    `toml:"probe"`
}

// SkillConfig names the skill as spoken in the greeting.
type SkillConfig struct {
	Name string `toml:"name"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatabaseConfig contains session store settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// FeedConfig points at the podcast feed and tunes the fetch client.
type FeedConfig struct {
	URL               string         `toml:"url"`
	MaxRetries        int            `toml:"max_retries"`
	BackoffMs         int            `toml:"backoff_ms"`
	RequestsPerSecond float64        `toml:"requests_per_second"`
	Auth              FeedAuthConfig `toml:"auth"`
}

// FeedAuthConfig holds client-credentials settings for private feed hosts.
// All fields empty means the feed is public.
type FeedAuthConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
}

// Enabled reports whether credentials are configured.
func (a FeedAuthConfig) Enabled() bool {
	return a.ClientID != "" && a.ClientSecret != "" && a.TokenURL != ""
}

// ArtConfig configures cover-art URL signing. An empty object key disables
// art metadata on play commands.
type ArtConfig struct {
	BaseURL    string `toml:"base_url"`
	SigningKey string `toml:"signing_key"`
	ObjectKey  string `toml:"object_key"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// ProbeConfig tunes the background enclosure probe pool.
type ProbeConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Load reads and parses a TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config with working defaults for everything except the
// feed URL, which every deployment must set.
func Default() *Config {
	return &Config{
		Skill:    SkillConfig{Name: "My Podcast"},
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "earshot.db"},
		Feed: FeedConfig{
			MaxRetries:        3,
			BackoffMs:         500,
			RequestsPerSecond: 1,
		},
		Art:   ArtConfig{ObjectKey: "media/album_art.png", TTLMinutes: 100},
		Probe: ProbeConfig{Workers: 2, QueueSize: 100},
	}
}
