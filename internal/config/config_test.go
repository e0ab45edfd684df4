package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir moves the test into an empty working directory so no stray
// config.yaml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 14, cfg.Log.MaxAgeDays)
	assert.Equal(t, "chrome", cfg.Fetch.Backend)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.Headless)
	assert.Equal(t, "http://localhost:8191", cfg.Fetch.FlareSolverrURL)
	assert.Equal(t, 5, cfg.Scrape.DetailConcurrency)
	assert.Equal(t, "https://www.1377x.to", cfg.Sites.X1337.BaseURL)
	assert.Equal(t, "https://thepiratebay.org", cfg.Sites.PirateBay.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := inTempDir(t)

	yaml := `
server:
  port: 8088
log:
  level: debug
  format: json
fetch:
  backend: http
  timeout: 25s
  headless: false
scrape:
  detail_concurrency: 2
sites:
  x1337:
    base_url: https://1337x.example
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "http", cfg.Fetch.Backend)
	assert.Equal(t, 25*time.Second, cfg.Fetch.Timeout)
	assert.False(t, cfg.Fetch.Headless)
	assert.Equal(t, 2, cfg.Scrape.DetailConcurrency)
	assert.Equal(t, "https://1337x.example", cfg.Sites.X1337.BaseURL)
	assert.Equal(t, "https://thepiratebay.org", cfg.Sites.PirateBay.BaseURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	inTempDir(t)
	t.Setenv("TORSCRAPE_FETCH_BACKEND", "flaresolverr")
	t.Setenv("TORSCRAPE_FETCH_TIMEOUT", "3s")
	t.Setenv("TORSCRAPE_SERVER_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "flaresolverr", cfg.Fetch.Backend)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadBadYAML(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "127.0.0.1", Port: 5000},
			Fetch:  FetchConfig{Backend: "chrome", Timeout: time.Second},
			Scrape: ScrapeConfig{DetailConcurrency: 1},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Fetch.Backend = "lynx" }, `unknown fetch.backend "lynx"`},
		{"flaresolverr without url", func(c *Config) { c.Fetch.Backend = "flaresolverr" }, "flaresolverr_url is required"},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "fetch.timeout must be positive"},
		{"zero concurrency", func(c *Config) { c.Scrape.DetailConcurrency = 0 }, "detail_concurrency must be positive"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchConfigConversion(t *testing.T) {
	fc := FetchConfig{Backend: "http", Headless: true, BrowserPath: "/usr/bin/chromium", FlareSolverrURL: "http://fs"}
	got := fc.Fetcher()
	assert.Equal(t, "http", got.Backend)
	assert.True(t, got.Headless)
	assert.Equal(t, "/usr/bin/chromium", got.BrowserPath)
	assert.Equal(t, "http://fs", got.FlareSolverrURL)
}
