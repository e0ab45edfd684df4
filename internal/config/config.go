package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zilezarach/torscrape-api/internal/fetcher"
	"github.com/zilezarach/torscrape-api/internal/indexers/general/piratebay"
	"github.com/zilezarach/torscrape-api/internal/indexers/general/x1337"
	"github.com/zilezarach/torscrape-api/internal/search"
)

// EnvPrefix namespaces environment overrides, e.g. TORSCRAPE_FETCH_BACKEND
const EnvPrefix = "TORSCRAPE"

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Sites  SitesConfig  `yaml:"sites" mapstructure:"sites"`
}

type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// Addr is the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig configures the zap logger. Output is stdout, stderr or a file
// path; files are rotated by size.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	Output     string `yaml:"output" mapstructure:"output"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// FetchConfig selects the page fetch backend.
type FetchConfig struct {
	Backend         string        `yaml:"backend" mapstructure:"backend"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Headless        bool          `yaml:"headless" mapstructure:"headless"`
	BrowserPath     string        `yaml:"browser_path" mapstructure:"browser_path"`
	FlareSolverrURL string        `yaml:"flaresolverr_url" mapstructure:"flaresolverr_url"`
}

// Fetcher converts to the fetcher package's config
func (f FetchConfig) Fetcher() *fetcher.Config {
	return &fetcher.Config{
		Backend:         f.Backend,
		Headless:        f.Headless,
		BrowserPath:     f.BrowserPath,
		FlareSolverrURL: f.FlareSolverrURL,
	}
}

type ScrapeConfig struct {
	DetailConcurrency int `yaml:"detail_concurrency" mapstructure:"detail_concurrency"`
}

type SitesConfig struct {
	X1337     SiteConfig `yaml:"x1337" mapstructure:"x1337"`
	PirateBay SiteConfig `yaml:"piratebay" mapstructure:"piratebay"`
}

type SiteConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Load reads config.yaml from the working directory if present, then
// applies TORSCRAPE_* environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("fetch.backend", fetcher.BackendChrome)
	v.SetDefault("fetch.timeout", fetcher.DefaultTimeout)
	v.SetDefault("fetch.headless", true)
	v.SetDefault("fetch.browser_path", "")
	v.SetDefault("fetch.flaresolverr_url", "http://localhost:8191")

	v.SetDefault("scrape.detail_concurrency", search.DefaultDetailConcurrency)

	v.SetDefault("sites.x1337.base_url", x1337.BaseURL)
	v.SetDefault("sites.piratebay.base_url", piratebay.BaseURL)
}

// Validate reports the first setting that would make the service unusable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Fetch.Backend) {
	case fetcher.BackendChrome, fetcher.BackendHTTP:
	case fetcher.BackendFlareSolverr:
		if c.Fetch.FlareSolverrURL == "" {
			return errors.New("config: fetch.flaresolverr_url is required for the flaresolverr backend")
		}
	default:
		return fmt.Errorf("config: unknown fetch.backend %q", c.Fetch.Backend)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config: fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Scrape.DetailConcurrency <= 0 {
		return fmt.Errorf("config: scrape.detail_concurrency must be positive, got %d", c.Scrape.DetailConcurrency)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	return nil
}
