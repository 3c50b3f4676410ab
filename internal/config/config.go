package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the SMHI metobs open-data endpoint.
	DefaultBaseURL = "https://opendata-download-metobs.smhi.se/api"
	// DefaultSuffix is appended to every request path.
	DefaultSuffix = ".json"
	// DefaultHTTPTimeout bounds each upstream call.
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultStaleAfter is the staleness window: stations whose last update is
	// older than this are excluded from the temperature report. Whether two
	// days is the right cutoff is an open question upstream, hence configurable.
	DefaultStaleAfter = 48 * time.Hour

	defaultConfigPath = "smhi.yaml"
)

// Config holds runtime configuration loaded from an optional YAML file and env.
type Config struct {
	BaseURL     string
	Suffix      string
	HTTPTimeout time.Duration
	StaleAfter  time.Duration
	LogLevel    string
}

type fileConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Suffix  string `yaml:"suffix"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`

	Report struct {
		StaleAfter string `yaml:"stale_after"`
	} `yaml:"report"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads configuration from the given YAML file. An empty path means the
// default smhi.yaml, which is silently skipped when absent; an explicitly
// given path must exist. SMHI_BASE_URL overrides the base URL from env.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		Suffix:      DefaultSuffix,
		HTTPTimeout: DefaultHTTPTimeout,
		StaleAfter:  DefaultStaleAfter,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return applyEnvAndValidate(cfg)
		}
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.API.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(fc.API.BaseURL, "/")
	}
	if fc.API.Suffix != "" {
		cfg.Suffix = fc.API.Suffix
	}
	cfg.HTTPTimeout = parseDuration(fc.API.Timeout, DefaultHTTPTimeout)
	cfg.StaleAfter = parseDuration(fc.Report.StaleAfter, DefaultStaleAfter)
	cfg.LogLevel = fc.Logging.Level

	return applyEnvAndValidate(cfg)
}

func applyEnvAndValidate(cfg *Config) (*Config, error) {
	if env := strings.TrimSpace(os.Getenv("SMHI_BASE_URL")); env != "" {
		cfg.BaseURL = strings.TrimRight(env, "/")
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal on empty
// string, parse error, or non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", cfg.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if strings.Contains(cfg.Suffix, "/") {
		return fmt.Errorf("api.suffix must not contain a path separator, got %q", cfg.Suffix)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if cfg.StaleAfter <= 0 {
		return fmt.Errorf("report.stale_after must be positive")
	}
	return nil
}
