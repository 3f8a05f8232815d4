package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type (
	Config struct {
		BaseURL    string   `toml:"base_url"`
		UserAgent  string   `toml:"user_agent"`
		MailClient string   `toml:"mail_client"`
		Pager      string   `toml:"pager,omitempty"`
		Language   string   `toml:"language"`
		CacheTTL   Duration `toml:"cache_ttl"`

		PathFile string `toml:"-"`
	}

	// Duration is a time.Duration that reads and writes as "1h30m" in TOML.
	Duration struct {
		time.Duration
	}
)

const (
	defaultBaseURL    = "https://bugs.debian.org"
	defaultUserAgent  = "dbts (https://github.com/Tomas-vilte/dbts)"
	defaultMailClient = "mutt"
	defaultLang       = LangEN

	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "DBTS_CONFIG"
)

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultPath returns the configuration file used when none is given.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine configuration directory: %w", err)
	}
	return filepath.Join(dir, "dbts", "config.toml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:    defaultBaseURL,
		UserAgent:  defaultUserAgent,
		MailClient: defaultMailClient,
		Language:   defaultLang,
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := Default()
	config.PathFile = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("error decoding configuration file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown configuration keys in %s: %s", path, strings.Join(keys, ", "))
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	config.Language = GetLocaleConfig(config.Language)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Encode renders the configuration as TOML.
func Encode(config *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding configuration: %w", err)
	}
	return buf.Bytes(), nil
}

func validateConfig(config *Config) error {
	if config.BaseURL == "" {
		return errors.New("base_url cannot be empty")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http or https URL, got %q", config.BaseURL)
	}
	if config.MailClient == "" {
		return errors.New("mail_client cannot be empty")
	}
	if config.Language == "" {
		return errors.New("language cannot be empty")
	}
	if config.CacheTTL.Duration < 0 {
		return errors.New("cache_ttl cannot be negative")
	}
	return nil
}
