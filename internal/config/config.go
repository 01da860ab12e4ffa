package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Goodreads configuration
	Goodreads struct {
		BaseURL    string `yaml:"base_url"`
		CookieFile string `yaml:"cookie_file"`
	} `yaml:"goodreads"`

	// Anobii source configuration
	Anobii struct {
		Language string `yaml:"language"`
	} `yaml:"anobii"`

	// Sync settings
	Sync struct {
		CacheDB      string        `yaml:"cache_db"`
		Delay        time.Duration `yaml:"delay"`
		Jitter       time.Duration `yaml:"jitter"`
		ShortDelay   time.Duration `yaml:"short_delay"`
		Limit        int           `yaml:"limit"`
		ListOnly     bool          `yaml:"list_only"`
		RetryErrored bool          `yaml:"retry_errored"`
		GuardEndDate bool          `yaml:"guard_end_date"`
	} `yaml:"sync"`
}

// Load loads configuration from a file (if specified) and environment
// variables. Priority: environment variables > config file > defaults.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	// Defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Goodreads.BaseURL = "https://www.goodreads.com"
	cfg.Anobii.Language = "en"
	cfg.Sync.CacheDB = "./data/sync_cache.db"
	cfg.Sync.Delay = 5 * time.Second
	cfg.Sync.Jitter = 2 * time.Second
	cfg.Sync.ShortDelay = 2 * time.Second

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			fileCfg := &Config{}
			if err := yaml.Unmarshal(data, fileCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			merge(cfg, fileCfg)
		}
	}

	loadFromEnv(cfg)

	return cfg, nil
}

// ValidateRemote checks the configuration required by commands that mutate
// Goodreads. Offline commands (convert, filter) skip this.
func (c *Config) ValidateRemote() error {
	var missing []string

	if c.Goodreads.BaseURL == "" {
		missing = append(missing, "GOODREADS_BASE_URL")
	}
	if c.Goodreads.CookieFile == "" {
		missing = append(missing, "GOODREADS_COOKIE_FILE")
	}

	if len(missing) > 0 {
		return &ConfigError{
			Field: strings.Join(missing, ", "),
			Msg:   "required configuration values are missing",
		}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Msg
}

// merge copies non-zero values from src into dst.
func merge(dst, src *Config) {
	setString(&dst.Logging.Level, src.Logging.Level)
	setString(&dst.Logging.Format, src.Logging.Format)
	setString(&dst.Goodreads.BaseURL, src.Goodreads.BaseURL)
	setString(&dst.Goodreads.CookieFile, src.Goodreads.CookieFile)
	setString(&dst.Anobii.Language, src.Anobii.Language)
	setString(&dst.Sync.CacheDB, src.Sync.CacheDB)
	if src.Sync.Delay > 0 {
		dst.Sync.Delay = src.Sync.Delay
	}
	if src.Sync.Jitter > 0 {
		dst.Sync.Jitter = src.Sync.Jitter
	}
	if src.Sync.ShortDelay > 0 {
		dst.Sync.ShortDelay = src.Sync.ShortDelay
	}
	if src.Sync.Limit > 0 {
		dst.Sync.Limit = src.Sync.Limit
	}
	if src.Sync.ListOnly {
		dst.Sync.ListOnly = true
	}
	if src.Sync.RetryErrored {
		dst.Sync.RetryErrored = true
	}
	if src.Sync.GuardEndDate {
		dst.Sync.GuardEndDate = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if url := os.Getenv("GOODREADS_BASE_URL"); url != "" {
		cfg.Goodreads.BaseURL = strings.TrimSuffix(url, "/")
	}
	if file := os.Getenv("GOODREADS_COOKIE_FILE"); file != "" {
		cfg.Goodreads.CookieFile = file
	}
	if lang := os.Getenv("ANOBII_LANGUAGE"); lang != "" {
		cfg.Anobii.Language = lang
	}
	if db := os.Getenv("SYNC_CACHE_DB"); db != "" {
		cfg.Sync.CacheDB = db
	}
	if delay := os.Getenv("SYNC_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.Sync.Delay = d
		}
	}
	if jitter := os.Getenv("SYNC_JITTER"); jitter != "" {
		if d, err := time.ParseDuration(jitter); err == nil {
			cfg.Sync.Jitter = d
		}
	}
	if limit := os.Getenv("SYNC_LIMIT"); limit != "" {
		if i, err := strconv.Atoi(limit); err == nil {
			cfg.Sync.Limit = i
		}
	}
	if listOnly := os.Getenv("SYNC_LIST_ONLY"); listOnly != "" {
		if b, err := strconv.ParseBool(listOnly); err == nil {
			cfg.Sync.ListOnly = b
		}
	}
	if retry := os.Getenv("SYNC_RETRY_ERRORED"); retry != "" {
		if b, err := strconv.ParseBool(retry); err == nil {
			cfg.Sync.RetryErrored = b
		}
	}
	if guard := os.Getenv("SYNC_GUARD_END_DATE"); guard != "" {
		if b, err := strconv.ParseBool(guard); err == nil {
			cfg.Sync.GuardEndDate = b
		}
	}
}
