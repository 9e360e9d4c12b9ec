package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen         = "127.0.0.1:8080"
	defaultDataFile       = "./var/events.json"
	defaultCacheDir       = "./var/ics-cache"
	defaultNotifySchedule = "@every 1s"
	defaultLogLevel       = "info"
	defaultView           = "month"
)

// SubscriptionConfig describes an external iCalendar feed imported by
// `calplan sync`.
type SubscriptionConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DataFile is the JSON event store.
	DataFile string `yaml:"data_file" json:"data_file"`

	// CacheDir holds ETag/Last-Modified caches for subscriptions.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// NotifySchedule is the cron spec of the notification poll loop
	// (e.g. "@every 1s" or "*/5 * * * * *").
	NotifySchedule string `yaml:"notify_schedule" json:"notify_schedule"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DefaultView is "week" or "month".
	DefaultView string `yaml:"default_view" json:"default_view"`

	Categories []string `yaml:"categories" json:"categories"`

	Subscriptions []SubscriptionConfig `yaml:"subscriptions" json:"subscriptions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         defaultListen,
		DataFile:       defaultDataFile,
		CacheDir:       defaultCacheDir,
		NotifySchedule: defaultNotifySchedule,
		LogLevel:       defaultLogLevel,
		DefaultView:    defaultView,
		Categories:     []string{"업무", "개인", "가족", "기타"},
		Subscriptions:  []SubscriptionConfig{},
	}
}

// Normalize fills in missing/zero values so partially written configs
// still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.DataFile == "" {
		c.DataFile = defaultDataFile
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.NotifySchedule == "" {
		c.NotifySchedule = defaultNotifySchedule
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	switch c.DefaultView {
	case "week", "month":
	default:
		c.DefaultView = defaultView
	}
	if len(c.Categories) == 0 {
		c.Categories = []string{"업무", "개인", "가족", "기타"}
	}
	if c.Subscriptions == nil {
		c.Subscriptions = []SubscriptionConfig{}
	}
	for i := range c.Subscriptions {
		if c.Subscriptions[i].ID == "" {
			if c.Subscriptions[i].Name != "" {
				c.Subscriptions[i].ID = c.Subscriptions[i].Name
			} else {
				c.Subscriptions[i].ID = c.Subscriptions[i].URL
			}
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
