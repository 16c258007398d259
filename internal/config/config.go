package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Ledger backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the persistent application configuration
type Config struct {
	// Where the raw feed comes from
	Source SourceConfig `json:"source"`

	// Interaction ledger storage
	Ledger LedgerConfig `json:"ledger"`

	// Carousel paging
	Feed FeedConfig `json:"feed"`

	// Full-screen player
	Player PlayerConfig `json:"player"`
}

// SourceConfig selects the raw feed. URL wins over Path when both are set.
type SourceConfig struct {
	Path           string  `json:"path,omitempty"`
	URL            string  `json:"url,omitempty"`
	TimeoutMs      int     `json:"timeout_ms"`
	RequestsPerSec float64 `json:"requests_per_sec"` // 0 = unlimited
}

// LedgerConfig selects where viewed/liked state is persisted
type LedgerConfig struct {
	Backend   string `json:"backend"`           // "sqlite" or "redis"
	DBPath    string `json:"db_path,omitempty"` // defaults to <dir>/stories.db
	RedisAddr string `json:"redis_addr,omitempty"`
	Key       string `json:"key"`
}

// FeedConfig holds paging settings
type FeedConfig struct {
	PrefetchDistance int `json:"prefetch_distance"`
}

// PlayerConfig holds player preferences
type PlayerConfig struct {
	AutoAdvance     bool `json:"auto_advance"`
	StoryDurationMs int  `json:"story_duration_ms"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Path:           "stories.json",
			TimeoutMs:      10000,
			RequestsPerSec: 2,
		},
		Ledger: LedgerConfig{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
			Key:       "StoryState",
		},
		Feed: FeedConfig{
			PrefetchDistance: 3,
		},
		Player: PlayerConfig{
			AutoAdvance:     true,
			StoryDurationMs: 5000,
		},
	}
}

// Dir returns the data directory: $STORIES_HOME, or ~/.stories.
func Dir() string {
	if dir := os.Getenv("STORIES_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".stories")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// EventLogPath returns the path to the JSONL diagnostic event log.
func EventLogPath() string {
	return filepath.Join(Dir(), "stories.events.jsonl")
}

// LogDir returns the directory for dated session logs.
func LogDir() string {
	return filepath.Join(Dir(), "logs")
}

// LockPath returns the single-viewer lock file.
func LockPath() string {
	return filepath.Join(Dir(), "stories.lock")
}

// Load reads config from disk, or returns defaults. Environment overrides
// are applied either way.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	// Unset fields keep their defaults.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo is Save with an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STORIES_SOURCE"); v != "" {
		c.Source.Path = v
		c.Source.URL = ""
	}
	if v := os.Getenv("STORIES_SOURCE_URL"); v != "" {
		c.Source.URL = v
	}
	if v := os.Getenv("STORIES_REDIS_ADDR"); v != "" {
		c.Ledger.RedisAddr = v
		c.Ledger.Backend = BackendRedis
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.Ledger.RedisAddr == "" {
			return errors.New("ledger.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown ledger.backend %q", c.Ledger.Backend)
	}
	if c.Source.Path == "" && c.Source.URL == "" {
		return errors.New("one of source.path or source.url is required")
	}
	if c.Source.TimeoutMs < 0 {
		return errors.New("source.timeout_ms must not be negative")
	}
	if c.Source.RequestsPerSec < 0 {
		return errors.New("source.requests_per_sec must not be negative")
	}
	if c.Player.StoryDurationMs < 0 {
		return errors.New("player.story_duration_ms must not be negative")
	}
	return nil
}

// SourcePath resolves a relative source path against the data directory.
func (c *Config) SourcePath() string {
	if c.Source.Path == "" || filepath.IsAbs(c.Source.Path) {
		return c.Source.Path
	}
	return filepath.Join(Dir(), c.Source.Path)
}

// DBPath returns the SQLite ledger path.
func (c *Config) DBPath() string {
	if c.Ledger.DBPath != "" {
		return c.Ledger.DBPath
	}
	return filepath.Join(Dir(), "stories.db")
}

// Timeout returns the source request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutMs) * time.Millisecond
}

// StoryDuration returns how long a story shows before auto-advancing.
// Zero disables auto-advance.
func (c *Config) StoryDuration() time.Duration {
	if !c.Player.AutoAdvance {
		return 0
	}
	return time.Duration(c.Player.StoryDurationMs) * time.Millisecond
}
