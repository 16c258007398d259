package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stories/internal/config"
	"github.com/abelbrown/stories/internal/fetch"
	"github.com/abelbrown/stories/internal/ledger"
	"github.com/abelbrown/stories/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := config.ConfigPath()
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := os.MkdirAll(config.Dir(), 0755); err != nil {
			c.configErr = fmt.Errorf("create data directory: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// source builds the raw feed accessor. A non-empty override names a file
// or an http(s) URL and wins over the configuration.
func (c *commandContext) source(override string) (fetch.Source, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	switch {
	case isHTTP(override):
		return fetch.NewHTTP(override, cfg.Timeout(), cfg.Source.RequestsPerSec), nil
	case override != "":
		return fetch.NewFile(override), nil
	case cfg.Source.URL != "":
		return fetch.NewHTTP(cfg.Source.URL, cfg.Timeout(), cfg.Source.RequestsPerSec), nil
	default:
		return fetch.NewFile(cfg.SourcePath()), nil
	}
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// openSlot opens the configured durable slot for the ledger. The returned
// store is non-nil only for the SQLite backend.
func (c *commandContext) openSlot(ctx context.Context) (ledger.Slot, *store.Store, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	switch cfg.Ledger.Backend {
	case config.BackendRedis:
		slot := store.NewRedisSlot(cfg.Ledger.RedisAddr, "stories:")
		if err := slot.Ping(ctx); err != nil {
			slot.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis %s: %w", cfg.Ledger.RedisAddr, err)
		}
		return slot, nil, slot, nil
	default:
		dbPath := cfg.DBPath()
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("create database directory: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		return st, st, st, nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
