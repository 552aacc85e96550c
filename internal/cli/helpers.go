//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package cli implements the subcommands of the fetcher command line tool.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.bug.st/fetcher/history"
	"go.bug.st/fetcher/internal/config"
	"go.bug.st/fetcher/internal/logger"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig loads the configuration file (if any), applies the environment
// and the global flags, and initializes the logger.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	path := ""
	explicit := false
	if ConfigPath != nil && *ConfigPath != "" {
		path, explicit = *ConfigPath, true
	} else {
		path = config.DefaultConfigPath()
	}

	if path != "" {
		loaded, err := config.LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if Verbose != nil && *Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	logger.InitLogger(cfg.LogLevel, NoColor != nil && *NoColor)
	return cfg, nil
}

// openHistory opens the history database, creating its directory if needed.
func openHistory(cfg config.Config) (*history.BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	store, err := history.NewBoltStore(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
