//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package config defines the configuration of the fetcher command line tool.
//
// Configuration can be provided via command-line flags, environment
// variables (FETCHER_ prefix) or a YAML file:
//
//	connect_timeout: 10s
//	read_timeout: 30s
//	progress_divider: 5
//	throttle_rate: 512KiB
//	tls_version: TLSv1.2
//	history_db: ~/.cache/fetcher/history.db
//	log_level: info
//	headers:
//	  User-Agent: fetcher
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"go.bug.st/fetcher"
)

// EnvPrefix is the prefix of the environment variables read by LoadFromEnv.
const EnvPrefix = "FETCHER_"

// Config defines the configuration of the CLI.
type Config struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	ProgressDivider int
	// ThrottleRate in bytes per second, 0 means unthrottled.
	ThrottleRate int64
	TLSVersion   string
	Headers      map[string]string
	HistoryDB    string
	LogLevel     string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ConnectTimeout:  30 * time.Second,
		ReadTimeout:     30 * time.Second,
		ProgressDivider: 1,
		TLSVersion:      fetcher.DefaultTLSVersion,
		HistoryDB:       DefaultHistoryDB(),
		LogLevel:        "info",
	}
}

// DefaultHistoryDB returns the path of the history database in the user
// cache directory.
func DefaultHistoryDB() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "fetcher-history.db"
	}
	return filepath.Join(dir, "fetcher", "history.db")
}

// DefaultConfigPath returns the path of the configuration file loaded when
// none is given on the command line.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fetcher", "config.yaml")
}

// yamlConfig is used for YAML unmarshaling with string durations and sizes.
type yamlConfig struct {
	ConnectTimeout  string            `yaml:"connect_timeout"`
	ReadTimeout     string            `yaml:"read_timeout"`
	ProgressDivider *int              `yaml:"progress_divider"`
	ThrottleRate    string            `yaml:"throttle_rate"`
	TLSVersion      string            `yaml:"tls_version"`
	Headers         map[string]string `yaml:"headers"`
	HistoryDB       string            `yaml:"history_db"`
	LogLevel        string            `yaml:"log_level"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.ConnectTimeout != "" {
		if cfg.ConnectTimeout, err = time.ParseDuration(yc.ConnectTimeout); err != nil {
			return Config{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
	}
	if yc.ReadTimeout != "" {
		if cfg.ReadTimeout, err = time.ParseDuration(yc.ReadTimeout); err != nil {
			return Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
	}
	if yc.ProgressDivider != nil {
		cfg.ProgressDivider = *yc.ProgressDivider
	}
	if yc.ThrottleRate != "" {
		if cfg.ThrottleRate, err = ParseRate(yc.ThrottleRate); err != nil {
			return Config{}, fmt.Errorf("parse throttle_rate: %w", err)
		}
	}
	if yc.TLSVersion != "" {
		cfg.TLSVersion = yc.TLSVersion
	}
	if len(yc.Headers) > 0 {
		cfg.Headers = yc.Headers
	}
	if yc.HistoryDB != "" {
		cfg.HistoryDB = expandHome(yc.HistoryDB)
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FETCHER_ prefix.
func (c *Config) LoadFromEnv() error {
	var err error
	if v := os.Getenv(EnvPrefix + "CONNECT_TIMEOUT"); v != "" {
		if c.ConnectTimeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("parse %sCONNECT_TIMEOUT: %w", EnvPrefix, err)
		}
	}
	if v := os.Getenv(EnvPrefix + "READ_TIMEOUT"); v != "" {
		if c.ReadTimeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("parse %sREAD_TIMEOUT: %w", EnvPrefix, err)
		}
	}
	if v := os.Getenv(EnvPrefix + "PROGRESS_DIVIDER"); v != "" {
		if c.ProgressDivider, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("parse %sPROGRESS_DIVIDER: %w", EnvPrefix, err)
		}
	}
	if v := os.Getenv(EnvPrefix + "THROTTLE_RATE"); v != "" {
		if c.ThrottleRate, err = ParseRate(v); err != nil {
			return fmt.Errorf("parse %sTHROTTLE_RATE: %w", EnvPrefix, err)
		}
	}
	if v := os.Getenv(EnvPrefix + "TLS_VERSION"); v != "" {
		c.TLSVersion = v
	}
	if v := os.Getenv(EnvPrefix + "HISTORY_DB"); v != "" {
		c.HistoryDB = expandHome(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ConnectTimeout < 0 {
		return errors.New("config: connect_timeout must not be negative")
	}
	if c.ReadTimeout < 0 {
		return errors.New("config: read_timeout must not be negative")
	}
	if c.ProgressDivider > 100 {
		return errors.New("config: progress_divider must be at most 100")
	}
	if c.ThrottleRate < 0 {
		return errors.New("config: throttle_rate must not be negative")
	}
	if _, err := fetcher.ParseTLSVersion(c.TLSVersion); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logrus.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored, headers are merged by name.
func (c Config) Merge(override Config) Config {
	if override.ConnectTimeout != 0 {
		c.ConnectTimeout = override.ConnectTimeout
	}
	if override.ReadTimeout != 0 {
		c.ReadTimeout = override.ReadTimeout
	}
	if override.ProgressDivider != 0 {
		c.ProgressDivider = override.ProgressDivider
	}
	if override.ThrottleRate != 0 {
		c.ThrottleRate = override.ThrottleRate
	}
	if override.TLSVersion != "" {
		c.TLSVersion = override.TLSVersion
	}
	if len(override.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(override.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range override.Headers {
			merged[k] = v
		}
		c.Headers = merged
	}
	if override.HistoryDB != "" {
		c.HistoryDB = override.HistoryDB
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	return c
}

// ParseRate parses a throughput such as "512KiB", "2MB" or "1000".
// An empty string or "0" means unthrottled.
func ParseRate(s string) (int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/s")
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("rate too large: %s", s)
	}
	return int64(n), nil
}

// ParseHeader parses a "Name: value" header line.
func ParseHeader(line string) (string, string, error) {
	name, value, ok := strings.Cut(line, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected \"Name: value\"", line)
	}
	return name, strings.TrimSpace(value), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
