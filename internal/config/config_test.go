//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 1, cfg.ProgressDivider)
	assert.Zero(t, cfg.ThrottleRate)
	assert.Equal(t, "TLSv1.2", cfg.TLSVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.HistoryDB)
	require.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
connect_timeout: 5s
read_timeout: 1m
progress_divider: 0
throttle_rate: 512KiB
tls_version: TLSv1.3
history_db: /var/lib/fetcher/history.db
log_level: debug
headers:
  User-Agent: fetcher/1.0
  Accept: "*/*"
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, 0, cfg.ProgressDivider)
	assert.Equal(t, int64(512*1024), cfg.ThrottleRate)
	assert.Equal(t, "TLSv1.3", cfg.TLSVersion)
	assert.Equal(t, "/var/lib/fetcher/history.db", cfg.HistoryDB)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, map[string]string{"User-Agent": "fetcher/1.0", "Accept": "*/*"}, cfg.Headers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 1, cfg.ProgressDivider)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
}

func TestLoadFromYAMLErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")

	_, err = LoadFromFile(writeConfig(t, "connect_timeout: [1, 2]\n"))
	require.ErrorContains(t, err, "parse config file")

	_, err = LoadFromFile(writeConfig(t, "read_timeout: forever\n"))
	require.ErrorContains(t, err, "parse read_timeout")

	_, err = LoadFromFile(writeConfig(t, "throttle_rate: fast\n"))
	require.ErrorContains(t, err, "parse throttle_rate")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FETCHER_CONNECT_TIMEOUT", "2s")
	t.Setenv("FETCHER_READ_TIMEOUT", "3s")
	t.Setenv("FETCHER_PROGRESS_DIVIDER", "10")
	t.Setenv("FETCHER_THROTTLE_RATE", "1MB")
	t.Setenv("FETCHER_TLS_VERSION", "TLS 1.3")
	t.Setenv("FETCHER_HISTORY_DB", "/tmp/h.db")
	t.Setenv("FETCHER_LOG_LEVEL", "error")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.ProgressDivider)
	assert.Equal(t, int64(1000*1000), cfg.ThrottleRate)
	assert.Equal(t, "TLS 1.3", cfg.TLSVersion)
	assert.Equal(t, "/tmp/h.db", cfg.HistoryDB)
	assert.Equal(t, "error", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvErrors(t *testing.T) {
	t.Setenv("FETCHER_PROGRESS_DIVIDER", "ten")
	cfg := Default()
	require.ErrorContains(t, cfg.LoadFromEnv(), "FETCHER_PROGRESS_DIVIDER")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"negative connect timeout", func(c *Config) { c.ConnectTimeout = -time.Second }, "connect_timeout"},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -time.Second }, "read_timeout"},
		{"divider too large", func(c *Config) { c.ProgressDivider = 101 }, "progress_divider"},
		{"negative rate", func(c *Config) { c.ThrottleRate = -1 }, "throttle_rate"},
		{"bad tls", func(c *Config) { c.TLSVersion = "SSLv3" }, "unsupported TLS version"},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, "not a valid logrus Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Headers = map[string]string{"A": "1", "B": "2"}

	merged := base.Merge(Config{
		ReadTimeout:  time.Second,
		ThrottleRate: 100,
		Headers:      map[string]string{"B": "3", "C": "4"},
	})
	assert.Equal(t, time.Second, merged.ReadTimeout)
	assert.Equal(t, 30*time.Second, merged.ConnectTimeout)
	assert.Equal(t, int64(100), merged.ThrottleRate)
	assert.Equal(t, map[string]string{"A": "1", "B": "3", "C": "4"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, base.Headers)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"1000", 1000},
		{"64KiB", 64 * 1024},
		{"2MB/s", 2 * 1000 * 1000},
		{" 1 KiB ", 1024},
	}
	for _, tt := range tests {
		got, err := ParseRate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseRate("quick")
	require.Error(t, err)
}

func TestParseHeader(t *testing.T) {
	name, value, err := ParseHeader("User-Agent:  fetcher/1.0 ")
	require.NoError(t, err)
	assert.Equal(t, "User-Agent", name)
	assert.Equal(t, "fetcher/1.0", value)

	name, value, err = ParseHeader("X-Empty:")
	require.NoError(t, err)
	assert.Equal(t, "X-Empty", name)
	assert.Empty(t, value)

	_, _, err = ParseHeader("no colon")
	require.Error(t, err)
	_, _, err = ParseHeader(": value")
	require.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "h.db"), expandHome("~/h.db"))
	assert.Equal(t, "/abs/h.db", expandHome("/abs/h.db"))
}
