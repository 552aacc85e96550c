//
// Copyright 2018 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"crypto/tls"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go.bug.st/fetcher/internal/logger"
)

const (
	// DefaultBlockSize is the size of the chunks read from the response body.
	DefaultBlockSize = 8 * 1024

	// DefaultTLSVersion is the protocol version pinned on every secure connection.
	DefaultTLSVersion = "TLSv1.2"

	// DefaultRedirectConnectTimeout is the connect timeout used for the redirect hop.
	DefaultRedirectConnectTimeout = 5 * time.Second
)

// Config contains the configuration shared by transfers
type Config struct {
	// TLSVersion is the protocol version forced for the handshake of secure
	// connections (for example "TLSv1.2"). Empty means DefaultTLSVersion.
	TLSVersion string
	// TLSConfig is an optional base TLS configuration (root CAs, client
	// certificates...). It is cloned for every connection and never modified.
	TLSConfig *tls.Config
	// RedirectConnectTimeout is the connect timeout of the redirect hop,
	// independent of the request ConnectTimeout. Zero means
	// DefaultRedirectConnectTimeout.
	RedirectConnectTimeout time.Duration
	// BlockSize is the chunk size of the streaming copy. Zero means
	// DefaultBlockSize.
	BlockSize int
	// Logger receives the diagnostic output. Nil means the global logger.
	Logger logrus.FieldLogger
}

func (c Config) withDefaults() Config {
	if c.TLSVersion == "" {
		c.TLSVersion = DefaultTLSVersion
	}
	if c.RedirectConnectTimeout <= 0 {
		c.RedirectConnectTimeout = DefaultRedirectConnectTimeout
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Logger == nil {
		c.Logger = logger.GetLogger()
	}
	return c
}

var defaultConfig Config = Config{}
var defaultConfigLock sync.Mutex

// SetDefaultConfig sets the configuration that will be used by the New
// function.
func SetDefaultConfig(newConfig Config) {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()
	defaultConfig = newConfig
}

// GetDefaultConfig returns a copy of the default configuration. The default
// configuration can be changed using the SetDefaultConfig function.
func GetDefaultConfig() Config {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()

	// deep copy struct
	return defaultConfig
}
