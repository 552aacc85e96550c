//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Header is a single request header entry.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of request headers. Entries are applied in
// order, so a later entry with the same name replaces an earlier one.
type Headers []Header

// HeadersFromMap converts a map into Headers sorted by name, to give the
// entries a stable order.
func HeadersFromMap(m map[string]string) Headers {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	res := make(Headers, 0, len(m))
	for _, name := range names {
		res = append(res, Header{Name: name, Value: m[name]})
	}
	return res
}

func (h Headers) apply(req *http.Request) {
	for _, e := range h {
		if strings.EqualFold(e.Name, "Host") {
			req.Host = e.Value
			continue
		}
		req.Header.Set(e.Name, e.Value)
	}
}

var tlsVersions = map[string]uint16{
	"TLSv1":   tls.VersionTLS10,
	"TLSv1.0": tls.VersionTLS10,
	"TLSv1.1": tls.VersionTLS11,
	"TLSv1.2": tls.VersionTLS12,
	"TLSv1.3": tls.VersionTLS13,
	"TLS 1.0": tls.VersionTLS10,
	"TLS 1.1": tls.VersionTLS11,
	"TLS 1.2": tls.VersionTLS12,
	"TLS 1.3": tls.VersionTLS13,
}

// ParseTLSVersion converts a protocol version name ("TLSv1.2" or "TLS 1.2")
// into its crypto/tls constant.
func ParseTLSVersion(name string) (uint16, error) {
	if v, ok := tlsVersions[strings.TrimSpace(name)]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedTLSVersion, name)
}

// pinTLS returns a copy of base that only accepts the given protocol version.
func pinTLS(base *tls.Config, version uint16) *tls.Config {
	var conf *tls.Config
	if base != nil {
		conf = base.Clone()
	} else {
		conf = &tls.Config{}
	}
	conf.MinVersion = version
	conf.MaxVersion = version
	return conf
}

// connOptions are the parameters of a single connection.
type connOptions struct {
	baseTLS        *tls.Config
	tlsVersion     string
	headers        Headers
	connectTimeout time.Duration
	readTimeout    time.Duration
	log            logrus.FieldLogger
}

// connection is the context of one HTTP exchange. A new connection is built
// for the original URL and for the redirect target, nothing is shared.
type connection struct {
	url        *url.URL
	tlsVersion uint16
	opts       connOptions
	transport  *http.Transport
	client     *http.Client
	wd         *watchdog
	resp       *http.Response
}

func newConnection(u *url.URL, opts connOptions) (*connection, error) {
	c := &connection{url: u, opts: opts}
	dialer := &net.Dialer{Timeout: opts.connectTimeout}
	c.transport = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.connectTimeout,
		ResponseHeaderTimeout: opts.readTimeout,
		DisableCompression:    true,
		DisableKeepAlives:     true,
	}
	switch u.Scheme {
	case "https":
		version, err := ParseTLSVersion(opts.tlsVersion)
		if err != nil {
			return nil, err
		}
		c.tlsVersion = version
		c.transport.TLSClientConfig = pinTLS(opts.baseTLS, version)
	case "http":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	c.client = &http.Client{
		Transport: c.transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return c, nil
}

// connect performs the request and waits for the response headers.
func (c *connection) connect(ctx context.Context) (*http.Response, error) {
	c.opts.log.WithField("protocol", c.url.Scheme).Debugf("Connecting to %s", c.url.Redacted())

	ctx, c.wd = newWatchdog(ctx, c.opts.readTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("setting up HTTP request: %w", err)
	}
	c.opts.headers.apply(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.url.Redacted(), c.wd.Err(err))
	}
	c.resp = resp

	if resp.TLS != nil {
		c.opts.log.WithFields(logrus.Fields{
			"version": tls.VersionName(resp.TLS.Version),
			"cipher":  tls.CipherSuiteName(resp.TLS.CipherSuite),
		}).Debug("HTTPS connection established")
	}
	return resp, nil
}

// body returns the response body, guarded by the read timeout.
func (c *connection) body() io.ReadCloser {
	return struct {
		io.Reader
		io.Closer
	}{c.wd.Reader(c.resp.Body), c.resp.Body}
}

// disconnect releases the network resources of the connection.
func (c *connection) disconnect() {
	if c.resp != nil {
		_ = c.resp.Body.Close()
	}
	if c.wd != nil {
		c.wd.Cancel()
	}
	c.transport.CloseIdleConnections()
}
