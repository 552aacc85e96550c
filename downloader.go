//
// Copyright 2018 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAborted is the error of a transfer stopped with Transfer.Stop.
	ErrAborted = errors.New("download has been aborted")
	// ErrUnsupportedScheme is returned for URLs that are neither http nor https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrUnsupportedTLSVersion is returned for an unknown TLS protocol version name.
	ErrUnsupportedTLSVersion = errors.New("unsupported TLS version")
	// ErrNoDestination is returned when the request has no Destination.
	ErrNoDestination = errors.New("no destination")
)

// Destination creates the writer receiving the downloaded bytes.
type Destination interface {
	// Create opens the destination for writing, truncating previous content.
	Create(ctx context.Context) (io.WriteCloser, error)
	String() string
}

// Request describes a single download. It must not be modified after the
// Transfer has been created.
type Request struct {
	// URL of the resource, http or https.
	URL string
	// Destination of the response body.
	Destination Destination
	// Headers are applied to the request in order.
	Headers Headers
	// ConnectTimeout bounds the connection setup, zero means no timeout.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for the response headers and for each
	// read of the body, zero means no timeout.
	ReadTimeout time.Duration
	// ProgressDivider sets the progress granularity: if <= 0 a progress event
	// is emitted for every block, otherwise only when the percentage is a
	// multiple of ProgressDivider.
	ProgressDivider int
	// ThrottleRate is the target maximum throughput in bytes per second,
	// zero means unthrottled.
	ThrottleRate int64
}

// Result is the outcome of a transfer.
type Result struct {
	// StatusCode is the HTTP status of the last response, 0 if none was received.
	StatusCode int
	// BytesWritten is the number of bytes written to the destination.
	BytesWritten int64
	// Err is the reason of the failure, nil on success. A non-2xx status
	// alone is not an error.
	Err error
}

// Transfer is a cancellable download of one resource.
type Transfer struct {
	req      Request
	cfg      Config
	listener Listener
	abort    atomic.Bool
	once     sync.Once
	done     chan struct{}
	result   Result
}

// New returns a Transfer for the request using the default configuration.
// The listener may be nil.
func New(req Request, listener Listener) *Transfer {
	return NewWithConfig(req, GetDefaultConfig(), listener)
}

// NewWithConfig returns a Transfer for the request using the given configuration.
// The listener may be nil.
func NewWithConfig(req Request, config Config, listener Listener) *Transfer {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &Transfer{
		req:      req,
		cfg:      config.withDefaults(),
		listener: listener,
		done:     make(chan struct{}),
	}
}

// Request returns the request of the transfer.
func (t *Transfer) Request() Request {
	return t.req
}

// Start runs the transfer in a new goroutine and returns immediately.
func (t *Transfer) Start(ctx context.Context) {
	go t.Run(ctx)
}

// Run performs the transfer and waits until it completes.
// The listener OnTaskCompleted is called exactly once, before the Done
// channel is closed. Calling Run again returns the same result.
func (t *Transfer) Run(ctx context.Context) Result {
	t.once.Do(func() {
		defer close(t.done)

		var res Result
		res.StatusCode, res.BytesWritten, res.Err = t.download(ctx)
		t.result = res
		t.listener.OnTaskCompleted(res)
	})
	<-t.done
	return t.result
}

// Stop requests the cooperative cancellation of the transfer. It is safe to
// call from any goroutine, any number of times. The transfer ends with
// ErrAborted at the next block boundary.
func (t *Transfer) Stop() {
	t.abort.Store(true)
}

// Stopped reports whether Stop has been called.
func (t *Transfer) Stopped() bool {
	return t.abort.Load()
}

// Done is closed when the transfer completes.
func (t *Transfer) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the transfer completes and returns its result.
func (t *Transfer) Wait() Result {
	<-t.done
	return t.result
}

func (t *Transfer) download(ctx context.Context) (status int, written int64, err error) {
	log := t.cfg.Logger.WithField("url", t.req.URL)

	if t.req.Destination == nil {
		return 0, 0, ErrNoDestination
	}
	src, err := url.Parse(t.req.URL)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing URL: %w", err)
	}

	conn, err := newConnection(src, connOptions{
		baseTLS:        t.cfg.TLSConfig,
		tlsVersion:     t.cfg.TLSVersion,
		headers:        t.req.Headers,
		connectTimeout: t.req.ConnectTimeout,
		readTimeout:    t.req.ReadTimeout,
		log:            log,
	})
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if conn != nil {
			conn.disconnect()
		}
	}()

	resp, err := conn.connect(ctx)
	if err != nil {
		return 0, 0, err
	}
	status = resp.StatusCode

	if isRedirect(status) {
		location, lerr := resp.Location()
		conn.disconnect()
		conn = nil
		if lerr != nil {
			return status, 0, fmt.Errorf("following redirect: %w", lerr)
		}

		// Only this hop is followed: a redirect returned by the new location
		// ends up in the result as is.
		log.WithFields(logrus.Fields{"status": status, "location": location.Redacted()}).Info("Following redirect")
		conn, err = newConnection(location, connOptions{
			baseTLS:        t.cfg.TLSConfig,
			tlsVersion:     t.cfg.TLSVersion,
			connectTimeout: t.cfg.RedirectConnectTimeout,
			readTimeout:    t.req.ReadTimeout,
			log:            log,
		})
		if err != nil {
			return status, 0, err
		}
		if resp, err = conn.connect(ctx); err != nil {
			return status, 0, err
		}
		status = resp.StatusCode
	}

	if status < 200 || status >= 300 {
		return status, 0, nil
	}

	length := KnownLength(resp.ContentLength)
	t.listener.OnDownloadBegin(status, length, flattenHeaders(resp.Header))

	in := conn.body()
	defer in.Close()

	out, err := t.req.Destination.Create(ctx)
	if err != nil {
		return status, 0, fmt.Errorf("opening %s for writing: %w", t.req.Destination, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", t.req.Destination, cerr)
		}
	}()

	c := &copier{
		blockSize: t.cfg.BlockSize,
		length:    length,
		divider:   t.req.ProgressDivider,
		throttle:  throttleDelay(t.cfg.BlockSize, t.req.ThrottleRate),
		abort:     &t.abort,
		progress:  t.listener.OnDownloadProgress,
		log:       log,
	}
	if c.throttle > 0 {
		log.WithField("delay", c.throttle).Debug("Throttling enabled")
	}

	written, err = c.copy(ctx, in, out)
	if err != nil && !errors.Is(err, ErrAborted) {
		err = fmt.Errorf("downloading %s: %w", src.Redacted(), err)
	}
	return status, written, err
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// flattenHeaders keeps the first value of each response header.
func flattenHeaders(h http.Header) map[string]string {
	res := make(map[string]string, len(h))
	for k, v := range h {
		if k == "" || len(v) == 0 {
			continue
		}
		res[k] = v[0]
	}
	return res
}
