//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"errors"
	"io"
	"os"
	"time"
)

// watchdog cancels its context when it is not kicked for longer than the
// timeout. It implements the read timeout of a connection. The timer runs
// only between a Kick and the following Pause, so the time spent outside
// body reads is not counted.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			// Cancel the context with a clear, standard error.
			cancel(os.ErrDeadlineExceeded)
		})
		timer.Stop()
	}
	return ctx, &watchdog{
		ctx:     ctx,
		cancel:  cancel,
		timer:   timer,
		timeout: timeout,
	}
}

func (wd *watchdog) Kick() {
	if wd.timeout > 0 {
		wd.timer.Reset(wd.timeout)
	}
}

// Pause stops the timer until the next Kick.
func (wd *watchdog) Pause() {
	if wd.timeout > 0 {
		wd.timer.Stop()
	}
}

func (wd *watchdog) Cancel() {
	if wd.timeout > 0 {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}

// Err translates the failure of an operation interrupted by the watchdog into
// the timeout error that triggered it.
func (wd *watchdog) Err(err error) error {
	if err == nil || errors.Is(err, io.EOF) || wd.ctx.Err() == nil {
		return err
	}
	if cause := context.Cause(wd.ctx); errors.Is(cause, os.ErrDeadlineExceeded) {
		return cause
	}
	return err
}

// Reader returns a reader that runs the watchdog for the duration of every
// read.
func (wd *watchdog) Reader(r io.Reader) io.Reader {
	return &kickingReader{r: r, wd: wd}
}

type kickingReader struct {
	r  io.Reader
	wd *watchdog
}

func (k *kickingReader) Read(p []byte) (int, error) {
	k.wd.Kick()
	n, err := k.r.Read(p)
	k.wd.Pause()
	return n, k.wd.Err(err)
}
