//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"context"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// copier pumps the response body into the destination one block at a time.
type copier struct {
	blockSize int
	length    Length
	divider   int
	throttle  time.Duration
	abort     *atomic.Bool
	progress  func(Length, int64)
	log       logrus.FieldLogger

	lastProgress float64
}

// throttleDelay is the pause after each block needed to stay below rate
// bytes per second.
func throttleDelay(blockSize int, rate int64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(int64(blockSize) * int64(time.Second) / rate)
}

// copy transfers in to out and returns the number of bytes written to out.
func (c *copier) copy(ctx context.Context, in io.Reader, out io.Writer) (int64, error) {
	buff := make([]byte, c.blockSize)
	var total int64
	for {
		n, err := readBlock(in, buff)
		if n > 0 {
			if c.abort.Load() {
				return total, ErrAborted
			}
			if _, werr := out.Write(buff[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			c.report(total)

			if c.throttle > 0 {
				if serr := sleep(ctx, c.throttle); serr != nil {
					return total, serr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}
	}

	if f, ok := out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

// report applies the progress emission policy for the cumulative total.
func (c *copier) report(total int64) {
	size, known := c.length.Get()
	if c.divider <= 0 || !known || size == 0 {
		c.progress(c.length, total)
		return
	}

	progress := math.Round(float64(total) * 100 / float64(size))
	if math.Mod(progress, float64(c.divider)) != 0 {
		return
	}
	if progress == c.lastProgress && total != size {
		return
	}
	c.log.WithFields(logrus.Fields{"progress": progress, "total": total}).Debug("Emitting progress")
	c.lastProgress = progress
	c.progress(c.length, total)
}

// readBlock fills buf unless the stream ends or fails first. The error of
// the underlying reader is returned as is: a truncated body must not look
// like a normal end of stream.
func readBlock(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
