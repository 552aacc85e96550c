//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.bug.st/fetcher"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
		{-1, "0 B"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, formatBytes(tt.n))
	}
}

func TestFormatSpeed(t *testing.T) {
	require.Equal(t, "500 B/s", formatSpeed(500))
	require.Equal(t, "2.0 KiB/s", formatSpeed(2048))
	require.Equal(t, "1.5 MiB/s", formatSpeed(1572864))
	require.Equal(t, "1.0 GiB/s", formatSpeed(1073741824))
}

func newTestBar(out *bytes.Buffer) (*Bar, *time.Time) {
	b := NewBar(out, "file.bin")
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	return b, &clock
}

func TestBarKnownLength(t *testing.T) {
	var out bytes.Buffer
	b, clock := newTestBar(&out)
	length := fetcher.KnownLength(2048)

	b.OnDownloadBegin(200, length, nil)
	*clock = clock.Add(time.Second)
	b.OnDownloadProgress(length, 1024)
	require.Contains(t, out.String(), "50%")
	require.Contains(t, out.String(), "1.0 KiB / 2.0 KiB")
	require.Contains(t, out.String(), "1.0 KiB/s")

	b.OnDownloadProgress(length, 2048)
	b.OnTaskCompleted(fetcher.Result{StatusCode: 200, BytesWritten: 2048})
	require.Contains(t, out.String(), "100%")
	require.Contains(t, out.String(), "Downloaded 2.0 KiB")
}

func TestBarRefreshInterval(t *testing.T) {
	var out bytes.Buffer
	b, clock := newTestBar(&out)
	length := fetcher.KnownLength(10000)

	b.OnDownloadBegin(200, length, nil)
	for i := int64(1); i < 10; i++ {
		*clock = clock.Add(20 * time.Millisecond)
		b.OnDownloadProgress(length, i*1000)
	}
	// begin, then one redraw at +100ms
	require.Equal(t, 2, strings.Count(out.String(), "\r"))

	b.OnDownloadProgress(length, 10000)
	require.Equal(t, 3, strings.Count(out.String(), "\r"))
}

func TestBarUnknownLength(t *testing.T) {
	var out bytes.Buffer
	b, clock := newTestBar(&out)

	b.OnDownloadBegin(200, fetcher.UnknownLength, nil)
	*clock = clock.Add(2 * time.Second)
	b.OnDownloadProgress(fetcher.UnknownLength, 4096)
	require.Contains(t, out.String(), "4.0 KiB | 2.0 KiB/s")
	require.NotContains(t, out.String(), "%")
}

func TestBarFailures(t *testing.T) {
	tests := []struct {
		name   string
		result fetcher.Result
		want   string
	}{
		{"aborted", fetcher.Result{StatusCode: 200, BytesWritten: 2048, Err: fetcher.ErrAborted}, "Aborted after 2.0 KiB"},
		{"error", fetcher.Result{Err: errors.New("connection refused")}, "Error: connection refused"},
		{"status", fetcher.Result{StatusCode: 404}, "Server returned status 404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			b, _ := newTestBar(&out)
			b.OnTaskCompleted(tt.result)
			require.Contains(t, out.String(), tt.want)
		})
	}
}
