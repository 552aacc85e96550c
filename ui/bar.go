//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package ui renders the progress of a transfer on a terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"go.bug.st/fetcher"
)

// DefaultRefresh is the minimum interval between two redraws of the bar.
const DefaultRefresh = 100 * time.Millisecond

// Bar is a fetcher.Listener drawing a single-line progress bar on out.
type Bar struct {
	out      io.Writer
	label    string
	progress progress.Model
	refresh  time.Duration
	now      func() time.Time

	labelStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style

	mu         sync.Mutex
	length     fetcher.Length
	written    int64
	started    time.Time
	lastRender time.Time
	drawn      bool
}

// NewBar returns a Bar writing to out, labelled with label.
func NewBar(out io.Writer, label string) *Bar {
	return &Bar{
		out:          out,
		label:        label,
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		refresh:      DefaultRefresh,
		now:          time.Now,
		labelStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		infoStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
}

// OnDownloadBegin implements fetcher.Listener.
func (b *Bar) OnDownloadBegin(statusCode int, contentLength fetcher.Length, headers map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.length = contentLength
	b.started = b.now()
	b.draw(true)
}

// OnDownloadProgress implements fetcher.Listener.
func (b *Bar) OnDownloadProgress(contentLength fetcher.Length, bytesWritten int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.written = bytesWritten
	size, known := contentLength.Get()
	b.draw(known && bytesWritten >= size)
}

// OnTaskCompleted implements fetcher.Listener.
func (b *Bar) OnTaskCompleted(result fetcher.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drawn {
		b.written = result.BytesWritten
		b.draw(true)
		fmt.Fprintln(b.out)
	}

	switch {
	case errors.Is(result.Err, fetcher.ErrAborted):
		fmt.Fprintln(b.out, b.errorStyle.Render("Aborted after "+formatBytes(result.BytesWritten)))
	case result.Err != nil:
		fmt.Fprintln(b.out, b.errorStyle.Render("Error: "+result.Err.Error()))
	case result.StatusCode < 200 || result.StatusCode >= 300:
		fmt.Fprintln(b.out, b.errorStyle.Render(fmt.Sprintf("Server returned status %d", result.StatusCode)))
	default:
		fmt.Fprintln(b.out, b.successStyle.Render("Downloaded "+formatBytes(result.BytesWritten)))
	}
}

// draw must be called with the lock held.
func (b *Bar) draw(force bool) {
	now := b.now()
	if !force && b.drawn && now.Sub(b.lastRender) < b.refresh {
		return
	}
	b.lastRender = now
	b.drawn = true
	fmt.Fprint(b.out, "\r"+b.View())
}

// View renders the current state of the bar.
func (b *Bar) View() string {
	var sb strings.Builder
	sb.WriteString(b.labelStyle.Render(b.label))
	sb.WriteString(" ")

	speed := 0.0
	if elapsed := b.now().Sub(b.started).Seconds(); elapsed > 0 {
		speed = float64(b.written) / elapsed
	}

	if size, known := b.length.Get(); known && size > 0 {
		percent := float64(b.written) / float64(size)
		sb.WriteString(b.progress.ViewAs(min(percent, 1)))
		sb.WriteString(b.infoStyle.Render(fmt.Sprintf(" %s / %s | %s",
			formatBytes(b.written), formatBytes(size), formatSpeed(speed))))
	} else {
		sb.WriteString(b.infoStyle.Render(fmt.Sprintf("%s | %s",
			formatBytes(b.written), formatSpeed(speed))))
	}
	return sb.String()
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatSpeed(bytesPerSec float64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}
