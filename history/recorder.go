//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go.bug.st/fetcher"
	"go.bug.st/fetcher/internal/logger"
)

// Recorder is a fetcher.Listener that stores the state of a transfer in a
// Store and forwards every event to the wrapped listener.
type Recorder struct {
	store Store
	next  fetcher.Listener
	now   func() time.Time

	mu  sync.Mutex
	rec Record
}

// NewRecorder saves a pending record for the request and returns the
// Recorder tracking it. next may be nil.
func NewRecorder(store Store, req fetcher.Request, next fetcher.Listener) (*Recorder, error) {
	return newRecorder(store, req, next, time.Now)
}

func newRecorder(store Store, req fetcher.Request, next fetcher.Listener, now func() time.Time) (*Recorder, error) {
	if next == nil {
		next = fetcher.ListenerFuncs{}
	}
	r := &Recorder{
		store: store,
		next:  next,
		now:   now,
		rec: Record{
			ID:            uuid.NewString(),
			URL:           req.URL,
			ContentLength: -1,
			State:         StatePending,
			StartedAt:     now(),
		},
	}
	if req.Destination != nil {
		r.rec.Destination = req.Destination.String()
	}
	if err := r.save(); err != nil {
		return nil, fmt.Errorf("recording transfer: %w", err)
	}
	return r, nil
}

// ID returns the ID of the record.
func (r *Recorder) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.ID
}

// Record returns a copy of the current record.
func (r *Recorder) Record() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec
}

// OnDownloadBegin implements fetcher.Listener.
func (r *Recorder) OnDownloadBegin(statusCode int, contentLength fetcher.Length, headers map[string]string) {
	r.mu.Lock()
	r.rec.StatusCode = statusCode
	r.rec.ContentLength = contentLength.Int64()
	r.rec.State = StateInProgress
	r.mu.Unlock()
	r.saveOrLog()

	r.next.OnDownloadBegin(statusCode, contentLength, headers)
}

// OnDownloadProgress implements fetcher.Listener. Progress is kept in memory
// only and persisted with the final state.
func (r *Recorder) OnDownloadProgress(contentLength fetcher.Length, bytesWritten int64) {
	r.mu.Lock()
	r.rec.BytesWritten = bytesWritten
	r.mu.Unlock()

	r.next.OnDownloadProgress(contentLength, bytesWritten)
}

// OnTaskCompleted implements fetcher.Listener.
func (r *Recorder) OnTaskCompleted(result fetcher.Result) {
	r.mu.Lock()
	r.rec.StatusCode = result.StatusCode
	r.rec.BytesWritten = result.BytesWritten
	r.rec.FinishedAt = r.now()
	r.rec.State = StateOf(result)
	if result.Err != nil {
		r.rec.Error = result.Err.Error()
	}
	r.mu.Unlock()
	r.saveOrLog()

	r.next.OnTaskCompleted(result)
}

// StateOf maps the result of a transfer to its final State. A non-2xx status
// is a failure even if the transfer itself reported no error.
func StateOf(result fetcher.Result) State {
	switch {
	case errors.Is(result.Err, fetcher.ErrAborted):
		return StateAborted
	case result.Err != nil:
		return StateFailed
	case result.StatusCode < 200 || result.StatusCode >= 300:
		return StateFailed
	default:
		return StateCompleted
	}
}

func (r *Recorder) save() error {
	rec := r.Record()
	return r.store.SaveRecord(&rec)
}

func (r *Recorder) saveOrLog() {
	if err := r.save(); err != nil {
		logger.Warn("Could not update transfer history", logrus.Fields{"id": r.ID(), "error": err})
	}
}
