//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package history keeps a persistent record of the transfers run by the
// command line tool.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// ErrRecordNotFound is returned when a record is not found in the store.
	ErrRecordNotFound = errors.New("record not found")
)

var (
	transfersBucket = []byte("transfers")
)

// State is the lifecycle state of a recorded transfer.
type State string

const (
	StatePending    State = "Pending"
	StateInProgress State = "InProgress"
	StateCompleted  State = "Completed"
	StateFailed     State = "Failed"
	StateAborted    State = "Aborted"
)

// Record is the stored state of a transfer.
type Record struct {
	ID            string    `json:"id" yaml:"id"`
	URL           string    `json:"url" yaml:"url"`
	Destination   string    `json:"destination" yaml:"destination"`
	StatusCode    int       `json:"status_code" yaml:"status_code"`
	ContentLength int64     `json:"content_length" yaml:"content_length"`
	BytesWritten  int64     `json:"bytes_written" yaml:"bytes_written"`
	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
	State         State     `json:"state" yaml:"state"`
	StartedAt     time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
}

// Store defines the interface for persisting transfer records.
type Store interface {
	SaveRecord(rec *Record) error
	GetRecord(id string) (*Record, error)
	List() ([]*Record, error)
	Close() error
}

// BoltStore is a Store implementation backed by bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) a BoltStore at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(transfersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transfers bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveRecord inserts or replaces a record.
func (s *BoltStore) SaveRecord(rec *Record) error {
	if rec.ID == "" {
		return errors.New("record without ID")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(transfersBucket)

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := b.Put([]byte(rec.ID), data); err != nil {
			return fmt.Errorf("failed to put record: %w", err)
		}
		return nil
	})
}

// GetRecord retrieves a record by ID.
func (s *BoltStore) GetRecord(id string) (*Record, error) {
	var rec Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(transfersBucket).Get([]byte(id))
		if data == nil {
			return ErrRecordNotFound
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all the records, most recently started first.
func (s *BoltStore) List() ([]*Record, error) {
	var res []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(transfersBucket).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal record %s: %w", k, err)
			}
			res = append(res, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartedAt.After(res[j].StartedAt)
	})
	return res, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
