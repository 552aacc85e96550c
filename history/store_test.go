//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	rec := &Record{
		ID:            "rec-1",
		URL:           "https://example.com/a.bin",
		Destination:   "/tmp/a.bin",
		ContentLength: 1024,
		State:         StatePending,
		StartedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.SaveRecord(rec))

	got, err := store.GetRecord("rec-1")
	require.NoError(t, err)
	require.Equal(t, rec.URL, got.URL)
	require.Equal(t, StatePending, got.State)
	require.True(t, rec.StartedAt.Equal(got.StartedAt))
	require.True(t, got.FinishedAt.IsZero())

	rec.State = StateCompleted
	rec.BytesWritten = 1024
	require.NoError(t, store.SaveRecord(rec))
	got, err = store.GetRecord("rec-1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, got.State)
	require.Equal(t, int64(1024), got.BytesWritten)

	_, err = store.GetRecord("missing")
	require.ErrorIs(t, err, ErrRecordNotFound)

	require.Error(t, store.SaveRecord(&Record{}))
}

func TestBoltStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "c", "a"} {
		require.NoError(t, store.SaveRecord(&Record{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	list, err := store.List()
	require.NoError(t, err)
	ids := []string{}
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"a", "c", "b"}, ids)
}

func TestBoltStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(&Record{ID: "kept"}))
	require.NoError(t, store.Close())

	_, err = store.GetRecord("kept")
	require.Error(t, err)

	store, err = NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetRecord("kept")
	require.NoError(t, err)
	require.Equal(t, "kept", got.ID)
}
