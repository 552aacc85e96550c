//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func TestFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("previous longer content"), 0644))

	w, err := File(path).Create(context.Background())
	require.NoError(t, err)
	_, err = w.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	require.Equal(t, path, File(path).String())
}

func TestFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.bin")
	w, err := File(path).Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.FileExists(t, path)
}

func TestWriterDoesNotClose(t *testing.T) {
	var buf bytes.Buffer
	dest := Writer{W: &buf}
	w, err := dest.Create(context.Background())
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, "data", buf.String())
	require.Equal(t, "writer", dest.String())
	require.Equal(t, "stdout", Writer{W: &buf, Name: "stdout"}.String())
}

func TestBlob(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	dest := Blob{Bucket: bucket, Key: "dir/object.bin"}
	w, err := dest.Create(ctx)
	require.NoError(t, err)
	_, err = w.Write([]byte("blob content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := bucket.ReadAll(ctx, "dir/object.bin")
	require.NoError(t, err)
	require.Equal(t, "blob content", string(data))
	require.Equal(t, "blob:dir/object.bin", dest.String())
}

func TestOpenBucket(t *testing.T) {
	ctx := context.Background()
	bucket, err := OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	require.NoError(t, bucket.Close())

	_, err = OpenBucket(ctx, "nosuchscheme://bucket")
	require.Error(t, err)
}
