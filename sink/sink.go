//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package sink provides the destinations a transfer can write to: local
// files, arbitrary writers and gocloud.dev blob objects.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	// Drivers available to OpenBucket.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// File is a local file destination. Missing parent directories are created
// and an existing file is truncated.
type File string

// Create implements fetcher.Destination.
func (f File) Create(context.Context) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0755); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", string(f), err)
	}
	file, err := os.OpenFile(string(f), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (f File) String() string {
	return string(f)
}

// Writer is a destination writing to an already open writer. Closing the
// destination does not close the writer.
type Writer struct {
	W    io.Writer
	Name string
}

// Create implements fetcher.Destination.
func (w Writer) Create(context.Context) (io.WriteCloser, error) {
	return nopCloser{w.W}, nil
}

func (w Writer) String() string {
	if w.Name == "" {
		return "writer"
	}
	return w.Name
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Blob is a destination writing the object Key of Bucket. The object is
// committed when the destination is closed.
type Blob struct {
	Bucket *blob.Bucket
	Key    string
	// ContentType of the object, detected from the content if empty.
	ContentType string
}

// Create implements fetcher.Destination.
func (b Blob) Create(ctx context.Context) (io.WriteCloser, error) {
	w, err := b.Bucket.NewWriter(ctx, b.Key, &blob.WriterOptions{ContentType: b.ContentType})
	if err != nil {
		return nil, fmt.Errorf("opening blob %s: %w", b.Key, err)
	}
	return w, nil
}

func (b Blob) String() string {
	return "blob:" + b.Key
}

// OpenBucket opens the bucket at the given URL, e.g. "file:///data",
// "mem://" or "s3://bucket?region=us-east-1".
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %s: %w", bucketURL, err)
	}
	return bucket, nil
}
