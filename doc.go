//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package fetcher provides a single-transfer, cancellable HTTP(S) file
// downloader.
//
// A Transfer fetches one resource into a Destination, follows at most one
// redirect hop, reports progress through a Listener at a configurable
// granularity, optionally throttles the throughput and can be stopped
// cooperatively from any goroutine:
//
//	t := fetcher.New(fetcher.Request{
//	    URL:             "https://example.com/file.bin",
//	    Destination:     sink.File("file.bin"),
//	    ProgressDivider: 10,
//	}, listener)
//	t.Start(ctx)
//	...
//	t.Stop()
//	res := t.Wait()
//
// Every transfer delivers exactly one OnDownloadBegin (only for 2xx
// responses), zero or more OnDownloadProgress and exactly one
// OnTaskCompleted, in that order.
//
// Known limitation: only one redirect hop is followed. If the redirect
// target redirects again, the second 3xx status is returned as the result.
package fetcher
