//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:generate mockgen -destination=./mocks/listener.go -package=mocks . Listener

package fetcher

// Listener receives the events of a Transfer. All the methods are called from
// the transfer goroutine, in order: OnDownloadBegin (only for 2xx responses),
// then OnDownloadProgress zero or more times, then OnTaskCompleted exactly once.
type Listener interface {
	// OnDownloadBegin is called when the server answered with a 2xx status,
	// before the body is transferred. Headers hold the first value of each
	// response header.
	OnDownloadBegin(statusCode int, contentLength Length, headers map[string]string)

	// OnDownloadProgress reports the bytes written so far.
	OnDownloadProgress(contentLength Length, bytesWritten int64)

	// OnTaskCompleted delivers the final result of the transfer.
	OnTaskCompleted(result Result)
}

// ListenerFuncs adapts optional callback functions to a Listener.
type ListenerFuncs struct {
	Begin     func(statusCode int, contentLength Length, headers map[string]string)
	Progress  func(contentLength Length, bytesWritten int64)
	Completed func(result Result)
}

// OnDownloadBegin implements Listener.
func (f ListenerFuncs) OnDownloadBegin(statusCode int, contentLength Length, headers map[string]string) {
	if f.Begin != nil {
		f.Begin(statusCode, contentLength, headers)
	}
}

// OnDownloadProgress implements Listener.
func (f ListenerFuncs) OnDownloadProgress(contentLength Length, bytesWritten int64) {
	if f.Progress != nil {
		f.Progress(contentLength, bytesWritten)
	}
}

// OnTaskCompleted implements Listener.
func (f ListenerFuncs) OnTaskCompleted(result Result) {
	if f.Completed != nil {
		f.Completed(result)
	}
}

// Listeners fans out every event to each of the contained listeners, in order.
type Listeners []Listener

// OnDownloadBegin implements Listener.
func (ls Listeners) OnDownloadBegin(statusCode int, contentLength Length, headers map[string]string) {
	for _, l := range ls {
		l.OnDownloadBegin(statusCode, contentLength, headers)
	}
}

// OnDownloadProgress implements Listener.
func (ls Listeners) OnDownloadProgress(contentLength Length, bytesWritten int64) {
	for _, l := range ls {
		l.OnDownloadProgress(contentLength, bytesWritten)
	}
}

// OnTaskCompleted implements Listener.
func (ls Listeners) OnTaskCompleted(result Result) {
	for _, l := range ls {
		l.OnTaskCompleted(result)
	}
}
