//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cli

import (
	"context"
	"sync"

	"go.bug.st/fetcher"
	"go.bug.st/fetcher/internal/logger"
)

// interruptGuard decides how an interrupted transfer is ended. Once the body
// is streaming Stop ends it at the next block boundary. Before that the
// transfer is blocked on the connection or the response headers, so its
// context is cancelled instead.
type interruptGuard struct {
	mu     sync.Mutex
	begun  bool
	cancel context.CancelFunc
}

func newInterruptGuard(cancel context.CancelFunc) *interruptGuard {
	return &interruptGuard{cancel: cancel}
}

// OnDownloadBegin implements fetcher.Listener.
func (g *interruptGuard) OnDownloadBegin(int, fetcher.Length, map[string]string) {
	g.mu.Lock()
	g.begun = true
	g.mu.Unlock()
}

// OnDownloadProgress implements fetcher.Listener.
func (g *interruptGuard) OnDownloadProgress(fetcher.Length, int64) {}

// OnTaskCompleted implements fetcher.Listener.
func (g *interruptGuard) OnTaskCompleted(fetcher.Result) {}

func (g *interruptGuard) interrupt(t *fetcher.Transfer) {
	t.Stop()
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.begun {
		logger.Debug("Transfer not started yet, cancelling the connection")
		g.cancel()
	}
}

// runTransfer runs t until it completes or ctx is done. The transfer runs on
// transferCtx, which must be cancelled by the guard cancel function only.
func runTransfer(ctx, transferCtx context.Context, t *fetcher.Transfer, guard *interruptGuard) fetcher.Result {
	t.Start(transferCtx)
	select {
	case <-ctx.Done():
		logger.Warn("Interrupted, stopping transfer")
		guard.interrupt(t)
	case <-t.Done():
	}
	return t.Wait()
}
