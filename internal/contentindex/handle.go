package contentindex

import (
	"context"
	"sync"
)

// Handle is a memoized future for an asynchronously initialized content
// index. Both the index-export task and the telemetry task resolve the same
// handle without recomputation, and a run with preview building disabled
// carries the explicit absent variant instead of a nil index.
type Handle struct {
	done   chan struct{}
	absent bool

	mu  sync.Mutex
	idx *Index
	err error
}

// Start launches index construction in the background and returns a handle
// that memoizes the result.
func Start(ctx context.Context, ix *Indexer) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		idx, err := ix.Run(ctx)
		h.mu.Lock()
		h.idx, h.err = idx, err
		h.mu.Unlock()
		close(h.done)
	}()
	return h
}

// Absent returns the handle variant for runs without a content index. It is
// always resolved; Resolve reports present=false.
func Absent() *Handle {
	h := &Handle{done: make(chan struct{}), absent: true}
	close(h.done)
	return h
}

// Resolve waits for initialization and returns the index. It is safe to call
// from multiple goroutines and multiple times; the underlying work runs once.
func (h *Handle) Resolve(ctx context.Context) (idx *Index, present bool, err error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-h.done:
	}
	if h.absent {
		return nil, false, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, false, h.err
	}
	return h.idx, true, nil
}
