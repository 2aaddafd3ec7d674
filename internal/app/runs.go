package app

import (
	"context"
	"sync"
)

// runTracker hands out one context per recluster. Starting a run cancels the
// previous one, and only the latest run is current.
type runTracker struct {
	mu     sync.Mutex
	id     uint64
	cancel context.CancelFunc
}

func (r *runTracker) start(parent context.Context) (context.Context, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.id++
	return ctx, r.id
}

// finish releases the context of run id and reports whether it is still the
// latest run.
func (r *runTracker) finish(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.id {
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return true
}

func (r *runTracker) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.id++
}
