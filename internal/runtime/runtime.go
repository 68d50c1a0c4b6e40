// Package runtime provides BackgroundRuntime, the single place that owns
// cancellation of every goroutine a Connection spawns and reports whether
// the connection is still usable. The Rust original needs a dedicated OS
// thread here because Tokio tasks are not preemptible across a blocking
// embedder; Go's runtime already schedules goroutines preemptively, so this
// is a lightweight lifecycle tracker rather than a literal single thread —
// it still serves the same purpose.
package runtime

import (
	"context"
	"sync"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// BackgroundRuntime tracks every goroutine spawned on behalf of one
// Connection and provides a single, idempotent shutdown path.
type BackgroundRuntime struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

// New returns a BackgroundRuntime ready to spawn tasks.
func New() *BackgroundRuntime {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundRuntime{
		ctx:    ctx,
		cancel: cancel,
		closed: make(chan struct{}),
	}
}

// Context returns the runtime's cancellation context. Tasks spawned via
// Spawn should select on it (or a context derived from it) to notice
// shutdown.
func (r *BackgroundRuntime) Context() context.Context { return r.ctx }

// IsOpen reports whether ForceClose has not yet been called.
func (r *BackgroundRuntime) IsOpen() bool {
	select {
	case <-r.closed:
		return false
	default:
		return true
	}
}

// Spawn runs fn on a new goroutine tracked by the runtime's WaitGroup, so
// that ForceClose can wait for every spawned task to unwind. Returns
// ErrClientIsClosed without spawning if the runtime is already closed.
func (r *BackgroundRuntime) Spawn(fn func(ctx context.Context)) error {
	if !r.IsOpen() {
		return common.ErrClientIsClosed
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
	return nil
}

// BlockOn runs fn synchronously on the calling goroutine, first checking
// that the runtime is still open. It exists as the symmetric counterpart to
// Spawn for call sites that want a blocking reply (SPEC_FULL.md §4.4) rather
// than a reply sink that unblocks from a spawned task.
func (r *BackgroundRuntime) BlockOn(fn func(ctx context.Context) error) error {
	if !r.IsOpen() {
		return common.ErrClientIsClosed
	}
	return fn(r.ctx)
}

// ForceClose cancels every spawned task's context and waits for them all to
// return. It is safe to call multiple times or concurrently; only the first
// call has effect.
func (r *BackgroundRuntime) ForceClose() {
	r.closeOnce.Do(func() {
		close(r.closed)
		r.cancel()
		r.wg.Wait()
	})
}
