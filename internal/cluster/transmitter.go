// Package cluster implements the connection and transaction runtime: the
// per-endpoint transmitter and ServerConnection facade, cluster-wide
// failover combinators, and the session/transaction lifecycle built on top
// of internal/rpc and internal/protocol.
package cluster

import (
	"context"
	"sync"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// job is one unit of work handed to a transmitter: invoke fn and deliver the
// result to sink.
type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) (any, error)
	sink replySink
}

// replySink abstracts over the two ways a caller wants to learn the result
// of a submitted job: an async one-shot completion, or a blocking rendezvous
// that a synchronous destructor-style caller can wait on directly.
type replySink interface {
	deliver(v any, err error)
}

type result struct {
	value any
	err   error
}

// asyncReplySink is a buffered, size-1 channel: the transmitter never blocks
// delivering into it even if the caller has not started waiting yet.
type asyncReplySink struct{ ch chan result }

func newAsyncReplySink() *asyncReplySink { return &asyncReplySink{ch: make(chan result, 1)} }

func (s *asyncReplySink) deliver(v any, err error) { s.ch <- result{value: v, err: err} }

// wait blocks until the transmitter delivers a result or ctx is cancelled.
func (s *asyncReplySink) wait(ctx context.Context) (any, error) {
	select {
	case r := <-s.ch:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// blockingReplySink is a zero-capacity rendezvous: deliver blocks until a
// reader is present. Used by CloseSession so the close RPC is known to have
// reached the transmitter even when the caller is a defer that is about to
// tear down its own goroutine.
type blockingReplySink struct{ ch chan result }

func newBlockingReplySink() *blockingReplySink { return &blockingReplySink{ch: make(chan result)} }

func (s *blockingReplySink) deliver(v any, err error) { s.ch <- result{value: v, err: err} }

func (s *blockingReplySink) wait() (any, error) {
	r := <-s.ch
	return r.value, r.err
}

// transmitter is the single task per Channel that serialises every request
// (unary or stream-open) onto the underlying connection and completes the
// matching reply sink in the order jobs were enqueued. The queue is an
// unbounded slice behind a mutex rather than a Go channel so submit never
// blocks a producer waiting for the transmitter to catch up, and so
// shutdown can deliver ErrClientIsClosed to every still-buffered job
// without racing a channel close.
type transmitter struct {
	mu     sync.Mutex
	buf    []*job
	notify chan struct{}
	closed bool
}

func newTransmitter() *transmitter {
	return &transmitter{notify: make(chan struct{}, 1)}
}

// submit enqueues fn and returns its result once the transmitter has run it.
// async selects a non-blocking (buffered) sink that also gives up if ctx is
// cancelled while queued; the blocking variant has no such escape hatch, by
// design, so close paths that must not be abandoned mid-flight use it.
func (t *transmitter) submit(ctx context.Context, fn func(ctx context.Context) (any, error), async bool) (any, error) {
	var sink replySink
	var wait func() (any, error)
	if async {
		s := newAsyncReplySink()
		sink, wait = s, func() (any, error) { return s.wait(ctx) }
	} else {
		s := newBlockingReplySink()
		sink, wait = s, s.wait
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, common.ErrClientIsClosed
	}
	t.buf = append(t.buf, &job{ctx: ctx, fn: fn, sink: sink})
	t.mu.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
	return wait()
}

// run dequeues jobs in FIFO order and invokes each against its own context
// until ctx is cancelled, at which point every job still buffered is failed
// with ErrClientIsClosed and no further submissions are accepted.
func (t *transmitter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			t.shutdown()
			return
		default:
		}
		j, ok := t.pop()
		if ok {
			v, err := j.fn(j.ctx)
			j.sink.deliver(v, err)
			continue
		}
		select {
		case <-t.notify:
			continue
		case <-ctx.Done():
			t.shutdown()
			return
		}
	}
}

func (t *transmitter) pop() (*job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == 0 {
		return nil, false
	}
	j := t.buf[0]
	t.buf = t.buf[1:]
	return j, true
}

func (t *transmitter) shutdown() {
	t.mu.Lock()
	t.closed = true
	pending := t.buf
	t.buf = nil
	t.mu.Unlock()
	for _, j := range pending {
		j.sink.deliver(nil, common.ErrClientIsClosed)
	}
}
