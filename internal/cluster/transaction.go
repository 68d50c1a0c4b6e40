package cluster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// DispatchInterval bounds how long a request can sit in the dispatch buffer
// before it is flushed onto the wire as part of a batched ClientFrame
// (SPEC_FULL.md §4.8).
const DispatchInterval = 3 * time.Millisecond

// DispatchHighWaterMark forces an early flush once this many requests are
// buffered, rather than waiting for the next DispatchInterval tick.
const DispatchHighWaterMark = 100

// streamSinkCapacity is the default bound on a streaming result sink before
// the demultiplexer blocks delivering into it (back-pressure). A transaction
// opened with Options.PrefetchSize set uses that instead, so a caller tuning
// prefetch for backpressure actually sees the effect client-side.
const streamSinkCapacity = 16

// txState is the lifecycle of a Transaction (SPEC_FULL.md §4.8).
type txState int32

const (
	txOpen txState = iota
	txCommitting
	txRollingBack
	txClosed
)

// sinkResult is what the demultiplexer delivers to an installed route: a
// decoded Res, one ResPart chunk, or a terminal error (protocol violation,
// transport failure, or transaction closed).
type sinkResult struct {
	res  *protocol.Res
	part *protocol.ResPart
	err  error
}

type route struct {
	stream bool
	ch     chan sinkResult
}

type installMsg struct {
	id    common.RequestID
	route *route
}

// Transaction is the bidi-stream multiplexer: one physical Transact stream
// shared by many concurrent logical requests, each tracked by a req_id in a
// routing table owned exclusively by the demultiplex goroutine.
type Transaction struct {
	SessionID common.SessionID
	Type      common.TransactionType
	Options   common.Options

	stream protocol.TransactionStreamClient
	logger *slog.Logger

	state atomic.Int32

	dispatchMu  sync.Mutex
	pending     []protocol.Req
	flushNotify chan struct{}

	installCh chan installMsg
	removeCh  chan common.RequestID

	closeOnce sync.Once
	closed    chan struct{}
	stopped   chan struct{} // closed once dispatch+demux have both unwound
	closeErr  error         // cause passed to closeWithError, set inside closeOnce
}

// newTransaction spawns the dispatch and demultiplex tasks for stream,
// sends the initial TransactionOpenReq, and blocks until the server
// acknowledges it or ctx is cancelled.
func newTransaction(ctx context.Context, rt *runtime.BackgroundRuntime, stream protocol.TransactionStreamClient, open protocol.TransactionOpenReq, logger *slog.Logger) (*Transaction, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Transaction{
		SessionID:   open.SessionID,
		Type:        open.Type,
		Options:     open.Options,
		stream:      stream,
		logger:      logger,
		flushNotify: make(chan struct{}, 1),
		installCh:   make(chan installMsg, 16),
		removeCh:    make(chan common.RequestID, 16),
		closed:      make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	frames := make(chan *protocol.ServerFrame, 16)
	frameErr := make(chan error, 1)
	if err := rt.Spawn(func(ctx context.Context) { t.readLoop(frames, frameErr) }); err != nil {
		return nil, err
	}
	if err := rt.Spawn(func(ctx context.Context) { t.dispatchLoop(ctx) }); err != nil {
		return nil, err
	}
	if err := rt.Spawn(func(ctx context.Context) { t.demuxLoop(ctx, frames, frameErr) }); err != nil {
		return nil, err
	}

	reqID := common.NewRequestID()
	ack := make(chan sinkResult, 1)
	t.install(installMsg{id: reqID, route: &route{ch: ack}})
	if err := t.enqueue(protocol.Req{ReqID: reqID, Open: &open}); err != nil {
		return nil, err
	}
	select {
	case r := <-ack:
		if r.err != nil {
			t.Close()
			return nil, r.err
		}
		if r.res != nil && !r.res.OK {
			t.Close()
			return nil, &common.OtherError{Message: r.res.Error}
		}
	case <-ctx.Done():
		t.Close()
		return nil, ctx.Err()
	}
	return t, nil
}

func (t *Transaction) currentState() txState { return txState(t.state.Load()) }

// install and remove talk to the demultiplexer's routing table. Both give
// up once the transaction is closed rather than blocking forever on a
// demux goroutine that has already exited.
func (t *Transaction) install(m installMsg) {
	select {
	case t.installCh <- m:
	case <-t.closed:
	}
}

func (t *Transaction) remove(id common.RequestID) {
	select {
	case t.removeCh <- id:
	case <-t.closed:
	}
}

// enqueue appends req to the dispatch buffer, waking the dispatcher early
// once the high-water mark is reached.
func (t *Transaction) enqueue(req protocol.Req) error {
	if t.currentState() == txClosed {
		return common.ErrTransactionIsClosed
	}
	t.dispatchMu.Lock()
	t.pending = append(t.pending, req)
	hot := len(t.pending) >= DispatchHighWaterMark
	t.dispatchMu.Unlock()
	if hot {
		select {
		case t.flushNotify <- struct{}{}:
		default:
		}
	}
	return nil
}

func (t *Transaction) takePending() []protocol.Req {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()
	if len(t.pending) == 0 {
		return nil
	}
	batch := t.pending
	t.pending = nil
	return batch
}

// dispatchLoop batches enqueued requests into ClientFrames, preserving
// enqueue order within the batch and across batches.
func (t *Transaction) dispatchLoop(ctx context.Context) {
	ticker := time.NewTicker(DispatchInterval)
	defer ticker.Stop()
	flush := func() {
		batch := t.takePending()
		if len(batch) == 0 {
			return
		}
		if err := t.stream.Send(&protocol.ClientFrame{Reqs: batch}); err != nil {
			t.closeWithError(translateRPCError(err, ""))
		}
	}
	for {
		select {
		case <-ticker.C:
			flush()
		case <-t.flushNotify:
			flush()
		case <-t.closed:
			flush()
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *Transaction) readLoop(frames chan<- *protocol.ServerFrame, frameErr chan<- error) {
	for {
		frame, err := t.stream.Recv()
		if err != nil {
			frameErr <- err
			return
		}
		select {
		case frames <- frame:
		case <-t.closed:
			return
		}
	}
}

// demuxLoop is the sole owner of the routing table. It installs/removes
// routes on request, delivers each server frame to its matching route, and
// fails every still-installed route with ErrTransactionIsClosed when the
// transaction shuts down, joined with the cause when it was closed by
// closeWithError.
func (t *Transaction) demuxLoop(ctx context.Context, frames <-chan *protocol.ServerFrame, frameErr <-chan error) {
	routes := make(map[common.RequestID]*route)
	defer func() {
		t.markClosed()
		closeErr := common.ErrTransactionIsClosed
		if t.closeErr != nil {
			closeErr = errors.Join(common.ErrTransactionIsClosed, t.closeErr)
		}
		for _, r := range routes {
			deliverResult(r, sinkResult{err: closeErr})
		}
		close(t.stopped)
	}()
	for {
		select {
		case m := <-t.installCh:
			routes[m.id] = m.route
		case id := <-t.removeCh:
			delete(routes, id)
		case frame := <-frames:
			t.routeFrame(routes, frame)
		case err := <-frameErr:
			if errors.Is(err, io.EOF) {
				t.markClosed()
			} else {
				t.closeWithError(translateRPCError(err, ""))
			}
			return
		case <-t.closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *Transaction) routeFrame(routes map[common.RequestID]*route, frame *protocol.ServerFrame) {
	switch {
	case frame.Res != nil:
		r, ok := routes[frame.Res.ReqID]
		if !ok {
			t.closeWithError(common.ErrInternal)
			return
		}
		delete(routes, frame.Res.ReqID)
		deliverResult(r, sinkResult{res: frame.Res})
	case frame.ResPart != nil:
		r, ok := routes[frame.ResPart.ReqID]
		if !ok {
			t.closeWithError(common.ErrInternal)
			return
		}
		deliverResult(r, sinkResult{part: frame.ResPart})
		if frame.ResPart.Done {
			delete(routes, frame.ResPart.ReqID)
		}
	}
}

// deliverResult pushes into a route's channel. Streaming sinks are bounded
// on purpose (back-pressure), so this send blocks until the sink has room: a
// slow consumer stalls the demultiplexer, and one that stops reading stalls
// it indefinitely.
func deliverResult(r *route, res sinkResult) {
	r.ch <- res
}

func (t *Transaction) markClosed() {
	t.state.Store(int32(txClosed))
	t.closeOnce.Do(func() { close(t.closed) })
}

func (t *Transaction) closeWithError(err error) {
	t.logger.Debug("transaction closing", "error", err)
	t.closeOnce.Do(func() {
		t.closeErr = err
		t.state.Store(int32(txClosed))
		close(t.closed)
	})
}

// execSingle sends req and waits for its single Res.
func (t *Transaction) execSingle(ctx context.Context, req protocol.Req) (*protocol.Res, error) {
	if t.currentState() == txClosed {
		return nil, common.ErrTransactionIsClosed
	}
	ch := make(chan sinkResult, 1)
	t.install(installMsg{id: req.ReqID, route: &route{ch: ch}})
	if err := t.enqueue(req); err != nil {
		t.remove(req.ReqID)
		return nil, err
	}
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.res, nil
	case <-ctx.Done():
		t.remove(req.ReqID)
		return nil, ctx.Err()
	}
}

// ResultStream is a lazily-pulled sequence of ResPart payloads produced by
// one streaming logical request. Callers exhaust the current batch with
// Next, then call Continue to request the next one from the server,
// reusing the same req_id (SPEC_FULL.md §4.8).
type ResultStream struct {
	tx    *Transaction
	reqID common.RequestID
	ch    chan sinkResult
	done  bool
}

// Next blocks until the next payload chunk arrives (or ctx ends) and returns
// it with ok=true, including the chunk that carries the Done marker. Once
// that chunk has been returned, Next returns ok=false and Continue returns
// io.EOF. The end of a batch is not signalled: Next keeps waiting until the
// server sends another chunk.
func (rs *ResultStream) Next(ctx context.Context) (payload []byte, ok bool, err error) {
	if rs.done {
		return nil, false, nil
	}
	select {
	case r := <-rs.ch:
		if r.err != nil {
			return nil, false, r.err
		}
		if r.part.Done {
			rs.done = true
		}
		return r.part.Payload, true, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Continue requests the next batch from the server by reusing reqID on a
// fresh Stream request.
func (rs *ResultStream) Continue(ctx context.Context) error {
	if rs.done {
		return io.EOF
	}
	return rs.tx.enqueue(protocol.Req{ReqID: rs.reqID, Stream: true})
}

// Execute issues payload as a single logical request and returns its
// server-reported result, or an error if the server rejected it (OK false)
// or the transaction could not deliver it.
func (t *Transaction) Execute(ctx context.Context, payload []byte) ([]byte, error) {
	res, err := t.execSingle(ctx, protocol.Req{ReqID: common.NewRequestID(), Payload: payload})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, &common.OtherError{Message: res.Error}
	}
	return res.Payload, nil
}

// ExecuteStream issues payload as a streaming logical request and returns a
// ResultStream the caller pulls from.
func (t *Transaction) ExecuteStream(ctx context.Context, payload []byte) (*ResultStream, error) {
	if t.currentState() == txClosed {
		return nil, common.ErrTransactionIsClosed
	}
	reqID := common.NewRequestID()
	ch := make(chan sinkResult, t.sinkCapacity())
	t.install(installMsg{id: reqID, route: &route{stream: true, ch: ch}})
	if err := t.enqueue(protocol.Req{ReqID: reqID, Payload: payload}); err != nil {
		t.remove(reqID)
		return nil, err
	}
	return &ResultStream{tx: t, reqID: reqID, ch: ch}, nil
}

// sinkCapacity returns the stream sink buffer size to use for this
// transaction: Options.PrefetchSize when the caller set one, else
// streamSinkCapacity. A non-positive PrefetchSize is ignored in favour of the
// default rather than producing an unbuffered or negative-size channel.
func (t *Transaction) sinkCapacity() int {
	if t.Options.PrefetchSize != nil && *t.Options.PrefetchSize > 0 {
		return int(*t.Options.PrefetchSize)
	}
	return streamSinkCapacity
}

// Commit issues a commit request and transitions the transaction to Closed
// on acknowledgement.
func (t *Transaction) Commit(ctx context.Context) error {
	if !t.state.CompareAndSwap(int32(txOpen), int32(txCommitting)) {
		return common.ErrTransactionIsClosed
	}
	res, err := t.execSingle(ctx, protocol.Req{ReqID: common.NewRequestID(), Commit: true})
	t.markClosed()
	if err != nil {
		return err
	}
	if !res.OK {
		return &common.OtherError{Message: res.Error}
	}
	return nil
}

// Rollback issues a rollback request and transitions the transaction to
// Closed on acknowledgement.
func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.state.CompareAndSwap(int32(txOpen), int32(txRollingBack)) {
		return common.ErrTransactionIsClosed
	}
	res, err := t.execSingle(ctx, protocol.Req{ReqID: common.NewRequestID(), Rollback: true})
	t.markClosed()
	if err != nil {
		return err
	}
	if !res.OK {
		return &common.OtherError{Message: res.Error}
	}
	return nil
}

// Close tears down the transaction unconditionally: it is always safe to
// call, including after Commit/Rollback or concurrently from multiple
// goroutines (only the first call has effect).
func (t *Transaction) Close() error {
	t.closeOnce.Do(func() {
		t.state.Store(int32(txClosed))
		close(t.closed)
	})
	return nil
}
