package cluster

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/metadata"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// fakeTransactionStream is an in-process double for protocol.TransactionStreamClient
// that lets tests drive the demultiplexer without a real gRPC server, in the
// same spirit as mockTransactionServer in internal/protocol's own tests.
type fakeTransactionStream struct {
	sent    chan *protocol.ClientFrame
	toRecv  chan *protocol.ServerFrame
	recvErr chan error
	ctx     context.Context
}

func newFakeTransactionStream() *fakeTransactionStream {
	return &fakeTransactionStream{
		sent:    make(chan *protocol.ClientFrame, 64),
		toRecv:  make(chan *protocol.ServerFrame, 64),
		recvErr: make(chan error, 1),
		ctx:     context.Background(),
	}
}

func (s *fakeTransactionStream) Send(f *protocol.ClientFrame) error {
	s.sent <- f
	return nil
}

func (s *fakeTransactionStream) Recv() (*protocol.ServerFrame, error) {
	select {
	case f := <-s.toRecv:
		return f, nil
	case err := <-s.recvErr:
		return nil, err
	}
}

func (s *fakeTransactionStream) Header() (metadata.MD, error) { return nil, nil }
func (s *fakeTransactionStream) Trailer() metadata.MD         { return nil }
func (s *fakeTransactionStream) CloseSend() error             { return nil }
func (s *fakeTransactionStream) Context() context.Context     { return s.ctx }
func (s *fakeTransactionStream) SendMsg(m any) error          { return nil }
func (s *fakeTransactionStream) RecvMsg(m any) error          { return nil }

// awaitSentReqID drains frames from the fake stream until it finds one
// carrying a Req with the given id, returning that Req.
func awaitSentReqID(t *testing.T, s *fakeTransactionStream, id common.RequestID) protocol.Req {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-s.sent:
			for _, r := range frame.Reqs {
				if r.ReqID == id {
					return r
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for request %v to be sent", id)
		}
	}
}

func openFakeTransaction(t *testing.T) (*Transaction, *fakeTransactionStream, *runtime.BackgroundRuntime) {
	t.Helper()
	rt := runtime.New()
	t.Cleanup(rt.ForceClose)

	stream := newFakeTransactionStream()

	type result struct {
		tx  *Transaction
		err error
	}
	done := make(chan result, 1)
	go func() {
		open := protocol.TransactionOpenReq{Type: common.TransactionTypeRead}
		tx, err := newTransaction(context.Background(), rt, stream, open, nil)
		done <- result{tx, err}
	}()

	openReq := awaitSentReqID(t, stream, mustFindOpenReqID(t, stream))
	stream.toRecv <- &protocol.ServerFrame{Res: &protocol.Res{ReqID: openReq.ReqID, OK: true}}

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("newTransaction: %v", r.err)
		}
		return r.tx, stream, rt
	case <-time.After(2 * time.Second):
		t.Fatal("newTransaction never returned")
	}
	return nil, nil, nil
}

// mustFindOpenReqID peeks the first frame sent (the Open handshake) without
// consuming it from anywhere else, by re-reading it straight off the channel
// under the assumption it is the very first frame dispatched.
func mustFindOpenReqID(t *testing.T, s *fakeTransactionStream) common.RequestID {
	t.Helper()
	select {
	case frame := <-s.sent:
		if len(frame.Reqs) != 1 || frame.Reqs[0].Open == nil {
			t.Fatalf("expected a single Open request as the first frame, got %+v", frame)
		}
		id := frame.Reqs[0].ReqID
		// Put it back so awaitSentReqID's caller-visible contract (scan sent
		// frames for a given id) still finds it.
		s.sent <- frame
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Open handshake frame")
	}
	return common.RequestID{}
}

func TestTransactionOpenHandshake(t *testing.T) {
	tx, _, _ := openFakeTransaction(t)
	if tx.currentState() != txOpen {
		t.Fatalf("state = %v, want txOpen", tx.currentState())
	}
}

func TestTransactionExecuteDeliversMatchingResponse(t *testing.T) {
	tx, stream, _ := openFakeTransaction(t)

	errCh := make(chan error, 1)
	resultCh := make(chan []byte, 1)
	go func() {
		payload, err := tx.Execute(context.Background(), []byte("query"))
		errCh <- err
		resultCh <- payload
	}()

	req := awaitSentReqIDAnyPayload(t, stream, "query")
	stream.toRecv <- &protocol.ServerFrame{Res: &protocol.Res{ReqID: req.ReqID, OK: true, Payload: []byte("answer")}}

	if err := <-errCh; err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := <-resultCh; string(got) != "answer" {
		t.Fatalf("payload = %q, want %q", got, "answer")
	}
}

func awaitSentReqIDAnyPayload(t *testing.T, s *fakeTransactionStream, payload string) protocol.Req {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-s.sent:
			for _, r := range frame.Reqs {
				if string(r.Payload) == payload {
					return r
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for request with payload %q", payload)
		}
	}
}

// TestTransactionDemuxConcurrentStreamsNoCrossContamination exercises
// SPEC_FULL.md's testable property 3: K concurrent streaming queries on one
// transaction each receive exactly the frames the server routed to their
// req_id, regardless of interleaving.
func TestTransactionDemuxConcurrentStreamsNoCrossContamination(t *testing.T) {
	tx, stream, _ := openFakeTransaction(t)

	const k = 5
	streams := make([]*ResultStream, k)
	reqIDs := make([]common.RequestID, k)
	for i := 0; i < k; i++ {
		rs, err := tx.ExecuteStream(context.Background(), []byte{byte(i)})
		if err != nil {
			t.Fatalf("ExecuteStream %d: %v", i, err)
		}
		streams[i] = rs
		reqIDs[i] = rs.reqID
	}

	// Drain the k dispatch frames to confirm every stream's req_id went out,
	// then interleave ResPart delivery across all k: 3 chunks per stream,
	// delivered round-robin in reverse stream order, with the Done marker
	// carried on each stream's third chunk, which a correct router must not
	// confuse.
	seenIDs := make(map[common.RequestID]bool)
	deadline := time.After(2 * time.Second)
	for len(seenIDs) < k {
		select {
		case frame := <-stream.sent:
			for _, r := range frame.Reqs {
				seenIDs[r.ReqID] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for all %d ExecuteStream requests to dispatch", k)
		}
	}

	const chunksPerStream = 3
	for c := 0; c < chunksPerStream; c++ {
		for i := k - 1; i >= 0; i-- {
			stream.toRecv <- &protocol.ServerFrame{ResPart: &protocol.ResPart{
				ReqID:   reqIDs[i],
				Payload: []byte{byte(i), byte(c)},
				Done:    c == chunksPerStream-1,
			}}
		}
	}

	results := make([][][]byte, k)
	var wg sync.WaitGroup
	wg.Add(k)
	for i := 0; i < k; i++ {
		i := i
		go func() {
			defer wg.Done()
			var got [][]byte
			for {
				payload, ok, err := streams[i].Next(context.Background())
				if err != nil {
					t.Errorf("stream %d Next: %v", i, err)
					return
				}
				if !ok {
					break
				}
				got = append(got, append([]byte(nil), payload...))
			}
			results[i] = got
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("streams never drained")
	}

	for i := 0; i < k; i++ {
		if len(results[i]) != chunksPerStream {
			t.Fatalf("stream %d got %d chunks, want %d", i, len(results[i]), chunksPerStream)
		}
		for c, payload := range results[i] {
			if len(payload) != 2 || payload[0] != byte(i) || payload[1] != byte(c) {
				t.Fatalf("stream %d chunk %d = %v, want [%d %d] (cross-contamination between streams)", i, c, payload, i, c)
			}
		}
	}
}

func TestTransactionCloseFailsPendingSinks(t *testing.T) {
	tx, _, _ := openFakeTransaction(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := tx.Execute(context.Background(), []byte("never answered"))
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := tx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, common.ErrTransactionIsClosed) {
			t.Fatalf("Execute after Close = %v, want ErrTransactionIsClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute never unblocked after Close")
	}

	if _, err := tx.Execute(context.Background(), []byte("after close")); !errors.Is(err, common.ErrTransactionIsClosed) {
		t.Fatalf("Execute after Close = %v, want ErrTransactionIsClosed", err)
	}
}

func TestTransactionUnknownReqIDClosesWithInternalError(t *testing.T) {
	tx, stream, _ := openFakeTransaction(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := tx.Execute(context.Background(), []byte("orphaned"))
		errCh <- err
	}()

	stream.toRecv <- &protocol.ServerFrame{Res: &protocol.Res{ReqID: common.NewRequestID(), OK: true}}

	select {
	case err := <-errCh:
		if !errors.Is(err, common.ErrTransactionIsClosed) {
			t.Fatalf("Execute after protocol violation = %v, want ErrTransactionIsClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute never unblocked after unknown req_id")
	}
}

func TestTransactionServerEOFClosesCleanly(t *testing.T) {
	tx, stream, _ := openFakeTransaction(t)
	stream.recvErr <- io.EOF

	deadline := time.After(2 * time.Second)
	for tx.currentState() != txClosed {
		select {
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatal("transaction never reached txClosed after server EOF")
		}
	}
}

func TestTransactionCommitTransitionsToClosed(t *testing.T) {
	tx, stream, _ := openFakeTransaction(t)

	errCh := make(chan error, 1)
	go func() { errCh <- tx.Commit(context.Background()) }()

	req := awaitSentReqIDPredicate(t, stream, func(r protocol.Req) bool { return r.Commit })
	stream.toRecv <- &protocol.ServerFrame{Res: &protocol.Res{ReqID: req.ReqID, OK: true}}

	if err := <-errCh; err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if tx.currentState() != txClosed {
		t.Fatalf("state after Commit = %v, want txClosed", tx.currentState())
	}
	if err := tx.Commit(context.Background()); !errors.Is(err, common.ErrTransactionIsClosed) {
		t.Fatalf("second Commit = %v, want ErrTransactionIsClosed", err)
	}
}

func awaitSentReqIDPredicate(t *testing.T, s *fakeTransactionStream, pred func(protocol.Req) bool) protocol.Req {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-s.sent:
			for _, r := range frame.Reqs {
				if pred(r) {
					return r
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for matching request")
		}
	}
}
