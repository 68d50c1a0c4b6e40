package nexusdb

import (
	"context"

	"github.com/nexusdb/nexusdb-driver-go/internal/cluster"
)

// Transaction is a streamed, bidirectional RPC bound to a session, carrying
// many concurrent logical requests demultiplexed by request id.
type Transaction struct {
	inner *cluster.Transaction
}

// Execute issues payload as a single logical request and returns its
// server-reported result.
func (t *Transaction) Execute(ctx context.Context, payload []byte) ([]byte, error) {
	return t.inner.Execute(ctx, payload)
}

// ExecuteStream issues payload as a streaming logical request and returns a
// ResultStream the caller pulls from.
func (t *Transaction) ExecuteStream(ctx context.Context, payload []byte) (*ResultStream, error) {
	rs, err := t.inner.ExecuteStream(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &ResultStream{inner: rs}, nil
}

// Commit issues a commit request and transitions the transaction to Closed
// on acknowledgement.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.inner.Commit(ctx)
}

// Rollback issues a rollback request and transitions the transaction to
// Closed on acknowledgement.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.inner.Rollback(ctx)
}

// Close tears down the transaction unconditionally. Always safe to call,
// including after Commit/Rollback or concurrently from multiple goroutines.
func (t *Transaction) Close() error {
	return t.inner.Close()
}

// ResultStream is a lazily-pulled sequence of payload chunks produced by one
// streaming logical request.
type ResultStream struct {
	inner *cluster.ResultStream
}

// Next blocks until the next payload chunk arrives and returns it with
// ok=true; once the chunk marked Done has been returned, it returns ok=false.
// The end of a batch is not signalled: Next keeps waiting until the server
// sends another chunk.
func (rs *ResultStream) Next(ctx context.Context) (payload []byte, ok bool, err error) {
	return rs.inner.Next(ctx)
}

// Continue requests the next batch of results from the server.
func (rs *ResultStream) Continue(ctx context.Context) error {
	return rs.inner.Continue(ctx)
}
