package cluster

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// Session wraps one server-issued session id with the database and type it
// was opened against (SPEC_FULL.md §3). Keepalive pulses are scheduled by
// the owning ServerConnection (§4.7); Session itself only tracks whether it
// has already been closed so Close is idempotent and safe from a defer.
type Session struct {
	ID             common.SessionID
	Type           common.SessionType
	DatabaseName   string
	ServerLatency  time.Duration

	server *ServerConnection
	closed atomic.Bool
}

// OpenSession opens a new session of sessionType against database name on
// server, registering it for periodic pulses.
func OpenSession(ctx context.Context, server *ServerConnection, name string, sessionType common.SessionType, opts common.Options) (*Session, error) {
	id, latency, err := server.OpenSession(ctx, name, sessionType, opts)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:            id,
		Type:          sessionType,
		DatabaseName:  name,
		ServerLatency: latency,
		server:        server,
	}, nil
}

// IsOpen reports whether Close has not yet been called on this session.
func (s *Session) IsOpen() bool { return !s.closed.Load() }

// OpenTransaction opens a new transaction of txType on this session.
func (s *Session) OpenTransaction(ctx context.Context, txType common.TransactionType, opts common.Options, networkLatency time.Duration) (*Transaction, error) {
	if !s.IsOpen() {
		return nil, common.ErrSessionIsClosed
	}
	return s.server.OpenTransaction(ctx, s.ID, txType, opts, networkLatency)
}

// Close cancels the session's pulse task and sends a best-effort close RPC.
// Idempotent and safe to call from a defer; the second and later calls are a
// no-op.
func (s *Session) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.server.CloseSession(ctx, s.ID)
}
