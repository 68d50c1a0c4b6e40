package nexusdb

import (
	"context"

	"github.com/nexusdb/nexusdb-driver-go/internal/cluster"
)

// Session holds a server-issued session id bound to one database and
// session type. A background pulse task keeps it alive against the server's
// idle timeout for as long as the session is open.
type Session struct {
	inner *cluster.Session
}

// ID returns the server-issued session identifier.
func (s *Session) ID() SessionID { return s.inner.ID }

// Type returns the session's type (Data or Schema).
func (s *Session) Type() SessionType { return s.inner.Type }

// DatabaseName returns the name of the database this session is bound to.
func (s *Session) DatabaseName() string { return s.inner.DatabaseName }

// IsOpen reports whether Close has not yet been called on this session.
func (s *Session) IsOpen() bool { return s.inner.IsOpen() }

// Transaction opens a new transaction of txType on this session.
func (s *Session) Transaction(ctx context.Context, txType TransactionType, opts Options) (*Transaction, error) {
	tx, err := s.inner.OpenTransaction(ctx, txType, opts, 0)
	if err != nil {
		return nil, err
	}
	return &Transaction{inner: tx}, nil
}

// Close cancels the session's pulse task and sends a best-effort close RPC.
// Idempotent and safe to call from a defer.
func (s *Session) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
