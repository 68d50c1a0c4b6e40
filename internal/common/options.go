package common

import (
	"time"

	"github.com/google/uuid"
)

// SessionType distinguishes a Data session (read/write queries against
// instances) from a Schema session (define/undefine against the type
// system). The server enforces which transaction types each session type may
// open.
type SessionType int

const (
	SessionTypeData SessionType = iota
	SessionTypeSchema
)

func (t SessionType) String() string {
	switch t {
	case SessionTypeData:
		return "data"
	case SessionTypeSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// TransactionType distinguishes a read-only transaction from one permitted
// to mutate data or schema.
type TransactionType int

const (
	TransactionTypeRead TransactionType = iota
	TransactionTypeWrite
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeRead:
		return "read"
	case TransactionTypeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Options carries the optional per-session, per-transaction, and per-query
// flags recognised by the wire protocol. Every field is a pointer so that
// "unset" and "set to the zero value" are distinguishable: only present
// fields are serialised onto the wire.
type Options struct {
	Infer          *bool
	TraceInference *bool
	Explain        *bool
	Parallel       *bool
	Prefetch       *bool
	PrefetchSize   *int32

	// SessionIdleTimeout, TransactionTimeout, and SchemaLockAcquireTimeout are
	// sent to the server as milliseconds.
	SessionIdleTimeout       *time.Duration
	TransactionTimeout       *time.Duration
	SchemaLockAcquireTimeout *time.Duration
	ReadAnyReplica           *bool
}

// WithInfer sets the Infer option and returns o for chaining.
func (o Options) WithInfer(v bool) Options { o.Infer = &v; return o }

// WithTraceInference sets the TraceInference option and returns o for chaining.
func (o Options) WithTraceInference(v bool) Options { o.TraceInference = &v; return o }

// WithExplain sets the Explain option and returns o for chaining.
func (o Options) WithExplain(v bool) Options { o.Explain = &v; return o }

// WithParallel sets the Parallel option and returns o for chaining.
func (o Options) WithParallel(v bool) Options { o.Parallel = &v; return o }

// WithPrefetch sets the Prefetch option and returns o for chaining.
func (o Options) WithPrefetch(v bool) Options { o.Prefetch = &v; return o }

// WithPrefetchSize sets the PrefetchSize option and returns o for chaining.
func (o Options) WithPrefetchSize(v int32) Options { o.PrefetchSize = &v; return o }

// WithSessionIdleTimeout sets the SessionIdleTimeout option and returns o for chaining.
func (o Options) WithSessionIdleTimeout(v time.Duration) Options { o.SessionIdleTimeout = &v; return o }

// WithTransactionTimeout sets the TransactionTimeout option and returns o for chaining.
func (o Options) WithTransactionTimeout(v time.Duration) Options { o.TransactionTimeout = &v; return o }

// WithSchemaLockAcquireTimeout sets the SchemaLockAcquireTimeout option and returns o for chaining.
func (o Options) WithSchemaLockAcquireTimeout(v time.Duration) Options {
	o.SchemaLockAcquireTimeout = &v
	return o
}

// WithReadAnyReplica sets the ReadAnyReplica option and returns o for chaining.
func (o Options) WithReadAnyReplica(v bool) Options { o.ReadAnyReplica = &v; return o }

// SessionID is the opaque, server-issued identifier for an open session.
type SessionID [16]byte

// String renders the session id as a UUID string for logging.
func (id SessionID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether id is the zero value (never assigned).
func (id SessionID) IsZero() bool { return id == SessionID{} }

// RequestID is a client-generated identifier for one logical request within
// a transaction stream. The client, not the server, allocates these.
type RequestID [16]byte

// NewRequestID generates a fresh, random RequestID.
func NewRequestID() RequestID {
	return RequestID(uuid.New())
}

func (id RequestID) String() string { return uuid.UUID(id).String() }
