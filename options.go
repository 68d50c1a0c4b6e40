package nexusdb

import "github.com/nexusdb/nexusdb-driver-go/internal/common"

// SessionType distinguishes a Data session (read/write queries against
// instances) from a Schema session (define/undefine against the type
// system).
type SessionType = common.SessionType

const (
	SessionTypeData   = common.SessionTypeData
	SessionTypeSchema = common.SessionTypeSchema
)

// TransactionType distinguishes a read-only transaction from one permitted
// to mutate data or schema.
type TransactionType = common.TransactionType

const (
	TransactionTypeRead  = common.TransactionTypeRead
	TransactionTypeWrite = common.TransactionTypeWrite
)

// Options carries the optional per-session, per-transaction, and per-query
// flags recognised by the wire protocol.
type Options = common.Options

// SessionID is the opaque, server-issued identifier for an open session.
type SessionID = common.SessionID

// RequestID is a client-generated identifier for one logical request within
// a transaction stream.
type RequestID = common.RequestID

// DatabaseInfo is a database's name plus a snapshot of its known replicas.
type DatabaseInfo = common.DatabaseInfo

// ReplicaInfo describes one replica of a database as advertised by the
// server.
type ReplicaInfo = common.ReplicaInfo
