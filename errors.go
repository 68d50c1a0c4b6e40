package nexusdb

import "github.com/nexusdb/nexusdb-driver-go/internal/common"

// Sentinel errors callers compare with errors.Is. See each wrapped sentinel
// in internal/common for the condition it reports.
var (
	ErrClientIsClosed           = common.ErrClientIsClosed
	ErrSessionIsClosed          = common.ErrSessionIsClosed
	ErrTransactionIsClosed      = common.ErrTransactionIsClosed
	ErrUnableToConnect          = common.ErrUnableToConnect
	ErrClusterReplicaNotPrimary = common.ErrClusterReplicaNotPrimary
	ErrInternal                 = common.ErrInternal
)

// ClusterUnableToConnectError reports that no server could be reached: none
// of the seed addresses supplied to NewEncryptedConnection/
// NewPlaintextConnection, none of a database's replicas, or no primary
// within the failover attempt limit.
type ClusterUnableToConnectError = common.ClusterUnableToConnectError

// ClusterAllNodesFailedError reports that DatabaseManager.All got an error
// from every known server, with each server's error keyed by its address.
type ClusterAllNodesFailedError = common.ClusterAllNodesFailedError

// DatabaseDoesNotExistError reports that an operation targeted a database
// name the server does not recognise.
type DatabaseDoesNotExistError = common.DatabaseDoesNotExistError

// MissingResponseFieldError reports a server response missing a field the
// client requires to proceed.
type MissingResponseFieldError = common.MissingResponseFieldError

// OtherError wraps a server-reported error with no more specific
// classification, including query-parse errors from the query layer.
type OtherError = common.OtherError
