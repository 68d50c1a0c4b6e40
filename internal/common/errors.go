package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra data. Callers compare
// with errors.Is.
var (
	// ErrClientIsClosed is returned by any operation attempted after
	// ForceClose has been called on the owning connection.
	ErrClientIsClosed = errors.New("nexusdb: client has been closed")

	// ErrSessionIsClosed is returned by any operation attempted on a session
	// that has already been closed, locally or by the server.
	ErrSessionIsClosed = errors.New("nexusdb: session is closed")

	// ErrTransactionIsClosed is returned by any operation attempted on a
	// transaction that has already been committed, rolled back, or closed.
	ErrTransactionIsClosed = errors.New("nexusdb: transaction is closed")

	// ErrUnableToConnect is returned when a single-server connection attempt
	// fails outright (e.g. dial error, handshake failure).
	ErrUnableToConnect = errors.New("nexusdb: unable to connect to server")

	// ErrClusterReplicaNotPrimary is returned when an operation that requires
	// the primary replica is routed to a replica that turns out not to be
	// primary, after the configured retry budget is exhausted.
	ErrClusterReplicaNotPrimary = errors.New("nexusdb: replica is not the primary replica")

	// ErrInternal marks a condition that should be impossible given the
	// client's own invariants, e.g. a routing-table entry disappearing while
	// its owning goroutine still holds a reference.
	ErrInternal = errors.New("nexusdb: internal error")
)

// ClusterUnableToConnectError reports that no server could be reached:
// during initial seed discovery none of the addresses supplied to
// NewEncryptedConnection/NewPlaintextConnection answered, or a retry
// combinator found no reachable replica or no primary within its attempt
// limit.
type ClusterUnableToConnectError struct {
	Addresses []string
	Causes    []error
}

func (e *ClusterUnableToConnectError) Error() string {
	return fmt.Sprintf("nexusdb: unable to connect to any of %d server(s): %v", len(e.Addresses), e.Causes)
}

func (e *ClusterUnableToConnectError) Unwrap() []error { return e.Causes }

// ClusterAllNodesFailedError reports that a fan-out over every known server
// (DatabaseManager.All) got an error from each of them. Causes maps each
// server address to its error.
type ClusterAllNodesFailedError struct {
	Database string
	Causes   map[string]error
}

func (e *ClusterAllNodesFailedError) Error() string {
	return fmt.Sprintf("nexusdb: all replicas of database %q failed: %v", e.Database, e.Causes)
}

// DatabaseDoesNotExistError reports that an operation was attempted against
// a database name the server does not recognise.
type DatabaseDoesNotExistError struct {
	Name string
}

func (e *DatabaseDoesNotExistError) Error() string {
	return fmt.Sprintf("nexusdb: database %q does not exist", e.Name)
}

// MissingResponseFieldError reports a server response that omitted a field
// the client requires to proceed, e.g. a Res frame with no oneof variant set.
type MissingResponseFieldError struct {
	Field string
}

func (e *MissingResponseFieldError) Error() string {
	return fmt.Sprintf("nexusdb: missing required field %q in server response", e.Field)
}

// OtherError wraps an error reported by the server that the client has no
// more specific classification for. The Message field is the server's raw
// error text.
type OtherError struct {
	Message string
}

func (e *OtherError) Error() string {
	return fmt.Sprintf("nexusdb: server error: %s", e.Message)
}

// IsRetryable reports whether an error returned from an RPC stub indicates
// the caller should retry against a different replica rather than fail the
// whole operation. Used by the failsafe retry combinators.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var notPrimary *ClusterUnableToConnectError
	if errors.As(err, &notPrimary) {
		return true
	}
	return errors.Is(err, ErrClusterReplicaNotPrimary) || errors.Is(err, ErrUnableToConnect)
}
