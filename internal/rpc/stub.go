package rpc

import (
	"context"
	"fmt"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
)

// Stub is a thin typed wrapper over one Channel exposing every server
// endpoint the driver needs, hand-written in the shape protoc-gen-go-grpc
// would emit (internal/protocol holds the actual client types).
type Stub struct {
	Channel *Channel

	ServerManager     protocol.ServerManagerClient
	CoreDatabases     protocol.CoreDatabaseManagerClient
	CoreDatabase      protocol.CoreDatabaseClient
	ClusterDatabases  protocol.ClusterDatabaseManagerClient
	Session           protocol.SessionClient
	Transaction       protocol.TransactionClient
}

// NewLazyStub wraps ch with no validation: construction never touches the
// network, so even an address the server can never reach succeeds here and
// only fails on first use.
func NewLazyStub(ch *Channel) *Stub {
	return &Stub{
		Channel:          ch,
		ServerManager:    protocol.NewServerManagerClient(ch.Conn),
		CoreDatabases:    protocol.NewCoreDatabaseManagerClient(ch.Conn),
		CoreDatabase:     protocol.NewCoreDatabaseClient(ch.Conn),
		ClusterDatabases: protocol.NewClusterDatabaseManagerClient(ch.Conn),
		Session:          protocol.NewSessionClient(ch.Conn),
		Transaction:      protocol.NewTransactionClient(ch.Conn),
	}
}

// NewValidatedStub wraps ch and issues a cheap CoreDatabaseManager.All probe
// to confirm the server is reachable and willing to serve requests before
// returning. DatabasesAll is used here deliberately as the liveness check
// (SPEC_FULL.md §4.3); any future first-class ping endpoint should replace
// it.
func NewValidatedStub(ctx context.Context, ch *Channel) (*Stub, error) {
	stub := NewLazyStub(ch)
	if _, err := stub.CoreDatabases.All(ctx, &protocol.AllReq{}); err != nil {
		return nil, fmt.Errorf("nexusdb/rpc: validate connection to %s: %w: %w", ch.Address, common.ErrUnableToConnect, err)
	}
	return stub, nil
}
