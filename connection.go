package nexusdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexusdb/nexusdb-driver-go/internal/cluster"
	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/rpc"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// Connection is a live connection to a NexusDB server or cluster. It owns
// every background goroutine the driver spawns (transmitters, session
// pulses, transaction dispatch/demultiplex tasks); call ForceClose when the
// embedding program is done with it.
type Connection struct {
	rt      *runtime.BackgroundRuntime
	cluster *cluster.ClusterConnection
	logger  *slog.Logger

	// Databases is the entry point for listing, creating, and fetching
	// databases across every server this connection knows about.
	Databases *DatabaseManager
}

// NewPlaintextConnection opens an unauthenticated connection to a single
// server at address. Intended for local development and testing only; the
// wire protocol carries no authentication metadata on this path.
func NewPlaintextConnection(address string) (*Connection, error) {
	return newConnection([]string{address}, func(ctx context.Context, addr common.Address) (*rpc.Channel, error) {
		return rpc.OpenPlaintext(ctx, addr)
	}, nil)
}

// NewEncryptedConnection opens a TLS connection to a cluster reachable
// through seedAddresses, authenticating with credential. Topology discovery
// tries every seed concurrently and takes the first to answer.
func NewEncryptedConnection(seedAddresses []string, credential Credential) (*Connection, error) {
	return newConnection(seedAddresses, func(ctx context.Context, addr common.Address) (*rpc.Channel, error) {
		ch, _, err := rpc.OpenEncrypted(ctx, addr, credential)
		return ch, err
	}, nil)
}

func newConnection(rawAddresses []string, dial func(context.Context, common.Address) (*rpc.Channel, error), logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	addrs := make([]common.Address, len(rawAddresses))
	for i, raw := range rawAddresses {
		addr, err := common.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("nexusdb: %w", err)
		}
		addrs[i] = addr
	}

	rt := runtime.New()
	cc, err := cluster.NewClusterConnection(rt.Context(), rt, addrs, dial, logger)
	if err != nil {
		rt.ForceClose()
		return nil, err
	}

	return &Connection{
		rt:        rt,
		cluster:   cc,
		logger:    logger,
		Databases: &DatabaseManager{inner: cluster.NewDatabaseManager(cc)},
	}, nil
}

// Session opens a new session against database name. It tries the servers
// this connection knows about in turn, succeeding as soon as one accepts the
// open (mirroring the DatabaseManager's own failsafe fan-out, since session
// placement has no primary/replica distinction of its own). It moves on to
// the next server only after a retryable error (common.IsRetryable); any
// other error is returned at once.
func (c *Connection) Session(ctx context.Context, name string, sessionType SessionType, opts Options) (*Session, error) {
	servers := c.cluster.Servers()
	var lastErr error
	for _, sc := range servers {
		sess, err := cluster.OpenSession(ctx, sc, name, sessionType, opts)
		if err == nil {
			return &Session{inner: sess}, nil
		}
		lastErr = err
		if !common.IsRetryable(err) {
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("nexusdb: %w", common.ErrUnableToConnect)
	}
	return nil, lastErr
}

// ForceClose cancels every open session on every known server and tears down
// every background task. It does not close the underlying gRPC channels.
// Idempotent and safe to call more than once.
func (c *Connection) ForceClose() {
	c.cluster.ForceClose()
}
