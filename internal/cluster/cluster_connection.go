package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
	"github.com/nexusdb/nexusdb-driver-go/internal/rpc"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// ClusterConnection is the set of ServerConnections discovered from a list
// of seed addresses, sharing one BackgroundRuntime for the lifetime of the
// connection (SPEC_FULL.md §4.6). Membership is fixed after the initial
// topology handshake.
type ClusterConnection struct {
	Runtime *runtime.BackgroundRuntime

	logger *slog.Logger

	mu      sync.RWMutex
	servers map[string]*ServerConnection
}

// dialFunc opens a Channel to addr; injected so tests can substitute an
// in-process bufconn dialer without touching the TLS/plaintext split.
type dialFunc func(ctx context.Context, addr common.Address) (*rpc.Channel, error)

// NewClusterConnection probes every seed address concurrently via
// ServersAll, taking the first success as authoritative and instantiating a
// ServerConnection per advertised address. If every seed fails to connect,
// it returns a *common.ClusterUnableToConnectError carrying each attempt's
// error.
func NewClusterConnection(ctx context.Context, rt *runtime.BackgroundRuntime, seeds []common.Address, dial dialFunc, logger *slog.Logger) (*ClusterConnection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("nexusdb/cluster: no seed addresses supplied")
	}

	errs := make([]error, len(seeds))
	var once sync.Once
	var topology []string
	var seedChannel *rpc.Channel

	group, gctx := errgroup.WithContext(ctx)
	for i, addr := range seeds {
		i, addr := i, addr
		group.Go(func() error {
			ch, err := dial(gctx, addr)
			if err != nil {
				errs[i] = err
				return nil
			}
			stub := rpc.NewLazyStub(ch)
			res, err := stub.ServerManager.ServersAll(gctx, &protocol.ServersAllReq{})
			if err != nil {
				errs[i] = translateRPCError(err, "")
				ch.Close()
				return nil
			}
			once.Do(func() {
				topology = res.Servers
				seedChannel = ch
			})
			if seedChannel != ch {
				ch.Close()
			}
			return nil
		})
	}
	// The funcs passed to group.Go above always return nil, so Wait always
	// returns nil; the per-seed outcomes live in errs.
	_ = group.Wait()

	if seedChannel == nil {
		addrs := make([]string, len(seeds))
		for i, a := range seeds {
			addrs[i] = a.String()
		}
		for i, err := range errs {
			if err == nil {
				errs[i] = fmt.Errorf("nexusdb/cluster: %w", common.ErrUnableToConnect)
			}
		}
		return nil, &common.ClusterUnableToConnectError{Addresses: addrs, Causes: errs}
	}

	cc := &ClusterConnection{
		Runtime: rt,
		logger:  logger,
		servers: make(map[string]*ServerConnection),
	}

	seedAddr := seedChannel.Address
	for _, raw := range topology {
		addr, err := common.ParseAddress(raw)
		if err != nil {
			logger.Warn("ignoring malformed server address from topology", "address", raw, "error", err)
			continue
		}
		var ch *rpc.Channel
		if addr.Equal(seedAddr) {
			ch = seedChannel
		} else {
			ch, err = dial(ctx, addr)
			if err != nil {
				logger.Warn("server from topology unreachable at construction time", "address", addr, "error", err)
				continue
			}
		}
		sc, err := NewServerConnection(ctx, rt, ch, false, logger)
		if err != nil {
			logger.Warn("failed to wrap channel for server", "address", addr, "error", err)
			continue
		}
		cc.servers[addr.String()] = sc
	}
	if len(cc.servers) == 0 {
		return nil, &common.ClusterUnableToConnectError{
			Addresses: []string{seedAddr.String()},
			Causes:    []error{fmt.Errorf("nexusdb/cluster: topology from %s named no reachable servers", seedAddr)},
		}
	}
	return cc, nil
}

// Servers returns a snapshot slice of every ServerConnection currently known.
func (c *ClusterConnection) Servers() []*ServerConnection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ServerConnection, 0, len(c.servers))
	for _, sc := range c.servers {
		out = append(out, sc)
	}
	return out
}

// serverReplicas synthesises a replica list covering every currently known
// server, none marked primary, for seeding a Database whose real replica set
// cannot be fetched because no server recognises the name yet.
func (c *ClusterConnection) serverReplicas() []common.ReplicaInfo {
	servers := c.Servers()
	out := make([]common.ReplicaInfo, len(servers))
	for i, sc := range servers {
		out[i] = common.ReplicaInfo{Address: sc.Address}
	}
	return out
}

// ServerAt returns the ServerConnection for addr, if known.
func (c *ClusterConnection) ServerAt(addr common.Address) (*ServerConnection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.servers[addr.String()]
	return sc, ok
}

// ForceClose cancels every open session on every known server, then shuts
// down the shared runtime. Idempotent: the runtime's own ForceClose is
// already guarded by sync.Once, and a second call finds every server's
// session map already emptied by the first, so it sends no close requests.
func (c *ClusterConnection) ForceClose() {
	c.mu.RLock()
	servers := make([]*ServerConnection, 0, len(c.servers))
	for _, sc := range c.servers {
		servers = append(servers, sc)
	}
	c.mu.RUnlock()

	ctx := c.Runtime.Context()
	for _, sc := range servers {
		sc.mu.Lock()
		ids := make([]common.SessionID, 0, len(sc.sessions))
		for id := range sc.sessions {
			ids = append(ids, id)
		}
		sc.mu.Unlock()
		for _, id := range ids {
			if err := sc.CloseSession(ctx, id); err != nil {
				c.logger.Debug("closing session during ForceClose", "address", sc.Address, "session", id, "error", err)
			}
		}
	}
	c.Runtime.ForceClose()
}

// fetchReplicas re-fetches the replica snapshot for name by trying every
// known server in turn (SPEC_FULL.md §3.1, preserving the original's
// fetch-from-any-reachable-server semantics), stopping at the first server
// that answers successfully.
func (c *ClusterConnection) fetchReplicas(ctx context.Context, name string) (common.DatabaseInfo, error) {
	servers := c.Servers()
	var lastErr error
	for _, sc := range servers {
		info, err := sc.GetDatabaseReplicas(ctx, name)
		if err == nil {
			return info, nil
		}
		lastErr = err
		if !common.IsRetryable(err) {
			return common.DatabaseInfo{}, err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("nexusdb/cluster: %w", common.ErrUnableToConnect)
	}
	return common.DatabaseInfo{}, lastErr
}
