package cluster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/protocol"
	"github.com/nexusdb/nexusdb-driver-go/internal/rpc"
	"github.com/nexusdb/nexusdb-driver-go/internal/runtime"
)

// PulseInterval is the period between SessionPulse keepalives sent for
// every open session (SPEC_FULL.md §4.7).
const PulseInterval = 5 * time.Second

// ServerConnection is the per-endpoint facade the rest of the driver talks
// to: it owns a Stub, the transmitter task that serialises requests onto
// it, and the set of sessions this endpoint believes are open.
type ServerConnection struct {
	Address common.Address

	runtime *runtime.BackgroundRuntime
	stub    *rpc.Stub
	tx      *transmitter
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[common.SessionID]context.CancelFunc
}

// NewServerConnection wraps ch in a Stub, spawns its transmitter task on rt,
// and returns a ready ServerConnection. When validate is true, construction
// issues the cheap DatabasesAll liveness probe and fails fast if the server
// is unreachable.
func NewServerConnection(ctx context.Context, rt *runtime.BackgroundRuntime, ch *rpc.Channel, validate bool, logger *slog.Logger) (*ServerConnection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stub *rpc.Stub
	var err error
	if validate {
		stub, err = rpc.NewValidatedStub(ctx, ch)
	} else {
		stub = rpc.NewLazyStub(ch)
	}
	if err != nil {
		return nil, err
	}

	sc := &ServerConnection{
		Address:  ch.Address,
		runtime:  rt,
		stub:     stub,
		tx:       newTransmitter(),
		logger:   logger.With("address", ch.Address.String()),
		sessions: make(map[common.SessionID]context.CancelFunc),
	}
	if err := rt.Spawn(sc.tx.run); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *ServerConnection) call(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if !s.runtime.IsOpen() {
		return nil, common.ErrClientIsClosed
	}
	return s.tx.submit(ctx, fn, true)
}

func (s *ServerConnection) callBlocking(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if !s.runtime.IsOpen() {
		return nil, common.ErrClientIsClosed
	}
	return s.tx.submit(ctx, fn, false)
}

// DatabaseExists reports whether name exists on this server.
func (s *ServerConnection) DatabaseExists(ctx context.Context, name string) (bool, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		res, err := s.stub.CoreDatabases.Contains(ctx, &protocol.NameReq{Name: name})
		if err != nil {
			return nil, translateRPCError(err, "")
		}
		return res.Contains, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// CreateDatabase creates a new database named name on this server.
func (s *ServerConnection) CreateDatabase(ctx context.Context, name string) error {
	_, err := s.call(ctx, func(ctx context.Context) (any, error) {
		_, err := s.stub.CoreDatabases.Create(ctx, &protocol.NameReq{Name: name})
		if err != nil {
			return nil, translateRPCError(err, "")
		}
		return nil, nil
	})
	return err
}

// GetDatabaseReplicas fetches the full replica snapshot for name from the
// cluster-aware manager (carries replica metadata, unlike AllDatabases).
func (s *ServerConnection) GetDatabaseReplicas(ctx context.Context, name string) (common.DatabaseInfo, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		res, err := s.stub.ClusterDatabases.Get(ctx, &protocol.NameReq{Name: name})
		if err != nil {
			return nil, translateRPCError(err, name)
		}
		if res.Database == nil {
			return nil, &common.DatabaseDoesNotExistError{Name: name}
		}
		return *res.Database, nil
	})
	if err != nil {
		return common.DatabaseInfo{}, err
	}
	return v.(common.DatabaseInfo), nil
}

// AllDatabases lists every database this server knows about.
func (s *ServerConnection) AllDatabases(ctx context.Context) ([]common.DatabaseInfo, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		res, err := s.stub.CoreDatabases.All(ctx, &protocol.AllReq{})
		if err != nil {
			return nil, translateRPCError(err, "")
		}
		return res.Databases, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]common.DatabaseInfo), nil
}

// DatabaseSchema returns the full schema text for name.
func (s *ServerConnection) DatabaseSchema(ctx context.Context, name string) (string, error) {
	return s.schemaCall(ctx, name, s.stub.CoreDatabase.Schema)
}

// DatabaseTypeSchema returns the type-only schema text for name.
func (s *ServerConnection) DatabaseTypeSchema(ctx context.Context, name string) (string, error) {
	return s.schemaCall(ctx, name, s.stub.CoreDatabase.TypeSchema)
}

// DatabaseRuleSchema returns the rule-only schema text for name.
func (s *ServerConnection) DatabaseRuleSchema(ctx context.Context, name string) (string, error) {
	return s.schemaCall(ctx, name, s.stub.CoreDatabase.RuleSchema)
}

type schemaRPC func(ctx context.Context, req *protocol.NameReq, opts ...grpc.CallOption) (*protocol.SchemaRes, error)

func (s *ServerConnection) schemaCall(ctx context.Context, name string, rpcFn schemaRPC) (string, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		res, err := rpcFn(ctx, &protocol.NameReq{Name: name})
		if err != nil {
			return nil, translateRPCError(err, name)
		}
		return res.Schema, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// DeleteDatabase deletes name from this server.
func (s *ServerConnection) DeleteDatabase(ctx context.Context, name string) error {
	_, err := s.call(ctx, func(ctx context.Context) (any, error) {
		_, err := s.stub.CoreDatabase.Delete(ctx, &protocol.NameReq{Name: name})
		if err != nil {
			return nil, translateRPCError(err, name)
		}
		return nil, nil
	})
	return err
}

// OpenSession opens a new session of sessionType against database name,
// registers it in the open-sessions map, and spawns its pulse task.
func (s *ServerConnection) OpenSession(ctx context.Context, name string, sessionType common.SessionType, opts common.Options) (common.SessionID, time.Duration, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		res, err := s.stub.Session.Open(ctx, &protocol.SessionOpenReq{Database: name, Type: sessionType, Options: opts})
		if err != nil {
			return nil, translateRPCError(err, name)
		}
		return res, nil
	})
	if err != nil {
		return common.SessionID{}, 0, err
	}
	res := v.(*protocol.SessionOpenRes)

	pulseCtx, cancel := context.WithCancel(s.runtime.Context())
	s.mu.Lock()
	s.sessions[res.SessionID] = cancel
	s.mu.Unlock()

	if err := s.runtime.Spawn(func(ctx context.Context) { s.pulseLoop(pulseCtx, res.SessionID) }); err != nil {
		cancel()
		s.mu.Lock()
		delete(s.sessions, res.SessionID)
		s.mu.Unlock()
		return common.SessionID{}, 0, err
	}
	return res.SessionID, res.ServerLatency, nil
}

// pulseLoop sends a keepalive pulse every PulseInterval until cancelled.
// Failures are logged and swallowed: the server's own idle timeout is the
// backstop, and the next real operation surfaces the closed session.
func (s *ServerConnection) pulseLoop(ctx context.Context, id common.SessionID) {
	ticker := time.NewTicker(PulseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := s.call(ctx, func(ctx context.Context) (any, error) {
				_, err := s.stub.Session.Pulse(ctx, &protocol.SessionIDReq{SessionID: id})
				return nil, err
			})
			if err != nil {
				s.logger.Debug("session pulse failed", "session", id, "error", err)
			}
		}
	}
}

// CloseSession cancels id's pulse task, removes it from the open-sessions
// map, and sends a best-effort close RPC through a blocking reply sink so
// the call is known to reach the transmitter even from a defer.
func (s *ServerConnection) CloseSession(ctx context.Context, id common.SessionID) error {
	s.mu.Lock()
	cancel, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}

	_, err := s.callBlocking(ctx, func(ctx context.Context) (any, error) {
		_, err := s.stub.Session.Close(ctx, &protocol.SessionIDReq{SessionID: id})
		if err != nil {
			return nil, translateRPCError(err, "")
		}
		return nil, nil
	})
	return err
}

// OpenTransaction opens the bidi Transact stream for sessionID and hands
// back a *Transaction with its own dispatch/demultiplex tasks already
// spawned and the initial handshake acknowledged.
func (s *ServerConnection) OpenTransaction(ctx context.Context, sessionID common.SessionID, txType common.TransactionType, opts common.Options, networkLatency time.Duration) (*Transaction, error) {
	v, err := s.call(ctx, func(ctx context.Context) (any, error) {
		stream, err := s.stub.Transaction.Transact(ctx)
		if err != nil {
			return nil, translateRPCError(err, "")
		}
		return stream, nil
	})
	if err != nil {
		return nil, err
	}
	stream := v.(protocol.TransactionStreamClient)

	open := protocol.TransactionOpenReq{
		SessionID:      sessionID,
		Type:           txType,
		Options:        opts,
		NetworkLatency: networkLatency,
	}
	return newTransaction(ctx, s.runtime, stream, open, s.logger)
}
