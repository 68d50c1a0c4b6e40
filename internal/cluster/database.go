package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
)

// maxFailoverAttempts bounds RunOnPrimaryReplica's re-seek loop
// (SPEC_FULL.md §4.6).
const maxFailoverAttempts = 10

// failoverDelay is the pause between re-seek attempts.
const failoverDelay = 2 * time.Second

// ServerDatabaseHandle is the per-replica handle a retry combinator task
// closure runs against: one server connection plus the database name as
// that replica itself reports it (SPEC_FULL.md §3.1 — a replica snapshot
// carries its own DatabaseName so it stays self-describing mid-rename).
type ServerDatabaseHandle struct {
	Server *ServerConnection
	Name   string
}

// ReplicaTask is the shape every retry combinator invokes: given a replica
// handle and whether this is the first attempt (as opposed to a retry after
// failover), do the work and report success or a classified error.
type ReplicaTask func(ctx context.Context, db *ServerDatabaseHandle, isFirstRun bool) error

// Database is a value-object handle over a database name and a snapshot of
// its known replicas (SPEC_FULL.md §9: re-materialised from replica
// snapshots, not a long-lived node in a graph). It is safe for concurrent
// use; refreshing replicas replaces the snapshot atomically rather than
// patching it in place.
type Database struct {
	Name string

	cluster *ClusterConnection

	mu       sync.RWMutex
	replicas []common.ReplicaInfo
}

func newDatabase(cluster *ClusterConnection, info common.DatabaseInfo) *Database {
	return &Database{Name: info.Name, cluster: cluster, replicas: append([]common.ReplicaInfo(nil), info.Replicas...)}
}

func (d *Database) snapshotReplicas() []common.ReplicaInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]common.ReplicaInfo(nil), d.replicas...)
}

func (d *Database) setReplicas(replicas []common.ReplicaInfo) {
	d.mu.Lock()
	d.replicas = append([]common.ReplicaInfo(nil), replicas...)
	d.mu.Unlock()
}

func (d *Database) currentPrimary() (common.ReplicaInfo, bool) {
	return common.DatabaseInfo{Replicas: d.snapshotReplicas()}.PrimaryReplica()
}

// seekPrimaryReplica re-fetches this database's replicas from any reachable
// server (SPEC_FULL.md §4.6) and returns the primary if one is advertised.
func (d *Database) seekPrimaryReplica(ctx context.Context) (common.ReplicaInfo, error) {
	info, err := d.cluster.fetchReplicas(ctx, d.Name)
	if err != nil {
		return common.ReplicaInfo{}, err
	}
	d.setReplicas(info.Replicas)
	primary, ok := info.PrimaryReplica()
	if !ok {
		return common.ReplicaInfo{}, fmt.Errorf("nexusdb/cluster: %w: no primary advertised for %q", common.ErrClusterReplicaNotPrimary, d.Name)
	}
	return primary, nil
}

func (d *Database) handleFor(r common.ReplicaInfo) (*ServerDatabaseHandle, bool) {
	sc, ok := d.cluster.ServerAt(r.Address)
	if !ok {
		return nil, false
	}
	name := r.DatabaseName
	if name == "" {
		name = d.Name
	}
	return &ServerDatabaseHandle{Server: sc, Name: name}, true
}

// RunOnAnyReplica iterates the database's known replicas in list order,
// invoking task against each until one succeeds. ErrUnableToConnect moves on
// to the next replica; any other error (including ErrClusterReplicaNotPrimary,
// left for RunFailsafe to escalate) returns immediately.
func (d *Database) RunOnAnyReplica(ctx context.Context, task ReplicaTask) error {
	replicas := d.snapshotReplicas()
	if len(replicas) == 0 {
		info, err := d.cluster.fetchReplicas(ctx, d.Name)
		if err != nil {
			return err
		}
		d.setReplicas(info.Replicas)
		replicas = info.Replicas
	}

	var lastErr error
	tried := 0
	for _, r := range replicas {
		handle, ok := d.handleFor(r)
		if !ok {
			continue
		}
		tried++
		err := task(ctx, handle, tried == 1)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, common.ErrUnableToConnect) {
			continue
		}
		return err
	}
	if tried == 0 || lastErr == nil {
		return &common.ClusterUnableToConnectError{Addresses: replicaAddresses(replicas)}
	}
	return lastErr
}

// RunOnPrimaryReplica determines the current primary (re-seeking if none is
// known) and invokes task against it, retrying on ErrClusterReplicaNotPrimary
// or ErrUnableToConnect with a 2-second delay between attempts, up to
// maxFailoverAttempts.
func (d *Database) RunOnPrimaryReplica(ctx context.Context, task ReplicaTask) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = failoverDelay
	bo.MaxInterval = failoverDelay
	bo.Multiplier = 1
	bo.RandomizationFactor = 0

	var lastErr error
	for attempt := 1; attempt <= maxFailoverAttempts; attempt++ {
		primary, ok := d.currentPrimary()
		if !ok {
			p, err := d.seekPrimaryReplica(ctx)
			if err != nil {
				lastErr = err
				if waitErr := sleepBackoff(ctx, bo); waitErr != nil {
					return waitErr
				}
				continue
			}
			primary = p
		}

		handle, ok := d.handleFor(primary)
		if !ok {
			if _, err := d.seekPrimaryReplica(ctx); err != nil {
				lastErr = err
			}
			if waitErr := sleepBackoff(ctx, bo); waitErr != nil {
				return waitErr
			}
			continue
		}

		err := task(ctx, handle, attempt == 1)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, common.ErrClusterReplicaNotPrimary) || errors.Is(err, common.ErrUnableToConnect) {
			d.setReplicas(nil) // force re-seek next attempt
			if waitErr := sleepBackoff(ctx, bo); waitErr != nil {
				return waitErr
			}
			continue
		}
		return err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("nexusdb/cluster: %w", common.ErrClusterReplicaNotPrimary)
	}
	return &common.ClusterUnableToConnectError{Addresses: []string{d.Name}, Causes: []error{lastErr}}
}

// RunFailsafe tries any replica first; if the chosen replica rejects the
// operation because it is not primary, it escalates to RunOnPrimaryReplica.
func (d *Database) RunFailsafe(ctx context.Context, task ReplicaTask) error {
	err := d.RunOnAnyReplica(ctx, task)
	if errors.Is(err, common.ErrClusterReplicaNotPrimary) {
		return d.RunOnPrimaryReplica(ctx, task)
	}
	return err
}

// Delete removes this database. It is primary-only: the server rejects
// deletes routed to a non-primary replica, so this always goes through
// RunOnPrimaryReplica.
func (d *Database) Delete(ctx context.Context) error {
	return d.RunOnPrimaryReplica(ctx, func(ctx context.Context, db *ServerDatabaseHandle, _ bool) error {
		return db.Server.DeleteDatabase(ctx, db.Name)
	})
}

// Schema returns the full schema text, tolerating any replica.
func (d *Database) Schema(ctx context.Context) (string, error) {
	return d.schemaFailsafe(ctx, (*ServerConnection).DatabaseSchema)
}

// TypeSchema returns the type-only schema text, tolerating any replica.
func (d *Database) TypeSchema(ctx context.Context) (string, error) {
	return d.schemaFailsafe(ctx, (*ServerConnection).DatabaseTypeSchema)
}

// RuleSchema returns the rule-only schema text, tolerating any replica.
func (d *Database) RuleSchema(ctx context.Context) (string, error) {
	return d.schemaFailsafe(ctx, (*ServerConnection).DatabaseRuleSchema)
}

func (d *Database) schemaFailsafe(ctx context.Context, fn func(*ServerConnection, context.Context, string) (string, error)) (string, error) {
	var out string
	err := d.RunFailsafe(ctx, func(ctx context.Context, db *ServerDatabaseHandle, _ bool) error {
		s, err := fn(db.Server, ctx, db.Name)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

func replicaAddresses(replicas []common.ReplicaInfo) []string {
	out := make([]string, len(replicas))
	for i, r := range replicas {
		out[i] = r.Address.String()
	}
	return out
}

func sleepBackoff(ctx context.Context, bo backoff.BackOff) error {
	select {
	case <-time.After(bo.NextBackOff()):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DatabaseManager is the user-facing surface over ClusterConnection and
// ServerConnection database operations (SPEC_FULL.md §4.9).
type DatabaseManager struct {
	cluster *ClusterConnection
}

// NewDatabaseManager wraps cluster in a DatabaseManager.
func NewDatabaseManager(cluster *ClusterConnection) *DatabaseManager {
	return &DatabaseManager{cluster: cluster}
}

// Get fetches the named database's current replica snapshot and returns a
// handle over it, or DatabaseDoesNotExistError if no server recognises it.
func (m *DatabaseManager) Get(ctx context.Context, name string) (*Database, error) {
	info, err := m.cluster.fetchReplicas(ctx, name)
	if err != nil {
		return nil, err
	}
	return newDatabase(m.cluster, info), nil
}

// probeDatabase builds a Database handle for name so Contains and Create can
// route through the same RunFailsafe combinator Delete and the schema
// readers use. Unlike Get, a DatabaseDoesNotExistError from the replica fetch
// is not an error here — name may simply not exist yet — and neither is a
// successful fetch that comes back with no replicas listed, since a
// Contains/Create RPC is answered by the server itself rather than a
// specific replica. Either case seeds the handle from every currently known
// cluster server instead, letting RunOnAnyReplica/RunOnPrimaryReplica fan out
// over them with the usual skip-unreachable and re-seek-on-failover
// behaviour.
func (m *DatabaseManager) probeDatabase(ctx context.Context, name string) (*Database, error) {
	info, err := m.cluster.fetchReplicas(ctx, name)
	if err != nil {
		var notExist *common.DatabaseDoesNotExistError
		if !errors.As(err, &notExist) {
			return nil, err
		}
		info = common.DatabaseInfo{Name: name}
	}
	if len(info.Replicas) == 0 {
		info.Replicas = m.cluster.serverReplicas()
	}
	return newDatabase(m.cluster, info), nil
}

// Contains reports whether name exists anywhere in the cluster, routed
// through RunFailsafe so a stale or unreachable replica does not mask a
// server that actually knows the answer.
func (m *DatabaseManager) Contains(ctx context.Context, name string) (bool, error) {
	db, err := m.probeDatabase(ctx, name)
	if err != nil {
		return false, err
	}
	var exists bool
	err = db.RunFailsafe(ctx, func(ctx context.Context, h *ServerDatabaseHandle, _ bool) error {
		ok, err := h.Server.DatabaseExists(ctx, name)
		if err != nil {
			return err
		}
		exists = ok
		return nil
	})
	return exists, err
}

// Create creates name on the cluster, routed through RunFailsafe the same
// way Contains is: the server itself is responsible for cluster-internal
// routing to whichever node must own the creation, but reaching that server
// in the first place still needs failover.
func (m *DatabaseManager) Create(ctx context.Context, name string) error {
	db, err := m.probeDatabase(ctx, name)
	if err != nil {
		return err
	}
	return db.RunFailsafe(ctx, func(ctx context.Context, h *ServerDatabaseHandle, _ bool) error {
		return h.Server.CreateDatabase(ctx, name)
	})
}

// All lists every database known anywhere in the cluster. It succeeds if any
// single server answers; if every server fails, it returns
// ClusterAllNodesFailedError with each server's diagnostic.
func (m *DatabaseManager) All(ctx context.Context) ([]common.DatabaseInfo, error) {
	servers := m.cluster.Servers()
	causes := make(map[string]error, len(servers))
	for _, sc := range servers {
		dbs, err := sc.AllDatabases(ctx)
		if err == nil {
			return dbs, nil
		}
		causes[sc.Address.String()] = err
	}
	return nil, &common.ClusterAllNodesFailedError{Database: "*", Causes: causes}
}
