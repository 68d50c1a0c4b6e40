package nexusdb

import (
	"context"

	"github.com/nexusdb/nexusdb-driver-go/internal/cluster"
)

// Database is a handle over one named database and a snapshot of its known
// replicas. It is re-materialised from replica snapshots rather than a
// long-lived node: holding one does not keep a connection open.
type Database struct {
	inner *cluster.Database
}

// Name returns the database's name.
func (d *Database) Name() string { return d.inner.Name }

// Delete removes this database. The operation is routed to the current
// primary replica, retrying through re-seek on failover.
func (d *Database) Delete(ctx context.Context) error {
	return d.inner.Delete(ctx)
}

// Schema returns the database's full schema text, tolerating any replica.
func (d *Database) Schema(ctx context.Context) (string, error) {
	return d.inner.Schema(ctx)
}

// TypeSchema returns the database's type-only schema text.
func (d *Database) TypeSchema(ctx context.Context) (string, error) {
	return d.inner.TypeSchema(ctx)
}

// RuleSchema returns the database's rule-only schema text.
func (d *Database) RuleSchema(ctx context.Context) (string, error) {
	return d.inner.RuleSchema(ctx)
}

// DatabaseManager is the user-facing surface for listing, creating, and
// fetching databases across the cluster.
type DatabaseManager struct {
	inner *cluster.DatabaseManager
}

// Get fetches the named database's current replica snapshot, or
// DatabaseDoesNotExistError if no server recognises it.
func (m *DatabaseManager) Get(ctx context.Context, name string) (*Database, error) {
	db, err := m.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Database{inner: db}, nil
}

// Contains reports whether name exists anywhere in the cluster.
func (m *DatabaseManager) Contains(ctx context.Context, name string) (bool, error) {
	return m.inner.Contains(ctx, name)
}

// Create creates a new database named name.
func (m *DatabaseManager) Create(ctx context.Context, name string) error {
	return m.inner.Create(ctx, name)
}

// All lists every database known anywhere in the cluster.
func (m *DatabaseManager) All(ctx context.Context) ([]DatabaseInfo, error) {
	return m.inner.All(ctx)
}
