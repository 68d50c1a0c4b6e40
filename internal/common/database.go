package common

// ReplicaInfo describes one replica of a database as advertised by the
// server. DatabaseName is carried per-replica (not just on the owning
// DatabaseInfo) so that a replica snapshot taken mid-rename is still
// self-describing, matching the original driver's wire model.
type ReplicaInfo struct {
	Address      Address
	DatabaseName string
	IsPrimary    bool
	Term         int64
	IsPreferred  bool
}

// DatabaseInfo is a database's name plus a snapshot of its known replicas.
// Replica lists are re-fetched on failover, never patched in place.
type DatabaseInfo struct {
	Name     string
	Replicas []ReplicaInfo
}

// PrimaryReplica returns the highest-term replica with IsPrimary set, and
// whether one was found. Ties are broken by Term: the latest term wins.
func (d DatabaseInfo) PrimaryReplica() (ReplicaInfo, bool) {
	var best ReplicaInfo
	found := false
	for _, r := range d.Replicas {
		if !r.IsPrimary {
			continue
		}
		if !found || r.Term > best.Term {
			best = r
			found = true
		}
	}
	return best, found
}
