// Package nexusdb is the client driver for NexusDB, a distributed,
// schema-first graph database. A client program uses it to discover cluster
// topology, open authenticated sessions against named databases, run
// transactional queries that stream incremental results, and manipulate
// database and schema concepts through typed handles.
//
// Construct a Connection with NewPlaintextConnection for a single unencrypted
// server, or NewEncryptedConnection for a TLS-secured cluster reachable
// through one or more seed addresses:
//
//	conn, err := nexusdb.NewEncryptedConnection(
//		[]string{"node1.example.com:1729", "node2.example.com:1729"},
//		nexusdb.NewCredentialWithTLS("admin", "password", ""),
//	)
//
// The returned Connection owns every background goroutine the driver spawns;
// call ForceClose when the embedding program is done with it.
package nexusdb
