package protocol

import (
	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for the embedded ReplicaInfo message.
const (
	replicaFieldAddress      protowire.Number = 1
	replicaFieldDatabaseName protowire.Number = 2
	replicaFieldIsPrimary    protowire.Number = 3
	replicaFieldTerm         protowire.Number = 4
	replicaFieldIsPreferred  protowire.Number = 5
)

func marshalReplica(r common.ReplicaInfo) []byte {
	w := wire.NewWriter(32)
	w.PutString(replicaFieldAddress, r.Address.String())
	w.PutString(replicaFieldDatabaseName, r.DatabaseName)
	w.PutBool(replicaFieldIsPrimary, r.IsPrimary)
	w.PutInt64(replicaFieldTerm, r.Term)
	w.PutBool(replicaFieldIsPreferred, r.IsPreferred)
	return w.Bytes()
}

func unmarshalReplica(body []byte) (common.ReplicaInfo, error) {
	var r common.ReplicaInfo
	fields, err := wire.ParseFields(body)
	if err != nil {
		return r, err
	}
	for _, f := range fields {
		switch f.Number {
		case replicaFieldAddress:
			s, err := f.AsString()
			if err != nil {
				return r, err
			}
			addr, err := common.ParseAddress(s)
			if err != nil {
				return r, err
			}
			r.Address = addr
		case replicaFieldDatabaseName:
			s, err := f.AsString()
			if err != nil {
				return r, err
			}
			r.DatabaseName = s
		case replicaFieldIsPrimary:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.IsPrimary = v
		case replicaFieldTerm:
			v, err := f.AsInt64()
			if err != nil {
				return r, err
			}
			r.Term = v
		case replicaFieldIsPreferred:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.IsPreferred = v
		}
	}
	return r, nil
}

// Field numbers for the embedded DatabaseInfo message.
const (
	dbInfoFieldName     protowire.Number = 1
	dbInfoFieldReplicas protowire.Number = 2
)

func marshalDatabaseInfo(d common.DatabaseInfo) []byte {
	w := wire.NewWriter(32 + 32*len(d.Replicas))
	w.PutString(dbInfoFieldName, d.Name)
	for _, r := range d.Replicas {
		w.PutMessage(dbInfoFieldReplicas, marshalReplica(r))
	}
	return w.Bytes()
}

func unmarshalDatabaseInfo(body []byte) (common.DatabaseInfo, error) {
	var d common.DatabaseInfo
	fields, err := wire.ParseFields(body)
	if err != nil {
		return d, err
	}
	for _, f := range fields {
		switch f.Number {
		case dbInfoFieldName:
			s, err := f.AsString()
			if err != nil {
				return d, err
			}
			d.Name = s
		case dbInfoFieldReplicas:
			raw, err := f.AsMessage()
			if err != nil {
				return d, err
			}
			r, err := unmarshalReplica(raw)
			if err != nil {
				return d, err
			}
			d.Replicas = append(d.Replicas, r)
		}
	}
	return d, nil
}

// --- CoreDatabaseManager: Contains / Create / All ---

const nameFieldName protowire.Number = 1

// NameReq is the shared request shape for every RPC that takes just a
// database name: Contains, Create, Schema, TypeSchema, RuleSchema, Delete,
// and ClusterDatabaseManager.Get.
type NameReq struct {
	Name string
}

func (r *NameReq) Marshal() ([]byte, error) {
	w := wire.NewWriter(16 + len(r.Name))
	w.PutString(nameFieldName, r.Name)
	return w.Bytes(), nil
}

func (r *NameReq) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == nameFieldName {
			s, err := f.AsString()
			if err != nil {
				return err
			}
			r.Name = s
		}
	}
	return nil
}

const containsResFieldContains protowire.Number = 1

type ContainsRes struct {
	Contains bool
}

func (r *ContainsRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(4)
	w.PutBool(containsResFieldContains, r.Contains)
	return w.Bytes(), nil
}

func (r *ContainsRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == containsResFieldContains {
			v, err := f.AsBool()
			if err != nil {
				return err
			}
			r.Contains = v
		}
	}
	return nil
}

// CreateRes and DeleteRes carry no payload: success is the absence of an
// RPC error.
type CreateRes struct{}

func (r *CreateRes) Marshal() ([]byte, error) { return nil, nil }
func (r *CreateRes) Unmarshal([]byte) error   { return nil }

type DeleteRes struct{}

func (r *DeleteRes) Marshal() ([]byte, error) { return nil, nil }
func (r *DeleteRes) Unmarshal([]byte) error   { return nil }

// AllReq carries no fields: every server in the cluster is addressed.
type AllReq struct{}

func (r *AllReq) Marshal() ([]byte, error) { return nil, nil }
func (r *AllReq) Unmarshal([]byte) error   { return nil }

const allResFieldDatabases protowire.Number = 1

// AllRes lists every database known to the target server (CoreDatabaseManager
// variant, no replica metadata) or cluster (ClusterDatabaseManager variant,
// with replica metadata) depending on which stub issued the request.
type AllRes struct {
	Databases []common.DatabaseInfo
}

func (r *AllRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(32 * len(r.Databases))
	for _, d := range r.Databases {
		w.PutMessage(allResFieldDatabases, marshalDatabaseInfo(d))
	}
	return w.Bytes(), nil
}

func (r *AllRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	r.Databases = nil
	for _, f := range fields {
		if f.Number != allResFieldDatabases {
			continue
		}
		raw, err := f.AsMessage()
		if err != nil {
			return err
		}
		d, err := unmarshalDatabaseInfo(raw)
		if err != nil {
			return err
		}
		r.Databases = append(r.Databases, d)
	}
	return nil
}

const schemaResFieldSchema protowire.Number = 1

// SchemaRes carries a single opaque schema definition string, reused for
// Schema, TypeSchema, and RuleSchema responses.
type SchemaRes struct {
	Schema string
}

func (r *SchemaRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(16 + len(r.Schema))
	w.PutString(schemaResFieldSchema, r.Schema)
	return w.Bytes(), nil
}

func (r *SchemaRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == schemaResFieldSchema {
			s, err := f.AsString()
			if err != nil {
				return err
			}
			r.Schema = s
		}
	}
	return nil
}

const getResFieldDatabase protowire.Number = 1

// GetRes is ClusterDatabaseManager.Get's response: the named database's
// replica snapshot, or absent if it does not exist (callers treat a nil
// Database as DatabaseDoesNotExistError).
type GetRes struct {
	Database *common.DatabaseInfo
}

func (r *GetRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(64)
	if r.Database != nil {
		w.PutMessage(getResFieldDatabase, marshalDatabaseInfo(*r.Database))
	}
	return w.Bytes(), nil
}

func (r *GetRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == getResFieldDatabase {
			raw, err := f.AsMessage()
			if err != nil {
				return err
			}
			d, err := unmarshalDatabaseInfo(raw)
			if err != nil {
				return err
			}
			r.Database = &d
		}
	}
	return nil
}
