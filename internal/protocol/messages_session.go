package protocol

import (
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	sessionOpenReqFieldDatabase protowire.Number = 1
	sessionOpenReqFieldType     protowire.Number = 2
	sessionOpenReqFieldOptions  protowire.Number = 3
)

// SessionOpenReq opens a new session of Type against Database.
type SessionOpenReq struct {
	Database string
	Type     common.SessionType
	Options  common.Options
}

func (r *SessionOpenReq) Marshal() ([]byte, error) {
	w := wire.NewWriter(64)
	w.PutString(sessionOpenReqFieldDatabase, r.Database)
	w.PutInt32(sessionOpenReqFieldType, int32(r.Type))
	w.PutMessage(sessionOpenReqFieldOptions, MarshalOptions(r.Options))
	return w.Bytes(), nil
}

func (r *SessionOpenReq) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		switch f.Number {
		case sessionOpenReqFieldDatabase:
			s, err := f.AsString()
			if err != nil {
				return err
			}
			r.Database = s
		case sessionOpenReqFieldType:
			v, err := f.AsInt32()
			if err != nil {
				return err
			}
			r.Type = common.SessionType(v)
		case sessionOpenReqFieldOptions:
			raw, err := f.AsMessage()
			if err != nil {
				return err
			}
			opts, err := UnmarshalOptions(raw)
			if err != nil {
				return err
			}
			r.Options = opts
		}
	}
	return nil
}

const (
	sessionOpenResFieldSessionID     protowire.Number = 1
	sessionOpenResFieldServerLatency protowire.Number = 2
)

// SessionOpenRes carries the server-issued SessionID and the server's
// reported processing latency for the open call. The cluster Session keeps
// it as ServerLatency; pulses run on a fixed interval that does not use it.
type SessionOpenRes struct {
	SessionID     common.SessionID
	ServerLatency time.Duration
}

func (r *SessionOpenRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(32)
	w.PutBytes(sessionOpenResFieldSessionID, r.SessionID[:])
	w.PutInt64(sessionOpenResFieldServerLatency, r.ServerLatency.Milliseconds())
	return w.Bytes(), nil
}

func (r *SessionOpenRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		switch f.Number {
		case sessionOpenResFieldSessionID:
			b, err := f.AsBytes()
			if err != nil {
				return err
			}
			if len(b) != len(r.SessionID) {
				return errInvalidIDLength("session id", len(b))
			}
			copy(r.SessionID[:], b)
		case sessionOpenResFieldServerLatency:
			v, err := f.AsInt64()
			if err != nil {
				return err
			}
			r.ServerLatency = time.Duration(v) * time.Millisecond
		}
	}
	return nil
}

const sessionIDReqField protowire.Number = 1

// SessionIDReq is the shared request shape for Close and Pulse: both take
// only the target SessionID.
type SessionIDReq struct {
	SessionID common.SessionID
}

func (r *SessionIDReq) Marshal() ([]byte, error) {
	w := wire.NewWriter(20)
	w.PutBytes(sessionIDReqField, r.SessionID[:])
	return w.Bytes(), nil
}

func (r *SessionIDReq) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == sessionIDReqField {
			b, err := f.AsBytes()
			if err != nil {
				return err
			}
			if len(b) != len(r.SessionID) {
				return errInvalidIDLength("session id", len(b))
			}
			copy(r.SessionID[:], b)
		}
	}
	return nil
}

// SessionCloseRes carries no payload; SessionPulseRes carries only Alive.
type SessionCloseRes struct{}

func (r *SessionCloseRes) Marshal() ([]byte, error) { return nil, nil }
func (r *SessionCloseRes) Unmarshal([]byte) error   { return nil }

type SessionPulseRes struct{ Alive bool }

const sessionPulseResFieldAlive protowire.Number = 1

func (r *SessionPulseRes) Marshal() ([]byte, error) {
	w := wire.NewWriter(4)
	w.PutBool(sessionPulseResFieldAlive, r.Alive)
	return w.Bytes(), nil
}

func (r *SessionPulseRes) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if f.Number == sessionPulseResFieldAlive {
			v, err := f.AsBool()
			if err != nil {
				return err
			}
			r.Alive = v
		}
	}
	return nil
}
