package protocol

import (
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	openReqFieldSessionID      protowire.Number = 1
	openReqFieldType           protowire.Number = 2
	openReqFieldOptions        protowire.Number = 3
	openReqFieldNetworkLatency protowire.Number = 4
)

// TransactionOpenReq is the payload of the first Req sent on a freshly
// opened transaction stream; it carries the session it belongs to, the
// requested transaction type, effective options, and the client's estimate
// of network latency (used by the server to size its own timeouts).
type TransactionOpenReq struct {
	SessionID      common.SessionID
	Type           common.TransactionType
	Options        common.Options
	NetworkLatency time.Duration
}

func marshalTransactionOpen(o TransactionOpenReq) []byte {
	w := wire.NewWriter(64)
	w.PutBytes(openReqFieldSessionID, o.SessionID[:])
	w.PutInt32(openReqFieldType, int32(o.Type))
	w.PutMessage(openReqFieldOptions, MarshalOptions(o.Options))
	w.PutInt64(openReqFieldNetworkLatency, o.NetworkLatency.Milliseconds())
	return w.Bytes()
}

func unmarshalTransactionOpen(body []byte) (TransactionOpenReq, error) {
	var o TransactionOpenReq
	fields, err := wire.ParseFields(body)
	if err != nil {
		return o, err
	}
	for _, f := range fields {
		switch f.Number {
		case openReqFieldSessionID:
			b, err := f.AsBytes()
			if err != nil {
				return o, err
			}
			if len(b) != len(o.SessionID) {
				return o, errInvalidIDLength("session id", len(b))
			}
			copy(o.SessionID[:], b)
		case openReqFieldType:
			v, err := f.AsInt32()
			if err != nil {
				return o, err
			}
			o.Type = common.TransactionType(v)
		case openReqFieldOptions:
			raw, err := f.AsMessage()
			if err != nil {
				return o, err
			}
			opts, err := UnmarshalOptions(raw)
			if err != nil {
				return o, err
			}
			o.Options = opts
		case openReqFieldNetworkLatency:
			v, err := f.AsInt64()
			if err != nil {
				return o, err
			}
			o.NetworkLatency = time.Duration(v) * time.Millisecond
		}
	}
	return o, nil
}

const (
	reqFieldReqID    protowire.Number = 1
	reqFieldOpen     protowire.Number = 2
	reqFieldCommit   protowire.Number = 3
	reqFieldRollback protowire.Number = 4
	reqFieldStream   protowire.Number = 5
	reqFieldPayload  protowire.Number = 6
)

// Req is one logical request multiplexed onto a transaction stream. Exactly
// one of Open, Commit, Rollback, Stream, or a non-nil Payload is meaningful;
// Payload is the opaque extension point for the query-layer collaborator
// described in SPEC_FULL.md §1 — this core never interprets it.
type Req struct {
	ReqID    common.RequestID
	Open     *TransactionOpenReq
	Commit   bool
	Rollback bool
	Stream   bool
	Payload  []byte
}

func (r *Req) marshalInto(w *wire.Writer) {
	w.PutBytes(reqFieldReqID, r.ReqID[:])
	if r.Open != nil {
		w.PutMessage(reqFieldOpen, marshalTransactionOpen(*r.Open))
	}
	if r.Commit {
		w.PutBool(reqFieldCommit, true)
	}
	if r.Rollback {
		w.PutBool(reqFieldRollback, true)
	}
	if r.Stream {
		w.PutBool(reqFieldStream, true)
	}
	w.PutBytes(reqFieldPayload, r.Payload)
}

func unmarshalReq(body []byte) (Req, error) {
	var r Req
	fields, err := wire.ParseFields(body)
	if err != nil {
		return r, err
	}
	for _, f := range fields {
		switch f.Number {
		case reqFieldReqID:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			if len(b) != len(r.ReqID) {
				return r, errInvalidIDLength("request id", len(b))
			}
			copy(r.ReqID[:], b)
		case reqFieldOpen:
			raw, err := f.AsMessage()
			if err != nil {
				return r, err
			}
			open, err := unmarshalTransactionOpen(raw)
			if err != nil {
				return r, err
			}
			r.Open = &open
		case reqFieldCommit:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.Commit = v
		case reqFieldRollback:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.Rollback = v
		case reqFieldStream:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.Stream = v
		case reqFieldPayload:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			r.Payload = b
		}
	}
	return r, nil
}

const (
	resFieldReqID   protowire.Number = 1
	resFieldOK      protowire.Number = 2
	resFieldError   protowire.Number = 3
	resFieldPayload protowire.Number = 4
)

// Res is a complete, single-value reply to one Req.
type Res struct {
	ReqID   common.RequestID
	OK      bool
	Error   string
	Payload []byte
}

func (r *Res) marshalInto(w *wire.Writer) {
	w.PutBytes(resFieldReqID, r.ReqID[:])
	w.PutBool(resFieldOK, r.OK)
	w.PutString(resFieldError, r.Error)
	w.PutBytes(resFieldPayload, r.Payload)
}

func unmarshalRes(body []byte) (Res, error) {
	var r Res
	fields, err := wire.ParseFields(body)
	if err != nil {
		return r, err
	}
	for _, f := range fields {
		switch f.Number {
		case resFieldReqID:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			if len(b) != len(r.ReqID) {
				return r, errInvalidIDLength("request id", len(b))
			}
			copy(r.ReqID[:], b)
		case resFieldOK:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.OK = v
		case resFieldError:
			s, err := f.AsString()
			if err != nil {
				return r, err
			}
			r.Error = s
		case resFieldPayload:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			r.Payload = b
		}
	}
	return r, nil
}

const (
	resPartFieldReqID   protowire.Number = 1
	resPartFieldDone    protowire.Number = 2
	resPartFieldPayload protowire.Number = 3
)

// ResPart is one chunk of a streamed reply to one Req. Done marks the final
// chunk; the demultiplexer removes the sink for ReqID upon seeing it.
type ResPart struct {
	ReqID   common.RequestID
	Done    bool
	Payload []byte
}

func (r *ResPart) marshalInto(w *wire.Writer) {
	w.PutBytes(resPartFieldReqID, r.ReqID[:])
	w.PutBool(resPartFieldDone, r.Done)
	w.PutBytes(resPartFieldPayload, r.Payload)
}

func unmarshalResPart(body []byte) (ResPart, error) {
	var r ResPart
	fields, err := wire.ParseFields(body)
	if err != nil {
		return r, err
	}
	for _, f := range fields {
		switch f.Number {
		case resPartFieldReqID:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			if len(b) != len(r.ReqID) {
				return r, errInvalidIDLength("request id", len(b))
			}
			copy(r.ReqID[:], b)
		case resPartFieldDone:
			v, err := f.AsBool()
			if err != nil {
				return r, err
			}
			r.Done = v
		case resPartFieldPayload:
			b, err := f.AsBytes()
			if err != nil {
				return r, err
			}
			r.Payload = b
		}
	}
	return r, nil
}

const clientFrameFieldReqs protowire.Number = 1

// ClientFrame is one message sent client-to-server: a batch of Reqs
// accumulated by the dispatch buffer (SPEC_FULL.md §4.8) and flushed
// together to amortise stream overhead.
type ClientFrame struct {
	Reqs []Req
}

func (f *ClientFrame) Marshal() ([]byte, error) {
	w := wire.NewWriter(64 * len(f.Reqs))
	for i := range f.Reqs {
		inner := wire.NewWriter(64)
		f.Reqs[i].marshalInto(inner)
		w.PutMessage(clientFrameFieldReqs, inner.Bytes())
	}
	return w.Bytes(), nil
}

func (f *ClientFrame) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	f.Reqs = nil
	for _, fld := range fields {
		if fld.Number != clientFrameFieldReqs {
			continue
		}
		raw, err := fld.AsMessage()
		if err != nil {
			return err
		}
		req, err := unmarshalReq(raw)
		if err != nil {
			return err
		}
		f.Reqs = append(f.Reqs, req)
	}
	return nil
}

const (
	serverFrameFieldRes     protowire.Number = 1
	serverFrameFieldResPart protowire.Number = 2
)

// ServerFrame is one message sent server-to-client: either a
// complete Res or one chunk of a ResPart stream, never both.
type ServerFrame struct {
	Res     *Res
	ResPart *ResPart
}

func (f *ServerFrame) Marshal() ([]byte, error) {
	w := wire.NewWriter(64)
	if f.Res != nil {
		inner := wire.NewWriter(48)
		f.Res.marshalInto(inner)
		w.PutMessage(serverFrameFieldRes, inner.Bytes())
	}
	if f.ResPart != nil {
		inner := wire.NewWriter(48)
		f.ResPart.marshalInto(inner)
		w.PutMessage(serverFrameFieldResPart, inner.Bytes())
	}
	return w.Bytes(), nil
}

func (f *ServerFrame) Unmarshal(data []byte) error {
	fields, err := wire.ParseFields(data)
	if err != nil {
		return err
	}
	f.Res = nil
	f.ResPart = nil
	for _, fld := range fields {
		switch fld.Number {
		case serverFrameFieldRes:
			raw, err := fld.AsMessage()
			if err != nil {
				return err
			}
			res, err := unmarshalRes(raw)
			if err != nil {
				return err
			}
			f.Res = &res
		case serverFrameFieldResPart:
			raw, err := fld.AsMessage()
			if err != nil {
				return err
			}
			part, err := unmarshalResPart(raw)
			if err != nil {
				return err
			}
			f.ResPart = &part
		}
	}
	return nil
}
