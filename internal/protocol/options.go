package protocol

import (
	"time"

	"github.com/nexusdb/nexusdb-driver-go/internal/common"
	"github.com/nexusdb/nexusdb-driver-go/internal/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Options wire field numbers.
const (
	optFieldInfer                    protowire.Number = 1
	optFieldTraceInference           protowire.Number = 2
	optFieldExplain                  protowire.Number = 3
	optFieldParallel                 protowire.Number = 4
	optFieldPrefetch                 protowire.Number = 5
	optFieldPrefetchSize             protowire.Number = 6
	optFieldSessionIdleTimeoutMillis protowire.Number = 7
	optFieldTransactionTimeoutMillis protowire.Number = 8
	optFieldSchemaLockTimeoutMillis  protowire.Number = 9
	optFieldReadAnyReplica           protowire.Number = 10
)

// MarshalOptions encodes a common.Options into its wire body. Unset fields
// are simply absent.
func MarshalOptions(o common.Options) []byte {
	w := wire.NewWriter(32)
	if o.Infer != nil {
		w.PutBool(optFieldInfer, *o.Infer)
	}
	if o.TraceInference != nil {
		w.PutBool(optFieldTraceInference, *o.TraceInference)
	}
	if o.Explain != nil {
		w.PutBool(optFieldExplain, *o.Explain)
	}
	if o.Parallel != nil {
		w.PutBool(optFieldParallel, *o.Parallel)
	}
	if o.Prefetch != nil {
		w.PutBool(optFieldPrefetch, *o.Prefetch)
	}
	if o.PrefetchSize != nil {
		w.PutInt32(optFieldPrefetchSize, *o.PrefetchSize)
	}
	if o.SessionIdleTimeout != nil {
		w.PutInt64(optFieldSessionIdleTimeoutMillis, o.SessionIdleTimeout.Milliseconds())
	}
	if o.TransactionTimeout != nil {
		w.PutInt64(optFieldTransactionTimeoutMillis, o.TransactionTimeout.Milliseconds())
	}
	if o.SchemaLockAcquireTimeout != nil {
		w.PutInt64(optFieldSchemaLockTimeoutMillis, o.SchemaLockAcquireTimeout.Milliseconds())
	}
	if o.ReadAnyReplica != nil {
		w.PutBool(optFieldReadAnyReplica, *o.ReadAnyReplica)
	}
	return w.Bytes()
}

// UnmarshalOptions decodes a wire body produced by MarshalOptions.
func UnmarshalOptions(body []byte) (common.Options, error) {
	var o common.Options
	fields, err := wire.ParseFields(body)
	if err != nil {
		return o, err
	}
	for _, f := range fields {
		switch f.Number {
		case optFieldInfer:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.Infer = &v
		case optFieldTraceInference:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.TraceInference = &v
		case optFieldExplain:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.Explain = &v
		case optFieldParallel:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.Parallel = &v
		case optFieldPrefetch:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.Prefetch = &v
		case optFieldPrefetchSize:
			v, err := f.AsInt32()
			if err != nil {
				return o, err
			}
			o.PrefetchSize = &v
		case optFieldSessionIdleTimeoutMillis:
			v, err := f.AsInt64()
			if err != nil {
				return o, err
			}
			d := time.Duration(v) * time.Millisecond
			o.SessionIdleTimeout = &d
		case optFieldTransactionTimeoutMillis:
			v, err := f.AsInt64()
			if err != nil {
				return o, err
			}
			d := time.Duration(v) * time.Millisecond
			o.TransactionTimeout = &d
		case optFieldSchemaLockTimeoutMillis:
			v, err := f.AsInt64()
			if err != nil {
				return o, err
			}
			d := time.Duration(v) * time.Millisecond
			o.SchemaLockAcquireTimeout = &d
		case optFieldReadAnyReplica:
			v, err := f.AsBool()
			if err != nil {
				return o, err
			}
			o.ReadAnyReplica = &v
		}
	}
	return o, nil
}
