// Package wire provides the low-level encode/decode primitives the driver
// uses to serialise request and response frames. It builds directly on
// google.golang.org/protobuf/encoding/protowire rather than on generated
// descriptor-backed message types: the frames exchanged on this connection
// are internal to the driver and server, so there is no .proto contract to
// compile against, only a field-tag layout that both ends agree on.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer accumulates an encoded message body. The zero value is ready to
// use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with cap bytes of initial capacity.
func NewWriter(cap int) *Writer {
	return &Writer{buf: make([]byte, 0, cap)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) PutString(field protowire.Number, v string) {
	if v == "" {
		return
	}
	w.buf = protowire.AppendTag(w.buf, field, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *Writer) PutBytes(field protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, field, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *Writer) PutBool(field protowire.Number, v bool) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeBool(v))
}

func (w *Writer) PutInt32(field protowire.Number, v int32) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, uint64(v))
}

func (w *Writer) PutInt64(field protowire.Number, v int64) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, uint64(v))
}

func (w *Writer) PutUint64(field protowire.Number, v uint64) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

// PutMessage appends an embedded message: a length-delimited field holding
// the already-marshalled body of a nested type.
func (w *Writer) PutMessage(field protowire.Number, body []byte) {
	if body == nil {
		return
	}
	w.buf = protowire.AppendTag(w.buf, field, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, body)
}

// Field is one decoded (tag, wire type, raw value) triple produced while
// scanning a message body. Structured Unmarshal methods switch on Number and
// decode Raw according to the expected wire type for that field.
type Field struct {
	Number protowire.Number
	Type   protowire.Type
	Raw    []byte
}

// ParseFields scans buf into its constituent top-level fields. It does not
// recurse into embedded messages; callers recursively call ParseFields again
// on a Field's Raw when decoding a nested type.
func ParseFields(buf []byte) ([]Field, error) {
	var fields []Field
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]

		var raw []byte
		switch typ {
		case protowire.VarintType:
			_, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid varint for field %d: %w", num, protowire.ParseError(n))
			}
			raw = buf[:n]
		case protowire.BytesType:
			_, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid length-delimited value for field %d: %w", num, protowire.ParseError(n))
			}
			raw = buf[:n]
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid fixed32 for field %d: %w", num, protowire.ParseError(n))
			}
			raw = buf[:n]
		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return nil, fmt.Errorf("wire: invalid fixed64 for field %d: %w", num, protowire.ParseError(n))
			}
			raw = buf[:n]
		default:
			return nil, fmt.Errorf("wire: unsupported wire type %d for field %d", typ, num)
		}

		fields = append(fields, Field{Number: num, Type: typ, Raw: raw})
		buf = buf[len(raw):]
	}
	return fields, nil
}

func (f Field) AsString() (string, error) {
	v, n := protowire.ConsumeString(f.Raw)
	if n < 0 {
		return "", fmt.Errorf("wire: field %d is not a valid string", f.Number)
	}
	return v, nil
}

func (f Field) AsBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(f.Raw)
	if n < 0 {
		return nil, fmt.Errorf("wire: field %d is not a valid bytes value", f.Number)
	}
	return v, nil
}

func (f Field) AsBool() (bool, error) {
	v, n := protowire.ConsumeVarint(f.Raw)
	if n < 0 {
		return false, fmt.Errorf("wire: field %d is not a valid varint", f.Number)
	}
	return protowire.DecodeBool(v), nil
}

func (f Field) AsInt32() (int32, error) {
	v, n := protowire.ConsumeVarint(f.Raw)
	if n < 0 {
		return 0, fmt.Errorf("wire: field %d is not a valid varint", f.Number)
	}
	return int32(v), nil
}

func (f Field) AsInt64() (int64, error) {
	v, n := protowire.ConsumeVarint(f.Raw)
	if n < 0 {
		return 0, fmt.Errorf("wire: field %d is not a valid varint", f.Number)
	}
	return int64(v), nil
}

func (f Field) AsUint64() (uint64, error) {
	v, n := protowire.ConsumeVarint(f.Raw)
	if n < 0 {
		return 0, fmt.Errorf("wire: field %d is not a valid varint", f.Number)
	}
	return v, nil
}

// AsMessage returns the raw bytes of an embedded message field, ready to be
// passed back into ParseFields.
func (f Field) AsMessage() ([]byte, error) {
	return f.AsBytes()
}
