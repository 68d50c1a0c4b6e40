package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestWriterRoundTripScalars(t *testing.T) {
	w := NewWriter(64)
	w.PutString(1, "alice")
	w.PutBool(2, true)
	w.PutInt32(3, -7)
	w.PutInt64(4, 1<<40)
	w.PutUint64(5, 42)
	w.PutBytes(6, []byte{0xde, 0xad, 0xbe, 0xef})

	fields, err := ParseFields(w.Bytes())
	require.NoError(t, err)
	require.Len(t, fields, 6)

	s, err := fields[0].AsString()
	require.NoError(t, err)
	assert.Equal(t, "alice", s)

	b, err := fields[1].AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	i32, err := fields[2].AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i32)

	i64, err := fields[3].AsInt64()
	require.NoError(t, err)
	assert.EqualValues(t, 1<<40, i64)

	u64, err := fields[4].AsUint64()
	require.NoError(t, err)
	assert.EqualValues(t, 42, u64)

	raw, err := fields[5].AsBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, raw)
}

func TestWriterOmitsZeroValues(t *testing.T) {
	w := NewWriter(8)
	w.PutString(1, "")
	w.PutBytes(2, nil)
	assert.Empty(t, w.Bytes())
}

func TestPutMessageNested(t *testing.T) {
	inner := NewWriter(8)
	inner.PutString(1, "nested-value")

	outer := NewWriter(16)
	outer.PutMessage(1, inner.Bytes())

	fields, err := ParseFields(outer.Bytes())
	require.NoError(t, err)
	require.Len(t, fields, 1)

	nestedBody, err := fields[0].AsMessage()
	require.NoError(t, err)

	nestedFields, err := ParseFields(nestedBody)
	require.NoError(t, err)
	require.Len(t, nestedFields, 1)

	s, err := nestedFields[0].AsString()
	require.NoError(t, err)
	assert.Equal(t, "nested-value", s)
}

func TestParseFieldsRejectsTruncatedVarint(t *testing.T) {
	buf := protowire.AppendTag(nil, 1, protowire.VarintType)
	buf = append(buf, 0x80) // continuation bit set, no terminating byte
	_, err := ParseFields(buf)
	assert.Error(t, err)
}

func TestParseFieldsRejectsUnsupportedWireType(t *testing.T) {
	buf := protowire.AppendTag(nil, 1, protowire.StartGroupType)
	_, err := ParseFields(buf)
	assert.Error(t, err)
}
