// Package protocol hand-writes the request/response message types and gRPC
// client/server stubs that a protoc-gen-go/protoc-gen-go-grpc pipeline would
// generate from the server's .proto schema. There is no .proto file checked
// into this repo (see internal/wire's package doc and SPEC_FULL.md §6): the
// message bodies are encoded with internal/wire directly, and the generated
// stub shape below is written by hand to the same contract
// protoc-gen-go-grpc emits, so that test doubles mount on a real
// grpc.Server exactly the way generated service servers do.
package protocol

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is registered with google.golang.org/grpc/encoding and selected
// per-call via grpc.CallContentSubtype, routing every RPC in this package
// through Marshal/Unmarshal below instead of gRPC's default proto codec.
const CodecName = "nxdbwire"

// Message is implemented by every request/response type in this package.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// wireCodec adapts Message's Marshal/Unmarshal to grpc/encoding.Codec.
type wireCodec struct{}

func (wireCodec) Name() string { return CodecName }

func (wireCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("protocol: %T does not implement Message", v)
	}
	return m.Marshal()
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("protocol: %T does not implement Message", v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(wireCodec{})
}
