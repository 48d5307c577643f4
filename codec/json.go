package codec

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// JSONCodec encodes with protojson. An empty Indent produces compact output.
type JSONCodec struct {
	Indent string
	// DiscardUnknown ignores unknown fields when decoding.
	DiscardUnknown bool
}

func (c *JSONCodec) Encode(m proto.Message) ([]byte, error) {
	return protojson.MarshalOptions{
		Multiline: c.Indent != "",
		Indent:    c.Indent,
	}.Marshal(m)
}

func (c *JSONCodec) Decode(b []byte, m proto.Message) error {
	return protojson.UnmarshalOptions{DiscardUnknown: c.DiscardUnknown}.Unmarshal(b, m)
}

// BinaryCodec encodes with the protobuf wire format.
type BinaryCodec struct {
	// Deterministic orders map entries so equal messages give equal bytes.
	Deterministic bool
}

func (c *BinaryCodec) Encode(m proto.Message) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: c.Deterministic}.Marshal(m)
}

func (c *BinaryCodec) Decode(b []byte, m proto.Message) error {
	return proto.Unmarshal(b, m)
}
