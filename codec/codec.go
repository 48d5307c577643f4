// Package codec encodes protobuf messages for files and tooling output.
package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var (
	errCodecNotInit = errors.New("codec: not initialized")

	_codec Codec = &JSONCodec{Indent: "  "}
)

// Codec turns messages into bytes and back.
type Codec interface {
	Encode(m proto.Message) ([]byte, error)
	Decode(b []byte, m proto.Message) error
}

// Encode encodes m with the default codec.
func Encode(m proto.Message) ([]byte, error) {
	if _codec == nil {
		return nil, errCodecNotInit
	}
	return _codec.Encode(m)
}

// Decode decodes b into m with the default codec.
func Decode(b []byte, m proto.Message) error {
	if _codec == nil {
		return errCodecNotInit
	}
	return _codec.Decode(b, m)
}

// SetCodec replaces the default codec. Passing nil makes Encode and Decode fail.
func SetCodec(c Codec) {
	_codec = c
}

// Default returns the codec used by Encode and Decode.
func Default() Codec {
	return _codec
}
