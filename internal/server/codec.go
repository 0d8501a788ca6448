package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName is the content-subtype clients use to talk JSON to the inventory services.
const CodecName = "json"

// Codec marshals protobuf messages (health, reflection) as protobuf and everything else as JSON.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}
