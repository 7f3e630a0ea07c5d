// Package codec provides the JSON wire codec used by the identity services.
package codec

import (
	"github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// Name is the content subtype clients select with grpc.CallContentSubtype.
const Name = "json"

// JSON marshals gRPC messages as JSON documents.
type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSON) Name() string {
	return Name
}
