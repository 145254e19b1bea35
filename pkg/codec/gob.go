package codec

import (
	"bytes"
	"encoding/gob"
	"sync"
	"time"
)

var gobOnce sync.Once

// registerGobTypes registers the concrete types that may appear behind the
// interface values a document carries. Done once, explicitly, when the first
// gob codec is constructed.
func registerGobTypes() {
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
	gob.Register(Date{})
}

// GobCodec is the native binary codec. It delegates to encoding/gob, Go's
// own object serialization: any gob-encodable value graph round-trips
// exactly, and the output is opaque with no cross-language portability.
type GobCodec struct{}

// NewGob creates a native binary codec
func NewGob() *GobCodec {
	gobOnce.Do(registerGobTypes)
	return &GobCodec{}
}

// Encode serializes a value with encoding/gob
func (c *GobCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, wrapError(FormatGob, err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a value produced by Encode
func (c *GobCodec) Decode(b []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, wrapError(FormatGob, err)
	}
	return v, nil
}
