package codec

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/liliang-cn/littledb/internal/encoding"
)

// Extension type tags for temporal values
const (
	extDateID     int8 = 0x10
	extDateTimeID int8 = 0x20
)

// extDate carries a calendar date as ext 0x10 with an ISO-8601 payload
type extDate Date

// MarshalMsgpack implements msgpack.Marshaler
func (d *extDate) MarshalMsgpack() ([]byte, error) {
	return []byte(encoding.FormatISODate(d.Year, d.Month, d.Day)), nil
}

// UnmarshalMsgpack implements msgpack.Unmarshaler
func (d *extDate) UnmarshalMsgpack(b []byte) error {
	y, mo, day, err := encoding.ParseISODate(string(b))
	if err != nil {
		return err
	}
	*d = extDate{Year: y, Month: mo, Day: day}
	return nil
}

// extDateTime carries a date-time as ext 0x20 with a compact timestamp
// payload at microsecond precision
type extDateTime struct {
	t time.Time
}

// MarshalMsgpack implements msgpack.Marshaler
func (d *extDateTime) MarshalMsgpack() ([]byte, error) {
	return []byte(encoding.FormatDateTime(d.t)), nil
}

// UnmarshalMsgpack implements msgpack.Unmarshaler
func (d *extDateTime) UnmarshalMsgpack(b []byte) error {
	t, err := encoding.ParseDateTime(string(b))
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

var msgpackOnce sync.Once

// registerMsgpackExts installs the temporal extension types. Registration is
// process-wide in the msgpack library; done once when the first codec is
// constructed.
func registerMsgpackExts() {
	msgpack.RegisterExt(extDateID, (*extDate)(nil))
	msgpack.RegisterExt(extDateTimeID, (*extDateTime)(nil))
}

// MsgpackCodec is the compact binary codec: schemaless msgpack maps and
// arrays with extension tags for dates (0x10) and date-times (0x20).
// Integers decode as int64 and floats as float64 so round trips are exact.
type MsgpackCodec struct{}

// NewMsgpack creates a compact binary codec
func NewMsgpack() *MsgpackCodec {
	msgpackOnce.Do(registerMsgpackExts)
	return &MsgpackCodec{}
}

// Encode serializes a structured value to msgpack bytes
func (c *MsgpackCodec) Encode(v any) ([]byte, error) {
	wire, err := toWire(v)
	if err != nil {
		return nil, wrapError(FormatMsgpack, err)
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, wrapError(FormatMsgpack, err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes msgpack bytes produced by Encode
func (c *MsgpackCodec) Decode(b []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, wrapError(FormatMsgpack, err)
	}
	return fromWire(raw), nil
}

// toWire substitutes temporal values with their extension wrappers
func toWire(v any) (any, error) {
	switch x := v.(type) {
	case Date:
		d := extDate(x)
		return &d, nil
	case time.Time:
		return &extDateTime{t: x}, nil
	case Tagged:
		return nil, fmt.Errorf("tagged type %q is not supported by the %s format", x.TypeName(), FormatMsgpack)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, mv := range x {
			wv, err := toWire(mv)
			if err != nil {
				return nil, err
			}
			out[k] = wv
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, sv := range x {
			wv, err := toWire(sv)
			if err != nil {
				return nil, err
			}
			out[i] = wv
		}
		return out, nil
	default:
		return v, nil
	}
}

// fromWire substitutes extension wrappers back with temporal values
func fromWire(v any) any {
	switch x := v.(type) {
	case *extDate:
		return Date(*x)
	case *extDateTime:
		return x.t
	case map[string]any:
		for k, mv := range x {
			x[k] = fromWire(mv)
		}
		return x
	case []any:
		for i, sv := range x {
			x[i] = fromWire(sv)
		}
		return x
	default:
		return v
	}
}
