package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Marker keys reserved by the structured-text format. Any state key starting
// with the reserved prefix is stripped before reaching RestoreState.
const (
	classKey       = "__class__"
	newArgsKey     = "__newargs__"
	reservedPrefix = "__"

	dateClass     = "_date"
	dateTimeClass = "_datetime"
)

// JSONCodec is the structured-text codec: UTF-8 JSON with tagged-object
// support for calendar dates, date-times (microsecond precision) and
// arbitrary Tagged values.
//
// Dates encode as {"__class__": "_date", "__newargs__": [year, month, day]},
// date-times as {"__class__": "_datetime", "__newargs__": [year, month, day,
// hour, minute, second, microsecond]}. Date-time zone information is not
// carried on the wire; values decode as UTC wall-clock times.
//
// Tagged values encode their exported state plus the type name under
// "__class__"; decode resolves the name in the codec's Namespace and rebuilds
// the value through RestoreState. An unresolvable name is a fatal decode
// error, never a silent pass-through.
type JSONCodec struct {
	ns Namespace
}

// NewJSON creates a structured-text codec. With a nil namespace only the
// builtin temporal types are resolvable during decode.
func NewJSON(ns Namespace) *JSONCodec {
	return &JSONCodec{ns: ns}
}

// Encode serializes a structured value to UTF-8 JSON text
func (c *JSONCodec) Encode(v any) ([]byte, error) {
	plain, err := tagValue(v)
	if err != nil {
		return nil, wrapError(FormatJSON, err)
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return nil, wrapError(FormatJSON, err)
	}
	return data, nil
}

// Decode deserializes UTF-8 JSON text produced by Encode
func (c *JSONCodec) Decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, wrapError(FormatJSON, err)
	}

	v, err := c.untagValue(raw)
	if err != nil {
		return nil, wrapError(FormatJSON, err)
	}
	return v, nil
}

// tagValue rewrites a value tree into its taggable JSON representation
func tagValue(v any) (any, error) {
	switch x := v.(type) {
	case Date:
		return map[string]any{
			classKey:   dateClass,
			newArgsKey: []any{x.Year, int(x.Month), x.Day},
		}, nil
	case time.Time:
		return map[string]any{
			classKey: dateTimeClass,
			newArgsKey: []any{
				x.Year(), int(x.Month()), x.Day(),
				x.Hour(), x.Minute(), x.Second(), x.Nanosecond() / 1000,
			},
		}, nil
	case Tagged:
		state := x.ExportState()
		out := make(map[string]any, len(state)+1)
		for k, sv := range state {
			if strings.HasPrefix(k, reservedPrefix) {
				continue
			}
			tagged, err := tagValue(sv)
			if err != nil {
				return nil, err
			}
			out[k] = tagged
		}
		out[classKey] = x.TypeName()
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, mv := range x {
			tagged, err := tagValue(mv)
			if err != nil {
				return nil, err
			}
			out[k] = tagged
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, sv := range x {
			tagged, err := tagValue(sv)
			if err != nil {
				return nil, err
			}
			out[i] = tagged
		}
		return out, nil
	default:
		return v, nil
	}
}

// untagValue rebuilds a decoded JSON tree, resolving number precision and
// tagged objects
func (c *JSONCodec) untagValue(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return decodeNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, sv := range x {
			dv, err := c.untagValue(sv)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, mv := range x {
			dv, err := c.untagValue(mv)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}

		marker, ok := out[classKey]
		if !ok {
			return out, nil
		}
		delete(out, classKey)

		name, ok := marker.(string)
		if !ok {
			return nil, fmt.Errorf("%w: marker is not a string", ErrMalformedTag)
		}
		return c.construct(name, out)
	default:
		return v, nil
	}
}

// construct rebuilds a tagged value from its decoded state
func (c *JSONCodec) construct(name string, state map[string]any) (any, error) {
	args, _ := state[newArgsKey].([]any)

	switch name {
	case dateClass:
		if len(args) != 3 {
			return nil, fmt.Errorf("%w: %s expects 3 args, got %d", ErrMalformedTag, dateClass, len(args))
		}
		y, mo, d, err := intArgs3(args)
		if err != nil {
			return nil, err
		}
		return Date{Year: y, Month: time.Month(mo), Day: d}, nil

	case dateTimeClass:
		if len(args) != 7 {
			return nil, fmt.Errorf("%w: %s expects 7 args, got %d", ErrMalformedTag, dateTimeClass, len(args))
		}
		n := make([]int, 7)
		for i, a := range args {
			iv, err := intArg(a)
			if err != nil {
				return nil, err
			}
			n[i] = iv
		}
		return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], n[6]*1000, time.UTC), nil

	default:
		factory, ok := c.ns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNameNotFound, name)
		}

		inst := factory()
		clean := make(map[string]any, len(state))
		for k, v := range state {
			if strings.HasPrefix(k, reservedPrefix) {
				continue
			}
			clean[k] = v
		}
		if err := inst.RestoreState(clean); err != nil {
			return nil, fmt.Errorf("restore %q: %w", name, err)
		}
		return inst, nil
	}
}

// decodeNumber keeps integers integral across round trips
func decodeNumber(n json.Number) (any, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}
	return n.Float64()
}

func intArg(v any) (int, error) {
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: argument %v is not an integer", ErrMalformedTag, v)
	}
	return int(i), nil
}

func intArgs3(args []any) (int, int, int, error) {
	a, err := intArg(args[0])
	if err != nil {
		return 0, 0, 0, err
	}
	b, err := intArg(args[1])
	if err != nil {
		return 0, 0, 0, err
	}
	c, err := intArg(args[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return a, b, c, nil
}
