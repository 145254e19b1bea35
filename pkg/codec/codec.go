// Package codec provides pluggable serialization formats for structured documents.
//
// A Codec turns a structured value (nested maps, slices, scalars, calendar
// dates, date-times and tagged objects) into an opaque byte sequence and back.
// Codecs are stateless and safe for concurrent use. Formats are looked up by
// name in a Registry; the Default registry holds the three builtin formats.
package codec

import (
	"time"

	"github.com/liliang-cn/littledb/internal/encoding"
)

// Builtin format names
const (
	FormatGob     = "gob"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Codec encodes structured values to bytes and back.
// Implementations must be stateless: Decode(Encode(v)) == v for every value
// the format supports, and a single instance may be shared across goroutines.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}

// Factory creates a codec instance. The store instantiates each format at
// most once and caches the result.
type Factory func() Codec

// Date is a calendar date without a time-of-day component.
// The standard library has no date-only type, and date values must survive
// round trips distinct from date-times.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the given calendar date
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar date of t
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns the date at midnight UTC
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns the date in ISO-8601 form (YYYY-MM-DD)
func (d Date) String() string {
	return encoding.FormatISODate(d.Year, d.Month, d.Day)
}

// Tagged is the contract for values that serialize as tagged objects: a
// mapping of attribute name to value plus a marker carrying the type name.
// ExportState returns the serializable state; RestoreState rebuilds the
// value from a decoded state mapping. Keys beginning with "__" are reserved
// for markers and are stripped before RestoreState is called.
type Tagged interface {
	TypeName() string
	ExportState() map[string]any
	RestoreState(state map[string]any) error
}

// Namespace resolves tagged-type names to factories during decode.
// A nil Namespace resolves only the builtin temporal types.
type Namespace map[string]func() Tagged

// Kind classifies a value for storage purposes
type Kind int

const (
	// KindScalar is any primitive value, stored raw without encoding
	KindScalar Kind = iota
	// KindMapping is a string-keyed map, encoded through the codec
	KindMapping
	// KindSequence is a slice of values, encoded through the codec
	KindSequence
	// KindTagged is a value implementing Tagged, encoded through the codec
	KindTagged
)

// Classify resolves the storage kind of a value once, before encoding.
// Mappings, sequences and tagged objects go through the collection's codec;
// everything else is handed to the storage engine as a raw scalar.
func Classify(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return KindMapping
	case []any:
		return KindSequence
	case Tagged:
		return KindTagged
	default:
		return KindScalar
	}
}
