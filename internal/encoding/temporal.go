package encoding

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimestamp is returned when a temporal string cannot be parsed
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Wire layouts shared by the structured-text and compact binary codecs.
// Date-times carry microsecond precision and no zone; they are interpreted
// as UTC wall-clock values on both ends.
const (
	dateLayout     = "20060102"
	isoDateLayout  = "2006-01-02"
	dateTimeLayout = "20060102T15:04:05.000000"
)

// FormatDateTime encodes t in the compact timestamp format
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// ParseDateTime decodes a compact timestamp string
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t, nil
}

// FormatDate encodes a calendar date in the compact YYYYMMDD format
func FormatDate(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// ParseDate decodes a compact YYYYMMDD date string
func ParseDate(s string) (year int, month time.Month, day int, err error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// FormatISODate encodes a calendar date as ISO-8601 (YYYY-MM-DD)
func FormatISODate(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(isoDateLayout)
}

// ParseISODate decodes an ISO-8601 date string
func ParseISODate(s string) (year int, month time.Month, day int, err error) {
	t, err := time.ParseInLocation(isoDateLayout, s, time.UTC)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t.Year(), t.Month(), t.Day(), nil
}
