package codec

import (
	"reflect"
	"testing"
	"time"
)

func TestGobRoundTrip(t *testing.T) {
	c := NewGob()

	doc := map[string]any{
		"id":        42,
		"author":    "Joe Doe",
		"score":     3.141,
		"flag":      true,
		"today":     NewDate(2020, time.January, 1),
		"timestamp": time.Date(2020, time.March, 14, 15, 9, 26, 535897000, time.UTC),
		"nested": map[string]any{
			"list": []any{1, 2, 3},
		},
	}

	data, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if !reflect.DeepEqual(doc, decoded) {
		t.Errorf("Round trip mismatch:\n got  %#v\n want %#v", decoded, doc)
	}
}

func TestGobOpaqueValues(t *testing.T) {
	c := NewGob()

	// Any gob-encodable graph round-trips, including types the text
	// formats cannot express
	in := map[string]any{"raw": []byte{0x00, 0xff, 0x10}}

	data, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	if !reflect.DeepEqual(in, decoded) {
		t.Errorf("Expected %#v, got %#v", in, decoded)
	}
}
