package codec

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// bunch is a tagged test type with an explicit state contract
type bunch struct {
	Spam string
	Ham  int64
	When time.Time
}

func (b *bunch) TypeName() string { return "bunch" }

func (b *bunch) ExportState() map[string]any {
	return map[string]any{"spam": b.Spam, "ham": b.Ham, "when": b.When}
}

func (b *bunch) RestoreState(state map[string]any) error {
	if v, ok := state["spam"].(string); ok {
		b.Spam = v
	}
	if v, ok := state["ham"].(int64); ok {
		b.Ham = v
	}
	if v, ok := state["when"].(time.Time); ok {
		b.When = v
	}
	return nil
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewJSON(nil)

	timestamp := time.Date(2020, time.March, 14, 15, 9, 26, 535897000, time.UTC)
	doc := map[string]any{
		"id":        int64(42),
		"author":    "Joe Doe",
		"text":      "My hovercraft is full of eels!",
		"score":     3.141,
		"published": true,
		"today":     NewDate(2020, time.January, 1),
		"timestamp": timestamp,
		"array":     []any{int64(1), "two", NewDate(1999, time.December, 31)},
		"struct": map[string]any{
			"date2":      NewDate(2020, time.January, 1),
			"timestamp2": timestamp,
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

func TestJSONMicrosecondPrecision(t *testing.T) {
	c := NewJSON(nil)

	ts := time.Date(2021, time.June, 2, 23, 59, 59, 999999000, time.UTC)
	data, err := c.Encode(map[string]any{"ts": ts})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	got := decoded.(map[string]any)["ts"].(time.Time)
	if !got.Equal(ts) {
		t.Errorf("Expected %v, got %v", ts, got)
	}
	if got.Nanosecond() != 999999000 {
		t.Errorf("Expected microsecond precision, got %d ns", got.Nanosecond())
	}
}

func TestJSONTaggedType(t *testing.T) {
	ns := Namespace{"bunch": func() Tagged { return &bunch{} }}
	c := NewJSON(ns)

	in := map[string]any{
		"instance": &bunch{
			Spam: "eggs",
			Ham:  23,
			When: time.Date(2020, time.May, 4, 12, 0, 0, 0, time.UTC),
		},
	}

	data, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	got, ok := decoded.(map[string]any)["instance"].(*bunch)
	if !ok {
		t.Fatalf("Expected *bunch, got %T", decoded.(map[string]any)["instance"])
	}
	if !reflect.DeepEqual(in["instance"], got) {
		t.Errorf("Expected %+v, got %+v", in["instance"], got)
	}
}

func TestJSONUnknownClass(t *testing.T) {
	c := NewJSON(nil)

	_, err := c.Decode([]byte(`{"__class__": "Missing", "x": 1}`))
	if err == nil {
		t.Fatal("Expected error for unknown class name")
	}
	if !errors.Is(err, ErrNameNotFound) {
		t.Errorf("Expected ErrNameNotFound, got %v", err)
	}
}

func TestJSONScalars(t *testing.T) {
	c := NewJSON(nil)

	cases := []any{int64(42), "text", 3.5, true, nil}
	for _, in := range cases {
		data, err := c.Encode(in)
		if err != nil {
			t.Fatalf("Failed to encode %v: %v", in, err)
		}
		out, err := c.Decode(data)
		if err != nil {
			t.Fatalf("Failed to decode %v: %v", in, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("Expected %#v, got %#v", in, out)
		}
	}
}

func TestJSONReservedKeysStripped(t *testing.T) {
	ns := Namespace{"bunch": func() Tagged { return &bunch{} }}
	c := NewJSON(ns)

	// Marker-prefixed keys must never reach RestoreState
	decoded, err := c.Decode([]byte(`{"__class__": "bunch", "__newargs__": [1], "spam": "eggs", "__secret": "x"}`))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}

	got, ok := decoded.(*bunch)
	if !ok {
		t.Fatalf("Expected *bunch, got %T", decoded)
	}
	if got.Spam != "eggs" {
		t.Errorf("Expected spam 'eggs', got %q", got.Spam)
	}
}

func TestJSONWireFormat(t *testing.T) {
	c := NewJSON(nil)

	data, err := c.Encode(map[string]any{"today": NewDate(2020, time.January, 1)})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	want := `{"today":{"__class__":"_date","__newargs__":[2020,1,1]}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}
