package codec

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	t.Run("Register", func(t *testing.T) {
		if err := r.Register("a", func() Codec { return NewGob() }); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if err := r.Register("b", func() Codec { return NewJSON(nil) }); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		factory, err := r.Resolve("a")
		if err != nil {
			t.Fatalf("Failed to resolve: %v", err)
		}
		if factory() == nil {
			t.Error("Expected codec instance")
		}
	})

	t.Run("ResolveUnknown", func(t *testing.T) {
		_, err := r.Resolve("nope")
		if !errors.Is(err, ErrFormatNotFound) {
			t.Errorf("Expected ErrFormatNotFound, got %v", err)
		}
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		err := r.Register("a", func() Codec { return NewGob() })
		if !errors.Is(err, ErrFormatExists) {
			t.Errorf("Expected ErrFormatExists, got %v", err)
		}
	})

	t.Run("FormatsOrdered", func(t *testing.T) {
		if got := r.Formats(); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("Expected [a b], got %v", got)
		}
	})
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	want := []string{FormatGob, FormatJSON, FormatMsgpack}
	if got := r.Formats(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if r != Default() {
		t.Error("Default registry must be built once")
	}
}
