package category

import (
	"errors"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

func TestNormalize(t *testing.T) {
	name, err := Normalize("  Brass  ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if name != "Brass" {
		t.Fatalf("expected Brass, got %q", name)
	}
	if _, err := Normalize("   "); !errors.Is(err, fault.ErrInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestErrors(t *testing.T) {
	if err := NotFound(4); !errors.Is(err, fault.ErrNotFound) || fault.Message(err) != "No Category with id: 4" {
		t.Fatalf("unexpected not found error %v", err)
	}
	if err := Duplicate("Brass"); !errors.Is(err, fault.ErrConflict) || fault.Message(err) != "Duplicate category: Brass" {
		t.Fatalf("unexpected duplicate error %v", err)
	}
}
