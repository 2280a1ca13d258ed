package instrument

import (
	"context"
	"errors"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

func TestValidate(t *testing.T) {
	if err := (Instrument{Name: "cello", Quantity: 0}).Validate(); err != nil {
		t.Fatalf("expected zero quantity to be allowed, got %v", err)
	}
	if err := (Instrument{Name: "cello", Quantity: -1}).Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := (Instrument{Name: "cello", Quantity: MaxQuantity + 1}).Validate(); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected ErrQuantityTooLarge, got %v", err)
	}
	if err := (Instrument{Quantity: 1}).Validate(); !errors.Is(err, fault.ErrInvalid) {
		t.Fatalf("expected missing name to be a bad request, got %v", err)
	}
}

func TestPatchApply(t *testing.T) {
	desc := "old"
	original := Instrument{Id: 1, Name: "viola", Quantity: 3, Description: &desc}
	qty := 0
	name := "viola da gamba"
	merged := Patch{Name: &name, Quantity: &qty}.Apply(original)

	if merged.Quantity != 0 {
		t.Fatalf("expected explicit zero quantity to be applied, got %d", merged.Quantity)
	}
	if merged.Name != "viola da gamba" || merged.Description == nil || *merged.Description != "old" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if original.Quantity != 3 || original.Name != "viola" {
		t.Fatalf("expected original to be untouched, got %+v", original)
	}
	if !(Patch{}).Empty() {
		t.Fatalf("expected zero patch to be empty")
	}
}

type stubRepository struct {
	Repository
	inst Instrument
	err  error
}

func (s *stubRepository) Get(ctx context.Context, id int64) (Instrument, error) {
	return s.inst, s.err
}

func TestTotalQuantity(t *testing.T) {
	total, err := TotalQuantity(context.Background(), &stubRepository{inst: Instrument{Id: 4, Quantity: 7}}, 4)
	if err != nil || total != 7 {
		t.Fatalf("expected (7, nil), got (%d, %v)", total, err)
	}

	_, err = TotalQuantity(context.Background(), &stubRepository{err: NotFound(4)}, 4)
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "not found: No Instrument with id: 4" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
