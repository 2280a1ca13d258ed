package reservation

import (
	"errors"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

func ptr[T any](v T) *T { return &v }

func TestWindowOverlaps_HalfOpen(t *testing.T) {
	testCases := []struct {
		name string
		a, b Window
		want bool
	}{
		{"back to back", Window{10, 20}, Window{20, 30}, false},
		{"one second shared", Window{10, 20}, Window{19, 30}, true},
		{"contained", Window{10, 20}, Window{12, 15}, true},
		{"identical", Window{10, 20}, Window{10, 20}, true},
		{"disjoint", Window{10, 20}, Window{40, 50}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("expected overlap to be symmetric, got %v", got)
			}
		})
	}
}

func TestMatches_OptionalBounds(t *testing.T) {
	r := Reservation{StartTime: 1000, EndTime: 2000}

	if !r.Matches(nil, nil) {
		t.Fatalf("expected unbounded query to match")
	}
	if r.Matches(ptr[int64](2000), nil) {
		t.Fatalf("expected reservation ending at the query start to not match")
	}
	if !r.Matches(ptr[int64](1999), nil) {
		t.Fatalf("expected reservation ending after the query start to match")
	}
	if r.Matches(nil, ptr[int64](1000)) {
		t.Fatalf("expected reservation starting at the query end to not match")
	}
	if !r.Matches(ptr[int64](1500), ptr[int64](1600)) {
		t.Fatalf("expected inner window to match")
	}
}

func TestQueryMatches_ExcludeAndInstrument(t *testing.T) {
	r := Reservation{Id: 5, InstrumentId: 2, StartTime: 10, EndTime: 20}

	if !(Query{InstrumentId: 2}).Matches(r) {
		t.Fatalf("expected query on the same instrument to match")
	}
	if (Query{InstrumentId: 3}).Matches(r) {
		t.Fatalf("expected other instrument to not match")
	}
	if (Query{InstrumentId: 2, ExcludeId: ptr[int64](5)}).Matches(r) {
		t.Fatalf("expected excluded id to not match")
	}
}

func TestValidate(t *testing.T) {
	if err := (Reservation{Quantity: 1, StartTime: 10, EndTime: 10}).Validate(); !errors.Is(err, ErrInvertedInterval) {
		t.Fatalf("expected zero-length window to be inverted, got %v", err)
	}
	if err := (Reservation{Quantity: 1, StartTime: 11, EndTime: 10}).Validate(); !errors.Is(err, ErrInvertedInterval) {
		t.Fatalf("expected ErrInvertedInterval, got %v", err)
	}
	if err := (Reservation{Quantity: 0, StartTime: 10, EndTime: 20}).Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := (Reservation{Quantity: 1, StartTime: 10, EndTime: 20}).Validate(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestPatchMerge(t *testing.T) {
	notes := "original"
	current := Reservation{Id: 1, UserId: 2, InstrumentId: 3, Quantity: 2, StartTime: 100, EndTime: 200, Notes: &notes}

	merged := Patch{Quantity: ptr(0), EndTime: ptr[int64](300)}.Merge(current)
	if merged.Quantity != 0 {
		t.Fatalf("expected explicit zero to be merged so validation can reject it, got %d", merged.Quantity)
	}
	if merged.StartTime != 100 || merged.EndTime != 300 {
		t.Fatalf("unexpected window %d-%d", merged.StartTime, merged.EndTime)
	}
	if merged.UserId != 2 || merged.InstrumentId != 3 || merged.Id != 1 {
		t.Fatalf("expected identity fields untouched, got %+v", merged)
	}
	if current.Quantity != 2 || current.EndTime != 200 {
		t.Fatalf("expected current record untouched, got %+v", current)
	}

	withNotes := Patch{Notes: ptr("changed")}.Merge(current)
	if *withNotes.Notes != "changed" || *current.Notes != "original" {
		t.Fatalf("expected notes copied, got %q / %q", *withNotes.Notes, *current.Notes)
	}
}

func TestPeakLoad(t *testing.T) {
	testCases := []struct {
		name         string
		reservations []Reservation
		want         int
	}{
		{"empty", nil, 0},
		{"single", []Reservation{{Quantity: 2, StartTime: 0, EndTime: 10}}, 2},
		{"back to back do not stack", []Reservation{
			{Quantity: 2, StartTime: 0, EndTime: 10},
			{Quantity: 3, StartTime: 10, EndTime: 20},
		}, 3},
		{"nested", []Reservation{
			{Quantity: 1, StartTime: 0, EndTime: 100},
			{Quantity: 2, StartTime: 10, EndTime: 20},
			{Quantity: 4, StartTime: 15, EndTime: 30},
		}, 7},
		{"disjoint pairs", []Reservation{
			{Quantity: 1, StartTime: 0, EndTime: 10},
			{Quantity: 1, StartTime: 5, EndTime: 15},
			{Quantity: 5, StartTime: 20, EndTime: 30},
		}, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PeakLoad(tc.reservations); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCapacityExceededError(t *testing.T) {
	var err error = &CapacityExceededError{Requested: 1, Available: 0}
	if !errors.Is(err, ErrCapacityExceeded) || !errors.Is(err, fault.ErrInvalid) {
		t.Fatalf("expected capacity error to be a bad request, got %v", err)
	}
	var capErr *CapacityExceededError
	if !errors.As(err, &capErr) || capErr.Requested != 1 || capErr.Available != 0 {
		t.Fatalf("expected requested/available carried, got %+v", capErr)
	}
}

func TestCommitted(t *testing.T) {
	if got := Committed([]Reservation{{Quantity: 2}, {Quantity: 3}}); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	big := []Reservation{{Quantity: MaxQuantity}, {Quantity: MaxQuantity}, {Quantity: MaxQuantity}}
	if got := Committed(big); got != 3*int64(MaxQuantity) {
		t.Fatalf("expected %d, got %d", 3*int64(MaxQuantity), got)
	}
}

func TestValidateQuantity(t *testing.T) {
	if err := ValidateQuantity(MaxQuantity); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := ValidateQuantity(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := ValidateQuantity(MaxQuantity + 1); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected ErrQuantityTooLarge, got %v", err)
	}
}
