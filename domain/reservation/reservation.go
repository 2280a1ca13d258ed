package reservation

import (
	"fmt"
	"math"
	"sort"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

var (
	ErrInvalidQuantity  = fmt.Errorf("%w: Quantity must be a positive integer.", fault.ErrInvalid)
	ErrInvertedInterval = fmt.Errorf("%w: End time cannot be before or equal to start time.", fault.ErrInvalid)
	ErrCapacityExceeded = fmt.Errorf("%w: Quantity requested exceeds quantity available at intended reservation time.", fault.ErrInvalid)
	ErrQuantityTooLarge = fmt.Errorf("%w: Quantity must not exceed %d.", fault.ErrInvalid, MaxQuantity)
)

// MaxQuantity is the range of the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

// ValidateQuantity accepts 1..MaxQuantity.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}

// CapacityExceededError carries the numbers behind a capacity rejection.
type CapacityExceededError struct {
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("Quantity requested exceeds quantity available at intended reservation time. (Requested: %d. Quantity available at reservation time: %d).", e.Requested, e.Available)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

type Reservation struct {
	Id           int64   `json:"id"`
	UserId       int64   `json:"userId"`
	InstrumentId int64   `json:"instrumentId"`
	Quantity     int     `json:"quantity"`
	StartTime    int64   `json:"startTime"`
	EndTime      int64   `json:"endTime"`
	Notes        *string `json:"notes"`
}

// Window is a half-open interval [Start, End) of Unix seconds.
type Window struct {
	Start int64
	End   int64
}

func (w Window) Validate() error {
	if w.Start >= w.End {
		return ErrInvertedInterval
	}
	return nil
}

// Overlaps reports whether [a.Start, a.End) and [b.Start, b.End) share an instant.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

func (r Reservation) Window() Window {
	return Window{Start: r.StartTime, End: r.EndTime}
}

// Matches applies the store's overlap predicate with optional bounds.
func (r Reservation) Matches(start *int64, end *int64) bool {
	return (end == nil || r.StartTime < *end) && (start == nil || r.EndTime > *start)
}

func (r Reservation) Validate() error {
	if err := ValidateQuantity(r.Quantity); err != nil {
		return err
	}
	return r.Window().Validate()
}

// Patch lists the mutable fields of a reservation; nil leaves a field as is.
type Patch struct {
	Quantity  *int
	StartTime *int64
	EndTime   *int64
	Notes     *string
}

func (p Patch) Empty() bool {
	return p.Quantity == nil && p.StartTime == nil && p.EndTime == nil && p.Notes == nil
}

// Merge returns current with the patch applied. Owner and instrument never change.
func (p Patch) Merge(current Reservation) Reservation {
	merged := current
	if p.Quantity != nil {
		merged.Quantity = *p.Quantity
	}
	if p.StartTime != nil {
		merged.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		merged.EndTime = *p.EndTime
	}
	if p.Notes != nil {
		notes := *p.Notes
		merged.Notes = &notes
	}
	return merged
}

// Committed sums quantities in int64; the reservations need not overlap each
// other, so the total can exceed any single instrument's quantity.
func Committed(reservations []Reservation) int64 {
	var total int64
	for _, r := range reservations {
		total += int64(r.Quantity)
	}
	return total
}

// PeakLoad returns the largest quantity held at any single instant.
func PeakLoad(reservations []Reservation) int {
	type edge struct {
		at    int64
		delta int
	}
	edges := make([]edge, 0, len(reservations)*2)
	for _, r := range reservations {
		edges = append(edges, edge{at: r.StartTime, delta: r.Quantity}, edge{at: r.EndTime, delta: -r.Quantity})
	}
	// releases sort before acquisitions at the same instant: [s,e) frees e.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at != edges[j].at {
			return edges[i].at < edges[j].at
		}
		return edges[i].delta < edges[j].delta
	})
	peak, load := 0, 0
	for _, e := range edges {
		load += e.delta
		if load > peak {
			peak = load
		}
	}
	return peak
}

func NotFound(id int64) error {
	return fault.NotFound("No Reservation with id: %d", id)
}
