package availability

import (
	"context"
	"fmt"
	"math"

	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
)

// Availability decides whether a quantity can be committed for a window.
// It only reads; callers write after a nil result while holding the
// instrument's lock.
type Availability struct {
	instrumentRepository  instrument.Repository
	reservationRepository reservation.Repository
}

func NewAvailability(instrumentRepository instrument.Repository, reservationRepository reservation.Repository) *Availability {
	return &Availability{
		instrumentRepository:  instrumentRepository,
		reservationRepository: reservationRepository,
	}
}

func (a *Availability) AdmitNew(ctx context.Context, instrumentId int64, quantity int, window reservation.Window) error {
	if err := reservation.ValidateQuantity(quantity); err != nil {
		return err
	}
	if err := window.Validate(); err != nil {
		return err
	}

	available, err := a.free(ctx, instrumentId, window, nil)
	if err != nil {
		return err
	}
	if quantity > available {
		return &reservation.CapacityExceededError{Requested: quantity, Available: available}
	}
	return nil
}

// AdmitUpdate checks current with patch merged over it against every other
// reservation of the instrument and returns the merged record.
func (a *Availability) AdmitUpdate(ctx context.Context, current reservation.Reservation, patch reservation.Patch) (reservation.Reservation, error) {
	merged := patch.Merge(current)
	if err := merged.Validate(); err != nil {
		return reservation.Reservation{}, err
	}

	excludeId := current.Id
	available, err := a.free(ctx, current.InstrumentId, merged.Window(), &excludeId)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if merged.Quantity > available {
		return reservation.Reservation{}, &reservation.CapacityExceededError{Requested: merged.Quantity, Available: available}
	}
	return merged, nil
}

func (a *Availability) AdmitUpdateByID(ctx context.Context, reservationId int64, patch reservation.Patch) (reservation.Reservation, error) {
	current, err := a.reservationRepository.Get(ctx, reservationId)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return a.AdmitUpdate(ctx, current, patch)
}

// Available reports the free units of an instrument over window.
func (a *Availability) Available(ctx context.Context, instrumentId int64, window reservation.Window) (int, error) {
	if err := window.Validate(); err != nil {
		return 0, err
	}
	return a.free(ctx, instrumentId, window, nil)
}

func (a *Availability) free(ctx context.Context, instrumentId int64, window reservation.Window, excludeId *int64) (int, error) {
	total, err := instrument.TotalQuantity(ctx, a.instrumentRepository, instrumentId)
	if err != nil {
		return 0, err
	}

	overlapping, err := a.reservationRepository.FindOverlapping(ctx, reservation.Query{
		InstrumentId: instrumentId,
		Start:        &window.Start,
		End:          &window.End,
		ExcludeId:    excludeId,
	})
	if err != nil {
		return 0, fmt.Errorf("find overlapping reservations: %w", err)
	}
	available := int64(total) - reservation.Committed(overlapping)
	return int(max(available, math.MinInt32)), nil
}
