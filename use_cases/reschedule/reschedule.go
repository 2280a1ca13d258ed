package reschedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/instant"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/protocols"
)

var (
	ErrStartWithoutZone = fault.Invalid("A startTime was supplied, but no timeZone was specified. TimeZone must be included when trying to adjust a time.")
	ErrEndWithoutZone   = fault.Invalid("An endTime was supplied, but no timeZone was specified. TimeZone must be included when trying to adjust a time.")
)

type Admission interface {
	AdmitUpdateByID(ctx context.Context, reservationId int64, patch reservation.Patch) (reservation.Reservation, error)
}

type Reschedule struct {
	admission             Admission
	reservationRepository reservation.Repository
	locker                protocols.InstrumentLocker
	publisher             protocols.EventPublisher
}

func NewReschedule(admission Admission, reservationRepository reservation.Repository, locker protocols.InstrumentLocker, publisher protocols.EventPublisher) *Reschedule {
	return &Reschedule{
		admission:             admission,
		reservationRepository: reservationRepository,
		locker:                locker,
		publisher:             publisher,
	}
}

func (r *Reschedule) Reschedule(ctx context.Context, input Input) (reservation.Reservation, error) {
	patch, err := input.patch()
	if err != nil {
		return reservation.Reservation{}, err
	}

	current, err := r.reservationRepository.Get(ctx, input.ReservationId)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if !user.CanManage(input.Actor, current) {
		return reservation.Reservation{}, fault.Forbidden("Must be admin or user who made the reservation.")
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := r.admitAndUpdate(ctx, current, patch)
	if err != nil {
		return reservation.Reservation{}, err
	}

	if err := r.publisher.Publish(ctx, reservation.NewEvent(reservation.EventUpdated, updated, input.Actor.UserId)); err != nil {
		slog.WarnContext(ctx, "publish reservation event", "reservation_id", updated.Id, "error", err)
	}
	return updated, nil
}

func (r *Reschedule) admitAndUpdate(ctx context.Context, current reservation.Reservation, patch reservation.Patch) (reservation.Reservation, error) {
	unlock, err := r.locker.Lock(ctx, current.InstrumentId)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("lock instrument %d: %w", current.InstrumentId, err)
	}
	defer unlock()

	// reloaded under the lock so the merge starts from the committed record
	updated, err := r.admission.AdmitUpdateByID(ctx, current.Id, patch)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if err := r.reservationRepository.Update(ctx, updated); err != nil {
		return reservation.Reservation{}, fmt.Errorf("update reservation %d: %w", updated.Id, err)
	}
	return updated, nil
}

// Input carries local times; a time is only accepted alongside a zone.
type Input struct {
	Actor         user.Actor
	ReservationId int64
	Quantity      *int
	StartTime     *string
	EndTime       *string
	TimeZone      *string
	Notes         *string
}

func (i Input) patch() (reservation.Patch, error) {
	if i.StartTime != nil && i.TimeZone == nil {
		return reservation.Patch{}, ErrStartWithoutZone
	}
	if i.EndTime != nil && i.TimeZone == nil {
		return reservation.Patch{}, ErrEndWithoutZone
	}

	patch := reservation.Patch{Quantity: i.Quantity, Notes: i.Notes}
	if i.StartTime != nil {
		start, err := instant.ToInstant(*i.StartTime, *i.TimeZone)
		if err != nil {
			return reservation.Patch{}, err
		}
		patch.StartTime = &start
	}
	if i.EndTime != nil {
		end, err := instant.ToInstant(*i.EndTime, *i.TimeZone)
		if err != nil {
			return reservation.Patch{}, err
		}
		patch.EndTime = &end
	}
	return patch, nil
}
