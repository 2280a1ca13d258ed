package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/instant"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/protocols"
)

type Admission interface {
	AdmitNew(ctx context.Context, instrumentId int64, quantity int, window reservation.Window) error
}

type Book struct {
	admission             Admission
	reservationRepository reservation.Repository
	userRepository        user.Repository
	locker                protocols.InstrumentLocker
	idempotencyGateway    protocols.IdempotencyGateway
	publisher             protocols.EventPublisher
}

func NewBook(
	admission Admission,
	reservationRepository reservation.Repository,
	userRepository user.Repository,
	locker protocols.InstrumentLocker,
	idempotencyGateway protocols.IdempotencyGateway,
	publisher protocols.EventPublisher,
) *Book {
	return &Book{
		admission:             admission,
		reservationRepository: reservationRepository,
		userRepository:        userRepository,
		locker:                locker,
		idempotencyGateway:    idempotencyGateway,
		publisher:             publisher,
	}
}

func (b *Book) Book(ctx context.Context, input Input) (Output, error) {
	if !user.CanBookFor(input.Actor, input.UserId) {
		return Output{}, fault.Forbidden("Must be admin or user trying to make a reservation.")
	}

	start, err := instant.ToInstant(input.StartTime, input.TimeZone)
	if err != nil {
		return Output{}, err
	}
	end, err := instant.ToInstant(input.EndTime, input.TimeZone)
	if err != nil {
		return Output{}, err
	}

	if _, err := b.userRepository.GetById(ctx, input.UserId); err != nil {
		return Output{}, err
	}

	if input.IdempotencyKey == "" {
		created, err := b.admitAndCreate(ctx, input, reservation.Window{Start: start, End: end})
		if err != nil {
			return Output{}, err
		}
		b.publish(ctx, created, input.Actor)
		return Output{Reservation: created}, nil
	}

	// keys are scoped to the caller so two users can't replay each other's bookings
	key := fmt.Sprintf("%d:%s", input.Actor.UserId, input.IdempotencyKey)
	result, err := b.idempotencyGateway.ReserveIdempotencyKey(ctx, key)
	if err != nil {
		return Output{}, err
	}
	if result != nil {
		previous, err := b.reservationRepository.Get(ctx, result.ReservationId)
		if errors.Is(err, fault.ErrNotFound) {
			return Output{}, fault.Conflict("Idempotency key was already used for reservation %d, which has since been deleted.", result.ReservationId)
		}
		if err != nil {
			return Output{}, err
		}
		return Output{Reservation: previous, Replayed: true}, nil
	}

	created, err := b.admitAndCreate(ctx, input, reservation.Window{Start: start, End: end})
	if err != nil {
		if markErr := b.idempotencyGateway.MarkFailure(ctx, key); markErr != nil {
			slog.WarnContext(ctx, "release idempotency key", "key", key, "error", markErr)
		}
		return Output{}, err
	}
	if err := b.idempotencyGateway.MarkSuccess(ctx, key, protocols.IdempotencyKeyResult{ReservationId: created.Id}); err != nil {
		slog.WarnContext(ctx, "record idempotency result", "key", key, "error", err)
	}
	b.publish(ctx, created, input.Actor)
	return Output{Reservation: created}, nil
}

func (b *Book) admitAndCreate(ctx context.Context, input Input, window reservation.Window) (reservation.Reservation, error) {
	unlock, err := b.locker.Lock(ctx, input.InstrumentId)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("lock instrument %d: %w", input.InstrumentId, err)
	}
	defer unlock()

	if err := b.admission.AdmitNew(ctx, input.InstrumentId, input.Quantity, window); err != nil {
		return reservation.Reservation{}, err
	}

	created, err := b.reservationRepository.Create(ctx, reservation.Reservation{
		UserId:       input.UserId,
		InstrumentId: input.InstrumentId,
		Quantity:     input.Quantity,
		StartTime:    window.Start,
		EndTime:      window.End,
		Notes:        input.Notes,
	})
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	return created, nil
}

// publish runs after the lock is released; a failed publish never undoes the booking.
func (b *Book) publish(ctx context.Context, created reservation.Reservation, actor user.Actor) {
	if err := b.publisher.Publish(ctx, reservation.NewEvent(reservation.EventCreated, created, actor.UserId)); err != nil {
		slog.WarnContext(ctx, "publish reservation event", "reservation_id", created.Id, "error", err)
	}
}

type Input struct {
	Actor          user.Actor
	UserId         int64
	InstrumentId   int64
	Quantity       int
	StartTime      string
	EndTime        string
	TimeZone       string
	Notes          *string
	IdempotencyKey string
}

type Output struct {
	Reservation reservation.Reservation
	Replayed    bool
}
