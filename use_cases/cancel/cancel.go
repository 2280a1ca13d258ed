package cancel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/protocols"
)

type Cancel struct {
	reservationRepository reservation.Repository
	publisher             protocols.EventPublisher
}

func NewCancel(reservationRepository reservation.Repository, publisher protocols.EventPublisher) *Cancel {
	return &Cancel{
		reservationRepository: reservationRepository,
		publisher:             publisher,
	}
}

// Cancel removes the reservation unconditionally once the caller is allowed to.
// Freed capacity is visible to the next admission immediately.
func (c *Cancel) Cancel(ctx context.Context, input Input) (Output, error) {
	current, err := c.reservationRepository.Get(ctx, input.ReservationId)
	if err != nil {
		return Output{}, err
	}
	if !user.CanManage(input.Actor, current) {
		return Output{}, fault.Forbidden("Must be admin or user who made the reservation.")
	}

	if err := c.reservationRepository.Remove(ctx, current.Id); err != nil {
		return Output{}, fmt.Errorf("remove reservation %d: %w", current.Id, err)
	}

	if err := c.publisher.Publish(ctx, reservation.NewEvent(reservation.EventDeleted, current, input.Actor.UserId)); err != nil {
		slog.WarnContext(ctx, "publish reservation event", "reservation_id", current.Id, "error", err)
	}
	return Output{Deleted: current.Id}, nil
}

type Input struct {
	Actor         user.Actor
	ReservationId int64
}

type Output struct {
	Deleted int64
}
