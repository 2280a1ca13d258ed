package protocols

import (
	"context"

	"github.com/giovaniif/instrument-closet/domain/reservation"
)

type EventPublisher interface {
	Publish(ctx context.Context, event reservation.Event) error
}
