package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/protocols"
)

// Fanout hands each event to every sink. A failing sink does not stop the rest.
type Fanout struct {
	sinks []protocols.EventPublisher
}

func NewFanout(sinks ...protocols.EventPublisher) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(ctx context.Context, event reservation.Event) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Len() int { return len(f.sinks) }

// LogPublisher writes events to the structured log. It is the sink used when
// no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event reservation.Event) error {
	slog.InfoContext(ctx, "reservation event",
		"event_id", event.Id,
		"type", string(event.Type),
		"reservation_id", event.Reservation.Id,
		"instrument_id", event.Reservation.InstrumentId,
		"actor_id", event.ActorId,
	)
	return nil
}

var (
	_ protocols.EventPublisher = (*Fanout)(nil)
	_ protocols.EventPublisher = (*LogPublisher)(nil)
)
