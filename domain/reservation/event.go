package reservation

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated EventType = "reservation.created"
	EventUpdated EventType = "reservation.updated"
	EventDeleted EventType = "reservation.deleted"
)

// Event records a committed change to a reservation.
type Event struct {
	Id          string      `json:"id" bson:"_id"`
	Type        EventType   `json:"type" bson:"type"`
	Reservation Reservation `json:"reservation" bson:"reservation"`
	ActorId     int64       `json:"actorId" bson:"actorId"`
	OccurredAt  time.Time   `json:"occurredAt" bson:"occurredAt"`
}

func NewEvent(eventType EventType, r Reservation, actorId int64) Event {
	return Event{
		Id:          uuid.NewString(),
		Type:        eventType,
		Reservation: r,
		ActorId:     actorId,
		OccurredAt:  time.Now().UTC(),
	}
}
