package listing

import (
	"context"

	"github.com/giovaniif/instrument-closet/domain/reservation"
)

// Listing serves reservation reads. It takes no scheduling lock and sees
// whatever has been committed.
type Listing struct {
	reservationRepository reservation.Repository
}

func NewListing(reservationRepository reservation.Repository) *Listing {
	return &Listing{reservationRepository: reservationRepository}
}

func (l *Listing) Get(ctx context.Context, reservationId int64) (reservation.Reservation, error) {
	return l.reservationRepository.Get(ctx, reservationId)
}

func (l *Listing) List(ctx context.Context, filter reservation.Filter) ([]reservation.Reservation, error) {
	reservations, err := l.reservationRepository.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if reservations == nil {
		reservations = []reservation.Reservation{}
	}
	return reservations, nil
}
