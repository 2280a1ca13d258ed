package reservation

import "context"

// Query selects reservations of one instrument overlapping an optional window.
type Query struct {
	InstrumentId int64
	Start        *int64
	End          *int64
	ExcludeId    *int64
}

// Filter narrows a plain listing; it has no overlap semantics.
type Filter struct {
	UserId       *int64
	InstrumentId *int64
}

func (q Query) Matches(r Reservation) bool {
	if r.InstrumentId != q.InstrumentId {
		return false
	}
	if q.ExcludeId != nil && r.Id == *q.ExcludeId {
		return false
	}
	return r.Matches(q.Start, q.End)
}

func (f Filter) Matches(r Reservation) bool {
	if f.UserId != nil && r.UserId != *f.UserId {
		return false
	}
	if f.InstrumentId != nil && r.InstrumentId != *f.InstrumentId {
		return false
	}
	return true
}

type Repository interface {
	Create(ctx context.Context, r Reservation) (Reservation, error)
	Get(ctx context.Context, id int64) (Reservation, error)
	FindOverlapping(ctx context.Context, q Query) ([]Reservation, error)
	Update(ctx context.Context, r Reservation) error
	Remove(ctx context.Context, id int64) error
	FindAll(ctx context.Context, f Filter) ([]Reservation, error)
}
