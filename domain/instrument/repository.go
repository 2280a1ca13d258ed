package instrument

import "context"

type Repository interface {
	Get(ctx context.Context, id int64) (Instrument, error)
	List(ctx context.Context) ([]Instrument, error)
	Create(ctx context.Context, inst Instrument) (Instrument, error)
	Update(ctx context.Context, inst Instrument) error
	Delete(ctx context.Context, id int64) error
}
