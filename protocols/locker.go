package protocols

import "context"

// InstrumentLocker serialises admissions per instrument. The returned
// function releases the lock and must be called exactly once.
type InstrumentLocker interface {
	Lock(ctx context.Context, instrumentId int64) (unlock func(), err error)
}
