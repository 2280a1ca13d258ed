package gateways

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/giovaniif/instrument-closet/protocols"
)

var (
	MAX_RETRIES = 5
	BASE_DELAY  = 50 * time.Millisecond
)

type RetryFunc[T any] func() (T, error)

// RetryWithBackoff retries operation with delays of BASE_DELAY * 2^attempt
// while retriable reports true. The context stops further attempts.
func RetryWithBackoff[T any](ctx context.Context, operation RetryFunc[T], retriable func(error) bool, sleeper protocols.Sleeper) RetryFunc[T] {
	return func() (T, error) {
		var zero T
		var lastError error

		for i := 0; i < MAX_RETRIES; i++ {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			val, err := operation()
			if err == nil {
				return val, nil
			}
			if !retriable(err) {
				return zero, err
			}
			lastError = err

			if i == MAX_RETRIES-1 {
				break
			}
			delay := time.Duration(math.Pow(2, float64(i))) * BASE_DELAY
			slog.DebugContext(ctx, "retrying operation", "attempt", i+1, "delay", delay, "error", err)
			sleeper.Sleep(delay)
		}

		return zero, lastError
	}
}
