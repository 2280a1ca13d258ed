package protocols

import "context"

type IdempotencyKeyResult struct {
	ReservationId int64 `json:"reservationId"`
}

type IdempotencyGateway interface {
	ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*IdempotencyKeyResult, error)
	MarkFailure(ctx context.Context, idempotencyKey string) error
	MarkSuccess(ctx context.Context, idempotencyKey string, result IdempotencyKeyResult) error
}
