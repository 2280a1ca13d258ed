package gateways

import (
	"context"
	"errors"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/protocols"
)

func TestIdempotencyGatewayMemory_FirstReserve(t *testing.T) {
	gateway := NewIdempotencyGatewayMemory()

	result, err := gateway.ReserveIdempotencyKey(context.Background(), "1:a")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestIdempotencyGatewayMemory_InFlight(t *testing.T) {
	gateway := NewIdempotencyGatewayMemory()
	ctx := context.Background()
	gateway.ReserveIdempotencyKey(ctx, "1:a")

	_, err := gateway.ReserveIdempotencyKey(ctx, "1:a")
	if !errors.Is(err, fault.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestIdempotencyGatewayMemory_ReplaysSuccess(t *testing.T) {
	gateway := NewIdempotencyGatewayMemory()
	ctx := context.Background()
	gateway.ReserveIdempotencyKey(ctx, "1:a")
	gateway.MarkSuccess(ctx, "1:a", protocols.IdempotencyKeyResult{ReservationId: 7})

	result, err := gateway.ReserveIdempotencyKey(ctx, "1:a")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result == nil || result.ReservationId != 7 {
		t.Fatalf("expected reservation 7, got %+v", result)
	}
}

func TestIdempotencyGatewayMemory_FailureAllowsRetry(t *testing.T) {
	gateway := NewIdempotencyGatewayMemory()
	ctx := context.Background()
	gateway.ReserveIdempotencyKey(ctx, "1:a")
	gateway.MarkFailure(ctx, "1:a")

	result, err := gateway.ReserveIdempotencyKey(ctx, "1:a")
	if err != nil || result != nil {
		t.Fatalf("expected fresh reservation, got %+v, %v", result, err)
	}
}

func TestIdempotencyGatewayMemory_SuccessWithoutReserveIsIgnored(t *testing.T) {
	gateway := NewIdempotencyGatewayMemory()
	ctx := context.Background()
	gateway.MarkSuccess(ctx, "1:a", protocols.IdempotencyKeyResult{ReservationId: 7})

	result, err := gateway.ReserveIdempotencyKey(ctx, "1:a")
	if err != nil || result != nil {
		t.Fatalf("expected fresh reservation, got %+v, %v", result, err)
	}
}
