package gateways

import (
	"context"
	"sync"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/protocols"
)

const (
	statusProcessing = "processing"
	statusSuccess    = "success"
)

func errKeyInFlight() error {
	return fault.Conflict("Idempotency key is already being processed.")
}

type IdempotencyGatewayMemory struct {
	mutex           sync.RWMutex
	idempotencyKeys map[string]*idempotencyState
}

type idempotencyState struct {
	Status string                          `json:"status"`
	Result *protocols.IdempotencyKeyResult `json:"result,omitempty"`
}

func NewIdempotencyGatewayMemory() *IdempotencyGatewayMemory {
	return &IdempotencyGatewayMemory{
		idempotencyKeys: make(map[string]*idempotencyState),
	}
}

func (g *IdempotencyGatewayMemory) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if state, exists := g.idempotencyKeys[idempotencyKey]; exists {
		switch state.Status {
		case statusSuccess:
			result := *state.Result
			return &result, nil
		case statusProcessing:
			return nil, errKeyInFlight()
		}
		delete(g.idempotencyKeys, idempotencyKey)
	}

	g.idempotencyKeys[idempotencyKey] = &idempotencyState{Status: statusProcessing}
	return nil, nil
}

func (g *IdempotencyGatewayMemory) MarkFailure(ctx context.Context, idempotencyKey string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.idempotencyKeys, idempotencyKey)
	return nil
}

func (g *IdempotencyGatewayMemory) MarkSuccess(ctx context.Context, idempotencyKey string, result protocols.IdempotencyKeyResult) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if state, exists := g.idempotencyKeys[idempotencyKey]; exists {
		state.Status = statusSuccess
		state.Result = &result
	}
	return nil
}

var _ protocols.IdempotencyGateway = (*IdempotencyGatewayMemory)(nil)
