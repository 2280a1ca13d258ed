package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/giovaniif/instrument-closet/protocols"
)

const (
	idempotencyKeyPrefix = "idempotency:reservation:"
	idempotencyTTL       = 24 * time.Hour
)

type IdempotencyGatewayRedis struct {
	client *redis.Client
}

func NewIdempotencyGatewayRedis(client *redis.Client) *IdempotencyGatewayRedis {
	return &IdempotencyGatewayRedis{client: client}
}

func (g *IdempotencyGatewayRedis) key(idempotencyKey string) string {
	return idempotencyKeyPrefix + idempotencyKey
}

func (g *IdempotencyGatewayRedis) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.IdempotencyKeyResult, error) {
	k := g.key(idempotencyKey)
	processing, _ := json.Marshal(idempotencyState{Status: statusProcessing})

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := g.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			_, err := g.client.SetArgs(ctx, k, processing, redis.SetArgs{Mode: "NX", TTL: idempotencyTTL}).Result()
			if err == redis.Nil {
				// lost the race to another request, read its state
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state idempotencyState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case statusSuccess:
			if state.Result == nil {
				return nil, fmt.Errorf("redis: key %s marked success without result", k)
			}
			return state.Result, nil
		case statusProcessing:
			return nil, errKeyInFlight()
		default:
			if err := g.client.Set(ctx, k, processing, idempotencyTTL).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (g *IdempotencyGatewayRedis) MarkFailure(ctx context.Context, idempotencyKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.client.Del(ctx, g.key(idempotencyKey)).Err()
}

func (g *IdempotencyGatewayRedis) MarkSuccess(ctx context.Context, idempotencyKey string, result protocols.IdempotencyKeyResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(idempotencyState{Status: statusSuccess, Result: &result})
	if err != nil {
		return err
	}
	return g.client.Set(ctx, g.key(idempotencyKey), raw, idempotencyTTL).Err()
}

var _ protocols.IdempotencyGateway = (*IdempotencyGatewayRedis)(nil)
