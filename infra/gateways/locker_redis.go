package gateways

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/protocols"
)

const (
	lockKeyPrefix  = "lock:instrument:"
	defaultLockTTL = 10 * time.Second
)

// releaseScript deletes the key only while it still carries our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while the key still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker serialises admissions across processes with SET NX PX.
type RedisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	sleeper protocols.Sleeper
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, sleeper protocols.Sleeper) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, sleeper: sleeper}
}

func (l *RedisLocker) key(instrumentId int64) string {
	return lockKeyPrefix + strconv.FormatInt(instrumentId, 10)
}

func (l *RedisLocker) Lock(ctx context.Context, instrumentId int64) (func(), error) {
	k := l.key(instrumentId)
	token := uuid.NewString()

	acquire := func() (bool, error) {
		_, err := l.client.SetArgs(ctx, k, token, redis.SetArgs{Mode: "NX", TTL: l.ttl}).Result()
		if err == redis.Nil {
			return false, NewLockBusyError(k)
		}
		if err != nil {
			return false, NewNetworkError(err.Error())
		}
		return true, nil
	}
	if _, err := RetryWithBackoff(ctx, acquire, IsRetriable, l.sleeper)(); err != nil {
		if errors.Is(err, ErrLockBusy) {
			return nil, fault.Conflict("Instrument %d is busy, try again.", instrumentId)
		}
		return nil, fmt.Errorf("redis lock %s: %w", k, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(context.WithoutCancel(ctx), k, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if err := releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{k}, token).Err(); err != nil {
				slog.WarnContext(ctx, "release instrument lock", "key", k, "error", err)
			}
		})
	}, nil
}

// keepAlive renews the lease every third of the TTL until stop is closed, so
// a slow critical section never outlives its lock.
func (l *RedisLocker) keepAlive(ctx context.Context, k string, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			renewed, err := renewScript.Run(ctx, l.client, []string{k}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				slog.WarnContext(ctx, "renew instrument lock", "key", k, "error", err)
				continue
			}
			if renewed == 0 {
				slog.ErrorContext(ctx, "instrument lock lost", "key", k)
				return
			}
		}
	}
}
