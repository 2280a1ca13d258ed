package gateways

import (
	"context"
	"sync"
)

// KeyedLocker is the in-process InstrumentLocker: one mutex per instrument,
// dropped again once nobody holds or waits for it.
type KeyedLocker struct {
	mutex sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	ch      chan struct{}
	waiters int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[int64]*keyedLock)}
}

func (l *KeyedLocker) Lock(ctx context.Context, instrumentId int64) (func(), error) {
	l.mutex.Lock()
	lock, ok := l.locks[instrumentId]
	if !ok {
		lock = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[instrumentId] = lock
	}
	lock.waiters++
	l.mutex.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(instrumentId, lock, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(instrumentId, lock, true) })
	}, nil
}

func (l *KeyedLocker) release(instrumentId int64, lock *keyedLock, held bool) {
	if held {
		<-lock.ch
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	lock.waiters--
	if lock.waiters == 0 {
		delete(l.locks, instrumentId)
	}
}
