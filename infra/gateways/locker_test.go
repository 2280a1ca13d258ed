package gateways

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func (l *KeyedLocker) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}

func TestKeyedLocker_SerialisesSameInstrument(t *testing.T) {
	locker := NewKeyedLocker()
	var inside, maxInside int
	var mutex sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), 7)
			if err != nil {
				t.Errorf("expected nil error, got %v", err)
				return
			}
			mutex.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mutex.Unlock()
			time.Sleep(time.Millisecond)
			mutex.Lock()
			inside--
			mutex.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder, got %d", maxInside)
	}
	if locker.size() != 0 {
		t.Fatalf("expected idle locks to be dropped, got %d", locker.size())
	}
}

func TestKeyedLocker_DifferentInstrumentsDoNotContend(t *testing.T) {
	locker := NewKeyedLocker()
	unlockA, err := locker.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, 2)
	if err != nil {
		t.Fatalf("expected second instrument to lock immediately, got %v", err)
	}
	unlockB()
}

func TestKeyedLocker_ContextCancelled(t *testing.T) {
	locker := NewKeyedLocker()
	unlock, _ := locker.Lock(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock()
	if locker.size() != 0 {
		t.Fatalf("expected lock table empty, got %d", locker.size())
	}
}
