package meeting

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Locker serializes operations on one meeting. The message-sequencing
// invariant and the turn-flag transitions are not safe under concurrent
// writers to one meeting document, so every mutating operation runs under the
// meeting's lock. Operations on different meetings never contend.
type Locker interface {
	// Acquire blocks until the meeting's lock is held and returns the release
	// function. An error means the lock could not be obtained.
	Acquire(ctx context.Context, meetingID uuid.UUID) (func(), error)
}

// KeyedMutex is the in-process Locker for single-node deployments and tests.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a new in-process per-meeting locker
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[uuid.UUID]*keyedLock),
	}
}

// Acquire blocks until the per-meeting mutex is held.
func (k *KeyedMutex) Acquire(_ context.Context, meetingID uuid.UUID) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[meetingID]
	if !ok {
		entry = &keyedLock{}
		k.locks[meetingID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	release := func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, meetingID)
		}
		k.mu.Unlock()
	}
	return release, nil
}
