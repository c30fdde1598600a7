package payouts

import (
	"sync"

	"github.com/google/uuid"
)

// resellerLocks serializes payout execution per reseller within this
// process. The conditional update in the orders repository remains the
// authoritative guard across instances; this lock just keeps concurrent
// requests on the same instance from racing to the gateway.
type resellerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newResellerLocks() *resellerLocks {
	return &resellerLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Acquire blocks until the reseller's lock is held and returns the release
// function. Entries are never evicted; the map is bounded by the number of
// resellers ever paid out by this instance.
func (l *resellerLocks) Acquire(resellerID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[resellerID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[resellerID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
