package auction

import "sync"

// listingLocks hands out one mutex per listing so concurrent bids on the same
// listing cannot both read a stale current bid. Locks are never reclaimed;
// the set of listings in a single process stays small enough not to care.
type listingLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *listingLocks) get(listingID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[listingID]

	if !ok {
		lock = &sync.Mutex{}
		l.locks[listingID] = lock
	}

	return lock
}
