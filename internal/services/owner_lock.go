package services

import "sync"

// ownerLocks serializes record mutations per owner. Operations for different
// owners run in parallel; two concurrent generations for the same owner must
// not both pass the eligibility gate.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *ownerLocks) Lock(ownerID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ownerID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
