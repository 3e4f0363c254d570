package application

import "sync"

// UserLocks serializes dialogue operations per user: a user can never
// advance two steps of the same dialogue concurrently.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the named user and returns the release function.
func (u *UserLocks) Acquire(userID string) func() {
	u.mu.Lock()
	lock, ok := u.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[userID] = lock
	}
	u.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
