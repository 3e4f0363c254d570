package commands

import "sync"

// PollLocks serializes vote recording and closure per poll. Vote counting,
// threshold evaluation, and decision-number allocation must observe a stable
// snapshot, so every mutation of one poll runs under that poll's lock.
type PollLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPollLocks() *PollLocks {
	return &PollLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the named poll and returns the release function.
func (p *PollLocks) Acquire(pollID string) func() {
	p.mu.Lock()
	lock, ok := p.locks[pollID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[pollID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Forget drops the lock entry of a poll that can no longer change.
func (p *PollLocks) Forget(pollID string) {
	p.mu.Lock()
	delete(p.locks, pollID)
	p.mu.Unlock()
}
