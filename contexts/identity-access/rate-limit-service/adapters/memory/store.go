package memory

import (
	"context"
	"sync"
	"time"

	"pollsbot/contexts/identity-access/rate-limit-service/ports"
)

// Store is the in-process window log. One mutex covers all keys; the
// limiter is consulted once per inbound action, so contention stays low.
type Store struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewStore() *Store {
	return &Store{windows: make(map[string][]time.Time)}
}

func (s *Store) Reserve(_ context.Context, key string, windowStart, now time.Time, cap int) (ports.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := prune(s.windows[key], windowStart)
	reservation := ports.Reservation{Count: len(events)}
	if len(events) > 0 {
		reservation.OldestAt = events[0]
	}

	if len(events) >= cap {
		s.windows[key] = events
		return reservation, nil
	}

	events = append(events, now)
	s.windows[key] = events
	reservation.Allowed = true
	reservation.Count = len(events)
	reservation.OldestAt = events[0]
	return reservation, nil
}

func (s *Store) Count(_ context.Context, key string, windowStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, at := range s.windows[key] {
		if !at.Before(windowStart) {
			count++
		}
	}
	return count, nil
}

// Sweep drops keys whose every event left the window. Called lazily by the
// worker so idle users do not accumulate.
func (s *Store) Sweep(windowStart time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, events := range s.windows {
		kept := prune(events, windowStart)
		if len(kept) == 0 {
			delete(s.windows, key)
			removed++
			continue
		}
		s.windows[key] = kept
	}
	return removed
}

func prune(events []time.Time, windowStart time.Time) []time.Time {
	kept := events[:0]
	for _, at := range events {
		if !at.Before(windowStart) {
			kept = append(kept, at)
		}
	}
	return kept
}
