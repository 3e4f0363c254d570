package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	ratelimit "pollsbot/contexts/identity-access/rate-limit-service"
	"pollsbot/contexts/identity-access/rate-limit-service/domain/entities"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSlidingWindowCapAndRetryAfter(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	module := ratelimit.NewInMemoryModule(time.Minute, map[entities.Action]entities.Policy{
		entities.ActionVote: {Cap: 3},
	}, clock, nil)

	for i := 0; i < 3; i++ {
		decision, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote)
		if err != nil {
			t.Fatalf("check %d failed: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		clock.Advance(time.Second)
	}

	denied, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote)
	if err != nil {
		t.Fatalf("fourth check failed: %v", err)
	}
	if denied.Allowed {
		t.Fatalf("fourth attempt should be denied")
	}
	if denied.RetryAfter != 57*time.Second {
		t.Fatalf("expected retry after 57s, got %s", denied.RetryAfter)
	}

	clock.Advance(58 * time.Second)
	allowed, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote)
	if err != nil {
		t.Fatalf("post-window check failed: %v", err)
	}
	if !allowed.Allowed {
		t.Fatalf("attempt after window elapsed should be allowed")
	}
}

func TestDeniedAttemptsAreNotRecorded(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	module := ratelimit.NewInMemoryModule(time.Minute, map[entities.Action]entities.Policy{
		entities.ActionVote: {Cap: 1},
	}, clock, nil)

	if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote); !decision.Allowed {
		t.Fatalf("first attempt should be allowed")
	}
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote); decision.Allowed {
			t.Fatalf("attempt inside window should be denied")
		}
	}

	// Only the first event occupies the window, so one second after it
	// expires the user is admitted again.
	clock.Advance(56 * time.Second)
	decision, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected denied attempts to leave no trace in the window")
	}
}

func TestConcurrentBurstNeverExceedsCap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	module := ratelimit.NewInMemoryModule(time.Minute, map[entities.Action]entities.Policy{
		entities.ActionCreatePoll: {Cap: 5},
	}, clock, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionCreatePoll)
			if err != nil {
				t.Errorf("check failed: %v", err)
				return
			}
			if decision.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 5 {
		t.Fatalf("expected exactly 5 admissions under burst, got %d", admitted)
	}
}

func TestActionsAndUsersAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	module := ratelimit.NewInMemoryModule(time.Minute, map[entities.Action]entities.Policy{
		entities.ActionVote: {Cap: 1},
	}, clock, nil)

	if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote); !decision.Allowed {
		t.Fatalf("first vote should be allowed")
	}
	if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionVote); decision.Allowed {
		t.Fatalf("second vote should be denied")
	}
	if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-2", entities.ActionVote); !decision.Allowed {
		t.Fatalf("other user should not share the window")
	}
	if decision, _ := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionCreatePoll); !decision.Allowed {
		t.Fatalf("other action should not share the window")
	}
}

func TestFloodProbes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	module := ratelimit.NewInMemoryModule(time.Hour, map[entities.Action]entities.Policy{
		entities.ActionMessage: {Cap: 100},
	}, clock, nil)

	flooding, err := module.Service.IsFlooding(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("flood check failed: %v", err)
	}
	if flooding {
		t.Fatalf("idle user should not be flagged")
	}

	for i := 0; i < 4; i++ {
		if _, err := module.Service.CheckAndRecord(context.Background(), "user-1", entities.ActionMessage); err != nil {
			t.Fatalf("message %d failed: %v", i, err)
		}
	}
	flooding, err = module.Service.IsFlooding(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("flood check failed: %v", err)
	}
	if !flooding {
		t.Fatalf("four messages within ten seconds should trip the burst probe")
	}

	clock.Advance(11 * time.Second)
	flooding, err = module.Service.IsFlooding(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("flood check failed: %v", err)
	}
	if flooding {
		t.Fatalf("burst probe should clear once the short window passes")
	}
}
