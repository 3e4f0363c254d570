package services

import (
	"testing"
	"time"

	"pollsbot/contexts/polling/poll-engine/domain/entities"
)

func votesFor(indexes ...int) []entities.Vote {
	votes := make([]entities.Vote, 0, len(indexes))
	for i, index := range indexes {
		votes = append(votes, entities.Vote{
			PollID:      "p",
			UserID:      "u" + string(rune('a'+i)),
			OptionIndex: index,
			CastAt:      time.Now(),
		})
	}
	return votes
}

func TestComputeTallySkipsSupersededVotes(t *testing.T) {
	votes := votesFor(0, 1, 1)
	votes[0].Superseded = true
	tally := ComputeTally(2, votes)
	if tally.TotalVoters != 2 {
		t.Fatalf("expected 2 active voters, got %d", tally.TotalVoters)
	}
	if tally.Counts[0] != 0 || tally.Counts[1] != 2 {
		t.Fatalf("unexpected counts %v", tally.Counts)
	}
	if len(tally.Leaders) != 1 || tally.Leaders[0] != 1 {
		t.Fatalf("unexpected leaders %v", tally.Leaders)
	}
}

func TestEvaluateClosureTieNeverClosesOnThreshold(t *testing.T) {
	poll := entities.Poll{Threshold: 50, Options: []string{"A", "B"}}
	tally := ComputeTally(2, votesFor(0, 1))
	decision := EvaluateClosure(poll, tally)
	if decision.ShouldClose {
		t.Fatalf("exact 50/50 tie must not close the poll")
	}
}

func TestEvaluateClosureThresholdZeroDisablesAutoClose(t *testing.T) {
	poll := entities.Poll{Threshold: 0, Options: []string{"A", "B"}}
	tally := ComputeTally(2, votesFor(0, 0, 0))
	decision := EvaluateClosure(poll, tally)
	if decision.ShouldClose {
		t.Fatalf("threshold zero disables automatic closure")
	}
}

func TestEvaluateClosureSingleLeaderAtShareCloses(t *testing.T) {
	poll := entities.Poll{Threshold: 60, Options: []string{"A", "B", "C"}}
	// 3 of 4 voters on option 0 is 75% >= 60%.
	tally := ComputeTally(3, votesFor(0, 0, 0, 1))
	decision := EvaluateClosure(poll, tally)
	if !decision.ShouldClose || decision.Reason != entities.CloseReasonThreshold {
		t.Fatalf("expected threshold closure, got %+v", decision)
	}
	if !decision.AssignDecision || decision.WinningOption != 0 {
		t.Fatalf("expected decision for option 0, got %+v", decision)
	}
}

func TestEvaluateClosureCapacityWithShareMetClosesOnThreshold(t *testing.T) {
	poll := entities.Poll{Threshold: 90, Options: []string{"A", "B"}, MaxParticipants: 3}
	// Unanimous at capacity: the share condition holds on its own, so the
	// threshold reason and a decision win over plain capacity exhaustion.
	tally := ComputeTally(2, votesFor(0, 0, 0))
	decision := EvaluateClosure(poll, tally)
	if !decision.ShouldClose || decision.Reason != entities.CloseReasonThreshold {
		t.Fatalf("expected threshold closure, got %+v", decision)
	}
	if !decision.AssignDecision || decision.WinningOption != 0 {
		t.Fatalf("expected decision for option 0, got %+v", decision)
	}
}

func TestEvaluateClosureCapacityTieClosesWithoutDecision(t *testing.T) {
	poll := entities.Poll{Threshold: 80, Options: []string{"A", "B"}, MaxParticipants: 2}
	tally := ComputeTally(2, votesFor(0, 1))
	decision := EvaluateClosure(poll, tally)
	if !decision.ShouldClose || decision.Reason != entities.CloseReasonCapacity {
		t.Fatalf("expected capacity closure, got %+v", decision)
	}
	if decision.AssignDecision {
		t.Fatalf("capacity closure on a tie must not assign a decision")
	}
}
