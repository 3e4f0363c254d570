package services

import "pollsbot/contexts/polling/poll-engine/domain/entities"

// Tally is an aggregated view of the non-superseded votes on a poll.
type Tally struct {
	Counts      []int
	TotalVoters int
	Leaders     []int
}

// ClosureDecision is the outcome of evaluating a poll against its closing
// conditions after a vote.
type ClosureDecision struct {
	ShouldClose    bool
	Reason         entities.CloseReason
	AssignDecision bool
	WinningOption  int
}

// ComputeTally counts the latest vote of each voter per option.
func ComputeTally(optionCount int, votes []entities.Vote) Tally {
	tally := Tally{Counts: make([]int, optionCount)}
	for _, vote := range votes {
		if vote.Superseded {
			continue
		}
		if vote.OptionIndex < 0 || vote.OptionIndex >= optionCount {
			continue
		}
		tally.Counts[vote.OptionIndex]++
		tally.TotalVoters++
	}

	best := 0
	for _, count := range tally.Counts {
		if count > best {
			best = count
		}
	}
	if best > 0 {
		for index, count := range tally.Counts {
			if count == best {
				tally.Leaders = append(tally.Leaders, index)
			}
		}
	}
	return tally
}

// EvaluateClosure decides whether a poll must close given its current tally.
// A poll closes on threshold when exactly one option holds a share of voters
// greater than or equal to the threshold percentage; ties never close a poll
// on threshold. A poll at participant capacity closes regardless, and earns
// a decision number only when the threshold condition independently holds.
func EvaluateClosure(poll entities.Poll, tally Tally) ClosureDecision {
	thresholdMet := false
	winning := -1
	if len(tally.Leaders) == 1 {
		winning = tally.Leaders[0]
	}
	// Threshold zero disables automatic decision closure.
	if poll.Threshold > 0 && tally.TotalVoters >= 1 && winning >= 0 {
		// Integer math avoids float comparison: counts*100 >= threshold*total.
		if tally.Counts[winning]*100 >= poll.Threshold*tally.TotalVoters {
			thresholdMet = true
		}
	}

	if thresholdMet {
		return ClosureDecision{
			ShouldClose:    true,
			Reason:         entities.CloseReasonThreshold,
			AssignDecision: true,
			WinningOption:  winning,
		}
	}

	if poll.MaxParticipants > 0 && tally.TotalVoters >= poll.MaxParticipants {
		return ClosureDecision{
			ShouldClose:   true,
			Reason:        entities.CloseReasonCapacity,
			WinningOption: winning,
		}
	}

	return ClosureDecision{WinningOption: winning}
}
