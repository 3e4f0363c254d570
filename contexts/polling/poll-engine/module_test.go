package pollengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	pollengine "pollsbot/contexts/polling/poll-engine"
	"pollsbot/contexts/polling/poll-engine/application/commands"
	"pollsbot/contexts/polling/poll-engine/domain/entities"
	domainerrors "pollsbot/contexts/polling/poll-engine/domain/errors"
)

func createPoll(t *testing.T, module pollengine.Module, cmd commands.CreatePollCommand) entities.Poll {
	t.Helper()
	poll, err := module.Polls.CreatePoll(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return poll
}

func TestClassificationIsOrderIndependent(t *testing.T) {
	cases := []struct {
		name    string
		options []string
		want    entities.VotingType
	}{
		{"binary english", []string{"Yes", "No"}, entities.VotingTypeBinary},
		{"binary english reversed", []string{"no", "YES"}, entities.VotingTypeBinary},
		{"binary russian", []string{"Да", "Нет"}, entities.VotingTypeBinary},
		{"binary for against", []string{"For", "Against"}, entities.VotingTypeBinary},
		{"approval english", []string{"Abstain", "For", "Against"}, entities.VotingTypeApproval},
		{"approval russian", []string{"За", "Против", "Воздержаться"}, entities.VotingTypeApproval},
		{"rating shuffled", []string{"3", "1", "2"}, entities.VotingTypeRating},
		{"rating five", []string{"1", "2", "3", "4", "5"}, entities.VotingTypeRating},
		{"not a rating without one", []string{"2", "3"}, entities.VotingTypeChoice},
		{"plain choice", []string{"Pizza", "Sushi", "Tacos"}, entities.VotingTypeChoice},
	}
	for _, tc := range cases {
		module := pollengine.NewInMemoryModule(nil)
		poll := createPoll(t, module, commands.CreatePollCommand{
			ChatID:    "chat-1",
			CreatorID: "user-1",
			Question:  "Where do we eat?",
			Options:   tc.options,
		})
		if poll.VotingType != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, poll.VotingType)
		}
	}
}

func TestCreatePollValidation(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	cases := []commands.CreatePollCommand{
		{ChatID: "chat", CreatorID: "user", Question: "", Options: []string{"A", "B"}},
		{ChatID: "chat", CreatorID: "user", Question: "Q?", Options: []string{"Only"}},
		{ChatID: "chat", CreatorID: "user", Question: "Q?", Options: []string{"A", "a"}},
		{ChatID: "chat", CreatorID: "user", Question: "Q?", Options: []string{"A", "B"}, Threshold: 101},
		{ChatID: "", CreatorID: "user", Question: "Q?", Options: []string{"A", "B"}},
	}
	for i, cmd := range cases {
		if _, err := module.Polls.CreatePoll(context.Background(), cmd); !errors.Is(err, domainerrors.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestThresholdClosureAssignsDecisionNumber(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:    "chat-1",
		CreatorID: "user-1",
		Question:  "Adopt the proposal?",
		Options:   []string{"Yes", "No"},
		Threshold: 50,
	})

	result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID:      poll.PollID,
		UserID:      "voter-1",
		OptionIndex: 0,
	})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if !result.Closed {
		t.Fatalf("single unanimous voter should satisfy a 50%% threshold")
	}
	if result.Poll.CloseReason != entities.CloseReasonThreshold {
		t.Fatalf("expected threshold closure, got %s", result.Poll.CloseReason)
	}
	if result.Poll.DecisionNumber == nil || *result.Poll.DecisionNumber != 1 {
		t.Fatalf("expected decision number 1, got %v", result.Poll.DecisionNumber)
	}

	if _, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID:      poll.PollID,
		UserID:      "voter-2",
		OptionIndex: 1,
	}); !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("closed poll should reject votes, got %v", err)
	}
}

func TestExactTieClosesOnlyByCapacityWithoutDecision(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:          "chat-1",
		CreatorID:       "user-1",
		Question:        "A or B?",
		Options:         []string{"A", "B"},
		Threshold:       0,
		MaxParticipants: 2,
	})

	if _, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "voter-1", OptionIndex: 0,
	}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "voter-2", OptionIndex: 1,
	})
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if !result.Closed {
		t.Fatalf("poll at capacity should close")
	}
	if result.Poll.CloseReason != entities.CloseReasonCapacity {
		t.Fatalf("expected capacity closure, got %s", result.Poll.CloseReason)
	}
	if result.Poll.DecisionNumber != nil {
		t.Fatalf("50/50 tie must not earn a decision number")
	}
}

func TestFirstVoteOnThresholdPollClosesImmediately(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:          "chat-9",
		CreatorID:       "user-1",
		Question:        "Unanimous?",
		Options:         []string{"A", "B"},
		Threshold:       90,
		MaxParticipants: 3,
	})

	// A lone voter holds a 100% share, so any nonzero threshold is met on
	// the very first vote.
	result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "v1", OptionIndex: 0,
	})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if !result.Closed || result.Poll.CloseReason != entities.CloseReasonThreshold {
		t.Fatalf("expected immediate threshold closure, got %+v", result.Poll)
	}
	if result.Poll.DecisionNumber == nil {
		t.Fatalf("threshold closure must assign a decision number")
	}

	_, err = module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "v2", OptionIndex: 1,
	})
	if !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed after closure, got %v", err)
	}
}

func TestRevoteMovesCountWithoutDoubleCounting(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:    "chat-1",
		CreatorID: "user-1",
		Question:  "Lunch?",
		Options:   []string{"Pizza", "Sushi", "Tacos"},
		Threshold: 0,
	})

	if _, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "voter-1", OptionIndex: 0,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: poll.PollID, UserID: "voter-1", OptionIndex: 2,
	})
	if err != nil {
		t.Fatalf("re-vote failed: %v", err)
	}
	if !result.Superseded {
		t.Fatalf("re-vote should supersede the prior one")
	}
	if result.Tally.TotalVoters != 1 {
		t.Fatalf("expected 1 voter after re-vote, got %d", result.Tally.TotalVoters)
	}
	if result.Tally.Counts[0] != 0 || result.Tally.Counts[2] != 1 {
		t.Fatalf("expected count to move to option 2, got %v", result.Tally.Counts)
	}
}

func TestConcurrentVotesRespectCapacityAndCloseOnce(t *testing.T) {
	const voters = 8
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:          "chat-1",
		CreatorID:       "user-1",
		Question:        "Crowded?",
		Options:         []string{"A", "B", "C"},
		Threshold:       0,
		MaxParticipants: voters,
	})

	var wg sync.WaitGroup
	results := make([]commands.RecordVoteResult, voters*2)
	errs := make([]error, voters*2)
	for i := 0; i < voters*2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
				PollID:      poll.PollID,
				UserID:      "voter-" + string(rune('a'+i)),
				OptionIndex: i % 3,
			})
		}(i)
	}
	wg.Wait()

	accepted, closures := 0, 0
	for i := range results {
		switch {
		case errs[i] == nil:
			accepted++
			if results[i].Closed {
				closures++
			}
		case errors.Is(errs[i], domainerrors.ErrCapacityExceeded),
			errors.Is(errs[i], domainerrors.ErrPollClosed):
		default:
			t.Fatalf("unexpected error: %v", errs[i])
		}
	}
	if accepted != voters {
		t.Fatalf("expected exactly %d accepted votes, got %d", voters, accepted)
	}
	if closures != 1 {
		t.Fatalf("exactly one vote should observe the closure, got %d", closures)
	}

	final, err := module.Results.PollResults(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if final.TotalVoters != voters {
		t.Fatalf("expected %d voters, got %d", voters, final.TotalVoters)
	}
	if !final.Poll.Closed() || final.Poll.CloseReason != entities.CloseReasonCapacity {
		t.Fatalf("poll should be capacity-closed")
	}
	if final.Poll.DecisionNumber != nil {
		t.Fatalf("capacity closure without a threshold must not assign a decision number")
	}
}

func TestManualCloseRequiresCreatorAndSkipsDecision(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:    "chat-1",
		CreatorID: "user-1",
		Question:  "Close me",
		Options:   []string{"Yes", "No"},
		Threshold: 0,
	})

	if _, err := module.Polls.ClosePoll(context.Background(), commands.ClosePollCommand{
		PollID: poll.PollID, RequesterID: "stranger",
	}); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected creator check, got %v", err)
	}

	closed, err := module.Polls.ClosePoll(context.Background(), commands.ClosePollCommand{
		PollID: poll.PollID, RequesterID: "user-1",
	})
	if err != nil {
		t.Fatalf("manual close failed: %v", err)
	}
	if closed.CloseReason != entities.CloseReasonManual {
		t.Fatalf("expected manual reason, got %s", closed.CloseReason)
	}
	if closed.DecisionNumber != nil {
		t.Fatalf("manual closure never assigns a decision number")
	}
}

func TestDecisionNumbersAreMonotonicPerChat(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	for want := 1; want <= 3; want++ {
		poll := createPoll(t, module, commands.CreatePollCommand{
			ChatID:    "chat-42",
			CreatorID: "user-1",
			Question:  "Decision?",
			Options:   []string{"Yes", "No"},
			Threshold: 50,
		})
		result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
			PollID: poll.PollID, UserID: "voter-1", OptionIndex: 0,
		})
		if err != nil {
			t.Fatalf("vote failed: %v", err)
		}
		if result.Poll.DecisionNumber == nil || *result.Poll.DecisionNumber != want {
			t.Fatalf("expected decision number %d, got %v", want, result.Poll.DecisionNumber)
		}
	}

	other := createPoll(t, module, commands.CreatePollCommand{
		ChatID:    "chat-other",
		CreatorID: "user-1",
		Question:  "Decision?",
		Options:   []string{"Yes", "No"},
		Threshold: 50,
	})
	result, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
		PollID: other.PollID, UserID: "voter-1", OptionIndex: 0,
	})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if result.Poll.DecisionNumber == nil || *result.Poll.DecisionNumber != 1 {
		t.Fatalf("decision numbers are scoped per chat, got %v", result.Poll.DecisionNumber)
	}
}

func TestNonAnonymousResultsListVoters(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	poll := createPoll(t, module, commands.CreatePollCommand{
		ChatID:       "chat-1",
		CreatorID:    "user-1",
		Question:     "Who is in?",
		Options:      []string{"In", "Out"},
		Threshold:    0,
		NonAnonymous: true,
	})
	for _, voter := range []string{"bob", "alice"} {
		if _, err := module.Polls.RecordVote(context.Background(), commands.RecordVoteCommand{
			PollID: poll.PollID, UserID: voter, OptionIndex: 0,
		}); err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}

	results, err := module.Results.PollResults(context.Background(), poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	voters := results.VotersByOption[0]
	if len(voters) != 2 || voters[0] != "alice" || voters[1] != "bob" {
		t.Fatalf("expected sorted voter names, got %v", voters)
	}
}

func TestExpirySweepClosesOnlyStalePolls(t *testing.T) {
	module := pollengine.NewInMemoryModule(nil)
	stale := createPoll(t, module, commands.CreatePollCommand{
		ChatID:    "chat-1",
		CreatorID: "user-1",
		Question:  "Old?",
		Options:   []string{"Yes", "No"},
		Threshold: 0,
	})

	// Zero max age treats everything already created as stale.
	closed, err := module.Polls.ExpireOpenPolls(context.Background(), 0)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 expired poll, got %d", closed)
	}

	got, err := module.Store.GetPoll(context.Background(), stale.PollID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Closed() || got.CloseReason != entities.CloseReasonExpired {
		t.Fatalf("expected expired closure, got %s", got.CloseReason)
	}
	if got.DecisionNumber != nil {
		t.Fatalf("expiry never assigns a decision number")
	}
}
