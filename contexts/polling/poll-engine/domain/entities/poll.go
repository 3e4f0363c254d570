package entities

import "time"

// VotingType is the closed set of poll semantics. It is derived from the
// option texts at creation time and never changes afterwards.
type VotingType string

const (
	VotingTypeBinary   VotingType = "binary"
	VotingTypeApproval VotingType = "approval"
	VotingTypeRating   VotingType = "rating"
	VotingTypeChoice   VotingType = "choice"
)

// CloseReason records how a poll reached its closed state.
type CloseReason string

const (
	CloseReasonThreshold CloseReason = "threshold"
	CloseReasonCapacity  CloseReason = "capacity"
	CloseReasonManual    CloseReason = "manual"
	CloseReasonExpired   CloseReason = "expired"
)

// Poll is one group decision. DecisionNumber is set if and only if the poll
// closed because the leading option satisfied the threshold share; it is
// monotonically increasing per chat.
type Poll struct {
	PollID          string
	ChatID          string
	CreatorID       string
	Question        string
	Options         []string
	VotingType      VotingType
	Threshold       int
	NonAnonymous    bool
	MaxParticipants int
	TemplateUsed    string
	DecisionNumber  *int
	CreatedAt       time.Time
	ClosedAt        *time.Time
	CloseReason     CloseReason
}

// Closed reports whether the poll no longer accepts votes.
func (p Poll) Closed() bool {
	return p.ClosedAt != nil
}

// PollResults is the aggregated read model of one poll. VotersByOption is
// populated for non-anonymous polls only.
type PollResults struct {
	Poll           Poll
	Counts         []int
	TotalVoters    int
	Leaders        []int
	VotersByOption map[int][]string
}

// Vote is one user's choice on one poll. At most one vote per (poll, user)
// is active; casting again retires the prior row instead of adding a second
// active one.
type Vote struct {
	PollID      string
	UserID      string
	OptionIndex int
	Superseded  bool
	CastAt      time.Time
}
