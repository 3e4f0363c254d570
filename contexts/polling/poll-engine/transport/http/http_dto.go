package httptransport

import "time"

// CreatePollRequest is the wire shape for poll creation.
type CreatePollRequest struct {
	ChatID          string   `json:"chat_id"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	Threshold       int      `json:"threshold"`
	NonAnonymous    bool     `json:"non_anonymous"`
	MaxParticipants int      `json:"max_participants"`
	TemplateUsed    string   `json:"template_used,omitempty"`
}

type RecordVoteRequest struct {
	OptionIndex int `json:"option_index"`
}

type ClosePollRequest struct {
	Force bool `json:"force,omitempty"`
}

type PollResponse struct {
	PollID          string     `json:"poll_id"`
	ChatID          string     `json:"chat_id"`
	CreatorID       string     `json:"creator_id"`
	Question        string     `json:"question"`
	Options         []string   `json:"options"`
	VotingType      string     `json:"voting_type"`
	Threshold       int        `json:"threshold"`
	NonAnonymous    bool       `json:"non_anonymous"`
	MaxParticipants int        `json:"max_participants"`
	TemplateUsed    string     `json:"template_used,omitempty"`
	DecisionNumber  *int       `json:"decision_number,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CloseReason     string     `json:"close_reason,omitempty"`
}

type VoteResponse struct {
	Poll        PollResponse `json:"poll"`
	Counts      []int        `json:"counts"`
	TotalVoters int          `json:"total_voters"`
	Superseded  bool         `json:"superseded"`
	Closed      bool         `json:"closed"`
}

type ResultsResponse struct {
	Poll           PollResponse     `json:"poll"`
	Counts         []int            `json:"counts"`
	TotalVoters    int              `json:"total_voters"`
	Leaders        []int            `json:"leaders"`
	VotersByOption map[int][]string `json:"voters_by_option,omitempty"`
}

type ChatPollsResponse struct {
	Polls []PollResponse `json:"polls"`
}

type EngineStatusResponse struct {
	ActivePolls int `json:"active_polls"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
