package entities

import "time"

// Action identifies a rate-limited kind of user activity.
type Action string

const (
	ActionCreatePoll     Action = "create_poll"
	ActionVote           Action = "vote"
	ActionCreateTemplate Action = "create_template"
	ActionUseTemplate    Action = "use_template"
	ActionMessage        Action = "message"
)

// Policy is the cap/window pair applied to one action kind. A zero Window
// means the limiter's default window applies.
type Policy struct {
	Cap    int
	Window time.Duration
}

// Decision is the outcome of one check-and-record attempt.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	CheckedAt  time.Time
}
