package entities

import "time"

// Kind is the closed set of wizard shapes a dialogue can follow.
type Kind string

const (
	KindPollCreation          Kind = "poll_creation"
	KindTemplateCreation      Kind = "template_creation"
	KindTemplateInstantiation Kind = "template_instantiation"
)

// Stage identifies the step a dialogue is waiting on. The valid stages
// depend on the dialogue's kind.
type Stage string

const (
	StageName     Stage = "name"
	StageQuestion Stage = "question"
	StageOptions  Stage = "options"
	StageConfirm  Stage = "confirm"
	StageVariable Stage = "variable"
)

// PollDraft accumulates the answers of a poll-creation wizard.
type PollDraft struct {
	Question        string
	Options         []string
	Threshold       int
	NonAnonymous    bool
	MaxParticipants int
}

// TemplateDraft accumulates the answers of a template-creation wizard.
type TemplateDraft struct {
	Name     string
	Question string
	Options  []string
}

// InstantiationDraft walks a template's variables in first-occurrence order,
// one step per variable. NextVariable indexes into Variables.
type InstantiationDraft struct {
	TemplateName string
	Variables    []string
	Bindings     map[string]string
	NextVariable int
}

// Dialogue is one user's in-progress wizard. Exactly one of the draft fields
// is meaningful, selected by Kind.
type Dialogue struct {
	UserID        string
	ChatID        string
	Kind          Kind
	Stage         Stage
	Poll          PollDraft
	Template      TemplateDraft
	Instantiation InstantiationDraft
	StartedAt     time.Time
	UpdatedAt     time.Time
}

// ExpiredAt reports whether the dialogue passed its idle timeout at the
// given instant.
func (d Dialogue) ExpiredAt(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return now.Sub(d.UpdatedAt) >= timeout
}
