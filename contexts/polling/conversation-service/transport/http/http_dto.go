package httptransport

// StartDialogueRequest opens one of the wizard shapes. Kind selects which
// fields matter: poll settings for poll_creation, template name plus
// variables for template_instantiation.
type StartDialogueRequest struct {
	ChatID          string   `json:"chat_id"`
	Kind            string   `json:"kind"`
	Threshold       *int     `json:"threshold,omitempty"`
	NonAnonymous    bool     `json:"non_anonymous,omitempty"`
	MaxParticipants int      `json:"max_participants,omitempty"`
	TemplateName    string   `json:"template_name,omitempty"`
	Variables       []string `json:"variables,omitempty"`
}

type AdvanceDialogueRequest struct {
	Input string `json:"input"`
}

// InboundActionRequest is the transport-neutral user action record. The
// chat collaborator posts these without the core ever seeing its own
// message envelopes.
type InboundActionRequest struct {
	ChatID  string `json:"chat_id"`
	Kind    string `json:"kind"` // command, callback or free_text
	Payload string `json:"payload"`
}

// ReplyResponse is the descriptor the transport renders into actual chat
// UI: plain text, optional option buttons, and whether the previous bot
// message should be edited in place instead of sending a new one.
type ReplyResponse struct {
	Text         string   `json:"text"`
	Buttons      []string `json:"buttons,omitempty"`
	EditPrevious bool     `json:"edit_previous,omitempty"`
}

// PollDraftResponse is a completed poll-creation wizard.
type PollDraftResponse struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	Threshold       int      `json:"threshold"`
	NonAnonymous    bool     `json:"non_anonymous"`
	MaxParticipants int      `json:"max_participants"`
}

// TemplateDraftResponse is a completed template-creation wizard.
type TemplateDraftResponse struct {
	Name     string   `json:"name"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// InstantiationResponse is a completed template-instantiation wizard.
type InstantiationResponse struct {
	TemplateName string            `json:"template_name"`
	Bindings     map[string]string `json:"bindings"`
}

// StepOutcomeResponse reports what a dialogue step produced. Exactly one of
// the draft fields is set when outcome is "completed".
type StepOutcomeResponse struct {
	Outcome       string                 `json:"outcome"`
	Prompt        string                 `json:"prompt,omitempty"`
	Buttons       []string               `json:"buttons,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Poll          *PollDraftResponse     `json:"poll,omitempty"`
	Template      *TemplateDraftResponse `json:"template,omitempty"`
	Instantiation *InstantiationResponse `json:"instantiation,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
