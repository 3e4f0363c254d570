package entities

import "time"

// Template is a reusable poll blueprint. Variables holds the distinct
// placeholder names referenced by the question and options, ordered by first
// occurrence (question first, then options in sequence).
type Template struct {
	Name         string
	Question     string
	Options      []string
	Description  string
	Variables    []string
	CreatorID    string
	UsageCount   int
	Threshold    int
	NonAnonymous bool
	CreatedAt    time.Time
}
