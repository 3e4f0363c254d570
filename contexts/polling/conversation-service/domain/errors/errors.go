package errors

import "errors"

var (
	ErrValidation       = errors.New("dialogue input is invalid")
	ErrDialogueConflict = errors.New("user already has an active dialogue")
	ErrNoDialogue       = errors.New("user has no active dialogue")
	ErrStorage          = errors.New("dialogue storage failure")
)
