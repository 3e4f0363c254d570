package errors

import "errors"

var (
	ErrInvalidName      = errors.New("template name is invalid")
	ErrInvalidTemplate  = errors.New("template body is invalid")
	ErrTemplateExists   = errors.New("template name is already taken")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNotOwner         = errors.New("template belongs to another creator")
	ErrUnboundVariable  = errors.New("placeholder has no bound value")
	ErrStorage          = errors.New("template storage failure")
)
