package errors

import "errors"

var (
	ErrValidation       = errors.New("poll input is invalid")
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollClosed       = errors.New("poll is closed")
	ErrInvalidOption    = errors.New("option index is out of range")
	ErrNotCreator       = errors.New("requester does not own the poll")
	ErrCapacityExceeded = errors.New("poll participant capacity exceeded")
	ErrStorage          = errors.New("poll storage failure")
)
