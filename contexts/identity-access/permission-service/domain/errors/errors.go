package errors

import "errors"

var (
	ErrInvalidUserID    = errors.New("user id is invalid")
	ErrUnknownTier      = errors.New("unknown permission tier")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorage          = errors.New("permission storage failure")
)
