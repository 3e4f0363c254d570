package errors

import "errors"

var (
	ErrInvalidKey  = errors.New("rate limit key is invalid")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrStorage     = errors.New("rate limit storage failure")
)
