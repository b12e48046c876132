package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrFetch           = errors.New("fetch failed")
	ErrInvalidMeta     = errors.New("invalid metadata")
	ErrMissingFields   = errors.New("missing required fields")
	ErrUnknownCategory = errors.New("unknown category")
)
