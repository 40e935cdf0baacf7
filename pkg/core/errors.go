package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrEmptyTitle       = errors.New("record title cannot be empty")
	ErrWatchUnsupported = errors.New("store does not support watching")
	ErrInvalidPattern   = errors.New("invalid watch pattern")
)
