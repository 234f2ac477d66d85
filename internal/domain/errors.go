package domain

import "errors"

var (
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized means the record exists but belongs to someone else.
	// Kept distinct from ErrNotFound; callers decide whether to collapse them.
	ErrUnauthorized = errors.New("not authorized")
)
