package services

import (
	"errors"
)

// Failure taxonomy for the engine. Handlers map these onto HTTP statuses;
// anything else coming out of the store is a retryable transient failure.
var (
	// ErrInvalidOption rejects a vote before any store call is made.
	ErrInvalidOption = errors.New("option must be agree, neutral or disagree")

	// ErrEmptyComment rejects a blank comment before any store call.
	ErrEmptyComment = errors.New("comment content must not be empty")

	// ErrAuthRequired means no identity was resolved at submission time.
	ErrAuthRequired = errors.New("authentication required")
)
