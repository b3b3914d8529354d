package domain

import (
	"errors"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrInconsistentState is reported when the store signals a uniqueness
	// violation for a word that a follow-up lookup still cannot find.
	ErrInconsistentState = errors.New("inconsistent state")
)
