package store

import "errors"

var (
	// ErrNotFound is returned when a code, article, or version is absent.
	ErrNotFound = errors.New("record not found")
	// ErrCodeExists is returned when registering an already taken code id.
	ErrCodeExists = errors.New("code already registered")
	// ErrDuplicateVersion is returned when a version with the same
	// (code, article, effective date) already exists.
	ErrDuplicateVersion = errors.New("article version already exists for this effective date")
	// ErrDuplicateAmendment is returned when a ledger row for the same
	// (amendment ref, code) already exists. The caller should look up the
	// existing row instead of retrying blindly.
	ErrDuplicateAmendment = errors.New("amendment already recorded for this code")
	// ErrIllegalTransition is returned when a ledger state change violates
	// the application state machine. It indicates an orchestrator bug.
	ErrIllegalTransition = errors.New("illegal amendment status transition")
)
