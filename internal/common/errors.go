// Package common defines shared sentinel errors and the member-name rules
// used across the ledger core. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Rename target collides with a distinct existing member.
	ErrConflict = errors.New("name conflict")

	// Caller lacks the privileged role.
	ErrUnauthorized = errors.New("unauthorized")

	// Input fails validation (name rules, unknown role, bad file type).
	ErrInvalidInput = errors.New("invalid input")

	// Import header row does not resolve to first/last name columns.
	ErrMissingColumns = errors.New("missing columns")

	// Confirmation transition attempted on a terminal or expired instance.
	ErrStaleConfirmation = errors.New("stale confirmation")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
