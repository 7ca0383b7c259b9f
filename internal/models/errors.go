package models

import "errors"

// Error taxonomy shared by every layer. Packages wrap these with context using
// fmt.Errorf("...: %w", ...) so callers can classify failures with errors.Is.
var (
	// ErrNotFound indicates a referenced item, sprint or project does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates input that can never succeed as given
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized indicates a missing or unverifiable caller identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks a role for the operation
	ErrForbidden = errors.New("forbidden")

	// ErrChainCorrupted indicates a scope whose prev pointers do not form a single chain
	ErrChainCorrupted = errors.New("backlog chain corrupted")
)
