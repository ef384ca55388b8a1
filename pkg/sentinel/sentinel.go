package sentinel

import "errors"

// Sentinel dependency errors. Stores and other collaborators return these
// (optionally wrapped) so services can translate them into domain errors
// exactly once.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrExpired       = errors.New("expired")
	ErrAlreadyUsed   = errors.New("already used")
	ErrUnavailable   = errors.New("unavailable")
)
