// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/ochen1/immich/pkg/domain-errors"
)

// UserID identifies a user account.
type UserID uuid.UUID

// ParseUserID parses a user ID at trust boundaries (handlers, token claims).
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "invalid user ID format")
	}
	return UserID(id), nil
}

// NewUserID generates a fresh random user ID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
