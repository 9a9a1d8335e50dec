package core

import (
	"errors"
	"fmt"
)

// The three failure kinds every ledger operation reports. Callers match with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrConflict: the entity already exists (duplicate wallet or asset id).
	ErrConflict = errors.New("already exists")

	// ErrNotFound: a referenced address, asset or listing does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRejected: the request is well-formed but violates a business
	// invariant (insufficient balance, not the owner, already listed,
	// listing unavailable, non-positive price).
	ErrRejected = errors.New("rejected")
)

func conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func rejectedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrRejected)...)
}

// IsConflict reports whether err is a duplicate-entity failure.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRejected reports whether err is a business-rule failure.
func IsRejected(err error) bool { return errors.Is(err, ErrRejected) }
