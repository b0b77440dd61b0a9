// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/lingocms/internal/auth"
)

// Sentinel errors returned by the account service.
var (
	ErrNotFound    = errors.New("account not found")
	ErrConflict    = errors.New("account already exists")
	ErrDeactivated = errors.New("account is deactivated")
	ErrIntegrity   = errors.New("account data integrity error")
)

// ValidationError is an input rejected by registration or password policy.
type ValidationError = auth.ValidationError

// ConflictError names the unique field that is already taken.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// Is matches ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// AuthenticationError is a failed credential check. AttemptsRemaining is set
// when the failure was counted against an existing account.
type AuthenticationError struct {
	AttemptsRemaining *int
}

func (e *AuthenticationError) Error() string {
	if e.AttemptsRemaining != nil {
		return fmt.Sprintf("invalid credentials, %d attempts remaining", *e.AttemptsRemaining)
	}
	return "invalid credentials"
}

// LockedError is returned for a login against a locked account.
type LockedError struct {
	Until            time.Time
	MinutesRemaining int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.MinutesRemaining)
}
