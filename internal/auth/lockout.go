// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"math"
	"time"
)

// Lockout policy.
const (
	MaxFailedAttempts = 5
	LockoutDuration   = 30 * time.Minute
)

// LockState is the failed-login counter and lock deadline of one account.
// Expiry is evaluated lazily against the caller's clock.
type LockState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// Locked reports whether the account is locked at now.
func (s *LockState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Remaining returns the time left on an active lock, or zero.
func (s *LockState) Remaining(now time.Time) time.Duration {
	if !s.Locked(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// MinutesRemaining returns the lock time left rounded up to whole minutes.
func (s *LockState) MinutesRemaining(now time.Time) int {
	return int(math.Ceil(s.Remaining(now).Minutes()))
}

// Expire clears a lock whose deadline has passed and resets the counter.
// It reports whether anything changed.
func (s *LockState) Expire(now time.Time) bool {
	if s.LockedUntil == nil || now.Before(*s.LockedUntil) {
		return false
	}
	s.FailedAttempts = 0
	s.LockedUntil = nil
	return true
}

// RecordFailure counts a failed password check. It returns true when this
// failure locked the account.
func (s *LockState) RecordFailure(now time.Time) bool {
	s.FailedAttempts++
	if s.FailedAttempts >= MaxFailedAttempts {
		until := now.Add(LockoutDuration)
		s.LockedUntil = &until
		return true
	}
	return false
}

// AttemptsRemaining returns how many failures are left before a lock.
func (s *LockState) AttemptsRemaining() int {
	return max(MaxFailedAttempts-s.FailedAttempts, 0)
}

// Reset is applied after a successful login.
func (s *LockState) Reset() {
	s.FailedAttempts = 0
	s.LockedUntil = nil
}

// Unlock is the administrative override. It is unconditional and idempotent.
func (s *LockState) Unlock() {
	s.Reset()
}
