// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Registration policy.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 80
	PasswordMinLength = 12
	PasswordSpecials  = "@$!%*?&"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError is a rejected input field with every reason it failed.
type ValidationError struct {
	Field   string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, strings.Join(e.Reasons, "; "))
}

func invalid(field string, reasons ...string) *ValidationError {
	return &ValidationError{Field: field, Reasons: reasons}
}

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return invalid("username", fmt.Sprintf("must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
	}
	if !usernamePattern.MatchString(username) {
		return invalid("username", "may only contain letters, digits, underscores and hyphens")
	}
	return nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return invalid("email", "must be a valid email address")
	}
	return nil
}

// ValidatePassword checks the password policy and reports every failed rule.
func ValidatePassword(password string) error {
	var reasons []string

	if utf8.RuneCountInString(password) < PasswordMinLength {
		reasons = append(reasons, fmt.Sprintf("must be at least %d characters", PasswordMinLength))
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}

	if !lower {
		reasons = append(reasons, "must contain a lowercase letter")
	}
	if !upper {
		reasons = append(reasons, "must contain an uppercase letter")
	}
	if !digit {
		reasons = append(reasons, "must contain a digit")
	}
	if !special {
		reasons = append(reasons, "must contain one of "+PasswordSpecials)
	}

	if len(reasons) > 0 {
		return invalid("password", reasons...)
	}
	return nil
}
