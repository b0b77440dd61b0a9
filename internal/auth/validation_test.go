// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
		reason   string
	}{
		{"short1!", false, "at least 12 characters"},
		{"NoDigits!!", false, "digit"},
		{"alllowercase1!", false, "uppercase"},
		{"Valid123!Pass", true, ""},
		{"ALLUPPERCASE1!", false, "lowercase"},
		{"NoSpecials1234", false, "one of"},
		{"Another$Good9pw", true, ""},
		{"ÉÉÉÉvalid123!", false, "uppercase"},
		{"éééé@VALID123", false, "lowercase"},
		{"Valid٣٣٣!Passw", false, "digit"},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				if err != nil {
					t.Fatalf("ValidatePassword() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidatePassword() = %v, want *ValidationError", err)
			}
			if verr.Field != "password" {
				t.Errorf("Field = %q, want password", verr.Field)
			}
			if !strings.Contains(strings.Join(verr.Reasons, "|"), tt.reason) {
				t.Errorf("Reasons = %v, want one containing %q", verr.Reasons, tt.reason)
			}
		})
	}
}

func TestValidatePassword_ReportsAllReasons(t *testing.T) {
	var verr *ValidationError
	if !errors.As(ValidatePassword("abc"), &verr) {
		t.Fatal("expected *ValidationError")
	}
	// length, uppercase, digit, special
	if len(verr.Reasons) != 4 {
		t.Errorf("got %d reasons %v, want 4", len(verr.Reasons), verr.Reasons)
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"al", false},
		{"abc", true},
		{"john_doe-99", true},
		{"john doe", false},
		{"john.doe", false},
		{"jöhn", false},
		{strings.Repeat("a", 80), true},
		{strings.Repeat("a", 81), false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateUsername(%q) = %v, valid want %v", tt.username, err, tt.valid)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"no-at-sign.com", false},
		{"alice@localhost", false},
		{"alice@example.c", false},
		{"@example.com", false},
		{"alice@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateEmail(%q) = %v, valid want %v", tt.email, err, tt.valid)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
