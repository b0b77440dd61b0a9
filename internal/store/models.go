// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// Account is a row of the accounts table.
type Account struct {
	ID                  string         `json:"id"`
	Username            string         `json:"username"`
	Email               string         `json:"email"`
	PasswordHash        string         `json:"password_hash"`
	Role                string         `json:"role"`
	IsActive            bool           `json:"is_active"`
	FailedLoginAttempts int64          `json:"failed_login_attempts"`
	LockedUntil         sql.NullTime   `json:"locked_until"`
	SessionToken        sql.NullString `json:"session_token"`
	MustChangePassword  bool           `json:"must_change_password"`
	LastLoginAt         sql.NullTime   `json:"last_login_at"`
	LastIp              sql.NullString `json:"last_ip"`
	PasswordChangedAt   sql.NullTime   `json:"password_changed_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// AuthEvent is a row of the auth_events table.
type AuthEvent struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	AccountID sql.NullString `json:"account_id"`
	Metadata  string         `json:"metadata"`
	IpAddress string         `json:"ip_address"`
	Country   string         `json:"country"`
	Browser   string         `json:"browser"`
	Os        string         `json:"os"`
	CreatedAt time.Time      `json:"created_at"`
}
