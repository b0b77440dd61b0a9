// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const accountColumns = `id, username, email, password_hash, role, is_active, failed_login_attempts, locked_until, session_token, must_change_password, last_login_at, last_ip, password_changed_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.Role,
		&i.IsActive,
		&i.FailedLoginAttempts,
		&i.LockedUntil,
		&i.SessionToken,
		&i.MustChangePassword,
		&i.LastLoginAt,
		&i.LastIp,
		&i.PasswordChangedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `
INSERT INTO accounts (id, username, email, password_hash, role, is_active, must_change_password, password_changed_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	ID                 string       `json:"id"`
	Username           string       `json:"username"`
	Email              string       `json:"email"`
	PasswordHash       string       `json:"password_hash"`
	Role               string       `json:"role"`
	MustChangePassword bool         `json:"must_change_password"`
	PasswordChangedAt  sql.NullTime `json:"password_changed_at"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.ID,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.MustChangePassword,
		arg.PasswordChangedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanAccount(row)
}

const getAccountByID = `
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByID, id)
	return scanAccount(row)
}

const getAccountByUsername = `
SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByUsername, username)
	return scanAccount(row)
}

const getAccountByEmail = `
SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccountByEmail, email)
	return scanAccount(row)
}

const listAccounts = `
SELECT ` + accountColumns + ` FROM accounts
ORDER BY created_at, id
LIMIT ? OFFSET ?`

type ListAccountsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		i, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAccounts = `
SELECT COUNT(*) FROM accounts`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAccounts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countActiveSuperadmins = `
SELECT COUNT(*) FROM accounts WHERE role = 'superadmin' AND is_active = 1`

func (q *Queries) CountActiveSuperadmins(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveSuperadmins)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateLoginState = `
UPDATE accounts SET failed_login_attempts = ?, locked_until = ?, updated_at = ?
WHERE id = ?`

type UpdateLoginStateParams struct {
	FailedLoginAttempts int64        `json:"failed_login_attempts"`
	LockedUntil         sql.NullTime `json:"locked_until"`
	UpdatedAt           time.Time    `json:"updated_at"`
	ID                  string       `json:"id"`
}

func (q *Queries) UpdateLoginState(ctx context.Context, arg UpdateLoginStateParams) error {
	_, err := q.db.ExecContext(ctx, updateLoginState,
		arg.FailedLoginAttempts,
		arg.LockedUntil,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const recordLoginSuccess = `
UPDATE accounts SET
    failed_login_attempts = 0,
    locked_until = NULL,
    session_token = ?,
    last_login_at = ?,
    last_ip = ?,
    updated_at = ?
WHERE id = ?`

type RecordLoginSuccessParams struct {
	SessionToken sql.NullString `json:"session_token"`
	LastLoginAt  sql.NullTime   `json:"last_login_at"`
	LastIp       sql.NullString `json:"last_ip"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ID           string         `json:"id"`
}

func (q *Queries) RecordLoginSuccess(ctx context.Context, arg RecordLoginSuccessParams) error {
	_, err := q.db.ExecContext(ctx, recordLoginSuccess,
		arg.SessionToken,
		arg.LastLoginAt,
		arg.LastIp,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const updatePasswordHash = `
UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`

type UpdatePasswordHashParams struct {
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
}

func (q *Queries) UpdatePasswordHash(ctx context.Context, arg UpdatePasswordHashParams) error {
	_, err := q.db.ExecContext(ctx, updatePasswordHash, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const changePassword = `
UPDATE accounts SET
    password_hash = ?,
    password_changed_at = ?,
    must_change_password = 0,
    updated_at = ?
WHERE id = ?`

type ChangePasswordParams struct {
	PasswordHash      string       `json:"password_hash"`
	PasswordChangedAt sql.NullTime `json:"password_changed_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	ID                string       `json:"id"`
}

func (q *Queries) ChangePassword(ctx context.Context, arg ChangePasswordParams) error {
	_, err := q.db.ExecContext(ctx, changePassword,
		arg.PasswordHash,
		arg.PasswordChangedAt,
		arg.UpdatedAt,
		arg.ID,
	)
	return err
}

const clearSessionToken = `
UPDATE accounts SET session_token = NULL, updated_at = ? WHERE id = ?`

type ClearSessionTokenParams struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

func (q *Queries) ClearSessionToken(ctx context.Context, arg ClearSessionTokenParams) error {
	_, err := q.db.ExecContext(ctx, clearSessionToken, arg.UpdatedAt, arg.ID)
	return err
}

const updateAccountRole = `
UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`

type UpdateAccountRoleParams struct {
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

func (q *Queries) UpdateAccountRole(ctx context.Context, arg UpdateAccountRoleParams) error {
	_, err := q.db.ExecContext(ctx, updateAccountRole, arg.Role, arg.UpdatedAt, arg.ID)
	return err
}

const setAccountActive = `
UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`

type SetAccountActiveParams struct {
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

func (q *Queries) SetAccountActive(ctx context.Context, arg SetAccountActiveParams) error {
	_, err := q.db.ExecContext(ctx, setAccountActive, arg.IsActive, arg.UpdatedAt, arg.ID)
	return err
}
