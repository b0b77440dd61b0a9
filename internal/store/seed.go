// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/model"
)

// Default bootstrap identity.
const (
	DefaultSuperadminUsername = "superadmin"
	DefaultSuperadminEmail    = "superadmin@example.com"
)

// SeedConfig describes the bootstrap superadmin.
type SeedConfig struct {
	Username string
	Email    string
	Password string
}

// Seed creates the initial superadmin when the accounts table is empty.
// The account must change its password on first login. It returns true when
// an account was created.
func Seed(ctx context.Context, db *sql.DB, hasher *auth.Hasher, cfg SeedConfig) (bool, error) {
	if cfg.Username == "" {
		cfg.Username = DefaultSuperadminUsername
	}
	if cfg.Email == "" {
		cfg.Email = DefaultSuperadminEmail
	}
	cfg.Email = auth.NormalizeEmail(cfg.Email)

	if cfg.Password == "" {
		slog.Warn("no bootstrap password configured, skipping superadmin seed", "category", model.EventCategorySystem)
		return false, nil
	}
	if err := auth.ValidateUsername(cfg.Username); err != nil {
		return false, fmt.Errorf("bootstrap username: %w", err)
	}
	if err := auth.ValidateEmail(cfg.Email); err != nil {
		return false, fmt.Errorf("bootstrap email: %w", err)
	}
	if err := auth.ValidatePassword(cfg.Password); err != nil {
		return false, fmt.Errorf("bootstrap password: %w", err)
	}

	passwordHash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	created := false
	err = WithTx(ctx, db, func(q *Queries) error {
		count, err := q.CountAccounts(ctx)
		if err != nil {
			return fmt.Errorf("counting accounts: %w", err)
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		account, err := q.CreateAccount(ctx, CreateAccountParams{
			ID:                 uuid.NewString(),
			Username:           cfg.Username,
			Email:              cfg.Email,
			PasswordHash:       passwordHash,
			Role:               model.RoleSuperadmin,
			MustChangePassword: true,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return fmt.Errorf("creating superadmin: %w", err)
		}

		slog.Info("created bootstrap superadmin", "id", account.ID, "username", account.Username)
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !created {
		slog.Info("accounts already exist, skipping superadmin seed")
	}
	return created, nil
}
