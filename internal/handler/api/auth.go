// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/lingocms/internal/middleware"
	"github.com/olegiv/lingocms/internal/service"
	"github.com/olegiv/lingocms/internal/session"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account with role user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteCreated(w, accountToResponse(account))
}

// LoginRequest is the body of POST /auth/login. Username may also be the
// account's email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// LoginResponse carries the issued credentials.
type LoginResponse struct {
	Account      AccountResponse `json:"account"`
	Token        string          `json:"token"`
	SessionToken string          `json:"session_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Login authenticates the caller, starts a cookie session and issues a
// bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteBadRequest(w, "Username and password are required")
		return
	}

	ctx := r.Context()
	result, err := h.accounts.Login(ctx, service.LoginInput{
		Login:    req.Username,
		Password: req.Password,
	}, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// New session id on privilege change.
	if err := h.sm.RenewToken(ctx); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.sm.Put(ctx, session.KeyAccountID, result.Account.ID)
	h.sm.Put(ctx, session.KeySessionToken, result.SessionToken)
	h.sm.RememberMe(ctx, req.Remember)

	WriteSuccess(w, LoginResponse{
		Account:      accountToResponse(result.Account),
		Token:        result.Token,
		SessionToken: result.SessionToken,
		ExpiresAt:    result.TokenExpiresAt,
	}, nil)
}

// Logout ends the cookie session and, when revocation is enabled, revokes
// the presented bearer token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	ctx := r.Context()
	if err := h.accounts.Logout(ctx, account.ID, middleware.GetClaims(r), clientInfo(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.sm.Destroy(ctx); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Logged out"}, nil)
}

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, accountToResponse(*account), nil)
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	if account == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.accounts.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword, clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, accountToResponse(updated), nil)
}
