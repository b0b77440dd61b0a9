// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers for the /auth endpoints.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/middleware"
	"github.com/olegiv/lingocms/internal/service"
	"github.com/olegiv/lingocms/internal/store"
	"github.com/olegiv/lingocms/internal/version"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	accounts  *service.AccountService
	events    *service.EventService
	sm        *scs.SessionManager
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, accounts *service.AccountService, events *service.EventService, sm *scs.SessionManager) *Handler {
	return &Handler{
		db:        db,
		accounts:  accounts,
		events:    events,
		sm:        sm,
		version:   "dev",
		startTime: time.Now(),
	}
}

// WithVersion sets the version reported by the health endpoint.
func (h *Handler) WithVersion(info version.Info) *Handler {
	h.version = info.String()
	return h
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Reasons []string       `json:"reasons,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]any) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 400 response listing every failed rule.
func WriteValidationError(w http.ResponseWriter, verr *auth.ValidationError) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: map[string]any{"field": verr.Field},
			Reasons: verr.Reasons,
		},
	})
}

// writeServiceError maps a service error onto an HTTP response. Anything
// unrecognized is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *service.ValidationError
		conflict *service.ConflictError
		authErr  *service.AuthenticationError
		locked   *service.LockedError
		denial   *auth.Denial
	)

	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr)
	case errors.As(err, &conflict):
		WriteError(w, http.StatusConflict, "conflict", conflict.Field+" already exists",
			map[string]any{"field": conflict.Field})
	case errors.As(err, &authErr):
		var details map[string]any
		if authErr.AttemptsRemaining != nil {
			details = map[string]any{"attempts_remaining": *authErr.AttemptsRemaining}
		}
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", details)
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", strconv.Itoa(locked.MinutesRemaining*60))
		WriteError(w, http.StatusLocked, "account_locked",
			"Account is locked due to too many failed login attempts",
			map[string]any{"minutes_remaining": locked.MinutesRemaining})
	case errors.As(err, &denial):
		if denial.Kind == auth.DenialUnauthenticated {
			WriteUnauthorized(w, "Authentication required")
			return
		}
		WriteError(w, http.StatusForbidden, "forbidden", denial.Reason, nil)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Account not found", nil)
	case errors.Is(err, service.ErrDeactivated):
		WriteError(w, http.StatusForbidden, "account_deactivated", "Account is deactivated", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return false
	}
	return true
}

// clientInfo captures the caller details recorded in the event log.
func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// AccountResponse is the public view of an account. Password hashes and
// session identifiers are never exposed.
type AccountResponse struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int64      `json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`
	MustChangePassword  bool       `json:"must_change_password"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	LastIP              *string    `json:"last_ip,omitempty"`
	PasswordChangedAt   *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func accountToResponse(a store.Account) AccountResponse {
	return AccountResponse{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		Role:                a.Role,
		IsActive:            a.IsActive,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LockedUntil:         timePtr(a.LockedUntil),
		MustChangePassword:  a.MustChangePassword,
		LastLoginAt:         timePtr(a.LastLoginAt),
		LastIP:              stringPtr(a.LastIp),
		PasswordChangedAt:   timePtr(a.PasswordChangedAt),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
