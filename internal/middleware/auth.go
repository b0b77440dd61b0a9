// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request protection.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/model"
	"github.com/olegiv/lingocms/internal/session"
	"github.com/olegiv/lingocms/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for the resolved identity.
const (
	ContextKeyAccount ContextKey = "account"
	ContextKeyClaims  ContextKey = "claims"
)

// IdentityResolver turns request credentials into an account.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token string) (store.Account, *auth.Claims, error)
	ResolveSession(ctx context.Context, accountID, sessionToken string) (store.Account, error)
}

// Authenticate resolves the caller from a bearer token or the cookie
// session and stores the account in the request context. A bearer token
// takes precedence. An invalid bearer token is rejected with 401 without
// falling back to the session. An invalid session is destroyed and the
// request continues anonymously.
func Authenticate(sm *scs.SessionManager, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := bearerToken(r); ok {
				account, claims, err := resolver.ResolveToken(ctx, token)
				if err != nil {
					slog.Info("bearer token rejected", "path", r.URL.Path, "ip", ClientIP(r), "reason", err)
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
					return
				}
				ctx = context.WithValue(ctx, ContextKeyAccount, account)
				ctx = context.WithValue(ctx, ContextKeyClaims, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			accountID := sm.GetString(ctx, session.KeyAccountID)
			if accountID == "" {
				next.ServeHTTP(w, r)
				return
			}

			account, err := resolver.ResolveSession(ctx, accountID, sm.GetString(ctx, session.KeySessionToken))
			if err != nil {
				slog.Info("session rejected", "account_id", accountID, "reason", err)
				_ = sm.Destroy(ctx)
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, ContextKeyAccount, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
// A present but malformed header is returned as an empty token so it
// still fails closed.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}

// GetAccount retrieves the authenticated account from the request context.
// Returns nil if the request is anonymous.
func GetAccount(r *http.Request) *store.Account {
	account, ok := r.Context().Value(ContextKeyAccount).(store.Account)
	if !ok {
		return nil
	}
	return &account
}

// GetClaims returns the bearer token claims, or nil for cookie sessions.
func GetClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	return claims
}

// GetIdentity returns the caller as seen by the authorization gate.
func GetIdentity(r *http.Request) *auth.Identity {
	account := GetAccount(r)
	if account == nil {
		return nil
	}
	return &auth.Identity{ID: account.ID, Role: account.Role}
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return RequireRole(model.RoleUser)(next)
}

// RequireAdmin requires the admin or superadmin role.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

// RequireSuperadmin requires the superadmin role.
func RequireSuperadmin(next http.Handler) http.Handler {
	return RequireRole(model.RoleSuperadmin)(next)
}

// RequireRole creates middleware that requires a minimum role.
// Roles are hierarchical: superadmin > admin > user.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r)
			err := auth.Authorize(id, minRole)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var denial *auth.Denial
			if errors.As(err, &denial) && denial.Kind == auth.DenialUnauthenticated {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			slog.Warn("access denied",
				"category", model.EventCategoryAuth,
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"account_id", id.ID,
				"role", id.Role,
				"required_role", minRole,
			)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
		})
	}
}
