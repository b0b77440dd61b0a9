// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/middleware"
	"github.com/olegiv/lingocms/internal/service"
	"github.com/olegiv/lingocms/internal/store"
)

// ListUsers returns a page of accounts.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	perPage := parsePerPageParam(r)

	accounts, total, err := h.accounts.List(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, accountToResponse(a))
	}
	WriteSuccess(w, data, pageMeta(total, page, perPage))
}

// SetRoleRequest is the body of PUT /auth/users/{id}/role.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes a user's role.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.applyToTarget(w, r, func(ctx context.Context, actor auth.Identity, targetID string, client service.ClientInfo) (store.Account, error) {
		return h.accounts.SetRole(ctx, actor, targetID, req.Role, client)
	})
}

// Deactivate disables a user's account.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.applyToTarget(w, r, h.accounts.Deactivate)
}

// Reactivate re-enables a user's account.
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.applyToTarget(w, r, h.accounts.Reactivate)
}

// Unlock clears a user's lockout.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.applyToTarget(w, r, h.accounts.Unlock)
}

type targetAction func(ctx context.Context, actor auth.Identity, targetID string, client service.ClientInfo) (store.Account, error)

// applyToTarget runs an admin action against the {id} route parameter and
// writes the updated account.
func (h *Handler) applyToTarget(w http.ResponseWriter, r *http.Request, action targetAction) {
	actor := middleware.GetIdentity(r)
	if actor == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	account, err := action(r.Context(), *actor, chi.URLParam(r, "id"), clientInfo(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, accountToResponse(account), nil)
}
