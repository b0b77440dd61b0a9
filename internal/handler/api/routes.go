// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/lingocms/internal/middleware"
)

// RouterConfig holds the request protection settings of the router.
type RouterConfig struct {
	IsDevelopment bool
	// TrustProxy enables X-Forwarded-For / X-Real-IP handling.
	TrustProxy bool
	// CSRFKey is the 32-byte key for cookie-session CSRF protection.
	CSRFKey []byte
	// LoginProtection throttles POST /auth/login per IP. Optional.
	LoginProtection *middleware.LoginProtection
	// RateLimiter limits all /auth requests per IP. Optional.
	RateLimiter *middleware.GlobalRateLimiter
	// RequestLog enables chi's request logger.
	RequestLog bool
}

// NewRouter builds the HTTP router for the service.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	if cfg.RequestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware())
		}
		r.Use(h.sm.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.IsDevelopment)))
		r.Use(middleware.Authenticate(h.sm, h.accounts))

		r.Post("/register", h.Register)
		if cfg.LoginProtection != nil {
			r.With(cfg.LoginProtection.Middleware()).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Post("/change-password", h.ChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}/deactivate", h.Deactivate)
			r.Put("/users/{id}/reactivate", h.Reactivate)
			r.Put("/users/{id}/unlock", h.Unlock)
			r.Get("/events", h.ListEvents)
		})

		r.With(middleware.RequireSuperadmin).Put("/users/{id}/role", h.SetRole)
	})

	return r
}
