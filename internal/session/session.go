// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures cookie sessions backed by the SQLite sessions table.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is the absolute lifetime of a cookie session.
const Lifetime = 24 * time.Hour

// Keys stored in the session.
const (
	KeyAccountID    = "account_id"
	KeySessionToken = "session_token"
)

// New creates a session manager backed by the sessions table.
// Cookies are session cookies unless the login asks to be remembered.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = false

	if isDev {
		sm.Cookie.Name = "lingocms_session"
	} else {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-lingocms_session"
		sm.Cookie.Secure = true
	}

	return sm
}
