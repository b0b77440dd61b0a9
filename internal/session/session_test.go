// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One connection keeps the in-memory database shared.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if strings.HasPrefix(sm.Cookie.Name, "__Host-") {
		t.Errorf("unexpected __Host- cookie name in dev mode: %q", sm.Cookie.Name)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-lingocms_session" {
		t.Errorf("Cookie.Name = %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(setupTestDB(t), true)

	if sm.Lifetime != Lifetime {
		t.Errorf("Lifetime = %v, want %v", sm.Lifetime, Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Cookie.Persist {
		t.Error("expected non-persistent cookies by default")
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestRememberMe(t *testing.T) {
	sm := New(setupTestDB(t), true)

	login := func(remember bool) *http.Cookie {
		h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sm.Put(r.Context(), KeyAccountID, "acc-1")
			sm.RememberMe(r.Context(), remember)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		for _, c := range rec.Result().Cookies() {
			if c.Name == sm.Cookie.Name {
				return c
			}
		}
		t.Fatal("session cookie not set")
		return nil
	}

	if c := login(false); !c.Expires.IsZero() || c.MaxAge != 0 {
		t.Errorf("session cookie should not persist: expires=%v max-age=%d", c.Expires, c.MaxAge)
	}
	if c := login(true); c.Expires.IsZero() {
		t.Error("remembered cookie should persist")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	sm := New(setupTestDB(t), true)

	var cookie *http.Cookie
	put := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), KeyAccountID, "acc-1")
		sm.Put(r.Context(), KeySessionToken, "tok")
	}))
	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}

	var gotID, gotToken string
	get := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = sm.GetString(r.Context(), KeyAccountID)
		gotToken = sm.GetString(r.Context(), KeySessionToken)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	get.ServeHTTP(httptest.NewRecorder(), req)

	if gotID != "acc-1" || gotToken != "tok" {
		t.Errorf("session data = (%q, %q), want (acc-1, tok)", gotID, gotToken)
	}
}
