// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/olegiv/lingocms/internal/model"
	"github.com/olegiv/lingocms/internal/store"
	"github.com/olegiv/lingocms/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.AuthEvent {
	t.Helper()
	events, err := store.New(db).ListAuthEvents(context.Background(), store.ListAuthEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListAuthEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_PersistsWarnAndAbove(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("login rate limit exceeded", "ip", "203.0.113.9")
	logger.Error("database unreachable", "error", "disk I/O error")

	events := listEvents(t, db)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	byMessage := map[string]store.AuthEvent{}
	for _, e := range events {
		byMessage[e.Message] = e
	}

	warn, ok := byMessage["login rate limit exceeded"]
	if !ok {
		t.Fatal("warning event missing")
	}
	if warn.Level != model.EventLevelWarning {
		t.Errorf("Level = %q, want %q", warn.Level, model.EventLevelWarning)
	}
	if warn.Category != model.EventCategoryAuth {
		t.Errorf("Category = %q, want %q", warn.Category, model.EventCategoryAuth)
	}
	if warn.IpAddress != "203.0.113.9" {
		t.Errorf("IpAddress = %q", warn.IpAddress)
	}

	errEvent, ok := byMessage["database unreachable"]
	if !ok {
		t.Fatal("error event missing")
	}
	if errEvent.Level != model.EventLevelError {
		t.Errorf("Level = %q, want %q", errEvent.Level, model.EventLevelError)
	}
	if errEvent.Category != model.EventCategorySystem {
		t.Errorf("Category = %q, want %q", errEvent.Category, model.EventCategorySystem)
	}
}

func TestEventLogHandler_ExplicitCategoryAndMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("component", "gate")

	logger.Warn("access denied", "category", model.EventCategoryUser, "path", "/auth/users", "status", 403)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Category != model.EventCategoryUser {
		t.Errorf("Category = %q, want %q", e.Category, model.EventCategoryUser)
	}

	var metadata map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &metadata); err != nil {
		t.Fatalf("metadata is not JSON: %v (%s)", err, e.Metadata)
	}
	want := map[string]string{"component": "gate", "path": "/auth/users", "status": "403"}
	for k, v := range want {
		if metadata[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, metadata[k], v)
		}
	}
	if _, ok := metadata["category"]; ok {
		t.Error("category should not be duplicated into metadata")
	}
}

func TestEventLogHandler_GroupPrefixesKeys(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).WithGroup("req")

	logger.Warn("session rejected", "id", "abc")

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !strings.Contains(events[0].Metadata, `"req.id":"abc"`) {
		t.Errorf("Metadata = %s, want req.id key", events[0].Metadata)
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("account locked")
	logger.Error("migration failed")

	events := listEvents(t, db)
	if len(events) != 1 || events[0].Message != "migration failed" {
		t.Fatalf("events = %+v, want only the error", events)
	}
}

func TestEventLogHandler_ForwardsToInner(t *testing.T) {
	db := testutil.TestDB(t)
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("server started", "addr", "localhost:8080")

	if !strings.Contains(buf.String(), "server started") {
		t.Errorf("inner handler output = %q", buf.String())
	}
	if n := len(listEvents(t, db)); n != 0 {
		t.Errorf("info record persisted %d events, want 0", n)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login failed", model.EventCategoryAuth},
		{"bearer token rejected", model.EventCategoryAuth},
		{"CSRF validation failed", model.EventCategoryAuth},
		{"role change denied", model.EventCategoryUser},
		{"account deactivated", model.EventCategoryUser},
		{"config reloaded", model.EventCategoryConfig},
		{"scheduler stopped", model.EventCategorySystem},
	}
	for _, tt := range tests {
		if got := inferCategory(tt.message); got != tt.want {
			t.Errorf("inferCategory(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestSlogLevelToEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}
	for _, tt := range tests {
		if got := slogLevelToEventLevel(tt.level); got != tt.want {
			t.Errorf("slogLevelToEventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
