// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the account lifecycle and the auth event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/lingocms/internal/model"
	"github.com/olegiv/lingocms/internal/store"
)

// ClientInfo describes the caller of a request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// CountryLocator resolves an IP address to a country code.
type CountryLocator interface {
	Country(ip string) string
}

// EventService records auth events for auditing.
type EventService struct {
	queries *store.Queries
	geo     CountryLocator
	now     func() time.Time
}

// NewEventService creates a new EventService. geo may be nil.
func NewEventService(db *sql.DB, geo CountryLocator) *EventService {
	return &EventService{
		queries: store.New(db),
		geo:     geo,
		now:     time.Now,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message, accountID string, client ClientInfo, metadata map[string]any) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	var country string
	if s.geo != nil && client.IP != "" {
		country = s.geo.Country(client.IP)
	}

	var browser, os string
	if client.UserAgent != "" {
		ua := useragent.Parse(client.UserAgent)
		browser, os = ua.Name, ua.OS
	}

	_, err := s.queries.CreateAuthEvent(ctx, store.CreateAuthEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		AccountID: sql.NullString{String: accountID, Valid: accountID != ""},
		Metadata:  metadataJSON,
		IpAddress: client.IP,
		Country:   country,
		Browser:   browser,
		Os:        os,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "message", message)
		return err
	}
	return nil
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message, accountID string, client ClientInfo, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, accountID, client, metadata)
}

// LogUserEvent logs an account management event.
func (s *EventService) LogUserEvent(ctx context.Context, level, message, accountID string, client ClientInfo, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryUser, message, accountID, client, metadata)
}

// List returns events newest first with the total count.
func (s *EventService) List(ctx context.Context, limit, offset int64) ([]store.AuthEvent, int64, error) {
	events, err := s.queries.ListAuthEvents(ctx, store.ListAuthEventsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountAuthEvents(ctx)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// DeleteOldEvents removes events older than the given duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	return s.queries.DeleteOldAuthEvents(ctx, cutoff)
}
