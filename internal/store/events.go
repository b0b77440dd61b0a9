// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createAuthEvent = `
INSERT INTO auth_events (level, category, message, account_id, metadata, ip_address, country, browser, os, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, level, category, message, account_id, metadata, ip_address, country, browser, os, created_at`

type CreateAuthEventParams struct {
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	AccountID sql.NullString `json:"account_id"`
	Metadata  string         `json:"metadata"`
	IpAddress string         `json:"ip_address"`
	Country   string         `json:"country"`
	Browser   string         `json:"browser"`
	Os        string         `json:"os"`
	CreatedAt time.Time      `json:"created_at"`
}

func (q *Queries) CreateAuthEvent(ctx context.Context, arg CreateAuthEventParams) (AuthEvent, error) {
	row := q.db.QueryRowContext(ctx, createAuthEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.AccountID,
		arg.Metadata,
		arg.IpAddress,
		arg.Country,
		arg.Browser,
		arg.Os,
		arg.CreatedAt,
	)
	var i AuthEvent
	err := row.Scan(
		&i.ID,
		&i.Level,
		&i.Category,
		&i.Message,
		&i.AccountID,
		&i.Metadata,
		&i.IpAddress,
		&i.Country,
		&i.Browser,
		&i.Os,
		&i.CreatedAt,
	)
	return i, err
}

const listAuthEvents = `
SELECT id, level, category, message, account_id, metadata, ip_address, country, browser, os, created_at
FROM auth_events
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListAuthEventsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListAuthEvents(ctx context.Context, arg ListAuthEventsParams) ([]AuthEvent, error) {
	rows, err := q.db.QueryContext(ctx, listAuthEvents, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AuthEvent{}
	for rows.Next() {
		var i AuthEvent
		if err := rows.Scan(
			&i.ID,
			&i.Level,
			&i.Category,
			&i.Message,
			&i.AccountID,
			&i.Metadata,
			&i.IpAddress,
			&i.Country,
			&i.Browser,
			&i.Os,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countAuthEvents = `
SELECT COUNT(*) FROM auth_events`

func (q *Queries) CountAuthEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAuthEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteOldAuthEvents = `
DELETE FROM auth_events WHERE created_at < ?`

func (q *Queries) DeleteOldAuthEvents(ctx context.Context, createdAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOldAuthEvents, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
