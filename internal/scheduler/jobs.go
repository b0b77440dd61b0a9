// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// EventPruner deletes auth events older than a retention period.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// DenylistPruner drops expired token revocations.
type DenylistPruner interface {
	Prune() int
}

// Reloader reloads an on-disk resource when it changed.
type Reloader interface {
	Reload() error
}

// PruneEventsJob deletes auth events older than retention, daily at 03:00.
func PruneEventsJob(events EventPruner, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        "prune-auth-events",
		Description: "Delete auth events past the retention period",
		Schedule:    "0 3 * * *",
		Run: func(ctx context.Context) error {
			n, err := events.DeleteOldEvents(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned auth events", "deleted", n, "retention", retention)
			}
			return nil
		},
	}
}

// PruneDenylistJob removes expired entries from the in-memory token denylist.
func PruneDenylistJob(d DenylistPruner, logger *slog.Logger) Job {
	return Job{
		Name:        "prune-token-denylist",
		Description: "Drop revoked tokens that have expired anyway",
		Schedule:    "*/10 * * * *",
		Run: func(context.Context) error {
			if n := d.Prune(); n > 0 {
				logger.Debug("pruned token denylist", "removed", n)
			}
			return nil
		},
	}
}

// CleanupRateLimitersJob resets per-IP limiter caches that grew too large.
func CleanupRateLimitersJob(cleanups ...func()) Job {
	return Job{
		Name:        "cleanup-rate-limiters",
		Description: "Bound the per-IP rate limiter caches",
		Schedule:    "*/5 * * * *",
		Run: func(context.Context) error {
			for _, cleanup := range cleanups {
				cleanup()
			}
			return nil
		},
	}
}

// ReloadGeoIPJob picks up a replaced GeoIP database file.
func ReloadGeoIPJob(r Reloader) Job {
	return Job{
		Name:        "reload-geoip",
		Description: "Reload the GeoIP database when the file changes",
		Schedule:    "0 4 * * *",
		Run: func(context.Context) error {
			return r.Reload()
		},
	}
}
