// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist stores revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// DenylistOption customizes a Denylist.
type DenylistOption func(*denylistConfig)

type denylistConfig struct {
	now func() time.Time
}

// WithDenylistClock overrides the clock used to compare revocations against
// token expiry. It should match the TokenIssuer clock.
func WithDenylistClock(now func() time.Time) DenylistOption {
	return func(c *denylistConfig) {
		c.now = now
	}
}

func newDenylistConfig(opts []DenylistOption) denylistConfig {
	cfg := denylistConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// MemoryDenylist is a process-local Denylist.
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty in-memory denylist.
func NewMemoryDenylist(opts ...DenylistOption) *MemoryDenylist {
	cfg := newDenylistConfig(opts)
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     cfg.now,
	}
}

// Revoke implements Denylist.
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = expiresAt
	return nil
}

// IsRevoked implements Denylist.
func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	expiresAt, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	return d.now().Before(expiresAt), nil
}

// Prune drops entries whose tokens have expired and returns how many were removed.
func (d *MemoryDenylist) Prune() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for jti, expiresAt := range d.entries {
		if !now.Before(expiresAt) {
			delete(d.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

const redisDenylistPrefix = "lingocms:revoked:"

// RedisDenylist stores revoked ids in Redis with a TTL matching the token expiry.
type RedisDenylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisDenylist connects to Redis and verifies the connection.
func NewRedisDenylist(ctx context.Context, redisURL string, opts ...DenylistOption) (*RedisDenylist, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	cfg := newDenylistConfig(opts)
	return &RedisDenylist{client: client, now: cfg.now}, nil
}

// Revoke implements Denylist. Already-expired tokens are not stored.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, redisDenylistPrefix+jti, 1, ttl).Err()
}

// IsRevoked implements Denylist.
func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, redisDenylistPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close closes the Redis connection.
func (d *RedisDenylist) Close() error {
	return d.client.Close()
}
