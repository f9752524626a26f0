// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL selects the Redis backend when non-empty; otherwise the
	// in-memory backend is used.
	RedisURL string

	// Prefix is the key prefix for Redis keys.
	Prefix string

	// DefaultTTL is the TTL applied when Set is called with zero.
	DefaultTTL time.Duration
}

// New creates a Cacher from the given options.
func New(opts Options) (Cacher, error) {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Minute
	}
	if opts.RedisURL != "" {
		return NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	return NewMemoryCache(opts.DefaultTTL), nil
}
