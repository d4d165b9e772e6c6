// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"net/url"
	"time"
)

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL selects Redis when set. Connection failures fall back to memory.
	RedisURL        string
	Prefix          string
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// Backend names reported by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New creates the cache described by opts and reports which backend is in
// use. An unreachable Redis is logged and replaced by a memory cache.
func New(opts Options) (Cacher, string) {
	if opts.RedisURL != "" {
		ropts := DefaultRedisCacheOptions()
		ropts.URL = opts.RedisURL
		if opts.Prefix != "" {
			ropts.Prefix = opts.Prefix
		}
		if opts.DefaultTTL > 0 {
			ropts.DefaultTTL = opts.DefaultTTL
		}
		rc, err := NewRedisCache(ropts)
		if err == nil {
			slog.Info("using redis cache", "url", SanitizeRedisURL(opts.RedisURL), "prefix", ropts.Prefix)
			return rc, BackendRedis
		}
		slog.Warn("redis unavailable, falling back to memory cache",
			"url", SanitizeRedisURL(opts.RedisURL), "error", err)
	}

	cleanup := opts.CleanupInterval
	if cleanup == 0 {
		cleanup = time.Minute
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: cleanup,
	}), BackendMemory
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
