// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// TypedCache stores values of one type as JSON under a key namespace.
type TypedCache[T any] struct {
	cache     Cacher
	namespace string
	ttl       time.Duration
}

// NewTypedCache creates a TypedCache whose keys are prefixed with namespace.
func NewTypedCache[T any](c Cacher, namespace string, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, namespace: namespace, ttl: ttl}
}

func (c *TypedCache[T]) key(k string) string {
	return c.namespace + k
}

// Get returns the cached value. A value that no longer decodes counts as a miss.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, err := c.cache.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("cache read failed", "key", c.key(key), "error", err)
		}
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("discarding undecodable cache entry", "key", c.key(key), "error", err)
		_ = c.cache.Delete(ctx, c.key(key))
		return zero, false
	}
	return v, true
}

// Set stores v with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.key(key), data, c.ttl)
}

// Delete removes key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.key(key))
}

// Invalidate removes every key in the namespace.
func (c *TypedCache[T]) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.namespace)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Load errors are returned uncached. Cache write errors are logged only.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		slog.Warn("cache write failed", "key", c.key(key), "error", err)
	}
	return v, nil
}
