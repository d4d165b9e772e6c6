// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"strings"

	"github.com/olegiv/diocese-go/internal/backend"
)

// bySlugOrID fetches the row of q whose slug or id equals key in one
// query. When one row matches by slug and another by id, the slug match
// wins. Rows matching neither are never returned.
func bySlugOrID(ctx context.Context, c backend.Client, q backend.Query, key string) (backend.Row, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, backend.ErrNotFound
	}

	rows, err := c.Query(ctx, q.Any(backend.Eq("slug", key), backend.Eq("id", key)).Limit(2))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, backend.ErrNotFound
	}
	for _, r := range rows {
		if s, _ := r["slug"].(string); s == key {
			return r, nil
		}
	}
	for _, r := range rows {
		if id, _ := r["id"].(string); id == key {
			return r, nil
		}
	}
	return nil, backend.ErrNotFound
}

// detail decodes the slug-or-id match of q and rejects it unless gate holds.
func detail[T any](ctx context.Context, c backend.Client, q backend.Query, key string, gate func(T) bool) (T, error) {
	var zero T
	row, err := bySlugOrID(ctx, c, q, key)
	if err != nil {
		return zero, err
	}
	v, err := backend.DecodeOne[T](row)
	if err != nil {
		return zero, err
	}
	if gate != nil && !gate(v) {
		return zero, backend.ErrNotFound
	}
	return v, nil
}
