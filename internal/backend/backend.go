// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend is the data and authentication surface the site is built on.
// Content is reached through table-scoped queries (Client) and identities
// through a session-backed sign-in API (Auth).
package backend

import "context"

// Row is one record keyed by column name. Joined tables are nested under
// their alias as a Row, or nil when the join found nothing.
type Row map[string]any

// Client performs table-scoped reads and writes. Every call blocks only the
// calling goroutine and honours ctx cancellation.
type Client interface {
	// Query returns all rows matching q, possibly none.
	Query(ctx context.Context, q Query) ([]Row, error)
	// GetSingle returns the first row matching q or ErrNotFound.
	GetSingle(ctx context.Context, q Query) (Row, error)
	// Count returns the number of rows matching q's filters.
	Count(ctx context.Context, q Query) (int, error)
	// Insert stores row and returns its id. A missing id is generated.
	Insert(ctx context.Context, table string, row Row) (string, error)
	// Update applies patch to the row with the given id.
	Update(ctx context.Context, table, id string, patch Row) error
	// Delete removes the row with the given id.
	Delete(ctx context.Context, table, id string) error
}

// Table names reachable through Client.
const (
	TableArticles       = "articles"
	TableCategories     = "categories"
	TableBishopMessages = "bishop_messages"
	TableBishopInfo     = "bishop_info"
	TablePriests        = "priests"
	TableDeacons        = "deacons"
	TableSeminarians    = "seminarians"
	TableParishes       = "parishes"
	TablePopups         = "popup_announcements"
	TableSiteSettings   = "site_settings"
	TableHomeSections   = "home_sections"
	TableUsers          = "users"
	TableEvents         = "events"
)

var knownTables = map[string]bool{
	TableArticles:       true,
	TableCategories:     true,
	TableBishopMessages: true,
	TableBishopInfo:     true,
	TablePriests:        true,
	TableDeacons:        true,
	TableSeminarians:    true,
	TableParishes:       true,
	TablePopups:         true,
	TableSiteSettings:   true,
	TableHomeSections:   true,
	TableUsers:          true,
	TableEvents:         true,
}
