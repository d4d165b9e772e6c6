// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the read side of the site: every public page
// and the admin lists fetch their records through a Service.
//
// Views return backend.ErrNotFound when an expected single record is absent
// and a *backend.TransportError when the backend failed. Publish and status
// gates are applied in the query and again over the returned rows, so a
// misbehaving backend can never leak unpublished content.
package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/cache"
	"github.com/olegiv/diocese-go/internal/model"
)

// Page sizes of the paginated listings.
const (
	ArticlesPageSize       = 9
	BishopMessagesPageSize = 6
	ParishesPageSize       = 12
	AdminPageSize          = 20
)

// Caps of the unpaginated listings.
const (
	RecentArticlesLimit  = 6
	RelatedArticlesLimit = 3
	SliderArticlesLimit  = 5
	RecentEventsLimit    = 10
)

// Cache namespaces.
const (
	settingsNamespace = "settings:"
	sectionsNamespace = "home_sections:"
)

// Service reads site content from a backend.Client.
type Service struct {
	client   backend.Client
	logger   *slog.Logger
	now      func() time.Time
	settings *cache.TypedCache[model.SiteSettings]
	sections *cache.TypedCache[[]model.HomeSection]
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, e.g. for popup windows in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. Site settings and home sections are cached in c
// for ttl; both are invalidated by the editor after a save.
func New(client backend.Client, c cache.Cacher, ttl time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		client:   client,
		logger:   logger,
		now:      time.Now,
		settings: cache.NewTypedCache[model.SiteSettings](c, settingsNamespace, ttl),
		sections: cache.NewTypedCache[[]model.HomeSection](c, sectionsNamespace, ttl),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// keep returns the items satisfying gate, in order.
func keep[T any](items []T, gate func(T) bool) []T {
	return keepN(items, gate, 0)
}

// keepN is keep capped at n items. Zero means no cap.
func keepN[T any](items []T, gate func(T) bool, n int) []T {
	out := items[:0:0]
	for _, it := range items {
		if n > 0 && len(out) == n {
			break
		}
		if gate(it) {
			out = append(out, it)
		}
	}
	return out
}

func articlePublished(a model.Article) bool { return a.Published }
func messagePublished(m model.BishopMessage) bool { return m.Published }
func priestActive(p model.Priest) bool { return p.Status == model.ClergyActive }
func deaconActive(d model.Deacon) bool { return d.Status == model.ClergyActive }
func sliderEligible(a model.Article) bool { return a.Published && a.ShowInSlider }
func sectionActive(h model.HomeSection) bool { return h.Active }

func relatedTo(a model.Article) func(model.Article) bool {
	return func(b model.Article) bool {
		return b.Published && b.ID != a.ID && b.CategoryID == a.CategoryID
	}
}

// list runs q and decodes every row into T.
func list[T any](ctx context.Context, c backend.Client, q backend.Query) ([]T, error) {
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return backend.DecodeAll[T](rows)
}

// single runs q and decodes the one expected row into T.
func single[T any](ctx context.Context, c backend.Client, q backend.Query) (T, error) {
	row, err := c.GetSingle(ctx, q)
	if err != nil {
		var zero T
		return zero, err
	}
	return backend.DecodeOne[T](row)
}

// IsNotFound reports whether err means an expected record is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, backend.ErrNotFound)
}
