// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"time"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
)

// Public path prefixes of the detail pages.
const (
	NewsPath           = "/noticias/"
	BishopMessagesPath = "/mensagens-bispo/"
	ParishesPath       = "/paroquias/"
	PriestsPath        = "/padres/"
	DeaconsPath        = "/diaconos/"
	SeminariansPath    = "/seminaristas/"
)

// SitemapEntry is one public detail page.
type SitemapEntry struct {
	Path      string
	UpdatedAt time.Time
}

// SitemapEntries lists every public detail page. Only gated-in records are
// included.
func (s *Service) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	var out []SitemapEntry

	articles, err := list[model.Article](ctx, s.client, backend.From(backend.TableArticles).
		Select("id", "slug", "published", "updated_at").
		Where(backend.Eq("published", true)).
		OrderBy("created_at", true))
	if err != nil {
		return nil, err
	}
	for _, a := range keep(articles, articlePublished) {
		out = append(out, SitemapEntry{Path: NewsPath + a.Slug, UpdatedAt: a.UpdatedAt})
	}

	messages, err := list[model.BishopMessage](ctx, s.client, publishedMessages().
		Select("id", "slug", "published", "created_at").
		OrderBy("created_at", true))
	if err != nil {
		return nil, err
	}
	for _, m := range keep(messages, messagePublished) {
		out = append(out, SitemapEntry{Path: BishopMessagesPath + m.Slug, UpdatedAt: m.CreatedAt})
	}

	parishes, err := list[model.Parish](ctx, s.client, backend.From(backend.TableParishes).
		Select("id", "slug").
		OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	for _, p := range parishes {
		out = append(out, SitemapEntry{Path: ParishesPath + p.Slug})
	}

	clergy, err := s.Clergy(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range clergy.Priests {
		out = append(out, SitemapEntry{Path: PriestsPath + p.Slug})
	}
	for _, d := range clergy.Deacons {
		out = append(out, SitemapEntry{Path: DeaconsPath + d.Slug})
	}
	for _, sm := range clergy.Seminarians {
		out = append(out, SitemapEntry{Path: SeminariansPath + sm.Slug})
	}
	return out, nil
}
