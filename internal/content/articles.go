// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"strings"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
)

var categoryJoin = backend.Join{
	Table:    backend.TableCategories,
	LocalKey: "category_id",
	As:       "category",
	Columns:  []string{"name", "slug"},
}

func publishedArticles() backend.Query {
	return backend.From(backend.TableArticles).
		Join(categoryJoin).
		Where(backend.Eq("published", true))
}

// ArticleFilter narrows the public news listing.
type ArticleFilter struct {
	CategoryID string
}

// ListArticles returns one page of published articles, newest first.
func (s *Service) ListArticles(ctx context.Context, f ArticleFilter, page int) (Page[model.Article], error) {
	q := publishedArticles()
	if f.CategoryID != "" {
		q = q.Where(backend.Eq("category_id", f.CategoryID))
	}
	return fetchPage(ctx, s.client, q.OrderBy("created_at", true), page, ArticlesPageSize, articlePublished)
}

// RecentArticles returns the newest published articles for the home page.
func (s *Service) RecentArticles(ctx context.Context) ([]model.Article, error) {
	items, err := list[model.Article](ctx, s.client, publishedArticles().
		OrderBy("created_at", true).
		Limit(RecentArticlesLimit))
	if err != nil {
		return nil, err
	}
	return keepN(items, articlePublished, RecentArticlesLimit), nil
}

// SliderArticles returns the published articles flagged for the slider,
// newest first.
func (s *Service) SliderArticles(ctx context.Context) ([]model.Article, error) {
	items, err := list[model.Article](ctx, s.client, publishedArticles().
		Where(backend.Eq("show_in_slider", true)).
		OrderBy("created_at", true).
		Limit(SliderArticlesLimit))
	if err != nil {
		return nil, err
	}
	return keepN(items, sliderEligible, SliderArticlesLimit), nil
}

// Article returns the published article whose slug or id is key.
func (s *Service) Article(ctx context.Context, key string) (model.Article, error) {
	return detail(ctx, s.client, publishedArticles(), key, articlePublished)
}

// RelatedArticles returns other published articles of a's category.
// An article without a category has no related articles.
func (s *Service) RelatedArticles(ctx context.Context, a model.Article) ([]model.Article, error) {
	if a.CategoryID == "" {
		return nil, nil
	}
	items, err := list[model.Article](ctx, s.client, publishedArticles().
		Where(
			backend.Eq("category_id", a.CategoryID),
			backend.Neq("id", a.ID),
		).
		OrderBy("created_at", true).
		Limit(RelatedArticlesLimit))
	if err != nil {
		return nil, err
	}
	return keepN(items, relatedTo(a), RelatedArticlesLimit), nil
}

// Categories returns every category ordered by name.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	return list[model.Category](ctx, s.client, backend.From(backend.TableCategories).OrderBy("name", false))
}

// Category returns the category whose slug or id is key.
func (s *Service) Category(ctx context.Context, key string) (model.Category, error) {
	return detail[model.Category](ctx, s.client, backend.From(backend.TableCategories), key, nil)
}

// StatusFilter selects articles in the admin listing.
type StatusFilter string

// Admin article filters.
const (
	StatusAll       StatusFilter = "all"
	StatusPublished StatusFilter = "published"
	StatusDraft     StatusFilter = "draft"
)

// ParseStatusFilter maps a query parameter onto a StatusFilter, defaulting
// to StatusAll.
func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPublished:
		return StatusPublished
	case StatusDraft:
		return StatusDraft
	default:
		return StatusAll
	}
}

// AdminArticles returns one page of articles for the admin list, drafts
// included, newest first.
func (s *Service) AdminArticles(ctx context.Context, status StatusFilter, page int) (Page[model.Article], error) {
	q := backend.From(backend.TableArticles).Join(categoryJoin)
	gate := func(model.Article) bool { return true }
	switch status {
	case StatusPublished:
		q = q.Where(backend.Eq("published", true))
		gate = articlePublished
	case StatusDraft:
		q = q.Where(backend.Eq("published", false))
		gate = func(a model.Article) bool { return !a.Published }
	}
	return fetchPage(ctx, s.client, q.OrderBy("created_at", true), page, AdminPageSize, gate)
}

// ArticleByID returns any article, published or not, for editing.
func (s *Service) ArticleByID(ctx context.Context, id string) (model.Article, error) {
	return single[model.Article](ctx, s.client, backend.From(backend.TableArticles).
		Join(categoryJoin).
		Where(backend.Eq("id", id)))
}

// CategoryByID returns a category for editing.
func (s *Service) CategoryByID(ctx context.Context, id string) (model.Category, error) {
	return single[model.Category](ctx, s.client, backend.From(backend.TableCategories).Where(backend.Eq("id", id)))
}

// ArticleSlugTaken reports whether slug belongs to an article other than
// exceptID.
func (s *Service) ArticleSlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	return s.slugTaken(ctx, backend.TableArticles, slug, exceptID)
}

// CategorySlugTaken reports whether slug belongs to a category other than
// exceptID.
func (s *Service) CategorySlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	return s.slugTaken(ctx, backend.TableCategories, slug, exceptID)
}

func (s *Service) slugTaken(ctx context.Context, table, slug, exceptID string) (bool, error) {
	q := backend.From(table).Where(backend.Eq("slug", slug))
	if exceptID != "" {
		q = q.Where(backend.Neq("id", exceptID))
	}
	n, err := s.client.Count(ctx, q)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
