// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/popup"
)

// Settings returns the site settings, or the defaults while the settings
// row has not been saved. On a transport error the defaults are returned
// together with the error so pages can still render.
func (s *Service) Settings(ctx context.Context) (model.SiteSettings, error) {
	settings, err := s.settings.GetOrLoad(ctx, model.SiteSettingsID, func(ctx context.Context) (model.SiteSettings, error) {
		v, err := single[model.SiteSettings](ctx, s.client, backend.From(backend.TableSiteSettings).
			Where(backend.Eq("id", model.SiteSettingsID)))
		if errors.Is(err, backend.ErrNotFound) {
			return model.DefaultSiteSettings(), nil
		}
		return v, err
	})
	if err != nil {
		return model.DefaultSiteSettings(), err
	}
	return settings, nil
}

// InvalidateSettings drops the cached settings.
func (s *Service) InvalidateSettings(ctx context.Context) error {
	return s.settings.Invalidate(ctx)
}

// HomeSections returns the active home page sections ordered by
// order_index. Sections whose icon is not a known kind are logged and left
// out.
func (s *Service) HomeSections(ctx context.Context) ([]model.HomeSection, error) {
	return s.sections.GetOrLoad(ctx, "active", func(ctx context.Context) ([]model.HomeSection, error) {
		items, err := list[model.HomeSection](ctx, s.client, backend.From(backend.TableHomeSections).
			Where(backend.Eq("active", true)).
			OrderBy("order_index", false))
		if err != nil {
			return nil, err
		}
		out := make([]model.HomeSection, 0, len(items))
		for _, h := range keep(items, sectionActive) {
			kind, ok := model.ParseSectionKind(h.Icon)
			if !ok {
				s.logger.Warn("skipping home section with unknown kind", "id", h.ID, "icon", h.Icon)
				continue
			}
			h.Kind = kind
			out = append(out, h)
		}
		return out, nil
	})
}

// InvalidateHomeSections drops the cached home sections.
func (s *Service) InvalidateHomeSections(ctx context.Context) error {
	return s.sections.Invalidate(ctx)
}

// ActiveAnnouncement returns the newest announcement that is live now, or
// nil when there is none. Whether a browser already dismissed it is
// decided by the caller.
func (s *Service) ActiveAnnouncement(ctx context.Context) (*model.PopupAnnouncement, error) {
	now := s.now().UTC()
	items, err := list[model.PopupAnnouncement](ctx, s.client, backend.From(backend.TablePopups).
		Where(
			backend.Eq("active", true),
			backend.Lte("start_date", now),
			backend.GteOrNull("end_date", now),
		).
		OrderBy("created_at", true).
		Limit(1))
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		if popup.Live(a, now) {
			return &a, nil
		}
	}
	return nil, nil
}

// Home is everything the home page shows besides the settings.
type Home struct {
	Slider   []model.Article
	Recent   []model.Article
	Message  *model.BishopMessage
	Sections []model.HomeSection
}

// Home loads the home page blocks. Each block degrades to empty on its own;
// the returned error joins every failure.
func (s *Service) Home(ctx context.Context) (Home, error) {
	var h Home
	var errs []error

	slider, err := s.SliderArticles(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("slider: %w", err))
	}
	h.Slider = slider

	recent, err := s.RecentArticles(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("recent articles: %w", err))
	}
	h.Recent = recent

	msg, err := s.LatestBishopMessage(ctx)
	switch {
	case err == nil:
		h.Message = &msg
	case !errors.Is(err, backend.ErrNotFound):
		errs = append(errs, fmt.Errorf("bishop message: %w", err))
	}

	sections, err := s.HomeSections(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("home sections: %w", err))
	}
	h.Sections = sections

	return h, errors.Join(errs...)
}

// DashboardCounts counts the records shown on the admin dashboard.
func (s *Service) DashboardCounts(ctx context.Context) (model.DashboardCounts, error) {
	var c model.DashboardCounts
	targets := []struct {
		table string
		dst   *int
	}{
		{backend.TableArticles, &c.Articles},
		{backend.TableParishes, &c.Parishes},
		{backend.TablePriests, &c.Priests},
		{backend.TableDeacons, &c.Deacons},
		{backend.TableSeminarians, &c.Seminarians},
		{backend.TableCategories, &c.Categories},
	}
	for _, t := range targets {
		n, err := s.client.Count(ctx, backend.From(t.table))
		if err != nil {
			return c, err
		}
		*t.dst = n
	}
	return c, nil
}

// RecentEvents returns the newest event log entries.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = RecentEventsLimit
	}
	return list[model.Event](ctx, s.client, backend.From(backend.TableEvents).
		OrderBy("created_at", true).
		Limit(limit))
}
