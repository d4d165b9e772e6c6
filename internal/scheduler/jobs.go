// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/slider"
)

// Default schedules.
const (
	SliderRefreshSchedule = "@every 1m"
	ExpirePopupsSchedule  = "@every 5m"
)

// SliderSource loads the articles shown in the home slider.
type SliderSource interface {
	SliderArticles(ctx context.Context) ([]model.Article, error)
}

// SliderRefresh reloads the carousel's slides from src. A failed load
// keeps the current slides.
func SliderRefresh(src SliderSource, c *slider.Carousel[model.Article]) Job {
	return Job{
		Name:        "slider-refresh",
		Description: "Reloads the home page slider articles",
		Schedule:    SliderRefreshSchedule,
		Run: func(ctx context.Context) error {
			items, err := src.SliderArticles(ctx)
			if err != nil {
				return fmt.Errorf("loading slider articles: %w", err)
			}
			c.SetSlides(items)
			return nil
		},
	}
}

// ExpirePopups deactivates active announcements whose end date has passed.
func ExpirePopups(client backend.Client, now func() time.Time, logger *slog.Logger) Job {
	return Job{
		Name:        "expire-popups",
		Description: "Deactivates announcements past their end date",
		Schedule:    ExpirePopupsSchedule,
		Run: func(ctx context.Context) error {
			t := now().UTC()
			rows, err := client.Query(ctx, backend.From(backend.TablePopups).
				Select("id", "end_date").
				Where(
					backend.Eq("active", true),
					backend.Lte("end_date", t),
				))
			if err != nil {
				return fmt.Errorf("listing expired announcements: %w", err)
			}
			items, err := backend.DecodeAll[model.PopupAnnouncement](rows)
			if err != nil {
				return fmt.Errorf("decoding announcements: %w", err)
			}

			expired := 0
			for _, a := range items {
				// Announcements ending exactly now are still live.
				if a.EndDate == nil || !a.EndDate.Before(t) {
					continue
				}
				if err := client.Update(ctx, backend.TablePopups, a.ID, backend.Row{"active": false}); err != nil {
					return fmt.Errorf("deactivating announcement %s: %w", a.ID, err)
				}
				expired++
			}
			if expired > 0 {
				logger.Info("deactivated expired announcements", "count", expired)
			}
			return nil
		},
	}
}
