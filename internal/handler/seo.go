// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/diocese-go/internal/seo"
)

// Sitemap handles GET /sitemap.xml.
func (b *Base) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := b.content.SitemapEntries(r.Context())
	if err != nil {
		logAndHTTPError(w, "Erro ao gerar o sitemap", http.StatusInternalServerError,
			"failed to load sitemap entries", "error", err)
		return
	}

	body, err := seo.GenerateSitemap(b.siteURL, entries)
	if err != nil {
		logAndHTTPError(w, "Erro ao gerar o sitemap", http.StatusInternalServerError,
			"failed to build sitemap", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(body)
}

// Robots returns the robots.txt handler. Staging sites disallow everything.
func (b *Base) Robots(disallowAll bool) http.HandlerFunc {
	body := seo.BuildRobots(seo.RobotsConfig{SiteURL: b.siteURL, DisallowAll: disallowAll})
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write([]byte(body))
	}
}
