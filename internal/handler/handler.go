// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers of the public site and the
// admin area.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/render"
	"github.com/olegiv/diocese-go/internal/seo"
)

// Navigation entries of the public header and the admin sidebar.
const (
	NavHome       = "home"
	NavDiocese    = "diocese"
	NavClergy     = "clergy"
	NavParishes   = "parishes"
	NavNews       = "news"
	NavContact    = "contact"
	NavDashboard  = "dashboard"
	NavArticles   = "articles"
	NavCategories = "categories"
	NavSettings   = "settings"
)

// Base holds what every page handler needs: templates, the content reads
// and the public site address.
type Base struct {
	renderer *render.Renderer
	content  *content.Service
	logger   *slog.Logger
	siteURL  string
}

// NewBase creates the shared handler base.
func NewBase(renderer *render.Renderer, svc *content.Service, logger *slog.Logger, siteURL string) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		renderer: renderer,
		content:  svc,
		logger:   logger,
		siteURL:  siteURL,
	}
}

// pageData starts the template data of a page: the site settings, the
// viewer's identity and the active navigation entry. Settings that fail to
// load fall back to the defaults.
func (b *Base) pageData(r *http.Request, nav string) render.TemplateData {
	settings, err := b.content.Settings(r.Context())
	if err != nil {
		b.logger.Error("failed to load site settings", "error", err)
	}
	return render.TemplateData{
		Site:  settings,
		State: identity.FromContext(r.Context()),
		Nav:   nav,
	}
}

// seoSite returns the SEO site configuration for settings.
func (b *Base) seoSite(settings model.SiteSettings) *seo.SiteConfig {
	return seo.SiteConfigFrom(settings, b.siteURL)
}

// withMeta fills the meta tags of data for page. A nil page is the home page.
func (b *Base) withMeta(data render.TemplateData, page *seo.PageData) render.TemplateData {
	data.Meta = seo.BuildMeta(page, b.seoSite(data.Site))
	return data
}

// render writes the page template name. Template failures are logged and
// answered with a plain 500.
func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := b.renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndHTTPError(w, "Erro interno do servidor", http.StatusInternalServerError,
			"failed to render template", "template", name, "error", err)
	}
}

// NotFound renders the public 404 page.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	data := b.withMeta(b.pageData(r, ""), &seo.PageData{Title: "Página não encontrada", Type: "website", NoIndex: true})
	b.render(w, r, http.StatusNotFound, "public/notfound", data)
}

// serverError renders the public error page for a failed backend read.
func (b *Base) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	b.logger.Error(msg, "error", err, "path", r.URL.Path)
	data := b.withMeta(b.pageData(r, ""), &seo.PageData{Title: "Erro", Type: "website", NoIndex: true})
	b.render(w, r, http.StatusInternalServerError, "public/error", data)
}

// detailOr404 handles the error of a detail lookup: absence renders the 404
// page, any other failure the error page. It reports whether err was nil.
func (b *Base) detailOr404(w http.ResponseWriter, r *http.Request, what string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, backend.ErrNotFound):
		b.NotFound(w, r)
	default:
		b.serverError(w, r, "failed to load "+what, err)
	}
	return false
}

// logSection logs the failure of a page block that renders empty instead
// of failing the page.
func (b *Base) logSection(what string, err error) {
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		b.logger.Error("failed to load "+what, "error", err)
	}
}
