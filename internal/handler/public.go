// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/popup"
	"github.com/olegiv/diocese-go/internal/seo"
	"github.com/olegiv/diocese-go/internal/slider"
)

// PublicHandler serves the public pages of the site.
type PublicHandler struct {
	*Base
	carousel      *slider.Carousel[model.Article]
	popupDelay    time.Duration
	secureCookies bool
	now           func() time.Time
}

// PublicOption configures a PublicHandler.
type PublicOption func(*PublicHandler)

// WithCarousel makes the home page show the slides of c, starting at its
// current index.
func WithCarousel(c *slider.Carousel[model.Article]) PublicOption {
	return func(h *PublicHandler) { h.carousel = c }
}

// WithPopupDelay sets how long the announcement waits before it opens.
func WithPopupDelay(d time.Duration) PublicOption {
	return func(h *PublicHandler) { h.popupDelay = d }
}

// WithSecureCookies marks the popup seen cookie Secure.
func WithSecureCookies(secure bool) PublicOption {
	return func(h *PublicHandler) { h.secureCookies = secure }
}

// WithPublicClock replaces time.Now.
func WithPublicClock(now func() time.Time) PublicOption {
	return func(h *PublicHandler) { h.now = now }
}

// NewPublicHandler creates the public page handler.
func NewPublicHandler(base *Base, opts ...PublicOption) *PublicHandler {
	h := &PublicHandler{Base: base, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HomeView is the home page content.
type HomeView struct {
	Slides        []model.Article
	SlideIndex    int
	SlideInterval int // milliseconds
	Recent        []model.Article
	Message       *model.BishopMessage
	Sections      []model.HomeSection
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	home, err := h.content.Home(ctx)
	h.logSection("home page blocks", err)

	view := HomeView{
		Slides:        home.Slider,
		SlideInterval: int(slider.DefaultInterval / time.Millisecond),
		Recent:        home.Recent,
		Message:       home.Message,
		Sections:      home.Sections,
	}
	if h.carousel != nil {
		view.SlideInterval = int(h.carousel.Interval() / time.Millisecond)
		if slides := h.carousel.Slides(); len(slides) > 0 {
			view.Slides = slides
			view.SlideIndex = h.carousel.Index()
		}
	}

	data := h.withMeta(h.pageData(r, NavHome), nil)
	data.Schemas = []template.JS{seo.BuildOrganizationSchema(h.seoSite(data.Site))}
	data.Data = view

	announcement, err := h.content.ActiveAnnouncement(ctx)
	h.logSection("popup announcement", err)
	if announcement != nil && popup.Visible(announcement, h.now(), popup.Seen(r, announcement.ID)) {
		data.Popup = announcement
		data.PopupDelay = int(h.popupDelay / time.Millisecond)
	}

	h.render(w, r, http.StatusOK, "public/home", data)
}

// About handles GET /sobre.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, NavDiocese)
	data = h.withMeta(data, &seo.PageData{
		Title: "Sobre a Diocese",
		Body:  data.Site.AboutDiocese,
		Path:  "/sobre",
		Type:  "website",
	})
	h.render(w, r, http.StatusOK, "public/about", data)
}

// Contact handles GET /contato.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	data := h.withMeta(h.pageData(r, NavContact), &seo.PageData{
		Title:       "Contato",
		Description: "Entre em contato com a Diocese de São Miguel Paulista",
		Path:        "/contato",
		Type:        "website",
	})
	h.render(w, r, http.StatusOK, "public/contact", data)
}

// DismissPopup handles POST /popup/{id}/dismiss. Script requests get 204,
// plain form posts are sent back to the home page.
func (h *PublicHandler) DismissPopup(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		http.Error(w, "Anúncio inválido", http.StatusBadRequest)
		return
	}

	popup.MarkSeen(w, id, h.secureCookies)

	if r.Header.Get("X-Requested-With") == "fetch" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Forbidden handles GET /admin/unauthorized.
func (h *PublicHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := h.withMeta(h.pageData(r, ""), &seo.PageData{Title: "Acesso negado", Type: "website", NoIndex: true})
	h.render(w, r, http.StatusForbidden, "auth/unauthorized", data)
}

// renderPage renders a public page with its meta tags, payload and
// structured data.
func (h *PublicHandler) renderPage(w http.ResponseWriter, r *http.Request, name, nav string, page *seo.PageData, payload any, schemas ...template.JS) {
	data := h.withMeta(h.pageData(r, nav), page)
	data.Data = payload
	data.Schemas = schemas
	h.render(w, r, http.StatusOK, name, data)
}
