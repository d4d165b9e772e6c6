// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/seo"
	"github.com/olegiv/diocese-go/internal/uikit"
)

// Clergy page tabs.
const (
	TabPriests     = "padres"
	TabDeacons     = "diaconos"
	TabSeminarians = "seminaristas"
)

// searchParam is the parish search query parameter.
const searchParam = "q"

// ClergyView is the clergy page with its three tabs.
type ClergyView struct {
	Tab    string
	Clergy content.Clergy
}

// parseTab returns tab when it names a clergy tab, TabPriests otherwise.
func parseTab(tab string) string {
	switch tab {
	case TabDeacons, TabSeminarians:
		return tab
	default:
		return TabPriests
	}
}

// Clergy handles GET /clero. Lists that fail to load render empty.
func (h *PublicHandler) Clergy(w http.ResponseWriter, r *http.Request) {
	clergy, err := h.content.Clergy(r.Context())
	h.logSection("clergy", err)

	h.renderPage(w, r, "public/clergy", NavClergy, &seo.PageData{
		Title:       "Clero",
		Description: "Conheça os membros do clero da nossa diocese",
		Path:        "/clero",
		Type:        "website",
	}, ClergyView{
		Tab:    parseTab(r.URL.Query().Get("tab")),
		Clergy: clergy,
	})
}

// ClergyTab redirects the bare /padres, /diaconos and /seminaristas
// addresses to their tab of the clergy page.
func ClergyTab(tab string) http.HandlerFunc {
	target := "/clero?tab=" + url.QueryEscape(parseTab(tab))
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// ClergyMemberView is one clergy member's page.
type ClergyMemberView struct {
	Kind  string // one of the tab names
	Name  string
	Photo string
	Bio   string
	Phone string
	Email string

	OrdinationDate string
	Parish         *model.ParishRef

	Seminary    string
	YearOfStudy int
}

// Priest handles GET /padres/{slug}.
func (h *PublicHandler) Priest(w http.ResponseWriter, r *http.Request) {
	p, err := h.content.Priest(r.Context(), chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "priest", err) {
		return
	}
	h.renderMember(w, r, content.PriestsPath+p.Slug, ClergyMemberView{
		Kind: TabPriests, Name: p.Name, Photo: p.Photo, Bio: p.Bio, Phone: p.Phone, Email: p.Email,
		OrdinationDate: p.OrdinationDate, Parish: p.Parish,
	})
}

// Deacon handles GET /diaconos/{slug}.
func (h *PublicHandler) Deacon(w http.ResponseWriter, r *http.Request) {
	d, err := h.content.Deacon(r.Context(), chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "deacon", err) {
		return
	}
	h.renderMember(w, r, content.DeaconsPath+d.Slug, ClergyMemberView{
		Kind: TabDeacons, Name: d.Name, Photo: d.Photo, Bio: d.Bio, Phone: d.Phone, Email: d.Email,
		OrdinationDate: d.OrdinationDate, Parish: d.Parish,
	})
}

// Seminarian handles GET /seminaristas/{slug}.
func (h *PublicHandler) Seminarian(w http.ResponseWriter, r *http.Request) {
	s, err := h.content.Seminarian(r.Context(), chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "seminarian", err) {
		return
	}
	h.renderMember(w, r, content.SeminariansPath+s.Slug, ClergyMemberView{
		Kind: TabSeminarians, Name: s.Name, Photo: s.Photo, Bio: s.Bio, Phone: s.Phone, Email: s.Email,
		Seminary: s.Seminary, YearOfStudy: s.YearOfStudy,
	})
}

func (h *PublicHandler) renderMember(w http.ResponseWriter, r *http.Request, path string, view ClergyMemberView) {
	h.renderPage(w, r, "public/clergy_member", NavClergy, &seo.PageData{
		Title: view.Name,
		Body:  view.Bio,
		Path:  path,
		Image: view.Photo,
		Type:  "profile",
	}, view)
}

// ParishesView is the parish directory.
type ParishesView struct {
	Search     string
	Parishes   content.Page[model.Parish]
	Pagination uikit.Pagination
}

// Parishes handles GET /paroquias with optional ?q= search.
func (h *PublicHandler) Parishes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := strings.TrimSpace(query.Get(searchParam))
	page := content.ParsePage(query.Get("page"))

	parishes, err := h.content.Parishes(r.Context(), search, page)
	h.logSection("parishes", err)
	if err != nil {
		parishes = content.Page[model.Parish]{Number: page, Size: content.ParishesPageSize}
	}

	h.renderPage(w, r, "public/parishes", NavParishes, &seo.PageData{
		Title:       "Paróquias",
		Description: "Conheça as comunidades de fé da nossa diocese",
		Path:        "/paroquias",
		Type:        "website",
		NoIndex:     search != "" || page > 1,
	}, ParishesView{
		Search:     search,
		Parishes:   parishes,
		Pagination: uikit.BuildPagination(parishes.Number, parishes.Total, parishes.Size, "/paroquias", keepParams(query, searchParam)),
	})
}

// Parish handles GET /paroquias/{slug}.
func (h *PublicHandler) Parish(w http.ResponseWriter, r *http.Request) {
	p, err := h.content.Parish(r.Context(), chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "parish", err) {
		return
	}
	h.renderPage(w, r, "public/parish", NavParishes, &seo.PageData{
		Title: p.Name,
		Body:  p.Description,
		Path:  content.ParishesPath + p.Slug,
		Image: p.Photo,
		Type:  "place",
	}, p)
}
