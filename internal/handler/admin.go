// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/editor"
	"github.com/olegiv/diocese-go/internal/imaging"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/render"
	"github.com/olegiv/diocese-go/internal/scheduler"
	"github.com/olegiv/diocese-go/internal/seo"
)

// Admin redirect targets.
const (
	redirectAdmin           = "/admin"
	redirectAdminArticles   = "/admin/articles"
	redirectAdminCategories = "/admin/categories"
	redirectAdminSettings   = "/admin/settings"
)

// maxFormSize bounds admin form bodies: one image plus the text fields.
const maxFormSize = imaging.MaxUploadSize + 1<<20

// JobLister lists the scheduled background jobs.
type JobLister interface {
	List() []scheduler.JobInfo
}

// AdminHandler serves the admin dashboard.
type AdminHandler struct {
	*Base
	jobs JobLister
}

// NewAdminHandler creates the dashboard handler. jobs may be nil.
func NewAdminHandler(base *Base, jobs JobLister) *AdminHandler {
	return &AdminHandler{Base: base, jobs: jobs}
}

// DashboardView is the dashboard content.
type DashboardView struct {
	Counts model.DashboardCounts
	Events []model.Event
	Jobs   []scheduler.JobInfo
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var view DashboardView

	counts, err := h.content.DashboardCounts(ctx)
	h.logSection("dashboard counts", err)
	view.Counts = counts

	events, err := h.content.RecentEvents(ctx, 0)
	h.logSection("recent events", err)
	view.Events = events

	if h.jobs != nil {
		view.Jobs = h.jobs.List()
	}

	data := h.adminData(r, NavDashboard, "Painel")
	data.Data = view
	h.render(w, r, http.StatusOK, "admin/dashboard", data)
}

// adminData starts the template data of an admin page.
func (b *Base) adminData(r *http.Request, nav, title string) render.TemplateData {
	return b.withMeta(b.pageData(r, nav), &seo.PageData{Title: title, Type: "website", NoIndex: true})
}

// parseAdminForm parses a urlencoded or multipart admin form, bounding the
// body to maxFormSize.
func parseAdminForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	err := r.ParseMultipartForm(maxFormSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// uploadedFile returns the file posted as field, or nil when none was sent.
// The caller closes it.
func uploadedFile(r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if hdr.Size == 0 {
		_ = f.Close()
		return nil, nil
	}
	return f, nil
}

// mutationFailed handles the errors of an editor change that are not
// validation errors. It reports whether err was handled.
func (b *Base) mutationFailed(w http.ResponseWriter, r *http.Request, back string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, editor.ErrForbidden):
		http.Redirect(w, r, "/admin/unauthorized", http.StatusSeeOther)
	case errors.Is(err, editor.ErrNotConfirmed):
		flashError(w, r, b.renderer, back, "Confirme a exclusão para continuar.")
	default:
		if _, ok := editor.AsValidation(err); ok {
			return false
		}
		b.logger.Error("content change failed", "error", err, "path", r.URL.Path)
		if content.IsNotFound(err) {
			flashError(w, r, b.renderer, back, "Registro não encontrado.")
		} else {
			flashError(w, r, b.renderer, back, "Não foi possível salvar as alterações. Tente novamente.")
		}
	}
	return true
}
