// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/diocese-go/internal/editor"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/model"
)

// CategoriesHandler handles the admin category pages.
type CategoriesHandler struct {
	*Base
	editor *editor.Editor
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(base *Base, ed *editor.Editor) *CategoriesHandler {
	return &CategoriesHandler{Base: base, editor: ed}
}

// List handles GET /admin/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.content.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.renderer.SetFlash(r, "Erro ao carregar as categorias.", "error")
	}

	data := h.adminData(r, NavCategories, "Categorias")
	data.Data = categories
	h.render(w, r, http.StatusOK, "admin/categories", data)
}

// CategoryFormView is the category editor.
type CategoryFormView struct {
	ID     string
	Form   editor.CategoryForm
	Errors *editor.ValidationError
}

// IsNew reports whether the editor creates a category.
func (v CategoryFormView) IsNew() bool { return v.ID == "" }

// Action is the address the editor posts to.
func (v CategoryFormView) Action() string {
	if v.ID == "" {
		return "/admin/categories/new"
	}
	return "/admin/categories/edit/" + v.ID
}

func (h *CategoriesHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view CategoryFormView) {
	if view.Errors == nil {
		view.Errors = &editor.ValidationError{}
	}
	title := "Editar categoria"
	if view.IsNew() {
		title = "Nova categoria"
	}
	data := h.adminData(r, NavCategories, title)
	data.Data = view
	h.render(w, r, status, "admin/category_form", data)
}

// NewForm handles GET /admin/categories/new.
func (h *CategoriesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, CategoryFormView{})
}

// Create handles POST /admin/categories/new.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	const back = "/admin/categories/new"
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	form, err := editor.DecodeCategoryForm(r.PostForm)
	if err != nil {
		h.logger.Warn("failed to decode category form", "error", err)
	}

	_, err = h.editor.CreateCategory(r.Context(), identity.FromContext(r.Context()), form)
	if ve, ok := editor.AsValidation(err); ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, CategoryFormView{Form: form, Errors: ve})
		return
	}
	if h.mutationFailed(w, r, back, err) {
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminCategories, "Categoria criada com sucesso.")
}

// EditForm handles GET /admin/categories/edit/{id}.
func (h *CategoriesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	category, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, CategoryFormView{ID: category.ID, Form: editor.CategoryFormFrom(category)})
}

// Update handles POST /admin/categories/edit/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/admin/categories/edit/" + id
	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	form, err := editor.DecodeCategoryForm(r.PostForm)
	if err != nil {
		h.logger.Warn("failed to decode category form", "error", err)
	}

	err = h.editor.UpdateCategory(r.Context(), identity.FromContext(r.Context()), id, form)
	if ve, ok := editor.AsValidation(err); ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, CategoryFormView{ID: id, Form: form, Errors: ve})
		return
	}
	if h.mutationFailed(w, r, redirectAdminCategories, err) {
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminCategories, "Categoria atualizada com sucesso.")
}

// ConfirmDelete handles GET /admin/categories/{id}/delete.
func (h *CategoriesHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	category, ok := h.load(w, r)
	if !ok {
		return
	}
	data := h.adminData(r, NavCategories, "Excluir categoria")
	data.Data = DeleteView{
		Kind:   "a categoria",
		Name:   category.Name,
		Action: "/admin/categories/" + category.ID + "/delete",
		Cancel: redirectAdminCategories,
	}
	h.render(w, r, http.StatusOK, "admin/confirm_delete", data)
}

// Delete handles POST /admin/categories/{id}/delete. Articles of the
// category keep existing without one.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminCategories) {
		return
	}
	confirmed := r.PostForm.Get("confirm") == editor.ConfirmValue
	err := h.editor.DeleteCategory(r.Context(), identity.FromContext(r.Context()), id, confirmed)
	if h.mutationFailed(w, r, "/admin/categories/"+id+"/delete", err) {
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminCategories, "Categoria excluída.")
}

func (h *CategoriesHandler) load(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	return requireEntityWithRedirect(w, r, h.renderer, redirectAdminCategories, "categoria", chi.URLParam(r, "id"),
		func(id string) (model.Category, error) { return h.content.CategoryByID(r.Context(), id) })
}
