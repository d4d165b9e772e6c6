// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/editor"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/imaging"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/uikit"
)

// featuredImageField is the file input of the article editor.
const featuredImageField = "featured_image_file"

// ArticlesHandler handles the admin article pages.
type ArticlesHandler struct {
	*Base
	editor *editor.Editor
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(base *Base, ed *editor.Editor) *ArticlesHandler {
	return &ArticlesHandler{Base: base, editor: ed}
}

// ArticleListView is the admin article list.
type ArticleListView struct {
	Status     content.StatusFilter
	Articles   content.Page[model.Article]
	Pagination uikit.Pagination
}

// List handles GET /admin/articles.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := content.ParseStatusFilter(query.Get("status"))
	page := content.ParsePage(query.Get("page"))

	articles, err := h.content.AdminArticles(r.Context(), status, page)
	if err != nil {
		h.logger.Error("failed to list articles", "error", err)
		h.renderer.SetFlash(r, "Erro ao carregar os artigos.", "error")
		articles = content.Page[model.Article]{Number: page, Size: content.AdminPageSize}
	}

	var params url.Values
	if status != content.StatusAll {
		params = url.Values{"status": {string(status)}}
	}

	data := h.adminData(r, NavArticles, "Artigos")
	data.Data = ArticleListView{
		Status:     status,
		Articles:   articles,
		Pagination: uikit.BuildPagination(articles.Number, articles.Total, articles.Size, redirectAdminArticles, params),
	}
	h.render(w, r, http.StatusOK, "admin/articles", data)
}

// ArticleFormView is the article editor.
type ArticleFormView struct {
	ID         string
	Form       editor.ArticleForm
	Errors     *editor.ValidationError
	Categories []model.Category
}

// IsNew reports whether the editor creates an article.
func (v ArticleFormView) IsNew() bool { return v.ID == "" }

// Action is the address the editor posts to.
func (v ArticleFormView) Action() string {
	if v.ID == "" {
		return "/admin/articles/new"
	}
	return "/admin/articles/edit/" + v.ID
}

func (h *ArticlesHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view ArticleFormView) {
	categories, err := h.content.Categories(r.Context())
	h.logSection("categories", err)
	view.Categories = categories
	if view.Errors == nil {
		view.Errors = &editor.ValidationError{}
	}

	title := "Editar artigo"
	if view.IsNew() {
		title = "Novo artigo"
	}
	data := h.adminData(r, NavArticles, title)
	data.Data = view
	h.render(w, r, status, "admin/article_form", data)
}

// NewForm handles GET /admin/articles/new.
func (h *ArticlesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, ArticleFormView{})
}

// Create handles POST /admin/articles/new.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r, "/admin/articles/new")
	if !ok {
		return
	}

	id, err := h.editor.CreateArticle(r.Context(), identity.FromContext(r.Context()), form)
	if ve, ok := editor.AsValidation(err); ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, ArticleFormView{Form: form, Errors: ve})
		return
	}
	if h.mutationFailed(w, r, "/admin/articles/new", err) {
		return
	}

	flashSuccess(w, r, h.renderer, "/admin/articles/edit/"+id, "Artigo criado com sucesso.")
}

// EditForm handles GET /admin/articles/edit/{id}.
func (h *ArticlesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminArticles, "artigo", id,
		func(id string) (model.Article, error) { return h.content.ArticleByID(r.Context(), id) })
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, ArticleFormView{ID: article.ID, Form: editor.ArticleFormFrom(article)})
}

// Update handles POST /admin/articles/edit/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/admin/articles/edit/" + id

	form, ok := h.decode(w, r, back)
	if !ok {
		return
	}

	err := h.editor.UpdateArticle(r.Context(), identity.FromContext(r.Context()), id, form)
	if ve, ok := editor.AsValidation(err); ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, ArticleFormView{ID: id, Form: form, Errors: ve})
		return
	}
	if content.IsNotFound(err) {
		flashError(w, r, h.renderer, redirectAdminArticles, "Artigo não encontrado.")
		return
	}
	if h.mutationFailed(w, r, back, err) {
		return
	}

	flashSuccess(w, r, h.renderer, back, "Artigo atualizado com sucesso.")
}

// decode parses the posted editor and stores an uploaded featured image.
// On a form or upload failure it responds itself and returns false.
func (h *ArticlesHandler) decode(w http.ResponseWriter, r *http.Request, back string) (editor.ArticleForm, bool) {
	if err := parseAdminForm(w, r); err != nil {
		h.logger.Warn("invalid article form", "error", err)
		flashError(w, r, h.renderer, back, "Dados do formulário inválidos ou imagem grande demais.")
		return editor.ArticleForm{}, false
	}

	form, err := editor.DecodeArticleForm(r.PostForm)
	if err != nil {
		h.logger.Warn("failed to decode article form", "error", err)
	}

	file, err := uploadedFile(r, featuredImageField)
	if err != nil {
		flashError(w, r, h.renderer, back, "Não foi possível ler a imagem enviada.")
		return form, false
	}
	if file == nil {
		return form, true
	}
	defer func() { _ = file.Close() }()

	imageURL, err := h.editor.UploadImage(file)
	switch {
	case err == nil:
		form.FeaturedImage = imageURL
	case errors.Is(err, imaging.ErrUnsupportedFormat), errors.Is(err, imaging.ErrTooLarge):
		ve := &editor.ValidationError{}
		if errors.Is(err, imaging.ErrTooLarge) {
			ve.Add("featured_image", "A imagem excede o limite de 5 MB.")
		} else {
			ve.Add("featured_image", "Envie uma imagem JPEG, PNG, GIF ou WebP.")
		}
		h.renderForm(w, r, http.StatusUnprocessableEntity, ArticleFormView{ID: chi.URLParam(r, "id"), Form: form, Errors: ve})
		return form, false
	default:
		h.logger.Error("failed to store featured image", "error", err)
		flashError(w, r, h.renderer, back, "Não foi possível salvar a imagem.")
		return form, false
	}
	return form, true
}

// DeleteView is the delete confirmation page.
type DeleteView struct {
	Kind   string
	Name   string
	Action string
	Cancel string
}

// ConfirmDelete handles GET /admin/articles/{id}/delete.
func (h *ArticlesHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminArticles, "artigo", id,
		func(id string) (model.Article, error) { return h.content.ArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	data := h.adminData(r, NavArticles, "Excluir artigo")
	data.Data = DeleteView{
		Kind:   "o artigo",
		Name:   article.Title,
		Action: "/admin/articles/" + article.ID + "/delete",
		Cancel: redirectAdminArticles,
	}
	h.render(w, r, http.StatusOK, "admin/confirm_delete", data)
}

// Delete handles POST /admin/articles/{id}/delete. The form must carry
// confirm=yes.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminArticles) {
		return
	}

	confirmed := r.PostForm.Get("confirm") == editor.ConfirmValue
	err := h.editor.DeleteArticle(r.Context(), identity.FromContext(r.Context()), id, confirmed)
	if h.mutationFailed(w, r, "/admin/articles/"+id+"/delete", err) {
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminArticles, "Artigo excluído.")
}

// TogglePublished handles POST /admin/articles/{id}/publish.
func (h *ArticlesHandler) TogglePublished(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	published, err := h.editor.TogglePublished(r.Context(), identity.FromContext(r.Context()), id)
	if h.mutationFailed(w, r, listReturn(r), err) {
		return
	}
	msg := "Artigo movido para rascunhos."
	if published {
		msg = "Artigo publicado."
	}
	flashSuccess(w, r, h.renderer, listReturn(r), msg)
}

// ToggleSlider handles POST /admin/articles/{id}/slider.
func (h *ArticlesHandler) ToggleSlider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inSlider, err := h.editor.ToggleSlider(r.Context(), identity.FromContext(r.Context()), id)
	if h.mutationFailed(w, r, listReturn(r), err) {
		return
	}
	msg := "Artigo removido do destaque."
	if inSlider {
		msg = "Artigo adicionado ao destaque."
	}
	flashSuccess(w, r, h.renderer, listReturn(r), msg)
}

// listReturn is the article list address a toggle returns to, keeping the
// list's filter and page when the form posted them.
func listReturn(r *http.Request) string {
	params := url.Values{}
	if s := content.ParseStatusFilter(r.FormValue("status")); s != content.StatusAll {
		params.Set("status", string(s))
	}
	if p := content.ParsePage(r.FormValue("page")); p > 1 {
		params.Set("page", strconv.Itoa(p))
	}
	if len(params) == 0 {
		return redirectAdminArticles
	}
	return redirectAdminArticles + "?" + params.Encode()
}
