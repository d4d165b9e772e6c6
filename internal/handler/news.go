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

// categoryParam selects the news category by slug or id.
const categoryParam = "categoria"

// NewsListView is the news listing.
type NewsListView struct {
	Articles   content.Page[model.Article]
	Categories []model.Category
	Selected   *model.Category
	Pagination uikit.Pagination
}

// NewsList handles GET /noticias.
func (h *PublicHandler) NewsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	page := content.ParsePage(query.Get("page"))

	view := NewsListView{}

	categories, err := h.content.Categories(ctx)
	h.logSection("categories", err)
	view.Categories = categories

	var filter content.ArticleFilter
	if key := strings.TrimSpace(query.Get(categoryParam)); key != "" {
		cat, err := h.content.Category(ctx, key)
		switch {
		case err == nil:
			view.Selected = &cat
			filter.CategoryID = cat.ID
		case content.IsNotFound(err):
			h.NotFound(w, r)
			return
		default:
			h.logSection("news category", err)
		}
	}

	articles, err := h.content.ListArticles(ctx, filter, page)
	h.logSection("articles", err)
	if err != nil {
		articles = content.Page[model.Article]{Number: page, Size: content.ArticlesPageSize}
	}
	view.Articles = articles
	view.Pagination = uikit.BuildPagination(articles.Number, articles.Total, articles.Size, "/noticias", keepParams(query, categoryParam))

	title := "Notícias"
	if view.Selected != nil {
		title = view.Selected.Name + " | Notícias"
	}
	h.renderPage(w, r, "public/news", NavNews, &seo.PageData{
		Title:       title,
		Description: "Fique por dentro das novidades da nossa diocese",
		Path:        "/noticias",
		Type:        "website",
		NoIndex:     page > 1,
	}, view)
}

// NewsDetailView is one article with its related articles.
type NewsDetailView struct {
	Article model.Article
	Related []model.Article
	// ShareURL is the absolute address used by the share buttons.
	ShareURL string
}

// NewsDetail handles GET /noticias/{slug}. The key may be a slug or an id.
func (h *PublicHandler) NewsDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, err := h.content.Article(ctx, chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "article", err) {
		return
	}

	related, err := h.content.RelatedArticles(ctx, article)
	h.logSection("related articles", err)

	page := &seo.PageData{
		Title:       article.Title,
		Description: article.Excerpt,
		Body:        article.Content,
		Path:        content.NewsPath + article.Slug,
		Image:       article.FeaturedImage,
		Type:        "article",
		PublishedAt: article.CreatedAt,
		ModifiedAt:  article.UpdatedAt,
	}
	settings, _ := h.content.Settings(ctx)
	site := h.seoSite(settings)

	h.renderPage(w, r, "public/news_detail", NavNews, page, NewsDetailView{
		Article:  article,
		Related:  related,
		ShareURL: seo.MakeAbsoluteURL(page.Path, site.SiteURL),
	}, seo.BuildArticleSchema(page, site))
}

// BishopMessagesView is the bishop message listing.
type BishopMessagesView struct {
	Messages   content.Page[model.BishopMessage]
	Pagination uikit.Pagination
}

// BishopMessages handles GET /mensagens-bispo.
func (h *PublicHandler) BishopMessages(w http.ResponseWriter, r *http.Request) {
	page := content.ParsePage(r.URL.Query().Get("page"))

	messages, err := h.content.ListBishopMessages(r.Context(), page)
	h.logSection("bishop messages", err)
	if err != nil {
		messages = content.Page[model.BishopMessage]{Number: page, Size: content.BishopMessagesPageSize}
	}

	h.renderPage(w, r, "public/bishop_messages", NavDiocese, &seo.PageData{
		Title:       "Mensagens do Bispo",
		Description: "Palavras de orientação e reflexão pastoral",
		Path:        "/mensagens-bispo",
		Type:        "website",
		NoIndex:     page > 1,
	}, BishopMessagesView{
		Messages:   messages,
		Pagination: uikit.BuildPagination(messages.Number, messages.Total, messages.Size, "/mensagens-bispo", nil),
	})
}

// BishopMessage handles GET /mensagens-bispo/{slug}.
func (h *PublicHandler) BishopMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.content.BishopMessage(r.Context(), chi.URLParam(r, "slug"))
	if !h.detailOr404(w, r, "bishop message", err) {
		return
	}

	page := &seo.PageData{
		Title:       msg.Title,
		Body:        msg.Content,
		Path:        content.BishopMessagesPath + msg.Slug,
		Image:       msg.FeaturedImage,
		Type:        "article",
		PublishedAt: msg.CreatedAt,
	}
	settings, _ := h.content.Settings(r.Context())
	h.renderPage(w, r, "public/bishop_message", NavDiocese, page, msg,
		seo.BuildArticleSchema(page, h.seoSite(settings)))
}

// BishopView is the bishop page. Info is nil until the bishop record has
// been filled in.
type BishopView struct {
	Info *model.BishopInfo
}

// Bishop handles GET /bispo.
func (h *PublicHandler) Bishop(w http.ResponseWriter, r *http.Request) {
	var view BishopView
	info, err := h.content.BishopInfo(r.Context())
	if err == nil {
		view.Info = &info
	} else {
		h.logSection("bishop info", err)
	}

	page := &seo.PageData{Title: "Sobre o Bispo", Path: "/bispo", Type: "profile"}
	if view.Info != nil {
		page.Body = view.Info.Bio
		page.Image = view.Info.Photo
	}
	h.renderPage(w, r, "public/bishop", NavDiocese, page, view)
}

// keepParams returns the non-empty values of query named in names.
func keepParams(query url.Values, names ...string) url.Values {
	out := url.Values{}
	for _, n := range names {
		if v := strings.TrimSpace(query.Get(n)); v != "" {
			out.Set(n, v)
		}
	}
	return out
}
