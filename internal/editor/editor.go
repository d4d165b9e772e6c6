// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor applies the admin area's content changes: articles,
// categories and site settings.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/imaging"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/util"
)

// ErrNotConfirmed is returned by deletes that were not confirmed.
var ErrNotConfirmed = errors.New("delete not confirmed")

// ErrForbidden is returned when the signed-in user lacks the role for a change.
var ErrForbidden = errors.New("insufficient role")

// ConfirmValue is the form value that confirms a delete.
const ConfirmValue = "yes"

// Editor writes content through the backend client and keeps the
// content service's caches in step.
type Editor struct {
	client  backend.Client
	content *content.Service
	images  *imaging.Processor
	logger  *slog.Logger
	now     func() time.Time

	onSliderChange func(context.Context)
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// OnSliderChange registers fn to run after a change that may alter the
// slider articles.
func OnSliderChange(fn func(context.Context)) Option {
	return func(e *Editor) { e.onSliderChange = fn }
}

// New creates an Editor.
func New(client backend.Client, svc *content.Service, images *imaging.Processor, logger *slog.Logger, opts ...Option) *Editor {
	e := &Editor{
		client:  client,
		content: svc,
		images:  images,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ArticleForm is the posted article editor.
type ArticleForm struct {
	Title         string `schema:"title" validate:"required,max=200"`
	Excerpt       string `schema:"excerpt" validate:"required,max=500"`
	Content       string `schema:"content" validate:"required"`
	FeaturedImage string `schema:"featured_image" validate:"omitempty,max=500"`
	CategoryID    string `schema:"category_id"`
	Tags          string `schema:"tags" validate:"max=500"`
	Published     bool   `schema:"published"`
	ShowInSlider  bool   `schema:"show_in_slider"`
}

// DecodeArticleForm reads an ArticleForm from posted values.
func DecodeArticleForm(form url.Values) (ArticleForm, error) {
	var f ArticleForm
	err := decodeForm(&f, form)
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.Content = strings.TrimSpace(f.Content)
	f.FeaturedImage = strings.TrimSpace(f.FeaturedImage)
	f.CategoryID = strings.TrimSpace(f.CategoryID)
	return f, err
}

// ArticleFormFrom fills the editor with an existing article.
func ArticleFormFrom(a model.Article) ArticleForm {
	return ArticleForm{
		Title:         a.Title,
		Excerpt:       a.Excerpt,
		Content:       a.Content,
		FeaturedImage: a.FeaturedImage,
		CategoryID:    a.CategoryID,
		Tags:          strings.Join(a.Tags, ", "),
		Published:     a.Published,
		ShowInSlider:  a.ShowInSlider,
	}
}

// TagList splits the comma separated tags, dropping blanks and repeats.
func (f ArticleForm) TagList() []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, t := range strings.Split(f.Tags, ",") {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, t)
	}
	return tags
}

// CreateArticle validates f and stores a new article authored by the
// signed-in user. It returns the new article's id.
func (e *Editor) CreateArticle(ctx context.Context, st identity.State, f ArticleForm) (string, error) {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return "", err
	}
	slug, err := e.checkArticle(ctx, f, "")
	if err != nil {
		return "", err
	}

	now := e.now().UTC()
	row := articleRow(f, slug)
	row["author_id"] = st.UserID()
	row["created_at"] = now
	row["updated_at"] = now

	id, err := e.client.Insert(ctx, backend.TableArticles, row)
	if err != nil {
		return "", fmt.Errorf("creating article: %w", err)
	}
	e.logger.Info("article created", "id", id, "slug", slug, "user", st.Email())
	e.refreshSlider(ctx, f.ShowInSlider)
	return id, nil
}

// UpdateArticle validates f and replaces the editable fields of article id.
// The signed-in user becomes the article's author.
func (e *Editor) UpdateArticle(ctx context.Context, st identity.State, id string, f ArticleForm) error {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return err
	}
	prev, err := e.content.ArticleByID(ctx, id)
	if err != nil {
		return err
	}
	slug, err := e.checkArticle(ctx, f, id)
	if err != nil {
		return err
	}

	row := articleRow(f, slug)
	row["author_id"] = st.UserID()
	row["updated_at"] = e.now().UTC()
	if err := e.client.Update(ctx, backend.TableArticles, id, row); err != nil {
		return fmt.Errorf("updating article %s: %w", id, err)
	}
	e.logger.Info("article updated", "id", id, "slug", slug, "user", st.Email())
	e.refreshSlider(ctx, prev.ShowInSlider || f.ShowInSlider)
	return nil
}

// DeleteArticle removes article id once the user confirmed.
func (e *Editor) DeleteArticle(ctx context.Context, st identity.State, id string, confirmed bool) error {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return err
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := e.client.Delete(ctx, backend.TableArticles, id); err != nil {
		return fmt.Errorf("deleting article %s: %w", id, err)
	}
	e.logger.Info("article deleted", "id", id, "user", st.Email())
	e.refreshSlider(ctx, true)
	return nil
}

// TogglePublished flips the article's published flag and returns the new
// value.
func (e *Editor) TogglePublished(ctx context.Context, st identity.State, id string) (bool, error) {
	return e.toggle(ctx, st, id, "published", func(a model.Article) bool { return a.Published })
}

// ToggleSlider flips the article's show_in_slider flag and returns the new
// value.
func (e *Editor) ToggleSlider(ctx context.Context, st identity.State, id string) (bool, error) {
	return e.toggle(ctx, st, id, "show_in_slider", func(a model.Article) bool { return a.ShowInSlider })
}

func (e *Editor) toggle(ctx context.Context, st identity.State, id, column string, get func(model.Article) bool) (bool, error) {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return false, err
	}
	a, err := e.content.ArticleByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !get(a)
	if err := e.client.Update(ctx, backend.TableArticles, id, backend.Row{column: next}); err != nil {
		return false, fmt.Errorf("toggling %s of article %s: %w", column, id, err)
	}
	e.logger.Info("article flag changed", "id", id, "column", column, "value", next, "user", st.Email())
	e.refreshSlider(ctx, true)
	return next, nil
}

// UploadImage stores a featured image and returns its URL.
func (e *Editor) UploadImage(r io.Reader) (string, error) {
	res, err := e.images.Save(r, imaging.KindFeatured)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (e *Editor) checkArticle(ctx context.Context, f ArticleForm, id string) (string, error) {
	ve := check(f)
	if ve == nil {
		ve = &ValidationError{}
	}

	slug := util.Slugify(f.Title)
	if f.Title != "" && !util.IsValidSlug(slug) {
		ve.Add("title", "O título precisa conter letras ou números.")
	}
	if util.IsValidSlug(slug) {
		taken, err := e.content.ArticleSlugTaken(ctx, slug, id)
		if err != nil {
			return "", err
		}
		if taken {
			ve.Add("title", "Já existe um artigo com este título.")
		}
	}
	if f.CategoryID != "" {
		if _, err := e.content.CategoryByID(ctx, f.CategoryID); err != nil {
			if !content.IsNotFound(err) {
				return "", err
			}
			ve.Add("category_id", "Categoria inexistente.")
		}
	}
	return slug, ve.errOrNil()
}

func articleRow(f ArticleForm, slug string) backend.Row {
	var category any
	if f.CategoryID != "" {
		category = f.CategoryID
	}
	return backend.Row{
		"title":          f.Title,
		"slug":           slug,
		"excerpt":        f.Excerpt,
		"content":        f.Content,
		"featured_image": f.FeaturedImage,
		"category_id":    category,
		"tags":           f.TagList(),
		"published":      f.Published,
		"show_in_slider": f.ShowInSlider,
	}
}

// refreshSlider tells the slider subscriber that slider articles may have
// changed.
func (e *Editor) refreshSlider(ctx context.Context, affected bool) {
	if !affected || e.onSliderChange == nil {
		return
	}
	e.onSliderChange(ctx)
}

func requireRole(st identity.State, role model.Role) error {
	if st.Status != identity.Authenticated || !st.Role.Satisfies(role) {
		return ErrForbidden
	}
	return nil
}
