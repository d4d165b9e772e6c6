// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/util"
)

// CategoryForm is the posted category editor.
type CategoryForm struct {
	Name        string `schema:"name" validate:"required,max=100"`
	Description string `schema:"description" validate:"max=500"`
}

// DecodeCategoryForm reads a CategoryForm from posted values.
func DecodeCategoryForm(form url.Values) (CategoryForm, error) {
	var f CategoryForm
	err := decodeForm(&f, form)
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return f, err
}

// CategoryFormFrom fills the editor with an existing category.
func CategoryFormFrom(c model.Category) CategoryForm {
	return CategoryForm{Name: c.Name, Description: c.Description}
}

// CreateCategory stores a new category and returns its id.
func (e *Editor) CreateCategory(ctx context.Context, st identity.State, f CategoryForm) (string, error) {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return "", err
	}
	slug, err := e.checkCategory(ctx, f, "")
	if err != nil {
		return "", err
	}
	id, err := e.client.Insert(ctx, backend.TableCategories, backend.Row{
		"name":        f.Name,
		"slug":        slug,
		"description": f.Description,
		"created_at":  e.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("creating category: %w", err)
	}
	e.logger.Info("category created", "id", id, "slug", slug, "user", st.Email())
	return id, nil
}

// UpdateCategory renames category id. Its slug follows the new name.
func (e *Editor) UpdateCategory(ctx context.Context, st identity.State, id string, f CategoryForm) error {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return err
	}
	if _, err := e.content.CategoryByID(ctx, id); err != nil {
		return err
	}
	slug, err := e.checkCategory(ctx, f, id)
	if err != nil {
		return err
	}
	err = e.client.Update(ctx, backend.TableCategories, id, backend.Row{
		"name":        f.Name,
		"slug":        slug,
		"description": f.Description,
	})
	if err != nil {
		return fmt.Errorf("updating category %s: %w", id, err)
	}
	e.logger.Info("category updated", "id", id, "slug", slug, "user", st.Email())
	return nil
}

// DeleteCategory removes category id once the user confirmed. Its
// articles are kept without a category.
func (e *Editor) DeleteCategory(ctx context.Context, st identity.State, id string, confirmed bool) error {
	if err := requireRole(st, model.RoleEditor); err != nil {
		return err
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := e.client.Delete(ctx, backend.TableCategories, id); err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	e.logger.Info("category deleted", "id", id, "user", st.Email())
	return nil
}

func (e *Editor) checkCategory(ctx context.Context, f CategoryForm, id string) (string, error) {
	ve := check(f)
	if ve == nil {
		ve = &ValidationError{}
	}
	slug := util.Slugify(f.Name)
	if f.Name != "" && !util.IsValidSlug(slug) {
		ve.Add("name", "O nome precisa conter letras ou números.")
	}
	if util.IsValidSlug(slug) {
		taken, err := e.content.CategorySlugTaken(ctx, slug, id)
		if err != nil {
			return "", err
		}
		if taken {
			ve.Add("name", "Já existe uma categoria com este nome.")
		}
	}
	return slug, ve.errOrNil()
}
