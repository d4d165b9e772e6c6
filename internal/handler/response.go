// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/render"
)

// flashAndRedirect sets a flash message and redirects with 303.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form. On failure it flashes an
// error, redirects to redirectURL and returns false.
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Dados do formulário inválidos.")
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes a plain text error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// requireEntityWithRedirect loads an entity for an admin page. When it is
// missing or fails to load, an error is flashed, the request is redirected
// to redirectURL and false is returned.
//
// Example usage:
//
//	article, ok := requireEntityWithRedirect(w, r, h.renderer, "/admin/articles", "artigo", id,
//	    func(id string) (model.Article, error) { return h.content.ArticleByID(r.Context(), id) })
func requireEntityWithRedirect[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	redirectURL string,
	entityName string,
	id string,
	queryFn func(id string) (T, error),
) (T, bool) {
	var zero T
	entity, err := queryFn(id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			flashError(w, r, renderer, redirectURL, "Registro de "+entityName+" não encontrado.")
		} else {
			slog.Error("failed to load "+entityName, "error", err, "id", id)
			flashError(w, r, renderer, redirectURL, "Erro ao carregar "+entityName+".")
		}
		return zero, false
	}
	return entity, true
}
