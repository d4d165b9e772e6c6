// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/diocese-go/internal/editor"
	"github.com/olegiv/diocese-go/internal/identity"
)

// logoField is the file input of the settings editor.
const logoField = "logo"

// SettingsHandler handles the admin site settings page.
type SettingsHandler struct {
	*Base
	editor *editor.Editor
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(base *Base, ed *editor.Editor) *SettingsHandler {
	return &SettingsHandler{Base: base, editor: ed}
}

// SettingsView is the settings editor.
type SettingsView struct {
	Form    editor.SettingsForm
	LogoURL string
	Errors  *editor.ValidationError
}

func (h *SettingsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view SettingsView) {
	if view.Errors == nil {
		view.Errors = &editor.ValidationError{}
	}
	data := h.adminData(r, NavSettings, "Configurações")
	view.LogoURL = data.Site.LogoURL
	data.Data = view
	h.render(w, r, status, "admin/settings", data)
}

// Edit handles GET /admin/settings.
func (h *SettingsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	settings, err := h.content.Settings(r.Context())
	if err != nil {
		h.logger.Error("failed to load site settings", "error", err)
		h.renderer.SetFlash(r, "Erro ao carregar as configurações. Os valores padrão estão sendo exibidos.", "error")
	}
	h.renderForm(w, r, http.StatusOK, SettingsView{Form: editor.SettingsFormFrom(settings)})
}

// Save handles POST /admin/settings.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := parseAdminForm(w, r); err != nil {
		h.logger.Warn("invalid settings form", "error", err)
		flashError(w, r, h.renderer, redirectAdminSettings, "Dados do formulário inválidos ou imagem grande demais.")
		return
	}

	form, err := editor.DecodeSettingsForm(r.PostForm)
	if err != nil {
		h.logger.Warn("failed to decode settings form", "error", err)
	}

	logo, err := uploadedFile(r, logoField)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminSettings, "Não foi possível ler a imagem enviada.")
		return
	}
	if logo != nil {
		defer func() { _ = logo.Close() }()
	}

	err = h.editor.SaveSettings(r.Context(), identity.FromContext(r.Context()), form, logo)
	if ve, ok := editor.AsValidation(err); ok {
		h.renderForm(w, r, http.StatusUnprocessableEntity, SettingsView{Form: form, Errors: ve})
		return
	}
	if h.mutationFailed(w, r, redirectAdminSettings, err) {
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminSettings, "Configurações salvas com sucesso.")
}
