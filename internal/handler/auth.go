// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"github.com/olegiv/diocese-go/internal/access"
	"github.com/olegiv/diocese-go/internal/auth"
	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/middleware"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/render"
	"github.com/olegiv/diocese-go/internal/seo"
)

// IdentityResolver resolves the identity of a request context.
type IdentityResolver interface {
	Resolve(ctx context.Context) identity.State
}

// loginDecoder reads the login form.
var loginDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// loginForm is the posted login form.
type loginForm struct {
	auth.Credentials
	Next string `schema:"next"`
}

// AuthHandler handles the admin sign-in and sign-out routes.
type AuthHandler struct {
	*Base
	auth            backend.Auth
	identity        IdentityResolver
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil.
func NewAuthHandler(base *Base, a backend.Auth, id IdentityResolver, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		Base:            base,
		auth:            a,
		identity:        id,
		loginProtection: lp,
	}
}

// LoginView is the login page content.
type LoginView struct {
	Email string
	Next  string
	// NoRole is set when the visitor is signed in but holds no admin role.
	NoRole bool
}

// LoginForm handles GET /admin/login. Signed-in staff go straight to next.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := access.SafeNext(r.URL.Query().Get("next"))
	state := identity.FromContext(r.Context())

	if state.Status == identity.Authenticated && state.Role != model.RoleNone {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	data := h.withMeta(h.pageData(r, ""), &seo.PageData{Title: "Entrar", Type: "website", NoIndex: true})
	data.Data = LoginView{
		Email:  state.Email(),
		Next:   next,
		NoRole: state.Status == identity.Authenticated,
	}
	h.render(w, r, http.StatusOK, "auth/login", data)
}

// Login handles POST /admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, access.LoginPath) {
		return
	}

	var form loginForm
	if err := loginDecoder.Decode(&form, r.PostForm); err != nil {
		flashError(w, r, h.renderer, access.LoginPath, "Dados do formulário inválidos.")
		return
	}
	creds := form.Normalize()
	next := access.SafeNext(form.Next)
	back := access.LoginURL(next)
	clientIP := middleware.GetClientIP(r)

	if err := creds.Validate(); err != nil {
		flashError(w, r, h.renderer, back, "Informe e-mail e senha.")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(creds.Email); locked {
			slog.Warn("login attempt on locked account", "category", model.EventCategoryAuth, "email", creds.Email, "ip", clientIP)
			flashError(w, r, h.renderer, back, "Conta bloqueada temporariamente. Tente novamente em "+formatDuration(remaining)+".")
			return
		}
	}

	sess, err := h.auth.SignIn(r.Context(), creds)
	if err != nil {
		if !errors.Is(err, backend.ErrInvalidCredentials) {
			slog.Error("sign-in failed", "error", err)
			flashError(w, r, h.renderer, back, "Não foi possível entrar agora. Tente novamente.")
			return
		}
		slog.Warn("login failed", "category", model.EventCategoryAuth, "email", creds.Email, "ip", clientIP)
		flashError(w, r, h.renderer, back, h.failedLoginMessage(creds.Email))
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(creds.Email)
	}

	state := h.identity.Resolve(r.Context())
	switch {
	case state.Status == identity.Unknown:
		slog.Error("role lookup failed after sign-in", "user_id", sess.UserID)
		flashError(w, r, h.renderer, back, "Não foi possível verificar suas permissões. Tente novamente.")
		return
	case state.Role == model.RoleNone:
		slog.Warn("sign-in without admin role", "category", model.EventCategoryAccess, "user_id", sess.UserID, "ip", clientIP)
		if err := h.auth.SignOut(r.Context()); err != nil {
			slog.Error("sign-out failed", "error", err)
		}
		flashError(w, r, h.renderer, back, "Sua conta não tem acesso à área administrativa.")
		return
	}

	slog.Info("user logged in", "user_id", sess.UserID, "role", string(state.Role))
	flashSuccess(w, r, h.renderer, next, "Bem-vindo de volta!")
}

// failedLoginMessage records a failed attempt and returns what to tell the
// user about it.
func (h *AuthHandler) failedLoginMessage(email string) string {
	const invalid = "E-mail ou senha inválidos."
	if h.loginProtection == nil {
		return invalid
	}
	if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
		return "Muitas tentativas. Tente novamente em " + formatDuration(lockDuration) + "."
	}
	if remaining := h.loginProtection.RemainingAttempts(email); remaining > 0 && remaining <= 3 {
		return fmt.Sprintf("%s Restam %d tentativas.", invalid, remaining)
	}
	return invalid
}

// Logout handles POST /admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := identity.FromContext(r.Context()).UserID()

	if err := h.auth.SignOut(r.Context()); err != nil {
		slog.Error("sign-out failed", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, access.LoginPath, "Você saiu da área administrativa.", render.FlashInfo)
}

// formatDuration formats a lockout duration in Portuguese.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d segundos", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minuto"
		}
		return fmt.Sprintf("%d minutos", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hora"
	}
	return fmt.Sprintf("%d horas", hours)
}
