// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access decides whether a resolved identity may enter an admin route.
package access

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/model"
)

// Decision is the outcome of an access check.
type Decision int

const (
	// Pending means the identity is still unknown. Nothing protected may be
	// shown and no redirect may happen yet.
	Pending Decision = iota
	Allow
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "pending"
	}
}

// Admin area paths targeted by redirects.
const (
	LoginPath        = "/admin/login"
	UnauthorizedPath = "/admin/unauthorized"
	HomePath         = "/admin"
)

// CanAccess decides access for state against required. RoleNone as required
// admits any signed-in user holding some role. A signed-in user without a
// role is treated as not signed in.
func CanAccess(state identity.State, required model.Role) Decision {
	switch state.Status {
	case identity.Unknown:
		return Pending
	case identity.Anonymous:
		return RedirectLogin
	}
	if state.Role == model.RoleNone {
		return RedirectLogin
	}
	if required == model.RoleNone || state.Role.Satisfies(required) {
		return Allow
	}
	return RedirectForbidden
}

// retryAfterSeconds is how soon a pending page reloads itself.
const retryAfterSeconds = "2"

const pendingPage = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="` + retryAfterSeconds + `">
<title>Carregando…</title>
</head>
<body>
<p role="status">Carregando…</p>
</body>
</html>
`

// Require returns middleware that admits requests whose identity, stored by
// identity.Middleware, satisfies required.
func Require(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := identity.FromContext(r.Context())
			decision := CanAccess(state, required)

			switch decision {
			case Allow:
				next.ServeHTTP(w, r)
				return
			case Pending:
				w.Header().Set("Retry-After", retryAfterSeconds)
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(pendingPage))
			case RedirectLogin:
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
			case RedirectForbidden:
				http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
			}

			slog.Info("admin access denied",
				"decision", decision.String(),
				"path", r.URL.Path,
				"status", state.Status.String(),
				"role", string(state.Role),
				"user_id", state.UserID(),
			)
		})
	}
}

// LoginURL returns the login page address that returns to next afterwards.
func LoginURL(next string) string {
	next = SafeNext(next)
	if next == HomePath {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local admin path, HomePath otherwise.
// It keeps the login form from redirecting off-site.
func SafeNext(next string) string {
	if next == "" || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return HomePath
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return HomePath
	}
	if u.Path != HomePath && !strings.HasPrefix(u.Path, HomePath+"/") {
		return HomePath
	}
	if u.Path == LoginPath {
		return HomePath
	}
	return next
}
