// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package popup decides whether a popup announcement is shown to a browser
// and keeps the per-browser "seen" markers.
package popup

import (
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/diocese-go/internal/model"
)

// CookiePrefix prefixes the seen marker of an announcement id.
const CookiePrefix = "popup_seen_"

// seenValue is the value stored in a seen marker.
const seenValue = "true"

// seenMaxAge keeps a seen marker for ten years, i.e. for the life of the
// browser profile.
const seenMaxAge = 10 * 365 * 24 * 60 * 60

// Live reports whether a is active and inside its date window at now.
// A nil EndDate means the window is open-ended.
func Live(a model.PopupAnnouncement, now time.Time) bool {
	if !a.Active {
		return false
	}
	if a.StartDate.After(now) {
		return false
	}
	if a.EndDate != nil && a.EndDate.Before(now) {
		return false
	}
	return true
}

// Visible reports whether a should be shown to a browser that has (seen) or
// has not dismissed it. A nil announcement is never visible.
func Visible(a *model.PopupAnnouncement, now time.Time, seen bool) bool {
	if a == nil || seen {
		return false
	}
	return Live(*a, now)
}

// CookieName returns the seen marker name for id. Characters outside the
// cookie token set are dropped.
func CookieName(id string) string {
	var b strings.Builder
	b.Grow(len(CookiePrefix) + len(id))
	b.WriteString(CookiePrefix)
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Seen reports whether the request carries the seen marker for id.
func Seen(r *http.Request, id string) bool {
	c, err := r.Cookie(CookieName(id))
	if err != nil {
		return false
	}
	return c.Value == seenValue
}

// MarkSeen sets the permanent seen marker for id.
func MarkSeen(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(id),
		Value:    seenValue,
		Path:     "/",
		MaxAge:   seenMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
