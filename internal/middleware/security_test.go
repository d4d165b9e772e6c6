// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWith(mw func(http.Handler) http.Handler, path string, h http.HandlerFunc) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mw(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveWith(SecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev)), "/", okHandler)

			if got := rr.Header().Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q, want %q", got, tt.wantHSTS)
			}
			if got := rr.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
				t.Errorf("X-Frame-Options = %q", got)
			}
			if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := rr.Header().Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
				t.Errorf("Referrer-Policy = %q", got)
			}
			csp := rr.Header().Get("Content-Security-Policy")
			if !strings.HasPrefix(csp, "default-src 'self'; script-src") {
				t.Errorf("CSP = %q", csp)
			}
			if !strings.Contains(csp, "object-src 'none'") {
				t.Errorf("CSP missing object-src: %q", csp)
			}
			if !strings.Contains(rr.Header().Get("Permissions-Policy"), "camera=()") {
				t.Errorf("Permissions-Policy = %q", rr.Header().Get("Permissions-Policy"))
			}
		})
	}
}

func TestSecurityHeadersExcludePrefixes(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePrefixes = []string{"/uploads/"}

	rr := serveWith(SecurityHeaders(cfg), "/uploads/articles/a.jpg", okHandler)
	if rr.Header().Get("Content-Security-Policy") != "" {
		t.Error("excluded path should not get a CSP")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("excluded path should still get nosniff")
	}

	rr = serveWith(SecurityHeaders(cfg), "/noticias", okHandler)
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("regular path should get a CSP")
	}
}

func TestSecurityHeadersHSTSDisabled(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.HSTSMaxAge = 0

	rr := serveWith(SecurityHeaders(cfg), "/", okHandler)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS = %q, want empty", got)
	}
}

func TestBuildCSP(t *testing.T) {
	got := buildCSP(map[string]string{
		"object-src":  "'none'",
		"default-src": "'self'",
		"unknown":     "x",
	})
	if want := "default-src 'self'; object-src 'none'"; got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}

func TestCompress(t *testing.T) {
	body := strings.Repeat("<p>Diocese</p>", 100)

	tests := []struct {
		name         string
		acceptGzip   bool
		contentType  string
		body         string
		wantEncoding string
	}{
		{"html gzipped", true, "text/html; charset=utf-8", body, "gzip"},
		{"client without gzip", false, "text/html; charset=utf-8", body, ""},
		{"image untouched", true, "image/jpeg", body, ""},
		{"small body untouched", true, "text/html", "<p>x</p>", ""},
		{"xml gzipped", true, "application/xml", body, "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compress(256)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, tt.body)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptGzip {
				req.Header.Set("Accept-Encoding", "gzip, deflate")
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusCreated {
				t.Errorf("Status = %d, want 201", rr.Code)
			}
			if got := rr.Header().Get("Content-Encoding"); got != tt.wantEncoding {
				t.Fatalf("Content-Encoding = %q, want %q", got, tt.wantEncoding)
			}

			got := rr.Body.String()
			if tt.wantEncoding == "gzip" {
				zr, err := gzip.NewReader(rr.Body)
				if err != nil {
					t.Fatalf("gzip.NewReader: %v", err)
				}
				b, err := io.ReadAll(zr)
				if err != nil {
					t.Fatalf("reading gzip body: %v", err)
				}
				got = string(b)
			}
			if got != tt.body {
				t.Errorf("body length = %d, want %d", len(got), len(tt.body))
			}
		})
	}
}

func TestCompressEmptyBodyKeepsStatus(t *testing.T) {
	handler := Compress(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/noticias", http.StatusSeeOther)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("Status = %d, want 303", rr.Code)
	}
}
