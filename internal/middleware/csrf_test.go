// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var testAuthKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testAuthKey, true, "0.0.0.0:9000")
	if len(dev.TrustedOrigins) != 3 {
		t.Fatalf("TrustedOrigins = %v, want 3 entries", dev.TrustedOrigins)
	}
	for _, origin := range dev.TrustedOrigins {
		if len(origin) > 4 && origin[:4] == "http" {
			t.Errorf("TrustedOrigin %q should be host:port, not a URL", origin)
		}
	}

	if got := DefaultCSRFConfig(testAuthKey, true, "localhost:8080"); len(got.TrustedOrigins) != 2 {
		t.Errorf("duplicate dev origin added: %v", got.TrustedOrigins)
	}

	prod := DefaultCSRFConfig(testAuthKey, false, "")
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("production TrustedOrigins = %v, want none", prod.TrustedOrigins)
	}
	if len(prod.AuthKey) != 32 {
		t.Errorf("AuthKey length = %d, want 32", len(prod.AuthKey))
	}
}

func TestCSRF(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testAuthKey, false, ""))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name          string
		method        string
		secFetchSite  string
		origin        string
		wantForbidden bool
	}{
		{"safe method cross-site", http.MethodGet, "cross-site", "https://evil.example", false},
		{"same-origin post", http.MethodPost, "same-origin", "", false},
		{"cross-site post", http.MethodPost, "cross-site", "https://evil.example", true},
		{"non-browser post", http.MethodPost, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "https://diocese.example/admin/articles/new", nil)
			if tt.secFetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.secFetchSite)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if forbidden := rr.Code == http.StatusForbidden; forbidden != tt.wantForbidden {
				t.Errorf("status = %d, want forbidden=%v", rr.Code, tt.wantForbidden)
			}
		})
	}
}
