// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestLoginProtection returns a LoginProtection driven by a manual clock.
func newTestLoginProtection(t *testing.T, maxAttempts int, lockout, window time.Duration) (*LoginProtection, *time.Time) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Close)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }
	return lp, &now
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Close()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m", lp.lockoutDuration)
	}
	lp.Close() // second Close is a no-op
}

func TestLoginProtectionLockout(t *testing.T) {
	lp, now := newTestLoginProtection(t, 3, time.Minute, 10*time.Minute)
	email := "editor@diocese.example"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account should not be locked initially")
	}

	for i := 1; i < 3; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
	}
	locked, d := lp.RecordFailedAttempt(email)
	if !locked || d != time.Minute {
		t.Fatalf("third attempt = (%v, %v), want (true, 1m)", locked, d)
	}

	// Keys are case-insensitive.
	if locked, remaining := lp.IsAccountLocked("Editor@Diocese.example "); !locked || remaining != time.Minute {
		t.Errorf("IsAccountLocked = (%v, %v), want (true, 1m)", locked, remaining)
	}

	*now = now.Add(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("account should be unlocked after the lockout expires")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp, now := newTestLoginProtection(t, 2, time.Minute, time.Hour)
	email := "a@b.c"

	lp.RecordFailedAttempt(email)
	_, first := lp.RecordFailedAttempt(email)

	*now = now.Add(first + time.Second)
	lp.RecordFailedAttempt(email)
	_, second := lp.RecordFailedAttempt(email)

	if first != time.Minute || second != 2*time.Minute {
		t.Errorf("lockouts = %v, %v; want 1m, 2m", first, second)
	}
}

func TestLoginProtectionBackoffCap(t *testing.T) {
	lp, now := newTestLoginProtection(t, 1, 10*time.Hour, time.Hour)

	var d time.Duration
	for range 4 {
		_, d = lp.RecordFailedAttempt("x@y.z")
		*now = now.Add(d + time.Second)
	}
	if d != maxLockout {
		t.Errorf("lockout = %v, want %v", d, maxLockout)
	}
}

func TestLoginProtectionRemainingAttempts(t *testing.T) {
	lp, now := newTestLoginProtection(t, 5, time.Minute, time.Minute)
	email := "a@b.c"

	if got := lp.RemainingAttempts(email); got != 5 {
		t.Errorf("RemainingAttempts() = %d, want 5", got)
	}
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if got := lp.RemainingAttempts(email); got != 3 {
		t.Errorf("RemainingAttempts() = %d, want 3", got)
	}

	*now = now.Add(2 * time.Minute)
	if got := lp.RemainingAttempts(email); got != 5 {
		t.Errorf("RemainingAttempts() after window = %d, want 5", got)
	}

	// A failure after the window starts a new count.
	lp.RecordFailedAttempt(email)
	if got := lp.RemainingAttempts(email); got != 4 {
		t.Errorf("RemainingAttempts() = %d, want 4", got)
	}

	lp.RecordSuccessfulLogin(email)
	if got := lp.RemainingAttempts(email); got != 5 {
		t.Errorf("RemainingAttempts() after success = %d, want 5", got)
	}
}

func TestLoginProtectionCleanup(t *testing.T) {
	lp, now := newTestLoginProtection(t, 5, time.Minute, time.Minute)
	lp.RecordFailedAttempt("a@b.c")

	*now = now.Add(5 * time.Minute)
	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	n := len(lp.failedAttempts)
	lp.attemptsMu.RUnlock()
	if n != 0 {
		t.Errorf("failedAttempts has %d entries after cleanup, want 0", n)
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 2})
	defer lp.Close()

	wrapped := lp.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := post(); got != http.StatusOK {
		t.Errorf("first POST = %d, want 200", got)
	}
	if got := post(); got != http.StatusOK {
		t.Errorf("second POST = %d, want 200", got)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Errorf("third POST = %d, want 429", got)
	}

	// GETs are never limited.
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("GET = %d, want 200", rr.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
		{"forwarded single", "127.0.0.1:8080", "10.0.0.1", "", "10.0.0.1"},
		{"forwarded multiple", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"real ip", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"forwarded wins", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
		{"forwarded with spaces", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	wrapped := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for _, addr := range []string{"198.51.100.1:1", "198.51.100.1:2", "198.51.100.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/popup/x/dismiss", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	want := []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if lc.clearIfExceeds(2) {
		t.Error("cache of 2 should not be cleared at limit 2")
	}
	lc.get("c")
	if !lc.clearIfExceeds(2) {
		t.Error("cache of 3 should be cleared at limit 2")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("limiters = %d, want 0", len(lc.limiters))
	}
}
