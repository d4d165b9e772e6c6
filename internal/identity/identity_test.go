// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/diocese-go/internal/auth"
	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/cache"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/store"
	"github.com/olegiv/diocese-go/internal/testutil"
)

// fakeAuth is an Auth whose current session is set directly by tests.
type fakeAuth struct {
	mu        sync.Mutex
	session   *backend.Session
	err       error
	listeners map[int]func(backend.SessionEvent)
	next      int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{listeners: map[int]func(backend.SessionEvent){}}
}

func (f *fakeAuth) SignIn(context.Context, auth.Credentials) (*backend.Session, error) {
	return nil, backend.ErrInvalidCredentials
}

func (f *fakeAuth) SignOut(context.Context) error { return nil }

func (f *fakeAuth) Session(context.Context) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.err
}

func (f *fakeAuth) OnSessionChange(fn func(backend.SessionEvent)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) emit(ev backend.SessionEvent) {
	f.mu.Lock()
	var fns []func(backend.SessionEvent)
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeAuth) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// roleClient answers users-table lookups from a map.
type roleClient struct {
	backend.Client
	mu    sync.Mutex
	roles map[string]string
	row   backend.Row
	err   error
	calls int
}

func (c *roleClient) GetSingle(_ context.Context, q backend.Query) (backend.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if c.row != nil {
		return c.row, nil
	}
	id, _ := q.Filters[0].Value.(string)
	role, ok := c.roles[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return backend.Row{
		"id":           "row-" + id,
		"auth_user_id": id,
		"email":        id + "@diocese.example",
		"role":         role,
		"created_at":   "2026-01-10 12:00:00",
	}, nil
}

func newTestContext(t *testing.T, roles map[string]string) (*Context, *fakeAuth, *roleClient) {
	t.Helper()
	fa := newFakeAuth()
	rc := &roleClient{roles: roles}
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })

	c := New(fa, rc, mc, testutil.TestLoggerSilent())
	c.Start()
	t.Cleanup(c.Close)
	return c, fa, rc
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		session *backend.Session
		want    Status
		role    model.Role
	}{
		{"anonymous", nil, Anonymous, model.RoleNone},
		{"admin", &backend.Session{UserID: "u-admin"}, Authenticated, model.RoleAdmin},
		{"editor", &backend.Session{UserID: "u-editor"}, Authenticated, model.RoleEditor},
		{"no role row", &backend.Session{UserID: "u-none"}, Authenticated, model.RoleNone},
		{"unknown role value", &backend.Session{UserID: "u-weird"}, Authenticated, model.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fa, _ := newTestContext(t, map[string]string{
				"u-admin": "admin", "u-editor": "editor", "u-weird": "superuser",
			})
			fa.session = tt.session

			st := c.Resolve(context.Background())
			assert.Equal(t, tt.want, st.Status)
			assert.Equal(t, tt.role, st.Role)
		})
	}
}

func TestResolve_FailuresAreUnknown(t *testing.T) {
	c, fa, rc := newTestContext(t, nil)

	fa.err = &backend.TransportError{Op: "session", Err: errors.New("store down")}
	assert.Equal(t, Unknown, c.Resolve(context.Background()).Status)

	fa.err = nil
	fa.session = &backend.Session{UserID: "u1"}
	rc.err = &backend.TransportError{Op: "select", Table: backend.TableUsers, Err: errors.New("timeout")}
	st := c.Resolve(context.Background())
	assert.Equal(t, Unknown, st.Status)
	assert.Equal(t, "u1", st.UserID())
}

func TestResolve_MalformedUsersRowIsUnknown(t *testing.T) {
	c, fa, rc := newTestContext(t, nil)
	fa.session = &backend.Session{UserID: "u1"}
	rc.row = backend.Row{"role": map[string]any{"nested": true}}

	st := c.Resolve(context.Background())
	assert.Equal(t, Unknown, st.Status)
	assert.Equal(t, model.RoleNone, st.Role)
}

func TestResolve_NotStarted(t *testing.T) {
	fa := newFakeAuth()
	fa.session = &backend.Session{UserID: "u1"}
	c := New(fa, &roleClient{}, cache.NewMemoryCache(cache.MemoryCacheOptions{}), testutil.TestLoggerSilent())

	assert.Equal(t, Unknown, c.Resolve(context.Background()).Status)

	c.Start()
	c.Close()
	assert.Equal(t, Unknown, c.Resolve(context.Background()).Status)
	assert.Zero(t, fa.listenerCount())
}

func TestRoleCache_EvictedOnSessionChange(t *testing.T) {
	roles := map[string]string{"u1": "editor"}
	c, fa, rc := newTestContext(t, roles)
	fa.session = &backend.Session{UserID: "u1"}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Equal(t, model.RoleEditor, c.Resolve(ctx).Role)
	}
	assert.Equal(t, 1, rc.calls, "role should be served from cache after first lookup")

	rc.mu.Lock()
	roles["u1"] = "admin"
	rc.mu.Unlock()

	var seen []backend.EventKind
	unsubscribe := c.Subscribe(func(ev backend.SessionEvent) { seen = append(seen, ev.Kind) })
	defer unsubscribe()

	fa.emit(backend.SessionEvent{Kind: backend.SignedIn, Session: *fa.session})
	assert.Equal(t, []backend.EventKind{backend.SignedIn}, seen)
	assert.Equal(t, model.RoleAdmin, c.Resolve(ctx).Role)
	assert.Equal(t, 2, rc.calls)
}

func TestRoleCache_NoRoleIsCached(t *testing.T) {
	c, fa, rc := newTestContext(t, nil)
	fa.session = &backend.Session{UserID: "ghost"}

	c.Resolve(context.Background())
	c.Resolve(context.Background())
	assert.Equal(t, 1, rc.calls)
}

func TestMiddleware(t *testing.T) {
	c, fa, _ := newTestContext(t, map[string]string{"u1": "admin"})
	fa.session = &backend.Session{UserID: "u1", Email: "a@b.c"}

	var got State
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.True(t, got.IsAdmin())
	assert.Equal(t, "a@b.c", got.Email())
	assert.Equal(t, Unknown, FromContext(context.Background()).Status)
}

func TestWithSessionAuth(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, db, store.SeedOptions{
		AdminEmail: "admin@diocese.org", AdminPassword: "correct horse",
	}))

	sm := testutil.TestSessions()
	sa := backend.NewSessionAuth(db, sm)
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mc.Close() }()

	c := New(sa, backend.NewSQLClient(db, nil), mc, testutil.TestLoggerSilent())
	c.Start()
	defer c.Close()

	sctx := testutil.SessionContext(t, sm)
	assert.Equal(t, Anonymous, c.Resolve(sctx).Status)

	_, err := sa.SignIn(sctx, auth.Credentials{Email: "admin@diocese.org", Password: "correct horse"})
	require.NoError(t, err)
	st := c.Resolve(sctx)
	assert.Equal(t, Authenticated, st.Status)
	assert.Equal(t, model.RoleAdmin, st.Role)

	require.NoError(t, sa.SignOut(sctx))
	assert.Equal(t, Anonymous, c.Resolve(sctx).Status)
}
