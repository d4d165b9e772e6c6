// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package identity resolves who is signed in and with which application role.
// A single Context is built at startup, subscribed to the backend's session
// events and passed to the components that need it.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/cache"
	"github.com/olegiv/diocese-go/internal/metrics"
	"github.com/olegiv/diocese-go/internal/model"
)

// Status is the authentication state of a request.
type Status int

const (
	// Unknown means the session or role could not be determined yet.
	Unknown Status = iota
	Anonymous
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the resolved identity of one request.
type State struct {
	Status  Status
	Session *backend.Session
	// Role is RoleNone for anonymous users and for signed-in users without
	// an application role.
	Role model.Role
}

// UserID returns the signed-in user's id or "".
func (s State) UserID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.UserID
}

// Email returns the signed-in user's email or "".
func (s State) Email() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Email
}

// IsAdmin reports whether the state carries the admin role.
func (s State) IsAdmin() bool {
	return s.Status == Authenticated && s.Role == model.RoleAdmin
}

const (
	roleKeyPrefix = "role:"
	noRoleMarker  = "-"
)

// Context is the process-wide source of truth for identities. It holds no
// per-user state besides the role cache.
type Context struct {
	auth    backend.Auth
	client  backend.Client
	roles   cache.Cacher
	roleTTL time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	running     bool
	unsubscribe func()
	nextID      uint64
	subs        map[uint64]func(backend.SessionEvent)
}

// Option configures a Context.
type Option func(*Context)

// WithMetrics records role lookups in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) { c.metrics = m }
}

// WithRoleTTL sets how long a resolved role is cached.
func WithRoleTTL(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.roleTTL = d
		}
	}
}

// New creates a Context. It resolves nothing until Start is called.
func New(auth backend.Auth, client backend.Client, roles cache.Cacher, logger *slog.Logger, opts ...Option) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Context{
		auth:    auth,
		client:  client,
		roles:   roles,
		roleTTL: 5 * time.Minute,
		logger:  logger,
		subs:    make(map[uint64]func(backend.SessionEvent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to session changes. Calling it twice is a no-op.
func (c *Context) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.unsubscribe = c.auth.OnSessionChange(c.handleSessionChange)
	c.running = true
}

// Close unsubscribes from session changes. Afterwards every request resolves
// to Unknown.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.unsubscribe()
	c.unsubscribe = nil
	c.running = false
}

func (c *Context) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Resolve determines the identity behind ctx. Any failure to read the
// session or the role yields Unknown rather than a guess.
func (c *Context) Resolve(ctx context.Context) State {
	if !c.isRunning() {
		return State{Status: Unknown}
	}

	sess, err := c.auth.Session(ctx)
	if err != nil {
		c.logger.Warn("session lookup failed", "error", err)
		return State{Status: Unknown}
	}
	if sess == nil {
		return State{Status: Anonymous}
	}

	role, err := c.role(ctx, sess.UserID)
	if err != nil {
		c.logger.Warn("role lookup failed", "user_id", sess.UserID, "error", err)
		return State{Status: Unknown, Session: sess}
	}
	return State{Status: Authenticated, Session: sess, Role: role}
}

func (c *Context) role(ctx context.Context, userID string) (model.Role, error) {
	key := roleKeyPrefix + userID

	if b, err := c.roles.Get(ctx, key); err == nil {
		role := decodeRole(string(b))
		c.metrics.ObserveRoleLookup("cache", roleOutcome(role))
		return role, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("role cache read failed", "user_id", userID, "error", err)
	}

	row, err := c.client.GetSingle(ctx, backend.From(backend.TableUsers).
		Select("id", "auth_user_id", "email", "role").
		Where(backend.Eq("auth_user_id", userID)))

	var u model.User
	if err == nil {
		u, err = backend.DecodeOne[model.User](row)
	}

	var role model.Role
	switch {
	case errors.Is(err, backend.ErrNotFound):
		role = model.RoleNone
	case err != nil:
		c.metrics.ObserveRoleLookup("backend", "error")
		return model.RoleNone, err
	default:
		parsed, ok := u.ParsedRole()
		if !ok {
			c.logger.Warn("ignoring unknown role", "user_id", userID, "role", u.Role)
		}
		role = parsed
	}

	c.metrics.ObserveRoleLookup("backend", roleOutcome(role))
	if err := c.roles.Set(ctx, key, []byte(encodeRole(role)), c.roleTTL); err != nil {
		c.logger.Warn("role cache write failed", "user_id", userID, "error", err)
	}
	return role, nil
}

func encodeRole(r model.Role) string {
	if r == model.RoleNone {
		return noRoleMarker
	}
	return string(r)
}

func decodeRole(s string) model.Role {
	if s == noRoleMarker {
		return model.RoleNone
	}
	r, _ := model.ParseRole(s)
	return r
}

func roleOutcome(r model.Role) string {
	if r == model.RoleNone {
		return "none"
	}
	return string(r)
}

// Forget drops the cached role of userID, e.g. after its users row changed.
func (c *Context) Forget(ctx context.Context, userID string) {
	if err := c.roles.Delete(ctx, roleKeyPrefix+userID); err != nil {
		c.logger.Warn("role cache eviction failed", "user_id", userID, "error", err)
	}
}

func (c *Context) handleSessionChange(ev backend.SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c.Forget(ctx, ev.Session.UserID)

	c.logger.Info("session changed", "event", ev.Kind.String(), "user_id", ev.Session.UserID)

	c.mu.Lock()
	fns := make([]func(backend.SessionEvent), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Subscribe registers fn for session changes observed after the role cache
// has been updated. The returned function removes it.
func (c *Context) Subscribe(fn func(backend.SessionEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

type stateKey struct{}

// WithState returns a copy of ctx carrying s.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the state stored by Middleware, or Unknown.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(stateKey{}).(State); ok {
		return s
	}
	return State{Status: Unknown}
}

// Middleware resolves the request identity once and stores it in the
// request context. It must run inside the session manager's LoadAndSave.
func (c *Context) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := c.Resolve(r.Context())
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}
