// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/diocese-go/internal/auth"
)

// Session keys written on sign-in.
const (
	sessionKeyUserID = "auth_user_id"
	sessionKeyEmail  = "auth_email"
)

// Session is an authenticated backend session.
type Session struct {
	UserID string
	Email  string
}

// EventKind distinguishes session transitions.
type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// SessionEvent is delivered to OnSessionChange listeners.
type SessionEvent struct {
	Kind    EventKind
	Session Session
}

// Auth signs users in and out and reports the current session.
type Auth interface {
	SignIn(ctx context.Context, creds auth.Credentials) (*Session, error)
	SignOut(ctx context.Context) error
	// Session returns nil without error when nobody is signed in.
	Session(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn and returns a function that removes it.
	OnSessionChange(fn func(SessionEvent)) (unsubscribe func())
}

var errNoSessionContext = errors.New("request carries no session data")

// SessionAuth implements Auth with the auth_users table and an scs session
// manager. Context arguments must come from requests that passed through
// the manager's LoadAndSave middleware.
type SessionAuth struct {
	db       *sql.DB
	sb       sq.StatementBuilderType
	sessions *scs.SessionManager

	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]func(SessionEvent)
}

// NewSessionAuth creates a SessionAuth.
func NewSessionAuth(db *sql.DB, sessions *scs.SessionManager) *SessionAuth {
	return &SessionAuth{
		db:        db,
		sb:        sq.StatementBuilder.PlaceholderFormat(sq.Question),
		sessions:  sessions,
		listeners: make(map[uint64]func(SessionEvent)),
	}
}

// SignIn verifies creds and binds the account to the session. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (a *SessionAuth) SignIn(ctx context.Context, creds auth.Credentials) (*Session, error) {
	creds = creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, ErrInvalidCredentials
	}

	query, args, err := a.sb.Select("id", "password_hash").
		From("auth_users").
		Where(sq.Eq{"email": creds.Email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, &TransportError{Op: "sign_in", Table: "auth_users", Err: err}
	}

	var id, hash string
	err = a.db.QueryRowContext(ctx, query, args...).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		auth.BurnCheck(creds.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &TransportError{Op: "sign_in", Table: "auth_users", Err: err}
	}

	ok, err := auth.CheckPassword(creds.Password, hash)
	if err != nil {
		slog.Warn("stored password hash is unreadable", "auth_user_id", id, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := a.bind(ctx, id, creds.Email); err != nil {
		return nil, err
	}
	a.touchLastLogin(ctx, id)

	sess := Session{UserID: id, Email: creds.Email}
	a.emit(SessionEvent{Kind: SignedIn, Session: sess})
	return &sess, nil
}

func (a *SessionAuth) bind(ctx context.Context, id, email string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TransportError{Op: "sign_in", Err: errNoSessionContext}
		}
	}()
	if err := a.sessions.RenewToken(ctx); err != nil {
		return &TransportError{Op: "sign_in", Err: fmt.Errorf("renewing session token: %w", err)}
	}
	a.sessions.Put(ctx, sessionKeyUserID, id)
	a.sessions.Put(ctx, sessionKeyEmail, email)
	return nil
}

func (a *SessionAuth) touchLastLogin(ctx context.Context, id string) {
	query, args, err := a.sb.Update("auth_users").
		Set("last_login_at", time.Now().UTC().Format(TimeLayout)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err == nil {
		_, err = a.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Warn("failed to record last login", "auth_user_id", id, "error", err)
	}
}

// SignOut destroys the session. Signing out without a session is a no-op.
func (a *SessionAuth) SignOut(ctx context.Context) (err error) {
	sess, err := a.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = &TransportError{Op: "sign_out", Err: errNoSessionContext}
		}
	}()
	if err := a.sessions.Destroy(ctx); err != nil {
		return &TransportError{Op: "sign_out", Err: err}
	}
	if sess != nil {
		a.emit(SessionEvent{Kind: SignedOut, Session: *sess})
	}
	return nil
}

// Session implements Auth.
func (a *SessionAuth) Session(ctx context.Context) (sess *Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			sess, err = nil, &TransportError{Op: "session", Err: errNoSessionContext}
		}
	}()
	id := a.sessions.GetString(ctx, sessionKeyUserID)
	if id == "" {
		return nil, nil
	}
	return &Session{UserID: id, Email: a.sessions.GetString(ctx, sessionKeyEmail)}, nil
}

// OnSessionChange implements Auth. Listeners run synchronously on the
// goroutine that changed the session.
func (a *SessionAuth) OnSessionChange(fn func(SessionEvent)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

func (a *SessionAuth) emit(ev SessionEvent) {
	a.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
