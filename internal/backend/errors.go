// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an expected single row is absent.
var ErrNotFound = errors.New("not found")

// TransportError reports that the backend could not be reached or rejected
// the request as malformed.
type TransportError struct {
	Op    string
	Table string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError reports a rejected sign-in.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// ErrInvalidCredentials is returned by SignIn for unknown emails and wrong
// passwords alike.
var ErrInvalidCredentials = &AuthError{Reason: "invalid login credentials"}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
