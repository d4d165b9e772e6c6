// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the diocese domain entities and the small closed
// enumerations shared across packages.
package model

import (
	"strings"
	"time"
)

// Role is an application-level authorization label.
type Role string

// Known roles. The zero value means "no role".
const (
	RoleNone   Role = ""
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// roleLevels orders roles by privilege.
var roleLevels = map[Role]int{
	RoleEditor: 1,
	RoleAdmin:  2,
}

// ParseRole converts a stored role label to a Role.
// Unknown labels yield RoleNone and false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevels[r]; !ok {
		return RoleNone, false
	}
	return r, true
}

// Satisfies reports whether r grants at least the privileges of required.
// RoleNone never satisfies anything.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleLevels[r]
	if !ok {
		return false
	}
	if required == RoleNone {
		return true
	}
	return have >= roleLevels[required]
}

// User is a row of the application role table, linked to an auth identity.
type User struct {
	ID         string    `mapstructure:"id"`
	AuthUserID string    `mapstructure:"auth_user_id"`
	Email      string    `mapstructure:"email"`
	Role       string    `mapstructure:"role"`
	CreatedAt  time.Time `mapstructure:"created_at"`
}

// ParsedRole returns the user's role, or RoleNone with false when the
// stored value is not a known role.
func (u User) ParsedRole() (Role, bool) {
	return ParseRole(u.Role)
}
