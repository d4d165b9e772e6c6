// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryAccess  = "access"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
	EventCategoryCache   = "cache"
)

// Event represents a system event log entry.
type Event struct {
	ID        string    `mapstructure:"id"`
	Level     string    `mapstructure:"level"`
	Category  string    `mapstructure:"category"`
	Message   string    `mapstructure:"message"`
	Metadata  string    `mapstructure:"metadata"` // JSON string
	CreatedAt time.Time `mapstructure:"created_at"`
}
