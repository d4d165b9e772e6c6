// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// PopupAnnouncement is a dismissible notice shown once per browser while active.
type PopupAnnouncement struct {
	ID        string     `mapstructure:"id"`
	Title     string     `mapstructure:"title"`
	Content   string     `mapstructure:"content"`
	Image     string     `mapstructure:"image"`
	Active    bool       `mapstructure:"active"`
	StartDate time.Time  `mapstructure:"start_date"`
	EndDate   *time.Time `mapstructure:"end_date"`
	CreatedAt time.Time  `mapstructure:"created_at"`
}

// ContactInfo is the diocese curia's contact block.
type ContactInfo struct {
	Address string `mapstructure:"contact_address"`
	Phone   string `mapstructure:"contact_phone"`
	Email   string `mapstructure:"contact_email"`
}

// SocialLinks holds the diocese's social network profiles.
type SocialLinks struct {
	Facebook  string `mapstructure:"social_facebook"`
	Instagram string `mapstructure:"social_instagram"`
	YouTube   string `mapstructure:"social_youtube"`
	Twitter   string `mapstructure:"social_twitter"`
}

// Any reports whether at least one profile is set.
func (s SocialLinks) Any() bool {
	return s.Facebook != "" || s.Instagram != "" || s.YouTube != "" || s.Twitter != ""
}

// SiteSettingsID is the primary key of the singleton settings row.
const SiteSettingsID = "default"

// SiteSettings is the singleton row of site-wide settings.
type SiteSettings struct {
	ID              string      `mapstructure:"id"`
	LogoURL         string      `mapstructure:"logo_url"`
	SiteTitle       string      `mapstructure:"site_title"`
	SiteDescription string      `mapstructure:"site_description"`
	AboutDiocese    string      `mapstructure:"about_diocese"`
	Contact         ContactInfo `mapstructure:",squash"`
	Social          SocialLinks `mapstructure:",squash"`
	UpdatedAt       time.Time   `mapstructure:"updated_at"`
}

// DefaultSiteSettings is used when the settings row has not been saved yet.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:              SiteSettingsID,
		SiteTitle:       "Diocese de São Miguel Paulista",
		SiteDescription: "Portal oficial da Diocese de São Miguel Paulista",
		Contact: ContactInfo{
			Address: "São Miguel Paulista, São Paulo - SP",
		},
	}
}

// SectionKind identifies how a home page section is presented.
type SectionKind string

// The closed set of home section kinds.
const (
	SectionChurch   SectionKind = "church"
	SectionUsers    SectionKind = "users"
	SectionBookOpen SectionKind = "book_open"
	SectionCalendar SectionKind = "calendar"
)

// SectionKinds lists every valid kind in display order for admin pickers.
var SectionKinds = []SectionKind{SectionChurch, SectionUsers, SectionBookOpen, SectionCalendar}

// ParseSectionKind maps a stored icon name onto a SectionKind. Both the
// snake_case form and the legacy PascalCase names ("BookOpen") are accepted.
func ParseSectionKind(s string) (SectionKind, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	if norm == "bookopen" {
		norm = string(SectionBookOpen)
	}
	for _, k := range SectionKinds {
		if string(k) == norm {
			return k, true
		}
	}
	return "", false
}

// HomeSection is a highlighted block on the home page.
type HomeSection struct {
	ID          string      `mapstructure:"id"`
	Title       string      `mapstructure:"title"`
	Description string      `mapstructure:"description"`
	Icon        string      `mapstructure:"icon"`
	Link        string      `mapstructure:"link"`
	OrderIndex  int         `mapstructure:"order_index"`
	Active      bool        `mapstructure:"active"`
	Kind        SectionKind `mapstructure:"-"`
}

// DashboardCounts summarizes content volume for the admin dashboard.
type DashboardCounts struct {
	Articles    int
	Parishes    int
	Priests     int
	Deacons     int
	Seminarians int
	Categories  int
}
