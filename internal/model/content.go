// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Article is a news item. It is public only when Published is set.
type Article struct {
	ID            string       `mapstructure:"id"`
	Title         string       `mapstructure:"title"`
	Slug          string       `mapstructure:"slug"`
	Content       string       `mapstructure:"content"`
	Excerpt       string       `mapstructure:"excerpt"`
	FeaturedImage string       `mapstructure:"featured_image"`
	CategoryID    string       `mapstructure:"category_id"`
	Tags          []string     `mapstructure:"tags"`
	AuthorID      string       `mapstructure:"author_id"`
	Published     bool         `mapstructure:"published"`
	ShowInSlider  bool         `mapstructure:"show_in_slider"`
	CreatedAt     time.Time    `mapstructure:"created_at"`
	UpdatedAt     time.Time    `mapstructure:"updated_at"`
	Category      *CategoryRef `mapstructure:"category"`
}

// CategoryRef is the denormalized category shown next to an article.
type CategoryRef struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
}

// Category groups articles.
type Category struct {
	ID          string    `mapstructure:"id"`
	Name        string    `mapstructure:"name"`
	Slug        string    `mapstructure:"slug"`
	Description string    `mapstructure:"description"`
	CreatedAt   time.Time `mapstructure:"created_at"`
}

// BishopMessage is a pastoral letter. Same publish gating as Article.
type BishopMessage struct {
	ID            string    `mapstructure:"id"`
	Title         string    `mapstructure:"title"`
	Slug          string    `mapstructure:"slug"`
	Content       string    `mapstructure:"content"`
	FeaturedImage string    `mapstructure:"featured_image"`
	Published     bool      `mapstructure:"published"`
	CreatedAt     time.Time `mapstructure:"created_at"`
}

// BishopInfo is the singleton biography of the diocesan bishop.
type BishopInfo struct {
	ID              string    `mapstructure:"id"`
	Name            string    `mapstructure:"name"`
	Bio             string    `mapstructure:"bio"`
	Photo           string    `mapstructure:"photo"`
	OrdinationDate  string    `mapstructure:"ordination_date"`
	AppointmentDate string    `mapstructure:"appointment_date"`
	UpdatedAt       time.Time `mapstructure:"updated_at"`
}
