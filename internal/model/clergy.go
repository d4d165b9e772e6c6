// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ClergyStatus is the ministry status of a priest or deacon.
type ClergyStatus string

// Clergy statuses. Only active clergy are listed publicly.
const (
	ClergyActive      ClergyStatus = "active"
	ClergyRetired     ClergyStatus = "retired"
	ClergyTransferred ClergyStatus = "transferred"
)

// Priest is an ordained priest of the diocese.
type Priest struct {
	ID             string       `mapstructure:"id"`
	Name           string       `mapstructure:"name"`
	Slug           string       `mapstructure:"slug"`
	Photo          string       `mapstructure:"photo"`
	OrdinationDate string       `mapstructure:"ordination_date"`
	ParishID       string       `mapstructure:"parish_id"`
	Phone          string       `mapstructure:"phone"`
	Email          string       `mapstructure:"email"`
	Bio            string       `mapstructure:"bio"`
	Status         ClergyStatus `mapstructure:"status"`
	CreatedAt      time.Time    `mapstructure:"created_at"`
	Parish         *ParishRef   `mapstructure:"parish"`
}

// Deacon is an ordained deacon of the diocese.
type Deacon struct {
	ID             string       `mapstructure:"id"`
	Name           string       `mapstructure:"name"`
	Slug           string       `mapstructure:"slug"`
	Photo          string       `mapstructure:"photo"`
	OrdinationDate string       `mapstructure:"ordination_date"`
	ParishID       string       `mapstructure:"parish_id"`
	Phone          string       `mapstructure:"phone"`
	Email          string       `mapstructure:"email"`
	Bio            string       `mapstructure:"bio"`
	Status         ClergyStatus `mapstructure:"status"`
	CreatedAt      time.Time    `mapstructure:"created_at"`
	Parish         *ParishRef   `mapstructure:"parish"`
}

// Seminarian is a candidate in formation. Seminarians have no status gate.
type Seminarian struct {
	ID          string    `mapstructure:"id"`
	Name        string    `mapstructure:"name"`
	Slug        string    `mapstructure:"slug"`
	Photo       string    `mapstructure:"photo"`
	Seminary    string    `mapstructure:"seminary"`
	YearOfStudy int       `mapstructure:"year_of_study"`
	Phone       string    `mapstructure:"phone"`
	Email       string    `mapstructure:"email"`
	Bio         string    `mapstructure:"bio"`
	CreatedAt   time.Time `mapstructure:"created_at"`
}

// Parish is a parish church with its optional parish priest.
type Parish struct {
	ID           string     `mapstructure:"id"`
	Name         string     `mapstructure:"name"`
	Slug         string     `mapstructure:"slug"`
	Address      string     `mapstructure:"address"`
	Phone        string     `mapstructure:"phone"`
	Email        string     `mapstructure:"email"`
	Website      string     `mapstructure:"website"`
	PriestID     string     `mapstructure:"priest_id"`
	MassSchedule string     `mapstructure:"mass_schedule"`
	Photo        string     `mapstructure:"photo"`
	Description  string     `mapstructure:"description"`
	CreatedAt    time.Time  `mapstructure:"created_at"`
	Priest       *PriestRef `mapstructure:"priest"`
}

// PriestRef is the denormalized priest shown on a parish page.
type PriestRef struct {
	Name  string `mapstructure:"name"`
	Slug  string `mapstructure:"slug"`
	Photo string `mapstructure:"photo"`
	Phone string `mapstructure:"phone"`
	Email string `mapstructure:"email"`
}

// ParishRef is the denormalized parish shown next to a priest or deacon.
type ParishRef struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
}
