// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/olegiv/diocese-go/internal/auth"
	"github.com/olegiv/diocese-go/internal/util"
)

const timeLayout = "2006-01-02 15:04:05"

// SeedOptions controls what Seed creates besides the mandatory rows.
type SeedOptions struct {
	// AdminEmail and AdminPassword bootstrap an administrator when both are set
	// and no account with that email exists yet.
	AdminEmail    string
	AdminPassword string
	// Demo inserts sample content into an empty database.
	Demo bool
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Seed creates the settings row, the default home sections and, depending on
// opts, an administrator and sample content. It is safe to run on every start.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if err := ensureSettings(ctx, db); err != nil {
		return err
	}
	if err := ensureHomeSections(ctx, db); err != nil {
		return err
	}
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := ensureAdmin(ctx, db, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}
	if opts.Demo {
		if err := seedDemo(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func count(ctx context.Context, db *sql.DB, table string, where sq.Sqlizer) (int, error) {
	b := psql.Select("COUNT(*)").From(table)
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

func insert(ctx context.Context, db *sql.DB, table string, values map[string]any) (string, error) {
	id, _ := values["id"].(string)
	if id == "" {
		id = uuid.NewString()
		values["id"] = id
	}
	query, args, err := psql.Insert(table).SetMap(values).ToSql()
	if err != nil {
		return "", err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("inserting into %s: %w", table, err)
	}
	return id, nil
}

func ensureSettings(ctx context.Context, db *sql.DB) error {
	n, err := count(ctx, db, "site_settings", sq.Eq{"id": "default"})
	if err != nil || n > 0 {
		return err
	}
	_, err = insert(ctx, db, "site_settings", map[string]any{
		"id":               "default",
		"site_title":       "Diocese de São Miguel Paulista",
		"site_description": "Portal oficial da Diocese de São Miguel Paulista",
		"contact_address":  "São Miguel Paulista, São Paulo - SP",
	})
	if err == nil {
		slog.Info("created default site settings")
	}
	return err
}

type sectionSeed struct {
	title, description, icon, link string
}

var defaultSections = []sectionSeed{
	{"Paróquias", "Encontre a paróquia mais próxima e seus horários de missa.", "church", "/paroquias"},
	{"Clero", "Conheça os padres, diáconos e seminaristas da diocese.", "users", "/clero"},
	{"Mensagens do Bispo", "Cartas e mensagens pastorais do nosso bispo.", "book_open", "/mensagens-bispo"},
	{"Notícias", "Acompanhe os acontecimentos da vida diocesana.", "calendar", "/noticias"},
}

func ensureHomeSections(ctx context.Context, db *sql.DB) error {
	n, err := count(ctx, db, "home_sections", nil)
	if err != nil || n > 0 {
		return err
	}
	for i, s := range defaultSections {
		if _, err := insert(ctx, db, "home_sections", map[string]any{
			"title":       s.title,
			"description": s.description,
			"icon":        s.icon,
			"link":        s.link,
			"order_index": i,
			"active":      true,
		}); err != nil {
			return err
		}
	}
	slog.Info("created default home sections", "count", len(defaultSections))
	return nil
}

func ensureAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	creds := auth.Credentials{Email: email, Password: password}.Normalize()
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	query, args, err := psql.Select("id").From("auth_users").Where(sq.Eq{"email": creds.Email}).ToSql()
	if err != nil {
		return err
	}
	var existing string
	err = db.QueryRowContext(ctx, query, args...).Scan(&existing)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", creds.Email)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	authID := uuid.NewString()
	stmts := []sq.InsertBuilder{
		psql.Insert("auth_users").SetMap(map[string]any{
			"id":            authID,
			"email":         creds.Email,
			"password_hash": hash,
		}),
		psql.Insert("users").SetMap(map[string]any{
			"id":           uuid.NewString(),
			"auth_user_id": authID,
			"email":        creds.Email,
			"role":         "admin",
		}),
	}
	for _, stmt := range stmts {
		query, args, err := stmt.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing admin user: %w", err)
	}

	slog.Info("created admin user", "email", creds.Email)
	return nil
}

// seedDemo fills an empty database with a small, realistic diocese.
func seedDemo(ctx context.Context, db *sql.DB) error {
	n, err := count(ctx, db, "articles", nil)
	if err != nil || n > 0 {
		return err
	}

	now := time.Now().UTC()
	ts := func(d time.Duration) string { return now.Add(-d).Format(timeLayout) }

	catNews, err := insert(ctx, db, "categories", map[string]any{
		"name": "Notícias Diocesanas", "slug": "noticias-diocesanas",
		"description": "Acontecimentos da diocese",
	})
	if err != nil {
		return err
	}
	catPastoral, err := insert(ctx, db, "categories", map[string]any{
		"name": "Pastoral", "slug": "pastoral",
		"description": "Vida pastoral e comunidades",
	})
	if err != nil {
		return err
	}

	articles := []struct {
		title, excerpt, content, category string
		tags                              []string
		slider                            bool
		age                               time.Duration
	}{
		{"Abertura do Ano Jubilar", "A diocese celebra a abertura do Ano Jubilar na Catedral.",
			"A celebração reuniu fiéis de todas as paróquias.\n\nO bispo presidiu a Santa Missa.", catNews,
			[]string{"jubileu", "catedral"}, true, 2 * time.Hour},
		{"Encontro de Catequistas", "Formação diocesana para catequistas de todas as regiões.",
			"Mais de duzentos catequistas participaram do encontro.", catPastoral,
			[]string{"catequese"}, true, 26 * time.Hour},
		{"Festa de São Miguel Arcanjo", "Programação da festa do padroeiro.",
			"Novena, procissão e missa solene em honra de São Miguel.", catNews,
			[]string{"padroeiro", "festa"}, false, 72 * time.Hour},
	}
	for _, a := range articles {
		tags, _ := json.Marshal(a.tags)
		if _, err := insert(ctx, db, "articles", map[string]any{
			"title":          a.title,
			"slug":           util.Slugify(a.title),
			"excerpt":        a.excerpt,
			"content":        a.content,
			"category_id":    a.category,
			"tags":           string(tags),
			"published":      true,
			"show_in_slider": a.slider,
			"created_at":     ts(a.age),
			"updated_at":     ts(a.age),
		}); err != nil {
			return err
		}
	}

	if _, err := insert(ctx, db, "bishop_info", map[string]any{
		"name":             "Dom Manuel da Silva",
		"bio":              "Bispo diocesano de São Miguel Paulista.",
		"ordination_date":  "1995-08-15",
		"appointment_date": "2018-03-19",
	}); err != nil {
		return err
	}
	if _, err := insert(ctx, db, "bishop_messages", map[string]any{
		"title":      "Mensagem para o Advento",
		"slug":       "mensagem-para-o-advento",
		"content":    "Caríssimos irmãos e irmãs, preparemos o coração para o Natal do Senhor.",
		"published":  true,
		"created_at": ts(48 * time.Hour),
	}); err != nil {
		return err
	}

	cathedral, err := insert(ctx, db, "parishes", map[string]any{
		"name":          "Catedral São Miguel Arcanjo",
		"slug":          "catedral-sao-miguel-arcanjo",
		"address":       "Praça Padre Aleixo Monteiro Mafra, São Miguel Paulista",
		"mass_schedule": "Domingo: 8h, 10h e 19h",
	})
	if err != nil {
		return err
	}
	priest, err := insert(ctx, db, "priests", map[string]any{
		"name":      "Pe. João Batista",
		"slug":      "pe-joao-batista",
		"parish_id": cathedral,
		"status":    "active",
	})
	if err != nil {
		return err
	}
	query, args, err := psql.Update("parishes").Set("priest_id", priest).Where(sq.Eq{"id": cathedral}).ToSql()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("linking parish priest: %w", err)
	}
	if _, err := insert(ctx, db, "deacons", map[string]any{
		"name": "Diác. Pedro Santos", "slug": "diac-pedro-santos", "parish_id": cathedral, "status": "active",
	}); err != nil {
		return err
	}
	if _, err := insert(ctx, db, "seminarians", map[string]any{
		"name": "Lucas Almeida", "slug": "lucas-almeida", "seminary": "Seminário Diocesano", "year_of_study": 2,
	}); err != nil {
		return err
	}

	slog.Info("inserted demo content")
	return nil
}
