// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
)

var parishJoin = backend.Join{
	Table:    backend.TableParishes,
	LocalKey: "parish_id",
	As:       "parish",
	Columns:  []string{"name", "slug"},
}

func activeClergy(table string) backend.Query {
	return backend.From(table).
		Join(parishJoin).
		Where(backend.Eq("status", string(model.ClergyActive)))
}

// Priests returns the active priests ordered by name.
func (s *Service) Priests(ctx context.Context) ([]model.Priest, error) {
	items, err := list[model.Priest](ctx, s.client, activeClergy(backend.TablePriests).OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	return keep(items, priestActive), nil
}

// Deacons returns the active deacons ordered by name.
func (s *Service) Deacons(ctx context.Context) ([]model.Deacon, error) {
	items, err := list[model.Deacon](ctx, s.client, activeClergy(backend.TableDeacons).OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	return keep(items, deaconActive), nil
}

// Seminarians returns every seminarian ordered by name.
func (s *Service) Seminarians(ctx context.Context) ([]model.Seminarian, error) {
	return list[model.Seminarian](ctx, s.client, backend.From(backend.TableSeminarians).OrderBy("name", false))
}

// Priest returns the active priest whose slug or id is key.
func (s *Service) Priest(ctx context.Context, key string) (model.Priest, error) {
	return detail(ctx, s.client, activeClergy(backend.TablePriests), key, priestActive)
}

// Deacon returns the active deacon whose slug or id is key.
func (s *Service) Deacon(ctx context.Context, key string) (model.Deacon, error) {
	return detail(ctx, s.client, activeClergy(backend.TableDeacons), key, deaconActive)
}

// Seminarian returns the seminarian whose slug or id is key.
func (s *Service) Seminarian(ctx context.Context, key string) (model.Seminarian, error) {
	return detail[model.Seminarian](ctx, s.client, backend.From(backend.TableSeminarians), key, nil)
}

// Clergy groups the three clergy listings of the clergy page.
type Clergy struct {
	Priests     []model.Priest
	Deacons     []model.Deacon
	Seminarians []model.Seminarian
}

// Clergy loads the three listings concurrently. A failing listing is left
// empty and does not cancel the others; the first failure is returned
// alongside whatever did load.
func (s *Service) Clergy(ctx context.Context) (Clergy, error) {
	var (
		out Clergy
		g   errgroup.Group
	)
	g.Go(func() (err error) {
		out.Priests, err = s.Priests(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Deacons, err = s.Deacons(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Seminarians, err = s.Seminarians(ctx)
		return err
	})
	err := g.Wait()
	return out, err
}
