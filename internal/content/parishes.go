// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"strings"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/util"
)

var (
	priestSummaryJoin = backend.Join{
		Table:    backend.TablePriests,
		LocalKey: "priest_id",
		As:       "priest",
		Columns:  []string{"name", "slug"},
	}
	priestContactJoin = backend.Join{
		Table:    backend.TablePriests,
		LocalKey: "priest_id",
		As:       "priest",
		Columns:  []string{"name", "slug", "photo", "phone", "email"},
	}
)

// Parishes returns one page of parishes ordered by name. A non-empty search
// keeps parishes whose name or address contains it, ignoring case and
// accents. Parishes are few, so the whole list is filtered and sliced here.
func (s *Service) Parishes(ctx context.Context, search string, page int) (Page[model.Parish], error) {
	items, err := list[model.Parish](ctx, s.client, backend.From(backend.TableParishes).
		Join(priestSummaryJoin).
		OrderBy("name", false))
	if err != nil {
		return Paginate[model.Parish](nil, page, ParishesPageSize), err
	}
	if search = strings.TrimSpace(search); search != "" {
		items = keep(items, func(p model.Parish) bool {
			return util.ContainsFold(p.Name, search) || util.ContainsFold(p.Address, search)
		})
	}
	return Paginate(items, page, ParishesPageSize), nil
}

// Parish returns the parish whose slug or id is key, with its priest's
// contact details as of this read.
func (s *Service) Parish(ctx context.Context, key string) (model.Parish, error) {
	return detail[model.Parish](ctx, s.client, backend.From(backend.TableParishes).Join(priestContactJoin), key, nil)
}
