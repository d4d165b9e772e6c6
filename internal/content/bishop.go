// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
)

func publishedMessages() backend.Query {
	return backend.From(backend.TableBishopMessages).Where(backend.Eq("published", true))
}

// LatestBishopMessage returns the newest published message.
func (s *Service) LatestBishopMessage(ctx context.Context) (model.BishopMessage, error) {
	m, err := single[model.BishopMessage](ctx, s.client, publishedMessages().OrderBy("created_at", true))
	if err != nil {
		return m, err
	}
	if !messagePublished(m) {
		return model.BishopMessage{}, backend.ErrNotFound
	}
	return m, nil
}

// ListBishopMessages returns one page of published messages, newest first.
func (s *Service) ListBishopMessages(ctx context.Context, page int) (Page[model.BishopMessage], error) {
	return fetchPage(ctx, s.client, publishedMessages().OrderBy("created_at", true), page, BishopMessagesPageSize, messagePublished)
}

// BishopMessage returns the published message whose slug or id is key.
func (s *Service) BishopMessage(ctx context.Context, key string) (model.BishopMessage, error) {
	return detail(ctx, s.client, publishedMessages(), key, messagePublished)
}

// BishopInfo returns the bishop's biography.
func (s *Service) BishopInfo(ctx context.Context) (model.BishopInfo, error) {
	return single[model.BishopInfo](ctx, s.client, backend.From(backend.TableBishopInfo).OrderBy("updated_at", true))
}
