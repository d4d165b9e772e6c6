// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/cache"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/testutil"
)

var base = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *backend.SQLClient) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	client := backend.NewSQLClient(db, nil)
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mc.Close() })
	return New(client, mc, time.Minute, testutil.TestLoggerSilent(), opts...), client
}

func insert(t *testing.T, c backend.Client, table string, row backend.Row) string {
	t.Helper()
	id, err := c.Insert(context.Background(), table, row)
	require.NoError(t, err)
	return id
}

func insertArticles(t *testing.T, c backend.Client, n int, row func(i int) backend.Row) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		r := backend.Row{
			"title":      fmt.Sprintf("Artigo %02d", i),
			"slug":       fmt.Sprintf("artigo-%02d", i),
			"published":  true,
			"created_at": base.Add(time.Duration(i) * time.Hour),
		}
		if row != nil {
			for k, v := range row(i) {
				r[k] = v
			}
		}
		ids[i] = insert(t, c, backend.TableArticles, r)
	}
	return ids
}

func TestListArticles_Pagination(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	insertArticles(t, c, 20, nil)
	insertArticles(t, c, 1, func(int) backend.Row {
		return backend.Row{"slug": "rascunho", "published": false}
	})

	tests := []struct {
		page      int
		wantItems int
		wantFirst string
	}{
		{1, 9, "artigo-19"},
		{2, 9, "artigo-10"},
		{3, 2, "artigo-01"},
		{4, 0, ""},
		{1000, 0, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			p, err := s.ListArticles(ctx, ArticleFilter{}, tt.page)
			require.NoError(t, err)
			assert.Len(t, p.Items, tt.wantItems)
			assert.Equal(t, 20, p.Total)
			assert.Equal(t, 3, p.TotalPages())
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, p.Items[0].Slug)
			}
		})
	}
}

func TestListArticles_CategoryFilter(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	cat := insert(t, c, backend.TableCategories, backend.Row{"name": "Liturgia", "slug": "liturgia"})
	insertArticles(t, c, 4, func(i int) backend.Row {
		if i%2 == 0 {
			return backend.Row{"category_id": cat}
		}
		return nil
	})

	p, err := s.ListArticles(ctx, ArticleFilter{CategoryID: cat}, 1)
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	for _, a := range p.Items {
		require.NotNil(t, a.Category)
		assert.Equal(t, "liturgia", a.Category.Slug)
	}
}

func TestArticle_SlugOrID(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	insert(t, c, backend.TableArticles, backend.Row{"id": "x1", "title": "Alpha", "slug": "alpha", "published": true})
	insert(t, c, backend.TableArticles, backend.Row{"id": "y2", "title": "Colliding", "slug": "x1", "published": true})
	insert(t, c, backend.TableArticles, backend.Row{"id": "d3", "title": "Draft", "slug": "draft", "published": false})

	tests := []struct {
		key    string
		wantID string
	}{
		{"alpha", "x1"},
		{"x1", "y2"}, // slug beats id
		{"y2", "y2"},
		{" alpha ", "x1"},
	}
	for _, tt := range tests {
		a, err := s.Article(ctx, tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.wantID, a.ID, tt.key)
	}

	for _, key := range []string{"draft", "d3", "missing", ""} {
		_, err := s.Article(ctx, key)
		assert.ErrorIs(t, err, backend.ErrNotFound, key)
	}

	draft, err := s.ArticleByID(ctx, "d3")
	require.NoError(t, err)
	assert.False(t, draft.Published)
}

func TestRelatedArticles(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	cat := insert(t, c, backend.TableCategories, backend.Row{"name": "Pastoral", "slug": "pastoral"})
	other := insert(t, c, backend.TableCategories, backend.Row{"name": "Vocações", "slug": "vocacoes"})

	ids := insertArticles(t, c, 6, func(i int) backend.Row {
		switch i {
		case 4:
			return backend.Row{"category_id": other}
		case 5:
			return backend.Row{"category_id": cat, "published": false}
		default:
			return backend.Row{"category_id": cat}
		}
	})

	current, err := s.Article(ctx, ids[3])
	require.NoError(t, err)

	related, err := s.RelatedArticles(ctx, current)
	require.NoError(t, err)
	require.Len(t, related, 3)
	for _, a := range related {
		assert.NotEqual(t, current.ID, a.ID)
		assert.Equal(t, cat, a.CategoryID)
		assert.True(t, a.Published)
	}

	none, err := s.RelatedArticles(ctx, model.Article{ID: "z"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSliderAndRecent(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	insertArticles(t, c, 8, func(i int) backend.Row {
		return backend.Row{"show_in_slider": i != 7, "published": i != 6}
	})

	slider, err := s.SliderArticles(ctx)
	require.NoError(t, err)
	require.Len(t, slider, 5)
	assert.Equal(t, "artigo-05", slider[0].Slug)

	recent, err := s.RecentArticles(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 6)
	assert.Equal(t, "artigo-07", recent[0].Slug)
}

func TestAdminArticles(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	insertArticles(t, c, 5, func(i int) backend.Row {
		return backend.Row{"published": i < 3}
	})

	for status, want := range map[StatusFilter]int{StatusAll: 5, StatusPublished: 3, StatusDraft: 2} {
		p, err := s.AdminArticles(ctx, status, 1)
		require.NoError(t, err)
		assert.Len(t, p.Items, want, status)
	}
	assert.Equal(t, StatusDraft, ParseStatusFilter(" Draft"))
	assert.Equal(t, StatusAll, ParseStatusFilter("bogus"))
}

func TestSlugTaken(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	id := insert(t, c, backend.TableArticles, backend.Row{"title": "A", "slug": "a"})

	taken, err := s.ArticleSlugTaken(ctx, "a", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.ArticleSlugTaken(ctx, "a", id)
	require.NoError(t, err)
	assert.False(t, taken, "an article does not collide with itself")
}

func TestBishopViews(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	_, err := s.LatestBishopMessage(ctx)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	_, err = s.BishopInfo(ctx)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	for i := 0; i < 8; i++ {
		insert(t, c, backend.TableBishopMessages, backend.Row{
			"title":      fmt.Sprintf("Carta %d", i),
			"slug":       fmt.Sprintf("carta-%d", i),
			"published":  i != 7,
			"created_at": base.AddDate(0, 0, i),
		})
	}
	insert(t, c, backend.TableBishopInfo, backend.Row{"name": "Dom Manuel"})

	latest, err := s.LatestBishopMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carta-6", latest.Slug)

	p, err := s.ListBishopMessages(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, p.Items, 1)
	assert.Equal(t, 7, p.Total)

	_, err = s.BishopMessage(ctx, "carta-7")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	info, err := s.BishopInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dom Manuel", info.Name)
}

func TestClergyAndParishes(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	cathedral := insert(t, c, backend.TableParishes, backend.Row{
		"name": "Catedral São Miguel Arcanjo", "slug": "catedral", "address": "Praça Padre Aleixo, 1",
	})
	insert(t, c, backend.TableParishes, backend.Row{
		"name": "Paróquia Nossa Senhora", "slug": "nossa-senhora", "address": "Rua Itaquera, 20",
	})
	priest := insert(t, c, backend.TablePriests, backend.Row{
		"name": "Pe. João", "slug": "pe-joao", "parish_id": cathedral, "phone": "11 5555-0000", "status": "active",
	})
	insert(t, c, backend.TablePriests, backend.Row{"name": "Pe. Antônio", "slug": "pe-antonio", "status": "retired"})
	insert(t, c, backend.TableDeacons, backend.Row{"name": "Diác. Pedro", "slug": "diac-pedro", "status": "active"})
	insert(t, c, backend.TableSeminarians, backend.Row{"name": "Lucas", "slug": "lucas", "year_of_study": 3})
	require.NoError(t, c.Update(ctx, backend.TableParishes, cathedral, backend.Row{"priest_id": priest}))

	cl, err := s.Clergy(ctx)
	require.NoError(t, err)
	require.Len(t, cl.Priests, 1)
	require.NotNil(t, cl.Priests[0].Parish)
	assert.Equal(t, "catedral", cl.Priests[0].Parish.Slug)
	require.Len(t, cl.Deacons, 1)
	assert.Nil(t, cl.Deacons[0].Parish)
	require.Len(t, cl.Seminarians, 1)
	assert.Equal(t, 3, cl.Seminarians[0].YearOfStudy)

	_, err = s.Priest(ctx, "pe-antonio")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	parish, err := s.Parish(ctx, "catedral")
	require.NoError(t, err)
	require.NotNil(t, parish.Priest)
	assert.Equal(t, "Pe. João", parish.Priest.Name)
	assert.Equal(t, "11 5555-0000", parish.Priest.Phone)

	// The displayed priest follows priest_id at read time.
	require.NoError(t, c.Update(ctx, backend.TableParishes, cathedral, backend.Row{"priest_id": nil}))
	parish, err = s.Parish(ctx, cathedral)
	require.NoError(t, err)
	assert.Nil(t, parish.Priest)

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"catedral", "nossa-senhora"}},
		{"sao miguel", []string{"catedral"}},
		{"ITAQUERA", []string{"nossa-senhora"}},
		{"paróquia", []string{"nossa-senhora"}},
		{"inexistente", nil},
	}
	for _, tt := range tests {
		p, err := s.Parishes(ctx, tt.search, 1)
		require.NoError(t, err)
		var got []string
		for _, it := range p.Items {
			got = append(got, it.Slug)
		}
		assert.Equal(t, tt.want, got, tt.search)
	}
}

func TestActiveAnnouncement(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s, c := newTestService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	a, err := s.ActiveAnnouncement(ctx)
	require.NoError(t, err)
	assert.Nil(t, a)

	insert(t, c, backend.TablePopups, backend.Row{
		"id": "future", "title": "Futuro", "active": true, "start_date": now.Add(time.Hour), "created_at": now,
	})
	insert(t, c, backend.TablePopups, backend.Row{
		"id": "expired", "title": "Expirado", "active": true, "start_date": now.AddDate(0, 0, -10),
		"end_date": now.AddDate(0, 0, -1), "created_at": now,
	})
	insert(t, c, backend.TablePopups, backend.Row{
		"id": "inactive", "title": "Inativo", "active": false, "start_date": now.AddDate(0, 0, -1), "created_at": now,
	})

	a, err = s.ActiveAnnouncement(ctx)
	require.NoError(t, err)
	assert.Nil(t, a, "no announcement is live")

	insert(t, c, backend.TablePopups, backend.Row{
		"id": "old", "title": "Antigo", "active": true, "start_date": now.AddDate(0, 0, -5), "created_at": now.AddDate(0, 0, -5),
	})
	insert(t, c, backend.TablePopups, backend.Row{
		"id": "live", "title": "Aviso", "active": true, "start_date": now.AddDate(0, 0, -1),
		"end_date": now.AddDate(0, 0, 1), "created_at": now.AddDate(0, 0, -1),
	})

	a, err = s.ActiveAnnouncement(ctx)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "live", a.ID)
}

func TestSettings(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSiteSettings().SiteTitle, got.SiteTitle)

	insert(t, c, backend.TableSiteSettings, backend.Row{
		"id": model.SiteSettingsID, "site_title": "Diocese", "social_instagram": "https://instagram.com/diocese",
	})

	got, err = s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSiteSettings().SiteTitle, got.SiteTitle, "served from cache")

	require.NoError(t, s.InvalidateSettings(ctx))
	got, err = s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Diocese", got.SiteTitle)
	assert.True(t, got.Social.Any())
}

func TestSettings_TransportErrorFallsBack(t *testing.T) {
	s, lc := newLeakyService(t, nil)
	lc.failFor[backend.TableSiteSettings] = &backend.TransportError{Op: "select", Err: errors.New("down")}

	got, err := s.Settings(context.Background())
	assert.True(t, backend.IsTransport(err))
	assert.Equal(t, model.DefaultSiteSettings(), got)
}

func TestHomeSections(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	insert(t, c, backend.TableHomeSections, backend.Row{"title": "Clero", "icon": "Users", "order_index": 2, "active": true})
	insert(t, c, backend.TableHomeSections, backend.Row{"title": "Paróquias", "icon": "church", "order_index": 1, "active": true})
	insert(t, c, backend.TableHomeSections, backend.Row{"title": "Foguete", "icon": "Rocket", "order_index": 0, "active": true})
	insert(t, c, backend.TableHomeSections, backend.Row{"title": "Oculto", "icon": "calendar", "order_index": 3, "active": false})

	sections, err := s.HomeSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, model.SectionChurch, sections[0].Kind)
	assert.Equal(t, model.SectionUsers, sections[1].Kind)
}

func TestHome_DegradesPerBlock(t *testing.T) {
	s, lc := newLeakyService(t, articleRows([]bool{true, true}, []bool{true, false}))
	lc.failFor[backend.TableBishopMessages] = &backend.TransportError{Op: "select", Err: errors.New("down")}
	lc.failFor[backend.TableHomeSections] = &backend.TransportError{Op: "select", Err: errors.New("down")}

	h, err := s.Home(context.Background())
	require.Error(t, err)
	assert.True(t, backend.IsTransport(err))
	assert.Len(t, h.Recent, 2)
	assert.Len(t, h.Slider, 1)
	assert.Nil(t, h.Message)
	assert.Empty(t, h.Sections)
}

func TestDashboardAndEvents(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	insertArticles(t, c, 3, nil)
	insert(t, c, backend.TableCategories, backend.Row{"name": "A", "slug": "a"})
	insert(t, c, backend.TableEvents, backend.Row{"level": "warning", "category": "system", "message": "m1", "created_at": base})
	insert(t, c, backend.TableEvents, backend.Row{"level": "error", "category": "system", "message": "m2", "created_at": base.Add(time.Minute)})

	counts, err := s.DashboardCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardCounts{Articles: 3, Categories: 1}, counts)

	events, err := s.RecentEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "m2", events[0].Message)
}

func TestSitemapEntries(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	insertArticles(t, c, 2, func(i int) backend.Row { return backend.Row{"published": i == 0} })
	insert(t, c, backend.TableParishes, backend.Row{"name": "Catedral", "slug": "catedral"})
	insert(t, c, backend.TablePriests, backend.Row{"name": "Pe. João", "slug": "pe-joao", "status": "active"})
	insert(t, c, backend.TablePriests, backend.Row{"name": "Pe. Velho", "slug": "pe-velho", "status": "retired"})

	entries, err := s.SitemapEntries(ctx)
	require.NoError(t, err)
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/noticias/artigo-00", "/paroquias/catedral", "/padres/pe-joao"}, paths)
}
