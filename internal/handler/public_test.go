// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/popup"
	"github.com/olegiv/diocese-go/internal/slider"
)

func publicRouter(f *fixture, h *PublicHandler) http.Handler {
	return f.router(anonymous, func(r chi.Router) {
		r.Get("/", h.Home)
		r.Get("/sobre", h.About)
		r.Get("/contato", h.Contact)
		r.Get("/noticias", h.NewsList)
		r.Get("/noticias/{slug}", h.NewsDetail)
		r.Get("/mensagens-bispo", h.BishopMessages)
		r.Get("/mensagens-bispo/{slug}", h.BishopMessage)
		r.Get("/bispo", h.Bishop)
		r.Get("/clero", h.Clergy)
		r.Get("/padres", ClergyTab(TabPriests))
		r.Get("/padres/{slug}", h.Priest)
		r.Get("/diaconos", ClergyTab(TabDeacons))
		r.Get("/paroquias", h.Parishes)
		r.Get("/paroquias/{slug}", h.Parish)
		r.Post("/popup/{id}/dismiss", h.DismissPopup)
		r.Get("/sitemap.xml", f.base.Sitemap)
		r.Get("/robots.txt", f.base.Robots(false))
		r.NotFound(f.base.NotFound)
	})
}

func TestHome(t *testing.T) {
	f := newFixture(t)
	f.insert(t, backend.TableArticles, backend.Row{
		"title": "Festa do Padroeiro", "slug": "festa-do-padroeiro", "published": true,
		"show_in_slider": true, "featured_image": "/uploads/images/festa.jpg",
	})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Rascunho secreto", "slug": "rascunho", "published": false})
	f.insert(t, backend.TableBishopMessages, backend.Row{
		"title": "Mensagem de Páscoa", "slug": "mensagem-de-pascoa", "content": "<p>Cristo ressuscitou!</p>", "published": true,
	})

	h := publicRouter(f, NewPublicHandler(f.base))
	w := get(t, h, "/")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Festa do Padroeiro")
	assert.Contains(t, body, `class="slider"`)
	assert.Contains(t, body, "Mensagem de Páscoa")
	assert.NotContains(t, body, "Rascunho secreto")
	assert.Contains(t, body, `application/ld+json`, "home carries the organization schema")
}

func TestHome_CarouselSlides(t *testing.T) {
	f := newFixture(t)
	carousel := slider.New([]model.Article{
		{Title: "Primeiro destaque", Slug: "primeiro"},
		{Title: "Segundo destaque", Slug: "segundo"},
	}, slider.WithInterval(7*time.Second))
	carousel.Next()

	h := publicRouter(f, NewPublicHandler(f.base, WithCarousel(carousel)))
	body := get(t, h, "/").Body.String()

	assert.Contains(t, body, "Segundo destaque")
	assert.Contains(t, body, `data-interval="7000"`)
	assert.Contains(t, body, `data-start="1"`)
}

func TestHome_Popup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newHome := func(t *testing.T) (*fixture, http.Handler) {
		f := newFixture(t)
		f.insert(t, backend.TablePopups, backend.Row{
			"id": "p1", "title": "Retiro diocesano", "content": "<p>Inscrições abertas</p>",
			"active": true, "start_date": now.Add(-24 * time.Hour),
		})
		h := NewPublicHandler(f.base, WithPublicClock(func() time.Time { return now }), WithPopupDelay(2*time.Second))
		return f, publicRouter(f, h)
	}

	t.Run("shown when not seen", func(t *testing.T) {
		_, h := newHome(t)
		body := get(t, h, "/").Body.String()
		assert.Contains(t, body, "Retiro diocesano")
		assert.Contains(t, body, `data-delay="2000"`)
		assert.Contains(t, body, "/popup/p1/dismiss")
	})

	t.Run("hidden once dismissed", func(t *testing.T) {
		_, h := newHome(t)
		body := get(t, h, "/", &http.Cookie{Name: popup.CookieName("p1"), Value: "true"}).Body.String()
		assert.NotContains(t, body, "Retiro diocesano")
	})
}

func TestDismissPopup(t *testing.T) {
	f := newFixture(t)
	h := publicRouter(f, NewPublicHandler(f.base))

	t.Run("script request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/popup/p1/dismiss", nil)
		req.Header.Set("X-Requested-With", "fetch")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		var found bool
		for _, c := range w.Result().Cookies() {
			if c.Name == popup.CookieName("p1") {
				found = true
			}
		}
		assert.True(t, found, "dismissal should set the seen cookie")
	})

	t.Run("form post", func(t *testing.T) {
		w := postForm(t, h, "/popup/p1/dismiss", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestAboutFallsBackToDefaultText(t *testing.T) {
	f := newFixture(t)
	h := publicRouter(f, NewPublicHandler(f.base))

	w := get(t, h, "/sobre")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "História da Diocese")
}

func TestAboutRendersMarkdown(t *testing.T) {
	f := newFixture(t)
	f.insert(t, backend.TableSiteSettings, backend.Row{
		"id": model.SiteSettingsID, "site_title": "Diocese Teste", "about_diocese": "## Nossa história\n\nFundada em **1981**.",
	})
	h := publicRouter(f, NewPublicHandler(f.base))

	body := get(t, h, "/sobre").Body.String()
	assert.Contains(t, body, "<h2")
	assert.Contains(t, body, "<strong>1981</strong>")
	assert.NotContains(t, body, "História da Diocese")
}

func TestContact(t *testing.T) {
	f := newFixture(t)
	f.insert(t, backend.TableSiteSettings, backend.Row{
		"id": model.SiteSettingsID, "site_title": "Diocese Teste",
		"contact_phone": "(11) 2032-0000", "contact_email": "cúria@diocese.example",
	})
	h := publicRouter(f, NewPublicHandler(f.base))

	body := get(t, h, "/contato").Body.String()
	assert.Contains(t, body, "tel:1120320000")
	assert.Contains(t, body, "Segunda a Sexta: 8h às 17h")
}

func TestNewsList(t *testing.T) {
	f := newFixture(t)
	cat := f.insert(t, backend.TableCategories, backend.Row{"name": "Liturgia", "slug": "liturgia"})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Missa dos Santos Óleos", "slug": "santos-oleos", "published": true, "category_id": cat})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Encontro de Jovens", "slug": "jovens", "published": true})
	h := publicRouter(f, NewPublicHandler(f.base))

	tests := []struct {
		name       string
		target     string
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name:       "all articles",
			target:     "/noticias",
			wantStatus: http.StatusOK,
			want:       []string{"Missa dos Santos Óleos", "Encontro de Jovens", "?categoria=liturgia"},
		},
		{
			name:       "by category slug",
			target:     "/noticias?categoria=liturgia",
			wantStatus: http.StatusOK,
			want:       []string{"Missa dos Santos Óleos"},
			notWant:    []string{"Encontro de Jovens"},
		},
		{
			name:       "unknown category",
			target:     "/noticias?categoria=nada",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "page past the end",
			target:     "/noticias?page=99",
			wantStatus: http.StatusOK,
			want:       []string{"Nenhuma notícia encontrada."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			require.Equal(t, tt.wantStatus, w.Code)
			for _, s := range tt.want {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, w.Body.String(), s)
			}
		})
	}
}

func TestNewsDetail(t *testing.T) {
	f := newFixture(t)
	cat := f.insert(t, backend.TableCategories, backend.Row{"name": "Pastoral", "slug": "pastoral"})
	f.insert(t, backend.TableArticles, backend.Row{
		"id": "a1", "title": "Campanha da Fraternidade", "slug": "campanha", "published": true, "category_id": cat,
		"content": `<p>Texto</p><script>alert(1)</script>`, "tags": []string{"quaresma", "caridade"},
	})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Pastoral da Criança", "slug": "crianca", "published": true, "category_id": cat})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Em revisão", "slug": "revisao", "published": false})
	h := publicRouter(f, NewPublicHandler(f.base))

	t.Run("published by slug", func(t *testing.T) {
		w := get(t, h, "/noticias/campanha")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Campanha da Fraternidade")
		assert.NotContains(t, body, "<script>alert(1)</script>", "content is sanitized")
		assert.Contains(t, body, "quaresma")
		assert.Contains(t, body, "Pastoral da Criança", "related articles share the category")
		assert.Contains(t, body, testSiteURL+"/noticias/campanha")
	})

	t.Run("published by id", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, h, "/noticias/a1").Code)
	})

	t.Run("draft", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/noticias/revisao").Code)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/noticias/nada").Code)
	})
}

func TestBishopPages(t *testing.T) {
	f := newFixture(t)
	h := publicRouter(f, NewPublicHandler(f.base))

	t.Run("no info yet", func(t *testing.T) {
		w := get(t, h, "/bispo")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "serão adicionadas em breve")
	})

	t.Run("no messages yet", func(t *testing.T) {
		assert.Contains(t, get(t, h, "/mensagens-bispo").Body.String(), "Nenhuma mensagem publicada ainda.")
	})

	f.insert(t, backend.TableBishopInfo, backend.Row{"name": "Dom Algélico", "bio": "<p>Nascido em Minas.</p>"})
	f.insert(t, backend.TableBishopMessages, backend.Row{"title": "Advento", "slug": "advento", "content": "<p>Vigiai.</p>", "published": true})

	t.Run("info", func(t *testing.T) {
		assert.Contains(t, get(t, h, "/bispo").Body.String(), "Dom Algélico")
	})

	t.Run("message", func(t *testing.T) {
		w := get(t, h, "/mensagens-bispo/advento")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Vigiai.")
	})
}

func TestClergy(t *testing.T) {
	f := newFixture(t)
	parish := f.insert(t, backend.TableParishes, backend.Row{"name": "Paróquia São Miguel", "slug": "sao-miguel"})
	f.insert(t, backend.TablePriests, backend.Row{
		"name": "Pe. João", "slug": "pe-joao", "status": "active", "parish_id": parish, "phone": "11 99999-0000",
	})
	f.insert(t, backend.TablePriests, backend.Row{"name": "Pe. Antigo", "slug": "pe-antigo", "status": "retired"})
	h := publicRouter(f, NewPublicHandler(f.base))

	tests := []struct {
		name    string
		target  string
		want    []string
		notWant []string
	}{
		{"priests by default", "/clero", []string{"Pe. João", "Paróquia São Miguel"}, []string{"Pe. Antigo"}},
		{"unknown tab shows priests", "/clero?tab=bispos", []string{"Pe. João"}, nil},
		{"empty deacons", "/clero?tab=diaconos", []string{"Nenhum diácono cadastrado."}, []string{"Pe. João"}},
		{"empty seminarians", "/clero?tab=seminaristas", []string{"Nenhum seminarista cadastrado."}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, w.Code)
			for _, s := range tt.want {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, w.Body.String(), s)
			}
		})
	}

	t.Run("member page", func(t *testing.T) {
		w := get(t, h, "/padres/pe-joao")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/paroquias/sao-miguel")
	})

	t.Run("missing member", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/padres/ninguem").Code)
	})
}

func TestClergyTab(t *testing.T) {
	f := newFixture(t)
	h := publicRouter(f, NewPublicHandler(f.base))

	tests := []struct {
		target string
		want   string
	}{
		{"/padres", "/clero?tab=padres"},
		{"/diaconos", "/clero?tab=diaconos"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, h, tt.target)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestParishes(t *testing.T) {
	f := newFixture(t)
	priest := f.insert(t, backend.TablePriests, backend.Row{"name": "Pe. Carlos", "slug": "pe-carlos", "status": "active"})
	f.insert(t, backend.TableParishes, backend.Row{
		"name": "Paróquia Santa Cruz", "slug": "santa-cruz", "address": "Rua das Flores, 10",
		"priest_id": priest, "mass_schedule": "Domingo: 8h\nDomingo: 19h",
	})
	f.insert(t, backend.TableParishes, backend.Row{"name": "Paróquia Nossa Senhora", "slug": "nossa-senhora", "address": "Av. Central, 200"})
	h := publicRouter(f, NewPublicHandler(f.base))

	t.Run("search by name", func(t *testing.T) {
		body := get(t, h, "/paroquias?q=cruz").Body.String()
		assert.Contains(t, body, "Paróquia Santa Cruz")
		assert.NotContains(t, body, "Paróquia Nossa Senhora")
	})

	t.Run("search without match", func(t *testing.T) {
		assert.Contains(t, get(t, h, "/paroquias?q=inexistente").Body.String(), "Nenhuma paróquia encontrada.")
	})

	t.Run("detail", func(t *testing.T) {
		w := get(t, h, "/paroquias/santa-cruz")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Domingo: 8h<br>")
		assert.Contains(t, body, "/padres/pe-carlos")
	})
}

func TestSitemapAndRobots(t *testing.T) {
	f := newFixture(t)
	f.insert(t, backend.TableArticles, backend.Row{"title": "Publicado", "slug": "publicado", "published": true})
	f.insert(t, backend.TableArticles, backend.Row{"title": "Rascunho", "slug": "rascunho", "published": false})
	h := publicRouter(f, NewPublicHandler(f.base))

	w := get(t, h, "/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/xml"))
	assert.Contains(t, w.Body.String(), testSiteURL+"/noticias/publicado")
	assert.NotContains(t, w.Body.String(), "/noticias/rascunho")

	robots := get(t, h, "/robots.txt")
	require.Equal(t, http.StatusOK, robots.Code)
	assert.Contains(t, robots.Body.String(), "Sitemap: "+testSiteURL+"/sitemap.xml")
}
