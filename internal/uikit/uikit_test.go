// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"bytes"
	"html/template"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"local noon", time.Date(2026, 3, 19, 12, 0, 0, 0, Location), "19 de março de 2026"},
		{"utc shifted back a day", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC), "31 de dezembro de 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.t))
		})
	}
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "", FormatDateTime(time.Time{}))
	assert.Equal(t, "8 de dezembro de 2026, 09:05",
		FormatDateTime(time.Date(2026, 12, 8, 9, 5, 0, 0, Location)))
}

func TestTemplateFuncs(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(TemplateFuncs()).Parse(
		`{{upper "sé"}}|{{add 1 2}}|{{sub 5 3}}|{{range seq 1 3}}{{.}}{{end}}|{{with dict "a" 1}}{{.a}}{{end}}|{{join .Tags ", "}}`))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]any{"Tags": []string{"missa", "clero"}}))
	assert.Equal(t, "SÉ|3|2|123|1|missa, clero", buf.String())
}

func TestDict_OddArguments(t *testing.T) {
	dict := TemplateFuncs()["dict"].(func(...any) map[string]any)
	assert.Nil(t, dict("a"))
	assert.Equal(t, map[string]any{"b": 2}, dict(1, "x", "b", 2))
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 9, 11},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateTotalPages(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

// pageNumbers renders pages as numbers with 0 for an ellipsis.
func pageNumbers(pages []PaginationPage) []int {
	var n []int
	for _, p := range pages {
		n = append(n, p.Number)
	}
	return n
}

func TestBuildPagination_Pages(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"single page", 1, 9, []int{1}},
		{"few pages", 2, 27, []int{1, 2, 3}},
		{"start of many", 1, 90, []int{1, 2, 3, 4, 5, 0, 10}},
		{"middle", 5, 90, []int{1, 0, 3, 4, 5, 6, 7, 0, 10}},
		{"near start has no gap", 4, 90, []int{1, 2, 3, 4, 5, 6, 0, 10}},
		{"end", 10, 90, []int{1, 0, 6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPagination(tt.current, tt.total, 9, "/noticias", nil)
			assert.Equal(t, tt.want, pageNumbers(p.Pages))
			for _, page := range p.Pages {
				assert.Equal(t, page.Number == tt.current, page.IsCurrent)
				assert.Equal(t, page.Number == 0, page.IsEllipsis)
			}
		})
	}
}

func TestBuildPagination_URLs(t *testing.T) {
	q := url.Values{"categoria": {"liturgia"}, "page": {"2"}, "q": {""}}
	p := BuildPagination(2, 30, 9, "/noticias", q)

	assert.True(t, p.ShouldShow())
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, "categoria=liturgia", p.QueryString)
	assert.Equal(t, "/noticias?categoria=liturgia&page=1", p.PrevURL())
	assert.Equal(t, "/noticias?categoria=liturgia&page=3", p.NextURL())

	plain := BuildPagination(1, 5, 9, "/paroquias", url.Values{})
	assert.False(t, plain.ShouldShow())
	assert.False(t, plain.HasPrev)
	assert.False(t, plain.HasNext)
	assert.Equal(t, "/paroquias?page=1", plain.PageURL(1))
}
