// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/olegiv/diocese-go/internal/model"
)

func testSite() *SiteConfig {
	return &SiteConfig{
		SiteName:        "Diocese",
		SiteURL:         "https://diocese.example",
		SiteDescription: "Portal oficial",
		DefaultOGImage:  "/uploads/logos/logo.png",
	}
}

func TestBuildMetaHomepage(t *testing.T) {
	meta := BuildMeta(nil, testSite())

	if meta.Title != "Diocese" {
		t.Errorf("Title = %q, want %q", meta.Title, "Diocese")
	}
	if meta.Description != "Portal oficial" {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.OGType != "website" {
		t.Errorf("OGType = %q, want website", meta.OGType)
	}
	if meta.Canonical != "https://diocese.example/" {
		t.Errorf("Canonical = %q", meta.Canonical)
	}
	if meta.OGImage != "https://diocese.example/uploads/logos/logo.png" {
		t.Errorf("OGImage = %q", meta.OGImage)
	}
	if meta.Robots != "index,follow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
	if meta.Keywords != Keywords {
		t.Errorf("Keywords = %q", meta.Keywords)
	}
}

func TestBuildMetaArticle(t *testing.T) {
	body := "<p>" + strings.Repeat("palavra ", 40) + "</p>"
	meta := BuildMeta(&PageData{
		Title: "Festa",
		Body:  body,
		Path:  "/noticias/festa",
		Image: "https://cdn.example/festa.jpg",
	}, testSite())

	if meta.Title != "Festa | Diocese" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.OGTitle != "Festa" {
		t.Errorf("OGTitle = %q", meta.OGTitle)
	}
	if meta.OGType != "article" {
		t.Errorf("OGType = %q", meta.OGType)
	}
	if strings.Contains(meta.Description, "<p>") {
		t.Errorf("Description contains HTML: %q", meta.Description)
	}
	if n := utf8.RuneCountInString(meta.Description); n > DescriptionLength+3 {
		t.Errorf("Description length = %d", n)
	}
	if meta.OGURL != "https://diocese.example/noticias/festa" {
		t.Errorf("OGURL = %q", meta.OGURL)
	}
	if meta.OGImage != "https://cdn.example/festa.jpg" {
		t.Errorf("OGImage = %q", meta.OGImage)
	}
}

func TestBuildMetaFallbacks(t *testing.T) {
	meta := BuildMeta(&PageData{Type: "profile", NoIndex: true}, testSite())

	if meta.Title != "Diocese" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Description != "Portal oficial" {
		t.Errorf("Description = %q", meta.Description)
	}
	if meta.OGType != "profile" {
		t.Errorf("OGType = %q", meta.OGType)
	}
	if meta.OGImage != "https://diocese.example/uploads/logos/logo.png" {
		t.Errorf("OGImage = %q", meta.OGImage)
	}
	if meta.Robots != "noindex,nofollow" {
		t.Errorf("Robots = %q", meta.Robots)
	}
}

func TestSiteConfigFrom(t *testing.T) {
	s := model.DefaultSiteSettings()
	s.LogoURL = "/uploads/logos/x.png"
	cfg := SiteConfigFrom(s, "https://diocese.example/")

	if cfg.SiteURL != "https://diocese.example" {
		t.Errorf("SiteURL = %q", cfg.SiteURL)
	}
	if cfg.SiteName != s.SiteTitle || cfg.DefaultOGImage != s.LogoURL {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestBuildArticleSchema(t *testing.T) {
	published := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	js := BuildArticleSchema(&PageData{
		Title:       "Festa",
		Description: "Resumo",
		Path:        "/noticias/festa",
		PublishedAt: published,
	}, testSite())

	var got map[string]any
	if err := json.Unmarshal([]byte(js), &got); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if got["@type"] != "NewsArticle" || got["headline"] != "Festa" {
		t.Errorf("schema = %v", got)
	}
	if got["datePublished"] != "2025-03-01T10:00:00Z" {
		t.Errorf("datePublished = %v", got["datePublished"])
	}
	if _, ok := got["dateModified"]; ok {
		t.Error("zero ModifiedAt must be omitted")
	}
	if got["mainEntityOfPage"] != "https://diocese.example/noticias/festa" {
		t.Errorf("mainEntityOfPage = %v", got["mainEntityOfPage"])
	}

	if BuildArticleSchema(nil, testSite()) != "" {
		t.Error("nil page must produce no schema")
	}
}

func TestBuildOrganizationSchema(t *testing.T) {
	var got map[string]any
	if err := json.Unmarshal([]byte(BuildOrganizationSchema(testSite())), &got); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if got["@context"] != "https://schema.org" || got["@type"] != "Organization" {
		t.Errorf("schema = %v", got)
	}
	if got["url"] != "https://diocese.example/" {
		t.Errorf("url = %v", got["url"])
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Olá <b>mundo</b></p>", "Olá mundo"},
		{"sem tags", "sem tags"},
		{"<br/>a\n\n  b", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short", "curto", 10, "curto"},
		{"exact", "abcde", 5, "abcde"},
		{"word boundary", "a vida da igreja", 12, "a vida da..."},
		{"cut at space", "a vida da igreja", 9, "a vida da..."},
		{"single word", "extraordinariamente", 5, "extra..."},
		{"accents count as one", "ação ação", 4, "ação..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestMakeAbsoluteURL(t *testing.T) {
	tests := []struct {
		url, site, want string
	}{
		{"", "https://d.example", ""},
		{"https://cdn.example/a.jpg", "https://d.example", "https://cdn.example/a.jpg"},
		{"/uploads/a.jpg", "https://d.example/", "https://d.example/uploads/a.jpg"},
		{"uploads/a.jpg", "https://d.example", "https://d.example/uploads/a.jpg"},
	}
	for _, tt := range tests {
		if got := MakeAbsoluteURL(tt.url, tt.site); got != tt.want {
			t.Errorf("MakeAbsoluteURL(%q, %q) = %q, want %q", tt.url, tt.site, got, tt.want)
		}
	}
}
