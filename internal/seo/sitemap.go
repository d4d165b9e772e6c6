// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/olegiv/diocese-go/internal/content"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequency values used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// StaticPage is a listing or informational page without its own record.
type StaticPage struct {
	Path       string
	ChangeFreq ChangeFreq
	Priority   string
}

// StaticPages are the public pages that always exist.
var StaticPages = []StaticPage{
	{"/", ChangeFreqDaily, "1.0"},
	{"/noticias", ChangeFreqDaily, "0.9"},
	{"/mensagens-bispo", ChangeFreqWeekly, "0.8"},
	{"/paroquias", ChangeFreqMonthly, "0.8"},
	{"/clero", ChangeFreqMonthly, "0.7"},
	{"/bispo", ChangeFreqMonthly, "0.7"},
	{"/sobre", ChangeFreqMonthly, "0.6"},
	{"/contato", ChangeFreqMonthly, "0.5"},
}

// SitemapBuilder builds sitemap XML from the site's pages.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddStatic adds a page without a modification date.
func (b *SitemapBuilder) AddStatic(p StaticPage) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + p.Path,
		ChangeFreq: p.ChangeFreq,
		Priority:   p.Priority,
	})
}

// AddEntry adds a detail page.
func (b *SitemapBuilder) AddEntry(e content.SitemapEntry) {
	url := SitemapURL{
		Loc:        b.siteURL + e.Path,
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.6",
	}
	if !e.UpdatedAt.IsZero() {
		url.LastMod = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap builds the sitemap of the static pages and entries.
func GenerateSitemap(siteURL string, entries []content.SitemapEntry) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	for _, p := range StaticPages {
		builder.AddStatic(p)
	}
	for _, e := range entries {
		builder.AddEntry(e)
	}
	return builder.Build()
}
