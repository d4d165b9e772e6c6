// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds meta tags, structured data, the sitemap and
// robots.txt.
package seo

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/olegiv/diocese-go/internal/model"
)

// DescriptionLength is the length meta descriptions are truncated to.
const DescriptionLength = 160

// Keywords is the site-wide keywords meta tag.
const Keywords = "diocese são miguel paulista, igreja católica, paróquias, padres, evangelização, são paulo"

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // Page title (for <title> tag)
	Description   string // Meta description
	Keywords      string // Meta keywords
	Canonical     string // Canonical URL
	OGTitle       string // Open Graph title
	OGDescription string // Open Graph description
	OGImage       string // Open Graph image URL (absolute)
	OGType        string // Open Graph type (website, article, profile)
	OGSiteName    string // Open Graph site name
	OGURL         string // Open Graph URL, also used for share links
	Robots        string // Robots directive (index,follow / noindex,nofollow)
	TwitterCard   string // Twitter card type
}

// PageData describes the page being rendered.
type PageData struct {
	Title       string
	Description string // used verbatim when set
	Body        string // HTML or text; truncated when Description is empty
	Path        string // path below the site URL, e.g. "/noticias/festa"
	Image       string
	Type        string // Open Graph type, defaults to "article"
	NoIndex     bool
	PublishedAt time.Time
	ModifiedAt  time.Time
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName        string
	SiteURL         string
	SiteDescription string
	DefaultOGImage  string
}

// SiteConfigFrom builds the SEO configuration from the stored settings.
func SiteConfigFrom(s model.SiteSettings, siteURL string) *SiteConfig {
	return &SiteConfig{
		SiteName:        s.SiteTitle,
		SiteURL:         strings.TrimSuffix(siteURL, "/"),
		SiteDescription: s.SiteDescription,
		DefaultOGImage:  s.LogoURL,
	}
}

// BuildMeta creates a Meta struct from page and site data with proper
// fallbacks. A nil page yields the home page tags.
func BuildMeta(page *PageData, site *SiteConfig) *Meta {
	meta := &Meta{
		OGType:      "website",
		TwitterCard: "summary_large_image",
		OGSiteName:  site.SiteName,
		Keywords:    Keywords,
	}

	if page == nil {
		meta.Title = site.SiteName
		meta.OGTitle = site.SiteName
		meta.Description = site.SiteDescription
		meta.OGDescription = site.SiteDescription
		meta.Canonical = site.SiteURL + "/"
		meta.OGURL = meta.Canonical
		meta.Robots = "index,follow"
		meta.OGImage = MakeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
		return meta
	}

	meta.OGType = "article"
	if page.Type != "" {
		meta.OGType = page.Type
	}

	meta.OGTitle = page.Title
	meta.Title = site.SiteName
	if page.Title != "" {
		meta.Title = page.Title + " | " + site.SiteName
	}

	switch {
	case page.Description != "":
		meta.Description = Truncate(StripHTML(page.Description), DescriptionLength)
	case page.Body != "":
		meta.Description = Truncate(StripHTML(page.Body), DescriptionLength)
	default:
		meta.Description = site.SiteDescription
	}
	meta.OGDescription = meta.Description

	if page.Image != "" {
		meta.OGImage = MakeAbsoluteURL(page.Image, site.SiteURL)
	} else {
		meta.OGImage = MakeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}

	if page.Path != "" {
		meta.Canonical = MakeAbsoluteURL(page.Path, site.SiteURL)
	}
	meta.OGURL = meta.Canonical
	meta.Robots = buildRobotsDirective(page.NoIndex, page.NoIndex)

	return meta
}

// buildRobotsDirective creates the robots meta content from noindex/nofollow flags.
func buildRobotsDirective(noIndex, noFollow bool) string {
	var parts []string

	if noIndex {
		parts = append(parts, "noindex")
	} else {
		parts = append(parts, "index")
	}

	if noFollow {
		parts = append(parts, "nofollow")
	} else {
		parts = append(parts, "follow")
	}

	return strings.Join(parts, ",")
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	DatePublished    string     `json:"datePublished,omitempty"`
	DateModified     string     `json:"dateModified,omitempty"`
	Publisher        *OrgSchema `json:"publisher,omitempty"`
	MainEntityOfPage string     `json:"mainEntityOfPage,omitempty"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	URL  string       `json:"url,omitempty"`
	Logo *ImageSchema `json:"logo,omitempty"`
}

// ImageSchema represents JSON-LD ImageObject structured data.
type ImageSchema struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

// BuildArticleSchema creates JSON-LD NewsArticle structured data.
func BuildArticleSchema(page *PageData, site *SiteConfig) template.JS {
	if page == nil {
		return ""
	}

	article := ArticleSchema{
		Context:          "https://schema.org",
		Type:             "NewsArticle",
		Headline:         page.Title,
		Description:      Truncate(StripHTML(page.Description), DescriptionLength),
		Image:            MakeAbsoluteURL(page.Image, site.SiteURL),
		MainEntityOfPage: MakeAbsoluteURL(page.Path, site.SiteURL),
		Publisher:        organization(site),
	}
	if !page.PublishedAt.IsZero() {
		article.DatePublished = page.PublishedAt.Format(time.RFC3339)
	}
	if !page.ModifiedAt.IsZero() {
		article.DateModified = page.ModifiedAt.Format(time.RFC3339)
	}

	return marshalJSONLD(article)
}

// BuildOrganizationSchema creates JSON-LD for the diocese itself, used on
// the home page.
func BuildOrganizationSchema(site *SiteConfig) template.JS {
	org := organization(site)
	org.URL = site.SiteURL + "/"
	return marshalJSONLD(struct {
		Context string `json:"@context"`
		*OrgSchema
	}{"https://schema.org", org})
}

func organization(site *SiteConfig) *OrgSchema {
	org := &OrgSchema{Type: "Organization", Name: site.SiteName}
	if site.DefaultOGImage != "" {
		org.Logo = &ImageSchema{Type: "ImageObject", URL: MakeAbsoluteURL(site.DefaultOGImage, site.SiteURL)}
	}
	return org
}

// marshalJSONLD marshals structured data to JSON-LD script tag content.
func marshalJSONLD(v any) template.JS {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return template.JS(data)
}

// StripHTML removes HTML tags and collapses whitespace.
func StripHTML(html string) string {
	var result strings.Builder
	inTag := false
	for _, r := range html {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			result.WriteRune(' ') // Replace tags with space
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

// Truncate shortens text to at most maxLen characters, cutting at the last
// word boundary and appending "...".
func Truncate(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := runes[:maxLen]
	// Drop a partially cut trailing word.
	if !unicode.IsSpace(runes[maxLen]) {
		if i := lastSpace(cut); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimSpace(string(cut)) + "..."
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return -1
}

// MakeAbsoluteURL ensures a URL is absolute by prepending the site URL if
// needed.
func MakeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
