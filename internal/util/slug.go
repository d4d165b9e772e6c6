// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers: URL slug generation,
// accent-insensitive text folding and safe upload paths.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonSlugRun matches any run of characters that may not appear in a slug.
var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks decomposes accented characters and drops the combining marks.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped, remaining non-ASCII letters are transliterated,
// and every run of non-alphanumeric characters becomes a single hyphen.
// The result never starts or ends with a hyphen, and Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	result := stripMarks(s)
	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = nonSlugRun.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Fold lowercases s and strips accents so "São" and "sao" compare equal.
func Fold(s string) string {
	return strings.ToLower(stripMarks(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case and accents.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
