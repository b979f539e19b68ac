// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers: slug generation and
// conversions between Go pointers and database/sql null types.
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

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// separators collapses whitespace and underscores into one hyphen
	separators      = regexp.MustCompile(`[\s_]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)

	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped, non-Latin scripts are transliterated to ASCII,
// and everything except lowercase letters, digits and single hyphens is dropped.
func Slugify(s string) string {
	result, _, err := transform.String(accentStripper, s)
	if err != nil {
		result = s
	}

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = separators.ReplaceAllString(result, "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
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
