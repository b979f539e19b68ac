// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuInputNormalize(t *testing.T) {
	in := MenuInput{
		Name:        "  <b>Main</b> Menu ",
		Description: "Top &amp; bottom",
		HTMLClass:   " nav primary ",
	}
	in.Normalize()

	assert.Equal(t, "Main Menu", in.Name)
	assert.Equal(t, "main-menu", in.Slug)
	assert.Equal(t, "Top & bottom", in.Description)
	assert.Equal(t, "nav primary", in.HTMLClass)
}

func TestMenuInputKeepsExplicitSlug(t *testing.T) {
	in := MenuInput{Name: "Main", Slug: " primary "}
	in.Normalize()
	assert.Equal(t, "primary", in.Slug)
}

func TestValidateMenuInput(t *testing.T) {
	tests := []struct {
		name   string
		input  MenuInput
		fields []string
	}{
		{"valid", MenuInput{Name: "Main", Slug: "main", HTMLClass: "nav main", HTMLID: "main-nav"}, nil},
		{"missing name", MenuInput{Slug: "main"}, []string{"name"}},
		{"bad slug", MenuInput{Name: "Main", Slug: "Main Menu"}, []string{"slug"}},
		{"bad class", MenuInput{Name: "Main", HTMLClass: "nav<script>"}, []string{"html_class"}},
		{"id with space", MenuInput{Name: "Main", HTMLID: "main nav"}, []string{"html_id"}},
		{"too long", MenuInput{Name: strings.Repeat("x", 256)}, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "error %v is not ValidationErrors", err)
			for _, f := range tt.fields {
				assert.Contains(t, verrs, f)
			}
			assert.Len(t, verrs, len(tt.fields))
		})
	}
}

func TestValidateMenuItemInput(t *testing.T) {
	zero := 0
	negative := -1
	badParent := int64(0)

	assert.NoError(t, Validate(MenuItemInput{Name: "Home", URL: "/", SortOrder: &zero}))
	assert.NoError(t, Validate(MenuItemInput{Name: "Top", URL: "/top", SortOrder: &negative}))

	err := Validate(MenuItemInput{Name: "", URL: "", ParentID: &badParent})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "is required", verrs["name"])
	assert.Equal(t, "is required", verrs["url"])
	assert.Contains(t, verrs, "parent_id")
	assert.NotContains(t, verrs, "sort_order")
}

func TestValidationErrorsMessageIsSorted(t *testing.T) {
	err := ValidationErrors{"url": "is required", "name": "is required"}
	assert.Equal(t, "name is required; url is required", err.Error())
}

func TestCleanTextNormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent.
	in := MenuItemInput{Name: "Cafe\u0301"}
	in.Normalize()
	assert.Equal(t, "Caf\u00e9", in.Name)
}
