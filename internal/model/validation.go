// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/zen-cms/internal/util"
)

var (
	htmlClassPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_\s]*$`)
	htmlIDPattern    = regexp.MustCompile(`^[a-zA-Z0-9\-_]*$`)

	stripPolicy = bluemonday.StrictPolicy()

	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidationErrors maps a JSON field name to a human-readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " " + v[f]
	}
	return strings.Join(parts, "; ")
}

// MenuInput is the writable part of a menu.
type MenuInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"omitempty,max=255,slug"`
	Description string `json:"description" validate:"max=2000"`
	HTMLClass   string `json:"html_class" validate:"max=255,htmlclass"`
	HTMLID      string `json:"html_id" validate:"max=255,htmlid"`
}

// Normalize trims fields, strips markup from display text and fills in
// the slug from the name when it is empty.
func (in *MenuInput) Normalize() {
	in.Name = cleanText(in.Name)
	in.Description = cleanText(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	in.HTMLClass = strings.TrimSpace(in.HTMLClass)
	in.HTMLID = strings.TrimSpace(in.HTMLID)
}

// MenuItemInput is the writable part of a menu item.
// A nil SortOrder means "append after the existing siblings".
type MenuItemInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	URL       string `json:"url" validate:"required,max=255"`
	HTMLClass string `json:"html_class" validate:"max=255,htmlclass"`
	HTMLID    string `json:"html_id" validate:"max=255,htmlid"`
	ParentID  *int64 `json:"parent_id" validate:"omitempty,min=1"`
	SortOrder *int   `json:"sort_order"`
}

// Normalize trims fields and strips markup from the display name.
func (in *MenuItemInput) Normalize() {
	in.Name = cleanText(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	in.HTMLClass = strings.TrimSpace(in.HTMLClass)
	in.HTMLID = strings.TrimSpace(in.HTMLID)
}

// Validate checks s against its validate tags and returns ValidationErrors
// keyed by JSON field name.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "htmlclass":
		return "may only contain letters, digits, dashes, underscores and spaces"
	case "htmlid":
		return "may only contain letters, digits, dashes and underscores"
	case "slug":
		return "must contain only lowercase letters, digits and single dashes"
	default:
		return "is invalid"
	}
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("htmlclass", func(fl validator.FieldLevel) bool {
			return htmlClassPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("htmlid", func(fl validator.FieldLevel) bool {
			return htmlIDPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return util.IsValidSlug(fl.Field().String())
		})
	})
	return validate
}

// cleanText removes markup, decodes entities and NFC-normalizes s.
func cleanText(s string) string {
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	return norm.NFC.String(strings.TrimSpace(s))
}
