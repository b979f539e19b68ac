// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func TestNullInt64FromPtr(t *testing.T) {
	tests := []struct {
		name     string
		input    *int64
		expected sql.NullInt64
	}{
		{
			name:     "nil pointer",
			input:    nil,
			expected: sql.NullInt64{},
		},
		{
			name:     "positive value",
			input:    ptr(int64(42)),
			expected: sql.NullInt64{Int64: 42, Valid: true},
		},
		{
			name:     "zero value",
			input:    ptr(int64(0)),
			expected: sql.NullInt64{Int64: 0, Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NullInt64FromPtr(tt.input); got != tt.expected {
				t.Errorf("NullInt64FromPtr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPtrFromNullInt64(t *testing.T) {
	if got := PtrFromNullInt64(sql.NullInt64{}); got != nil {
		t.Errorf("PtrFromNullInt64(invalid) = %v, want nil", *got)
	}

	n := sql.NullInt64{Int64: 7, Valid: true}
	got := PtrFromNullInt64(n)
	if got == nil || *got != 7 {
		t.Fatalf("PtrFromNullInt64(7) = %v, want pointer to 7", got)
	}

	*got = 9
	if n.Int64 != 7 {
		t.Error("PtrFromNullInt64 returned a pointer into its argument")
	}
}

func TestParseNullInt64Positive(t *testing.T) {
	tests := []struct {
		input    string
		expected sql.NullInt64
	}{
		{"", sql.NullInt64{}},
		{"0", sql.NullInt64{}},
		{"-3", sql.NullInt64{}},
		{"abc", sql.NullInt64{}},
		{"12", sql.NullInt64{Int64: 12, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseNullInt64Positive(tt.input); got != tt.expected {
				t.Errorf("ParseNullInt64Positive(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNullStringFromValue(t *testing.T) {
	if got := NullStringFromValue(""); got.Valid {
		t.Error("NullStringFromValue(\"\") should be invalid")
	}
	if got := NullStringFromValue("x"); !got.Valid || got.String != "x" {
		t.Errorf("NullStringFromValue(\"x\") = %v", got)
	}
}

func ptr(v int64) *int64 {
	return &v
}

func TestNullInt64FromValue(t *testing.T) {
	if got := NullInt64FromValue(0); !got.Valid || got.Int64 != 0 {
		t.Errorf("NullInt64FromValue(0) = %v, want valid 0", got)
	}
}
