// Copyright (c) 2026 Roastlog. All rights reserved.

package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roastlog/roastlog/internal/platform/sanitize"
)

/*
TestHTML_EscapesSignificantCharacters verifies the fixed replacement table.
*/
func TestHTML_EscapesSignificantCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"angle_brackets", "<script>", "&lt;script&gt;"},
		{"double_quote", `say "hi"`, "say &quot;hi&quot;"},
		{"single_quote", "O'Brien", "O&#x27;Brien"},
		{"slash", "a/b", "a&#x2F;b"},
		{"mixed", `<a href="/x">'y'</a>`, "&lt;a href=&quot;&#x2F;x&quot;&gt;&#x27;y&#x27;&lt;&#x2F;a&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize.HTML(tt.input))
		})
	}
}

/*
TestHTML_IdentityOnCleanInput checks that strings without HTML-significant
characters pass through unchanged.
*/
func TestHTML_IdentityOnCleanInput(t *testing.T) {
	clean := []string{
		"",
		"Maria",
		"jean-luc picard",
		"user@example.com",
		"Ünïcøde Nämé",
	}

	for _, s := range clean {
		assert.Equal(t, s, sanitize.HTML(s))
	}
}

/*
TestEmail_Normalization verifies trimming and lowercasing on top of escaping.
*/
func TestEmail_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims_whitespace", "  User@Example.COM  ", "user@example.com"},
		{"already_clean", "user@example.com", "user@example.com"},
		{"escapes_injection", `us"er@example.com`, "us&quot;er@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize.Email(tt.input))
		})
	}
}

/*
TestName_UnicodeNormalization checks that decomposed and composed forms of
the same name sanitize to the same string.
*/
func TestName_UnicodeNormalization(t *testing.T) {
	composed := "José"         // é as a single code point
	decomposed := "José"      // e + combining acute accent

	assert.Equal(t, sanitize.Name(composed), sanitize.Name(decomposed))
	assert.Equal(t, "O&#x27;Brien", sanitize.Name("O'Brien"))
}
