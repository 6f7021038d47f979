// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package sanitize neutralizes HTML-significant characters in user-supplied text.

It is applied to free-text registration fields (first name, last name, email)
before schema validation, so that stored values are safe to render verbatim
in any later HTML context.

# Idempotency

Re-encoding already-encoded entities is out of scope: sanitization runs
exactly once per request, immediately after JSON decoding. For strings
without HTML-significant characters the functions are the identity.
*/
package sanitize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// htmlReplacer escapes the five HTML-significant characters. The replacement
// order is fixed: '<', '>', '"', '\'', '/'.
var htmlReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// HTML replaces HTML-significant characters with their entity equivalents.
// It is a pure, total function: it never fails and has no side effects.
func HTML(input string) string {
	return htmlReplacer.Replace(input)
}

// Name prepares a person-name field for validation.
//
// It normalizes the string to Unicode NFC first so that rune-count length
// limits behave identically for composed and decomposed input, then applies
// the standard HTML escaping.
func Name(input string) string {
	return HTML(norm.NFC.String(input))
}

// Email prepares an email field for validation: HTML escaping, whitespace
// trimming, and case normalization to lowercase.
func Email(input string) string {
	return strings.ToLower(strings.TrimSpace(HTML(input)))
}
