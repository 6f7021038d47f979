// Copyright (c) 2026 Roastlog. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Validation is all-or-nothing: every rule in the chain runs and every
// failure is collected, so the caller always receives the complete set of
// field errors in one response. Nothing short-circuits to the first failure.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roastlog/roastlog/internal/platform/apperr"
)

var (
	// nameCharsRegex restricts person names to letters, spaces, hyphens,
	// and apostrophes.
	nameCharsRegex = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)

	// ErrInvalidBody is returned when the request body cannot be decoded.
	// Per the registration contract, a malformed body is an unrecoverable
	// parse failure handled by the generic error path, not a field error.
	ErrInvalidBody = apperr.Unexpected(fmt.Errorf("malformed JSON body"))
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// NameChars fails if the value contains characters outside the allowed
// person-name set (letters, spaces, hyphens, apostrophes).
//
// Values arrive already HTML-escaped, so the sanitizer's apostrophe entity
// is mapped back before the charset check. Any other escaped character
// (angle brackets, quotes, slashes) correctly fails the rule.
//
// Empty values are skipped; [Validator.Required] owns that failure.
func (v *Validator) NameChars(field, value string) *Validator {
	if value == "" {
		return v
	}
	check := strings.ReplaceAll(value, "&#x27;", "'")
	if !nameCharsRegex.MatchString(check) {
		v.add(field, "May only contain letters, spaces, hyphens, and apostrophes")
	}
	return v
}

// Password applies the full password policy, reporting each violated rule
// as its own field error:
//
//   - length between 8 and 128 characters
//   - at least one uppercase letter
//   - at least one digit
//   - at least one non-alphanumeric character
func (v *Validator) Password(field, value string) *Validator {
	length := utf8.RuneCountInString(value)
	if length < 8 {
		v.add(field, "Minimum 8 characters")
	} else if length > 128 {
		v.add(field, "Maximum 128 characters")
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		v.add(field, "Must contain at least one uppercase letter")
	}
	if !hasDigit {
		v.add(field, "Must contain at least one number")
	}
	if !hasSpecial {
		v.add(field, "Must contain at least one special character")
	}
	return v
}

// MustBeTrue fails with the given message unless the boolean value is true.
// Used for consent gates such as terms acceptance.
func (v *Validator) MustBeTrue(field string, value bool, message string) *Validator {
	if !value {
		v.add(field, message)
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Path: field, Message: message})
}
