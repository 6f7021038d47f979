// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package registration implements the account-creation flow for the Roastlog
platform.

It defines the User entity and the strictly sequential registration pipeline:
rate-limit check, input sanitization, schema validation, CSRF presence check,
duplicate-email check, password hashing, user creation, and security audit
logging.

# Architecture

  - Handler: Transport concerns only (decoding, headers, status codes).
  - Service: The business state machine (duplicate check, hash, create, audit).
  - UserStore: Abstracted persistence (in-memory or PostgreSQL).
*/
package registration

import "time"

// # Domain Entities

// User represents a registered member of the Roastlog platform.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.

	MarketingConsent bool      `json:"marketing_consent"`
	EmailVerified    bool      `json:"email_verified"`
	CreatedAt        time.Time `json:"created_at"`
}

// PublicUser is the client-facing projection of a [User]. It carries no
// credential material whatsoever.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// # Field Identifiers

// JSON field names for validation error paths in the registration domain.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldTermsAccepted    = "termsAccepted"
	FieldMarketingConsent = "marketingConsent"
	FieldCSRFToken        = "csrfToken"
)
