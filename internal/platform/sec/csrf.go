// Copyright (c) 2026 Roastlog. All rights reserved.

package sec

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roastlog/roastlog/internal/platform/constants"
	"github.com/roastlog/roastlog/pkg/uuid"
)

// CSRFIssuer mints anti-forgery tokens handed to clients on successful
// registration. Issued tokens are HMAC-signed JWTs so a future session
// binding can verify them server-side.
//
// # Inbound validation
//
// Inbound tokens are only checked for presence (see [TokenPresent]) — the
// registration endpoint has no session to bind a signature against.
type CSRFIssuer struct {
	secret []byte
}

// NewCSRFIssuer creates a [CSRFIssuer] keyed with the given HMAC secret.
func NewCSRFIssuer(secret string) *CSRFIssuer {
	return &CSRFIssuer{secret: []byte(secret)}
}

// Issue generates a fresh signed CSRF token.
//
// Each token carries a unique UUIDv7 identifier and a bounded lifetime
// ([constants.CSRFTokenTTL]), so no two issued tokens are ever equal.
func (issuer *CSRFIssuer) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New(),
		Issuer:    constants.CSRFIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(constants.CSRFTokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(issuer.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign csrf token: %w", err)
	}

	return signed, nil
}

// TokenPresent reports whether the client submitted a non-empty CSRF token.
//
// This is a presence-only check, not a cryptographic one.
func TokenPresent(token string) bool {
	return strings.TrimSpace(token) != ""
}
