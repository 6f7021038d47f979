// Copyright (c) 2026 Roastlog. All rights reserved.

// Package sec provides cryptographic primitives: password hashing and CSRF
// token minting.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It is
// injected into the application layer via small interfaces so tests can
// substitute fakes.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/roastlog/roastlog/internal/platform/constants"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The cost factor is deliberately high (see [constants.PasswordHashCost])
// to throttle offline brute-force and credential-stuffing attempts.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), constants.PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
