// Copyright (c) 2026 Roastlog. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roastlog/roastlog/internal/platform/apperr"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique-constraint breaches.
const uniqueViolation = "23505"

// Wrap inspects a database error and classifies it.
//
// A unique-constraint violation on the users table maps to the duplicate-email
// conflict: the constraint is the authoritative duplicate check, closing the
// race left open by the pre-insert existence lookup. Every other error is
// returned unchanged so the boundary handler can convert it to the generic
// internal-error response without leaking database details.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == uniqueViolation {
		return apperr.EmailExists()
	}

	return err
}

// IsUniqueViolation reports whether err is a unique-constraint breach.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}
