// Copyright (c) 2026 Roastlog. All rights reserved.

package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roastlog/roastlog/internal/platform/dberr"
)

// # PostgreSQL User Store

// PostgresStore implements the [UserStore] interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors are mapped via [dberr.Wrap]: the users table's
// unique email constraint surfaces as the duplicate-email conflict, and
// everything else is passed up for the boundary handler to genericize.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the UserStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
EmailExists reports whether any account row holds the given email.

Parameters:
  - context: context.Context
  - email: string (already lowercased)

Returns:
  - bool: true if the email is taken
  - error: Database connectivity or execution errors
*/
func (store *PostgresStore) EmailExists(context context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := store.pool.QueryRow(context, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_store_email_exists_failed: %w", err)
	}

	return exists, nil
}

/*
Create persists a new user record into the users table.

Description: Deep-persists account data, initializing the creation timestamp
if not provided. The unique constraint on email is the authoritative
duplicate guard.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.EmailExists on duplicates, or persistence failures
*/
func (store *PostgresStore) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, email, name, password_hash, marketing_consent, email_verified, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := store.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.MarketingConsent,
		user.EmailVerified,
		user.CreatedAt,
	)

	if err != nil {
		if wrapped := dberr.Wrap(err); wrapped != err {
			return wrapped
		}
		return fmt.Errorf("postgres_user_store_create_failed: %w", err)
	}

	return nil
}
