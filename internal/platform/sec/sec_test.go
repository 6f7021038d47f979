// Copyright (c) 2026 Roastlog. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastlog/roastlog/internal/platform/sec"
)

/*
TestHashPassword verifies round-trip hashing and that the hash never equals
the plain-text input.
*/
func TestHashPassword(t *testing.T) {
	const password = "LongEnough1!"

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.True(t, sec.CheckPasswordHash(password, hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
}

/*
TestCSRFIssuer_Issue checks that issued tokens are non-empty and unique.
*/
func TestCSRFIssuer_Issue(t *testing.T) {
	issuer := sec.NewCSRFIssuer("test-secret")

	first, err := issuer.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := issuer.Issue()
	require.NoError(t, err)

	// Every token carries a unique ID, so two mints never collide.
	assert.NotEqual(t, first, second)
}

/*
TestTokenPresent covers the presence-only CSRF check.
*/
func TestTokenPresent(t *testing.T) {
	assert.True(t, sec.TokenPresent("any-opaque-value"))
	assert.False(t, sec.TokenPresent(""))
	assert.False(t, sec.TokenPresent("   "))
}
