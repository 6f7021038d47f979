// Copyright (c) 2026 Roastlog. All rights reserved.

package registration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastlog/roastlog/internal/platform/apperr"
	"github.com/roastlog/roastlog/internal/platform/audit"
	"github.com/roastlog/roastlog/internal/platform/sec"
	"github.com/roastlog/roastlog/internal/users/registration"
)

// newAuditCapture returns an audit logger backed by an in-memory buffer so
// tests can decode the emitted JSON records.
func newAuditCapture() (*audit.Logger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	sink := slog.New(slog.NewJSONHandler(buffer, nil))
	return audit.NewLogger(sink), buffer
}

// auditEvents decodes every log line in the buffer and returns the records
// keyed by their event name.
func auditEvents(t *testing.T, buffer *bytes.Buffer) map[string]map[string]any {
	t.Helper()

	events := make(map[string]map[string]any)
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		event, _ := record["event"].(string)
		events[event] = record
	}
	return events
}

func validInput() registration.Input {
	return registration.Input{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@lovelace.dev",
		Password:  "Analytical1!",
		IPAddress: "203.0.113.7",
		UserAgent: "roastlog-test/1.0",
	}
}

func TestService_Register_Success(t *testing.T) {
	auditLogger, buffer := newAuditCapture()
	service := registration.NewService(registration.NewMemoryStore(), auditLogger)

	input := validInput()
	user, err := service.Register(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@lovelace.dev", user.Email)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.False(t, user.EmailVerified)
	assert.False(t, user.CreatedAt.IsZero())

	// The stored credential must be a verifiable hash, never the raw value.
	assert.NotEqual(t, input.Password, user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash(input.Password, user.PasswordHash))

	events := auditEvents(t, buffer)
	record, ok := events["registration"]
	require.True(t, ok, "expected a registration audit record")
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "security_audit", record["msg"])
	assert.Equal(t, "low", record["severity"])
	assert.Equal(t, input.IPAddress, record["ip_address"])
	assert.Equal(t, user.ID, record["user_id"])
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	auditLogger, buffer := newAuditCapture()
	service := registration.NewService(registration.NewMemoryStore(), auditLogger)

	input := validInput()
	input.Email = "admin@example.com"

	user, err := service.Register(context.Background(), input)
	require.Error(t, err)
	assert.Nil(t, user)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeEmailExists, appError.Code)
	assert.Equal(t, 409, appError.HTTPStatus)
	assert.True(t, appError.Recoverable)
	assert.False(t, appError.Retryable)

	events := auditEvents(t, buffer)
	record, ok := events["duplicate_email"]
	require.True(t, ok, "expected a duplicate_email audit record")
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "medium", record["severity"])

	extra, ok := record["additional_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "example.com", extra["email_domain"])
}

// failingStore errors on the duplicate check to exercise the generic
// failure path.
type failingStore struct{}

func (failingStore) EmailExists(context.Context, string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (failingStore) Create(context.Context, *registration.User) error {
	return errors.New("store unavailable")
}

func TestService_Register_StoreFailure(t *testing.T) {
	auditLogger, buffer := newAuditCapture()
	service := registration.NewService(failingStore{}, auditLogger)

	user, err := service.Register(context.Background(), validInput())
	require.Error(t, err)
	assert.Nil(t, user)

	// Infrastructure failures surface as plain errors for the transport
	// layer to wrap, not as client-facing taxonomy members.
	assert.Nil(t, apperr.As(err))

	events := auditEvents(t, buffer)
	record, ok := events["registration_failure"]
	require.True(t, ok, "expected a registration_failure audit record")
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "high", record["severity"])
}

// racingStore simulates losing a create race: the duplicate check passes but
// the insert hits the unique constraint.
type racingStore struct{}

func (racingStore) EmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func (racingStore) Create(context.Context, *registration.User) error {
	return apperr.EmailExists()
}

func TestService_Register_CreateRaceSurfacesConflict(t *testing.T) {
	auditLogger, _ := newAuditCapture()
	service := registration.NewService(racingStore{}, auditLogger)

	user, err := service.Register(context.Background(), validInput())
	require.Error(t, err)
	assert.Nil(t, user)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeEmailExists, appError.Code)
}
