// Copyright (c) 2026 Roastlog. All rights reserved.

package registration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastlog/roastlog/internal/platform/apperr"
	"github.com/roastlog/roastlog/internal/platform/constants"
	"github.com/roastlog/roastlog/internal/platform/ratelimit"
	"github.com/roastlog/roastlog/internal/platform/sec"
	"github.com/roastlog/roastlog/internal/users/registration"
)

// errorEnvelope mirrors the wire shape of failure responses.
type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Type        string `json:"type"`
		Message     string `json:"message"`
		Code        string `json:"code"`
		Recoverable bool   `json:"recoverable"`
		Retryable   bool   `json:"retryable"`
		Details     []struct {
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

type successEnvelope struct {
	Success bool `json:"success"`
	User    struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	CSRFToken string `json:"csrfToken"`
	Message   string `json:"message"`
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	auditLogger, _ := newAuditCapture()
	service := registration.NewService(registration.NewMemoryStore(), auditLogger)
	limiter := ratelimit.NewMemory(constants.RegistrationRateLimit, constants.RegistrationRateWindow)
	handler := registration.NewHandler(service, limiter, sec.NewCSRFIssuer("test-secret"), auditLogger)

	return handler.Routes()
}

func validPayload() map[string]any {
	return map[string]any{
		"firstName":     "Ada",
		"lastName":      "Lovelace",
		"email":         "ada@lovelace.dev",
		"password":      "Analytical1!",
		"termsAccepted": true,
		"csrfToken":     "client-token",
	}
}

func postRegister(t *testing.T, router chi.Router, clientIP string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	switch typed := payload.(type) {
	case string:
		body = []byte(typed)
	default:
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	request := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Real-IP", clientIP)
	request.Header.Set("User-Agent", "roastlog-test/1.0")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestRegister_Success(t *testing.T) {
	router := newTestRouter(t)

	payload := validPayload()
	payload["email"] = "  NEW.Member@Example.COM "

	recorder := postRegister(t, router, "203.0.113.1", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response successEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

	assert.True(t, response.Success)
	assert.NotEmpty(t, response.User.ID)
	assert.Equal(t, "new.member@example.com", response.User.Email)
	assert.Equal(t, "Ada Lovelace", response.User.Name)
	assert.NotEmpty(t, response.CSRFToken)
	assert.NotEqual(t, "client-token", response.CSRFToken)

	// Credential material must never appear on the wire.
	assert.NotContains(t, recorder.Body.String(), "passwordHash")
	assert.NotContains(t, recorder.Body.String(), "password_hash")

	// Rate limit headers accompany successful responses too.
	assert.Equal(t, "5", recorder.Header().Get(constants.HeaderRateLimitLimit))
	assert.Equal(t, "4", recorder.Header().Get(constants.HeaderRateLimitRemain))
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderRateLimitReset))
}

func TestRegister_IssuesUniqueCSRFTokens(t *testing.T) {
	router := newTestRouter(t)

	first := postRegister(t, router, "203.0.113.2", validPayload())
	require.Equal(t, http.StatusCreated, first.Code)

	second := validPayload()
	second["email"] = "other@lovelace.dev"
	secondRecorder := postRegister(t, router, "203.0.113.2", second)
	require.Equal(t, http.StatusCreated, secondRecorder.Code)

	var a, b successEnvelope
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(secondRecorder.Body.Bytes(), &b))
	assert.NotEqual(t, a.CSRFToken, b.CSRFToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	payload := validPayload()
	payload["email"] = "admin@example.com"

	recorder := postRegister(t, router, "203.0.113.3", payload)
	require.Equal(t, http.StatusConflict, recorder.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

	assert.False(t, response.Success)
	assert.Equal(t, apperr.TypeEmailConflict, response.Error.Type)
	assert.Equal(t, apperr.CodeEmailExists, response.Error.Code)
	assert.True(t, response.Error.Recoverable)
	assert.False(t, response.Error.Retryable)
}

func TestRegister_RateLimitAcrossWindow(t *testing.T) {
	router := newTestRouter(t)
	clientIP := "203.0.113.4"

	// The first five attempts are processed; remaining counts down to zero.
	for attempt := 0; attempt < 5; attempt++ {
		payload := validPayload()
		payload["email"] = fmt.Sprintf("member%d@lovelace.dev", attempt)

		recorder := postRegister(t, router, clientIP, payload)
		require.NotEqual(t, http.StatusTooManyRequests, recorder.Code,
			"attempt %d should not be rate limited", attempt+1)
		assert.Equal(t, strconv.Itoa(4-attempt), recorder.Header().Get(constants.HeaderRateLimitRemain))
	}

	// The sixth is rejected before any other processing: even an otherwise
	// invalid body yields 429, proving the limit check runs first.
	recorder := postRegister(t, router, clientIP, map[string]any{})
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, apperr.CodeRateLimitExceeded, response.Error.Code)
	assert.False(t, response.Error.Retryable)

	retryAfter, err := strconv.Atoi(recorder.Header().Get(constants.HeaderRetryAfter))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
	assert.LessOrEqual(t, retryAfter, int(constants.RegistrationRateWindow/time.Second))
	assert.Equal(t, "0", recorder.Header().Get(constants.HeaderRateLimitRemain))

	// A different client IP is unaffected.
	other := postRegister(t, router, "203.0.113.99", validPayload())
	assert.NotEqual(t, http.StatusTooManyRequests, other.Code)
}

func TestRegister_MissingCSRFToken(t *testing.T) {
	router := newTestRouter(t)

	payload := validPayload()
	payload["csrfToken"] = "   "

	recorder := postRegister(t, router, "203.0.113.5", payload)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, apperr.CodeCSRFViolation, response.Error.Code)
	assert.True(t, response.Error.Retryable)
}

func TestRegister_ValidationCollectsAllErrors(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		name          string
		mutate        func(map[string]any)
		expectedPaths []string
	}{
		{
			name: "weak password missing uppercase",
			mutate: func(p map[string]any) {
				p["password"] = "alllowercase1!"
			},
			expectedPaths: []string{"password"},
		},
		{
			name: "multiple fields fail at once",
			mutate: func(p map[string]any) {
				p["firstName"] = ""
				p["email"] = "not-an-email"
				p["password"] = "short"
				p["termsAccepted"] = false
			},
			expectedPaths: []string{"firstName", "email", "password", "termsAccepted"},
		},
		{
			name: "script tags rejected after escaping",
			mutate: func(p map[string]any) {
				p["firstName"] = "<script>alert(1)</script>"
			},
			expectedPaths: []string{"firstName"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			payload := validPayload()
			testCase.mutate(payload)

			recorder := postRegister(t, router, "203.0.113.6", payload)
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			var response errorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, apperr.CodeValidationError, response.Error.Code)

			paths := make(map[string]bool)
			for _, detail := range response.Error.Details {
				paths[detail.Path] = true
			}
			for _, expected := range testCase.expectedPaths {
				assert.True(t, paths[expected], "expected a detail for %q, got %v", expected, response.Error.Details)
			}
		})
	}
}

func TestRegister_ApostropheNamesSurviveSanitization(t *testing.T) {
	router := newTestRouter(t)

	payload := validPayload()
	payload["lastName"] = "O'Brien"

	recorder := postRegister(t, router, "203.0.113.7", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response successEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

	// The stored name carries the escaped form; no raw quote survives.
	assert.Equal(t, "Ada O&#x27;Brien", response.User.Name)
	assert.False(t, strings.Contains(response.User.Name, "'"))
}

func TestRegister_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	recorder := postRegister(t, router, "203.0.113.8", `{"firstName": `)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, apperr.CodeInternalError, response.Error.Code)

	// The parse failure detail never leaks to the client.
	assert.NotContains(t, response.Error.Message, "JSON")
}
