// Copyright (c) 2026 Roastlog. All rights reserved.

package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastlog/roastlog/internal/platform/audit"
)

// captureSink returns an audit logger writing JSON lines into buf.
func captureSink(buf *bytes.Buffer) *audit.Logger {
	return audit.NewLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

/*
TestEmit_FieldsAndLevel verifies the emitted record structure and the
severity-to-level mapping.
*/
func TestEmit_FieldsAndLevel(t *testing.T) {
	tests := []struct {
		name      string
		severity  audit.Severity
		wantLevel string
	}{
		{"low_is_info", audit.SeverityLow, "INFO"},
		{"medium_is_warn", audit.SeverityMedium, "WARN"},
		{"high_is_error", audit.SeverityHigh, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := captureSink(&buf)

			logger.Emit(context.Background(), audit.Record{
				Event:     audit.EventRateLimitExceeded,
				Severity:  tt.severity,
				IPAddress: "10.0.0.1",
				UserAgent: "test-agent",
			})

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "security_audit", entry["msg"])
			assert.Equal(t, "rate_limit_exceeded", entry["event"])
			assert.Equal(t, "10.0.0.1", entry["ip_address"])
			assert.Equal(t, "test-agent", entry["user_agent"])
		})
	}
}

/*
TestEmit_OptionalFields checks that user_id and additional_data appear only
when set.
*/
func TestEmit_OptionalFields(t *testing.T) {
	var buf bytes.Buffer
	logger := captureSink(&buf)

	logger.Emit(context.Background(), audit.Record{
		Event:     audit.EventRegistration,
		Severity:  audit.SeverityLow,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
		UserID:    "user-123",
		AdditionalData: map[string]string{
			"email_domain": "example.com",
		},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user-123", entry["user_id"])
	assert.Contains(t, entry, "additional_data")

	buf.Reset()
	logger.Emit(context.Background(), audit.Record{
		Event:     audit.EventCSRFViolation,
		Severity:  audit.SeverityHigh,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})

	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "user_id")
	assert.NotContains(t, entry, "additional_data")
}
