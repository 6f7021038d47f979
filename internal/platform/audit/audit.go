// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package audit emits structured security audit records.

Every security-relevant occurrence (a completed registration, a rate-limit
breach, a CSRF problem) is captured as a [Record] and written to a
process-wide structured log sink. Records are constructed, emitted, and
forgotten; the handler retains nothing.

Severity maps to log level so downstream alerting can key off standard
level fields: low → INFO, medium → WARN, high → ERROR.
*/
package audit

import (
	"context"
	"log/slog"
	"time"
)

// # Event Taxonomy

// Event identifies the kind of security occurrence being recorded.
type Event string

const (
	// EventRegistration marks a successfully created account.
	EventRegistration Event = "registration"

	// EventRateLimitExceeded marks a client breaching the attempt quota.
	EventRateLimitExceeded Event = "rate_limit_exceeded"

	// EventCSRFViolation marks a request missing its anti-forgery token.
	EventCSRFViolation Event = "csrf_violation"

	// EventDuplicateEmail marks a registration against an existing account.
	EventDuplicateEmail Event = "duplicate_email"

	// EventRegistrationFailure marks an unexpected failure inside the flow.
	EventRegistrationFailure Event = "registration_failure"
)

// Severity grades how alarming an event is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Record is one security audit entry.
type Record struct {
	Event     Event
	Severity  Severity
	IPAddress string
	UserAgent string

	// UserID is set only for events tied to a known account.
	UserID string

	// AdditionalData carries event-specific context (never secrets).
	AdditionalData map[string]string

	// Timestamp defaults to emission time when zero.
	Timestamp time.Time
}

// Logger writes audit records to a structured log sink.
type Logger struct {
	sink *slog.Logger
}

// NewLogger creates an audit [Logger] on top of the given slog sink.
func NewLogger(sink *slog.Logger) *Logger {
	return &Logger{sink: sink}
}

// Emit writes the record to the sink at the level implied by its severity.
func (logger *Logger) Emit(ctx context.Context, record Record) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("event", string(record.Event)),
		slog.String("severity", string(record.Severity)),
		slog.String("ip_address", record.IPAddress),
		slog.String("user_agent", record.UserAgent),
		slog.Time("timestamp", record.Timestamp),
	}
	if record.UserID != "" {
		attrs = append(attrs, slog.String("user_id", record.UserID))
	}
	if len(record.AdditionalData) > 0 {
		attrs = append(attrs, slog.Any("additional_data", record.AdditionalData))
	}

	logger.sink.Log(ctx, record.Severity.level(), "security_audit", attrs...)
}

// level maps a [Severity] to the corresponding slog level.
func (s Severity) level() slog.Level {
	switch s {
	case SeverityHigh:
		return slog.LevelError
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
