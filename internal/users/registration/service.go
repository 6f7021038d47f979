// Copyright (c) 2026 Roastlog. All rights reserved.

package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roastlog/roastlog/internal/platform/apperr"
	"github.com/roastlog/roastlog/internal/platform/audit"
	"github.com/roastlog/roastlog/internal/platform/sec"
	"github.com/roastlog/roastlog/pkg/uuid"
)

// # Contracts & Types

// Service implements the registration use case.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, duplicate
// handling, or audit emission must be reviewed by the security team.
type Service struct {
	userStore   UserStore
	auditLogger *audit.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userStore UserStore, auditLogger *audit.Logger) *Service {
	return &Service{
		userStore:   userStore,
		auditLogger: auditLogger,
	}
}

// # Registration Flow

// Input holds the sanitized, validated data required to enroll a new member,
// plus the client metadata carried into audit records.
type Input struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	MarketingConsent bool

	IPAddress string
	UserAgent string
}

/*
Register checks for duplicates, hashes the password, and persists a brand
new user account, emitting the appropriate security audit record on every
exit path.

Description: The caller is responsible for rate limiting, sanitization,
schema validation, and the CSRF presence check; this method owns everything
from the duplicate check onward.

Parameters:
  - context: context.Context
  - input: Input (sanitized and validated)

Returns:
  - *User: Created entity
  - error: Conflict (if the email is taken) or storage errors
*/
func (service *Service) Register(context context.Context, input Input) (*User, error) {

	// Verify email uniqueness. A taken address is a client-safe conflict
	// and a medium-severity audit signal (possible enumeration probing).
	taken, err := service.userStore.EmailExists(context, input.Email)
	if err != nil {
		service.auditFailure(context, input, err)
		return nil, fmt.Errorf("registration_service_duplicate_check_failed: %w", err)
	}
	if taken {
		service.auditLogger.Emit(context, audit.Record{
			Event:     audit.EventDuplicateEmail,
			Severity:  audit.SeverityMedium,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			AdditionalData: map[string]string{
				"email_domain": emailDomain(input.Email),
			},
		})
		return nil, apperr.EmailExists()
	}

	// Prevent storing plain-text passwords. The high cost factor is chosen
	// to throttle offline cracking and credential-stuffing.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		service.auditFailure(context, input, err)
		return nil, fmt.Errorf("registration_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:               uuid.New(),
		Email:            input.Email,
		Name:             strings.TrimSpace(input.FirstName + " " + input.LastName),
		PasswordHash:     hashedPassword,
		MarketingConsent: input.MarketingConsent,
		EmailVerified:    false,
		CreatedAt:        time.Now(),
	}

	// Persist the user. The store may still surface a duplicate conflict
	// here if a concurrent registration won the race.
	if err := service.userStore.Create(context, user); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == apperr.CodeEmailExists {
			return nil, err
		}
		service.auditFailure(context, input, err)
		return nil, fmt.Errorf("registration_service_create_failed: %w", err)
	}

	// Record the successful enrollment.
	service.auditLogger.Emit(context, audit.Record{
		Event:     audit.EventRegistration,
		Severity:  audit.SeverityLow,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		UserID:    user.ID,
	})

	return user, nil
}

// auditFailure records an unexpected failure inside the registration flow.
// Only the error message travels into the audit record, never field values.
func (service *Service) auditFailure(context context.Context, input Input, cause error) {
	service.auditLogger.Emit(context, audit.Record{
		Event:     audit.EventRegistrationFailure,
		Severity:  audit.SeverityHigh,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		AdditionalData: map[string]string{
			"error": cause.Error(),
		},
	})
}

// emailDomain extracts the domain part of an email for audit context
// without recording the full address.
func emailDomain(email string) string {
	if at := strings.LastIndexByte(email, '@'); at >= 0 {
		return email[at+1:]
	}
	return ""
}
