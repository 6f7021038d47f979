// Copyright (c) 2026 Roastlog. All rights reserved.

package registration

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roastlog/roastlog/internal/platform/apperr"
	"github.com/roastlog/roastlog/internal/platform/audit"
	"github.com/roastlog/roastlog/internal/platform/constants"
	"github.com/roastlog/roastlog/internal/platform/middleware"
	"github.com/roastlog/roastlog/internal/platform/ratelimit"
	requestutil "github.com/roastlog/roastlog/internal/platform/request"
	"github.com/roastlog/roastlog/internal/platform/respond"
	"github.com/roastlog/roastlog/internal/platform/sanitize"
	"github.com/roastlog/roastlog/internal/platform/sec"
	"github.com/roastlog/roastlog/internal/platform/validate"
	"github.com/roastlog/roastlog/pkg/pointer"
)

// # Definitions & Constructors

// Handler implements the registration HTTP endpoint.
//
// # Scope
//
// The handler owns transport concerns AND the strictly sequential entry
// gates of the flow (rate limit, sanitize, validate, CSRF presence); the
// [Service] owns everything from the duplicate check onward. Each gate is
// a potential exit point; nothing past a failed gate ever executes.
type Handler struct {
	service     *Service
	limiter     ratelimit.Limiter
	csrfIssuer  *sec.CSRFIssuer
	auditLogger *audit.Logger
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, limiter ratelimit.Limiter, csrfIssuer *sec.CSRFIssuer, auditLogger *audit.Logger) *Handler {
	return &Handler{
		service:     service,
		limiter:     limiter,
		csrfIssuer:  csrfIssuer,
		auditLogger: auditLogger,
	}
}

// Routes returns a [chi.Router] configured with registration routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/register", handler.register)
	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	TermsAccepted bool   `json:"termsAccepted"`
	// MarketingConsent is optional and defaults to false when omitted.
	MarketingConsent *bool  `json:"marketingConsent"`
	CSRFToken        string `json:"csrfToken"`
}

// successResponse is the 201 envelope returned on completed registration.
type successResponse struct {
	Success   bool       `json:"success"`
	User      PublicUser `json:"user"`
	CSRFToken string     `json:"csrfToken"`
	Message   string     `json:"message"`
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Description: Applies the registration pipeline in strict order — rate limit,
parse/sanitize, schema validation, CSRF presence, then the service flow
(duplicate check, hash, create, audit).

Request:
  - Body: registerRequest (FirstName, LastName, Email, Password,
    TermsAccepted, MarketingConsent, CSRFToken)

Response:
  - 201: successResponse with a freshly issued CSRF token
  - 400: VALIDATION_ERROR (itemized) or generic INTERNAL_ERROR
  - 403: CSRF_VIOLATION
  - 409: EMAIL_EXISTS
  - 429: RATE_LIMIT_EXCEEDED with Retry-After
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	clientIP := middleware.RealIP(request)
	userAgent := request.UserAgent()

	// ── 1. Rate Limit ─────────────────────────────────────────────────────
	decision := handler.limiter.Check(ctx, clientIP)
	handler.setRateLimitHeaders(writer, decision)

	if !decision.Allowed {
		retryAfter := retryAfterSeconds(decision.ResetTime)
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))

		handler.auditLogger.Emit(ctx, audit.Record{
			Event:     audit.EventRateLimitExceeded,
			Severity:  audit.SeverityHigh,
			IPAddress: clientIP,
			UserAgent: userAgent,
		})
		respond.Error(writer, request, apperr.RateLimited(retryAfter))
		return
	}

	// ── 2. Parse & Sanitize ───────────────────────────────────────────────
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		// A malformed body is an unrecoverable parse failure, handled by
		// the generic error path rather than as a field error.
		handler.auditLogger.Emit(ctx, audit.Record{
			Event:     audit.EventRegistrationFailure,
			Severity:  audit.SeverityHigh,
			IPAddress: clientIP,
			UserAgent: userAgent,
			AdditionalData: map[string]string{
				"error": "malformed JSON body",
			},
		})
		respond.Error(writer, request, err)
		return
	}

	firstName := sanitize.Name(input.FirstName)
	lastName := sanitize.Name(input.LastName)
	email := sanitize.Email(input.Email)

	// ── 3. Schema Validation ──────────────────────────────────────────────
	// Plain validation failures are ordinary user typos, not security
	// signals: no audit record is emitted for them.
	validator := &validate.Validator{}
	validator.Required(FieldFirstName, firstName).
		NameChars(FieldFirstName, firstName).
		MaxLen(FieldFirstName, firstName, 50).
		Required(FieldLastName, lastName).
		NameChars(FieldLastName, lastName).
		MaxLen(FieldLastName, lastName, 50).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		MaxLen(FieldEmail, email, 254).
		Password(FieldPassword, input.Password).
		MustBeTrue(FieldTermsAccepted, input.TermsAccepted, "You must accept the terms and conditions")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. CSRF Presence ──────────────────────────────────────────────────
	if !sec.TokenPresent(input.CSRFToken) {
		handler.auditLogger.Emit(ctx, audit.Record{
			Event:     audit.EventCSRFViolation,
			Severity:  audit.SeverityHigh,
			IPAddress: clientIP,
			UserAgent: userAgent,
		})
		respond.Error(writer, request, apperr.CSRFViolation())
		return
	}

	// ── 5. Service Flow (duplicate check → hash → create → audit) ────────
	user, err := handler.service.Register(ctx, Input{
		FirstName:        firstName,
		LastName:         lastName,
		Email:            email,
		Password:         input.Password,
		MarketingConsent: pointer.Fallback(input.MarketingConsent, false),
		IPAddress:        clientIP,
		UserAgent:        userAgent,
	})
	if err != nil {
		if apperr.As(err) == nil {
			// Unexpected failures reach the client only as the generic
			// internal error; the cause stays server-side.
			err = apperr.Unexpected(err)
		}
		respond.Error(writer, request, err)
		return
	}

	// ── 6. Respond with a fresh CSRF token for the next request ──────────
	csrfToken, err := handler.csrfIssuer.Issue()
	if err != nil {
		respond.Error(writer, request, apperr.Unexpected(err))
		return
	}

	respond.Created(writer, successResponse{
		Success:   true,
		User:      user.Public(),
		CSRFToken: csrfToken,
		Message:   "Account created successfully. Please verify your email address.",
	})
}

// setRateLimitHeaders echoes the limiter decision on every response.
func (handler *Handler) setRateLimitHeaders(writer http.ResponseWriter, decision ratelimit.Decision) {
	header := writer.Header()
	header.Set(constants.HeaderRateLimitLimit, strconv.Itoa(handler.limiter.Limit()))
	header.Set(constants.HeaderRateLimitRemain, strconv.Itoa(decision.Remaining))
	header.Set(constants.HeaderRateLimitReset, strconv.FormatInt(decision.ResetTime.UnixMilli(), 10))
}

// retryAfterSeconds converts an absolute reset time into the whole-second
// wait communicated via the Retry-After header (always at least 1).
func retryAfterSeconds(resetTime time.Time) int {
	seconds := int(math.Ceil(time.Until(resetTime).Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
