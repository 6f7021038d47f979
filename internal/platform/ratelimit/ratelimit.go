// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package ratelimit implements the fixed-window attempt limiter guarding the
registration endpoint.

Semantics (per client key, usually an IP address):

  - A window is fixed and non-sliding: it opens on the first attempt and
    closes exactly one window duration later, regardless of later traffic.
  - At most Limit attempts are allowed per window. Once the limit is
    reached, further attempts are rejected WITHOUT advancing the counter,
    so the reset time never drifts.
  - An attempt after the window's reset time starts a fresh window with a
    count of one, regardless of the prior count.

Two drivers are provided: an in-process store (mutex-guarded, with idle
entry eviction) and a Redis store for multi-instance deployments.

A limiter never returns an error to its caller: an unknown key is simply a
first attempt, and the Redis driver fails open on connectivity problems so
that a cache outage cannot take registration down with it.
*/
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	// Allowed reports whether the attempt may proceed.
	Allowed bool

	// Remaining is the number of attempts left in the current window.
	Remaining int

	// ResetTime is the absolute time at which the current window closes.
	ResetTime time.Time
}

// Limiter is the contract consumed by the registration handler.
type Limiter interface {
	// Check records one attempt for the given client key and returns the
	// resulting decision. It never fails; see the package documentation
	// for driver-specific degradation behavior.
	Check(ctx context.Context, key string) Decision

	// Limit returns the configured attempts-per-window quota.
	Limit() int
}
