// Copyright (c) 2026 Roastlog. All rights reserved.

package registration

import "context"

// # User Data Access

// UserStore defines the persistence contract consumed by the registration
// service. The orchestration logic never changes when the backing store
// does; any implementation with a duplicate-email guarantee will do.
type UserStore interface {

	/*
		EmailExists reports whether an account with the given (already
		lowercased) email address exists.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - bool: true if the email is taken
		  - error: Storage retrieval failures
	*/
	EmailExists(context context.Context, email string) (bool, error)

	/*
		Create persists a brand-new user account.

		Implementations must enforce email uniqueness themselves and return
		[apperr.EmailExists] on a duplicate, closing the window between the
		existence check and the insert.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Duplicate conflict or persistence failures
	*/
	Create(context context.Context, user *User) error
}
