// Package identity is the boundary to the external identity provider.
//
// The identity provider owns user identifiers and email addresses; this
// service only ever consumes them. All user-initiated operations
// authenticate through Provider; webhook deliveries authenticate through
// the payment provider's signature instead.
package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a token is missing, malformed,
// expired, or fails verification.
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// User is the authenticated caller as reported by the identity provider.
type User struct {
	// ID is the provider's stable, opaque user identifier.
	ID string

	// Email is the user's primary email address.
	Email string
}

// Provider resolves a request credential to the current user.
type Provider interface {
	// CurrentUser verifies the given credential and returns the user it
	// identifies. Returns ErrUnauthenticated when the credential does not
	// prove an identity.
	CurrentUser(ctx context.Context, credential string) (*User, error)
}
