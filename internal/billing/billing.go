package billing

import (
	"context"
)

// Provider defines the interface for the payment provider.
// The production implementation uses Stripe; tests use the mock.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for a new
	// subscription and returns the redirect target. The metadata attached
	// here is echoed back verbatim in the completion webhook and is the
	// only reliable correlation key between the checkout and a profile.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// UpdateSubscriptionPrice switches an existing subscription to a new
	// recurring price (plan change).
	UpdateSubscriptionPrice(ctx context.Context, params UpdateSubscriptionPriceParams) (*Subscription, error)

	// CancelSubscription schedules a subscription to cancel at period end.
	// The provider confirms the terminal state later via webhook.
	CancelSubscription(ctx context.Context, params CancelSubscriptionParams) (*Subscription, error)

	// VerifyWebhookSignature verifies that a webhook delivery is authentic.
	// Verification runs over the raw, unparsed payload bytes: a round-trip
	// through a JSON decoder is not guaranteed byte-identical, so callers
	// must pass the body exactly as received.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreateCheckoutSessionParams contains parameters for creating a checkout
// session.
type CreateCheckoutSessionParams struct {
	// PriceID is the provider price reference from the plan catalog.
	PriceID string

	// CustomerEmail prefills the email field on the hosted checkout page.
	CustomerEmail string

	// Metadata is echoed back on the completion webhook. Always includes
	// user_id and plan_type.
	Metadata map[string]string

	// SuccessURL and CancelURL are the redirect targets after checkout.
	SuccessURL string
	CancelURL  string
}

// CheckoutSession represents a provider-side checkout session.
type CheckoutSession struct {
	// ID is the provider session id (cs_...).
	ID string

	// URL is the hosted checkout page the user is redirected to.
	URL string
}

// UpdateSubscriptionPriceParams contains parameters for a plan change.
type UpdateSubscriptionPriceParams struct {
	SubscriptionID string

	// PriceID is the new recurring price to switch to.
	PriceID string
}

// CancelSubscriptionParams contains parameters for canceling a subscription.
type CancelSubscriptionParams struct {
	SubscriptionID string

	// CancelAtPeriodEnd leaves the subscription active until the paid
	// period runs out rather than terminating immediately.
	CancelAtPeriodEnd bool
}

// Subscription represents a provider subscription as returned by commands.
type Subscription struct {
	ID                string
	CustomerID        string
	Status            string // "active", "past_due", "canceled", ...
	PriceID           string
	CancelAtPeriodEnd bool
	Metadata          map[string]string
}
