package service

import (
	"context"

	"github.com/platewise/billing/internal/domain"
)

// SubscriptionService provides business logic for subscription state
// changes: user-initiated commands against the payment provider and the
// reconciliation transitions applied by the webhook handler.
//
// Commands and reconciliation race by design. A user canceling while the
// provider's deletion event is in flight, or a replayed checkout event
// arriving twice, must converge: every transition here is an idempotent
// write into a terminal state, so the later writer wins and both orders
// produce the same profile.
type SubscriptionService interface {
	// ChangePlan switches the user's subscription to a new plan.
	//
	// Flow:
	//  1. Loads the profile; no profile or no provider subscription id
	//     means there is nothing to change (ENOTFOUND).
	//  2. Issues the provider-side price update for the subscription.
	//  3. Writes the new tier through to the cached profile, keyed on the
	//     subscription id from step 1. If the reconciler cleared or
	//     replaced that subscription during step 2, the write misses and
	//     the reconciled profile is returned instead.
	//
	// Provider failure surfaces as EUPSTREAM and leaves the cache
	// untouched.
	ChangePlan(ctx context.Context, params ChangePlanParams) (*domain.Profile, error)

	// Cancel cancels the user's subscription at period end.
	//
	// Flow:
	//  1. Loads the profile; missing profile is ENOTFOUND, a profile
	//     without a provider subscription id is ECONFLICT (nothing to
	//     cancel).
	//  2. Issues the cancel-at-period-end command to the provider.
	//  3. Optimistically clears the cached fields immediately rather than
	//     waiting for the eventual deletion event, keyed on the
	//     subscription id from step 1. The later deletion event is then a
	//     benign no-op, and a different subscription activated during
	//     step 2 is left alone.
	Cancel(ctx context.Context, userID string) (*domain.Profile, error)

	// SyncCheckoutCompleted applies a completed checkout to the profile:
	// active=true with the event's tier and subscription id, overwriting
	// unconditionally. Idempotent - replaying the same event yields the
	// same end state. A user id with no profile is a logged no-op, not an
	// error: the session was not one this system created.
	SyncCheckoutCompleted(ctx context.Context, params CheckoutCompletedParams) error

	// SyncInvoicePaymentFailed flips active off for the profile holding
	// the subscription id. Tier and subscription id are deliberately left
	// in place because the provider may retry the charge; the gap between
	// active=false and the retained tier is an accepted transient state,
	// and authorization reads the active flag only. Unknown subscription
	// ids are logged no-ops.
	SyncInvoicePaymentFailed(ctx context.Context, subscriptionID string) error

	// SyncSubscriptionDeleted fully resets the profile holding the
	// subscription id: active=false, tier and subscription id nil.
	// Unknown subscription ids are logged no-ops (including the cancel
	// write-through having already cleared the row).
	SyncSubscriptionDeleted(ctx context.Context, subscriptionID string) error
}

// ChangePlanParams contains parameters for a plan change.
type ChangePlanParams struct {
	// UserID is the authenticated user's identity provider id.
	UserID string

	// PlanType is the raw plan type from the request ("week", "month",
	// "year"); validated against the catalog.
	PlanType string
}

// CheckoutCompletedParams carries the fields extracted from a
// checkout-completed event.
type CheckoutCompletedParams struct {
	// UserID comes from the session metadata this system attached at
	// checkout creation; it is the only correlation key back to a profile.
	UserID string

	// PlanType comes from the session metadata. It may be empty or
	// unknown for sessions created by older clients; the tier is then
	// stored as null.
	PlanType string

	// SubscriptionID is the provider subscription created by the checkout.
	SubscriptionID string
}
