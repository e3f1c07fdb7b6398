package domain

import (
	"context"
	"time"
)

// PlanType identifies a billing plan. The set is closed; anything else is
// rejected at the edge.
type PlanType string

const (
	PlanWeek  PlanType = "week"
	PlanMonth PlanType = "month"
	PlanYear  PlanType = "year"
)

// ParsePlanType validates a raw plan type string.
func ParsePlanType(s string) (PlanType, bool) {
	switch PlanType(s) {
	case PlanWeek, PlanMonth, PlanYear:
		return PlanType(s), true
	}
	return "", false
}

// Profile is the cached per-user subscription record. The payment provider
// is the source of truth for billing state; this record is a cache used for
// authorization and UI decisions, converged by the webhook reconciler and
// written through by user-initiated commands.
//
// Invariants (enforced by the store and the reconciler transitions):
//   - SubscriptionActive == true implies SubscriptionID != nil.
//   - SubscriptionID is unique across profiles when non-nil.
//   - After a subscription-deleted event, SubscriptionActive == false and
//     SubscriptionTier and SubscriptionID are both nil. A payment-failed
//     event deliberately leaves tier and id in place with active=false
//     (the provider may retry the charge); only SubscriptionActive is
//     authoritative for authorization.
type Profile struct {
	// UserID is the identity provider's stable user identifier.
	UserID string

	// Email is informational only, written at profile creation.
	Email string

	// SubscriptionActive is true iff the cached state believes there is a
	// paid, non-canceled subscription.
	SubscriptionActive bool

	// SubscriptionTier is the plan of the active subscription, nil when
	// there is none (or it is unknown).
	SubscriptionTier *PlanType

	// SubscriptionID is the payment provider's subscription identifier.
	// It is the alternate lookup key for provider events that do not carry
	// the user id (failed invoices, deletions).
	SubscriptionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileStore provides atomic access to cached profiles, keyed by user id
// and, secondarily, by provider subscription id.
//
// Every mutation is a single conditional statement: concurrent writers for
// the same record (a user-initiated cancel racing the deletion webhook, a
// replayed checkout event racing the first delivery) must never interleave
// a read-then-write. Mutations report whether a row was hit so callers can
// distinguish a benign no-op from a change.
type ProfileStore interface {
	// Get returns the profile for a user, or (nil, nil) when none exists.
	Get(ctx context.Context, userID string) (*Profile, error)

	// GetBySubscriptionID returns the profile holding the given provider
	// subscription id, or (nil, nil) when none does.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Profile, error)

	// Create inserts a new inactive profile. Returns false if a profile
	// already exists for the user (not an error).
	Create(ctx context.Context, userID, email string) (bool, error)

	// Activate marks the profile subscribed: active=true, tier, and
	// subscription id are overwritten unconditionally. Replaying the same
	// activation yields the same end state. Returns false when no profile
	// exists for the user.
	Activate(ctx context.Context, userID string, tier *PlanType, subscriptionID string) (bool, error)

	// MarkPaymentFailed sets active=false on the profile holding the given
	// subscription id, leaving tier and subscription id untouched. Returns
	// false when no profile holds the id.
	MarkPaymentFailed(ctx context.Context, subscriptionID string) (bool, error)

	// ClearBySubscriptionID resets the profile holding the given
	// subscription id to the inactive state: active=false, tier and
	// subscription id nil. Used by the deletion event and by the
	// optimistic write-through on cancel. Returns false when no profile
	// holds the id.
	ClearBySubscriptionID(ctx context.Context, subscriptionID string) (bool, error)

	// SetTier updates the cached tier of the profile that still holds the
	// given subscription id, without touching the active flag or the id.
	// Used by plan changes; conditioning on the id turns the write-through
	// into a no-op when the reconciler replaced or cleared the subscription
	// in the meantime. Returns false when no profile holds both keys.
	SetTier(ctx context.Context, userID string, tier PlanType, subscriptionID string) (bool, error)
}
