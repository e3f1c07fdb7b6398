package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platewise/billing/internal/domain"
)

// ProfileStore implements domain.ProfileStore using PostgreSQL.
//
// Every mutation is a single UPDATE or INSERT: the row lock taken by the
// statement is the only synchronization between the webhook reconciler and
// user-initiated commands touching the same profile. There are no
// read-then-write sequences here.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// Compile-time check to ensure ProfileStore implements domain.ProfileStore.
var _ domain.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a new ProfileStore instance.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

const profileColumns = `user_id, email, subscription_active, subscription_tier, stripe_subscription_id, created_at, updated_at`

// Get returns the profile for a user, or (nil, nil) when none exists.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`,
		userID,
	)
	return scanProfile(row)
}

// GetBySubscriptionID returns the profile holding the given provider
// subscription id, or (nil, nil) when none does.
func (s *ProfileStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE stripe_subscription_id = $1`,
		subscriptionID,
	)
	return scanProfile(row)
}

// Create inserts a new inactive profile. An existing profile is left
// untouched and reported via the bool, so first-visit creation is
// idempotent under concurrent requests.
func (s *ProfileStore) Create(ctx context.Context, userID, email string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, email)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, email,
	)
	if err != nil {
		return false, fmt.Errorf("profile create: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Activate marks the profile subscribed, overwriting tier and subscription
// id unconditionally. Replays of the same activation converge to the same
// row state.
func (s *ProfileStore) Activate(ctx context.Context, userID string, tier *domain.PlanType, subscriptionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET subscription_active = TRUE,
		     subscription_tier = $2,
		     stripe_subscription_id = $3,
		     updated_at = now()
		 WHERE user_id = $1`,
		userID, tierValue(tier), subscriptionID,
	)
	if err != nil {
		return false, fmt.Errorf("profile activate: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaymentFailed flips active off for the profile holding the
// subscription id. Tier and subscription id stay put: the provider may
// retry the charge and reactivate without a new checkout.
func (s *ProfileStore) MarkPaymentFailed(ctx context.Context, subscriptionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET subscription_active = FALSE,
		     updated_at = now()
		 WHERE stripe_subscription_id = $1`,
		subscriptionID,
	)
	if err != nil {
		return false, fmt.Errorf("profile mark payment failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearBySubscriptionID resets the profile holding the subscription id to
// the inactive state.
func (s *ProfileStore) ClearBySubscriptionID(ctx context.Context, subscriptionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET subscription_active = FALSE,
		     subscription_tier = NULL,
		     stripe_subscription_id = NULL,
		     updated_at = now()
		 WHERE stripe_subscription_id = $1`,
		subscriptionID,
	)
	if err != nil {
		return false, fmt.Errorf("profile clear by subscription: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetTier updates the cached tier without touching the active flag or
// subscription id. The subscription id predicate makes the statement miss
// when the reconciler moved the row off that subscription in the meantime.
func (s *ProfileStore) SetTier(ctx context.Context, userID string, tier domain.PlanType, subscriptionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET subscription_tier = $2,
		     updated_at = now()
		 WHERE user_id = $1
		   AND stripe_subscription_id = $3`,
		userID, string(tier), subscriptionID,
	)
	if err != nil {
		return false, fmt.Errorf("profile set tier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// row is satisfied by pgx.Row; declared so scanProfile is testable.
type row interface {
	Scan(dest ...any) error
}

func scanProfile(r row) (*domain.Profile, error) {
	var (
		p     domain.Profile
		tier  *string
		subID *string
	)
	err := r.Scan(&p.UserID, &p.Email, &p.SubscriptionActive, &tier, &subID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile scan: %w", err)
	}
	if tier != nil {
		t := domain.PlanType(*tier)
		p.SubscriptionTier = &t
	}
	p.SubscriptionID = subID
	return &p, nil
}

func tierValue(tier *domain.PlanType) *string {
	if tier == nil {
		return nil
	}
	s := string(*tier)
	return &s
}
