package service

import (
	"context"
	"log/slog"

	"github.com/platewise/billing/internal/domain"
)

// ProfileService provides lazy profile creation and the read-only status
// projections.
//
// Reads are cache-only: they never call the payment provider, so the
// authorization path stays cheap and available even when the provider is
// unreachable.
type ProfileService interface {
	// EnsureProfile creates the user's profile on first authenticated
	// visit. All subscription fields default to inactive/null. Returns
	// the profile and whether it was created by this call; an existing
	// profile is a benign no-op.
	EnsureProfile(ctx context.Context, userID, email string) (*domain.Profile, bool, error)

	// SubscriptionStatus returns the cached active flag and tier for the
	// authenticated user's profile. Missing profile is ENOTFOUND.
	SubscriptionStatus(ctx context.Context, userID string) (*SubscriptionStatus, error)

	// IsSubscriptionActive returns the cached active flag for a user.
	// A missing profile reads as inactive, not as an error: this is the
	// route-gating path and gates closed by default.
	IsSubscriptionActive(ctx context.Context, userID string) (bool, error)
}

// SubscriptionStatus is the profile projection served to the UI.
// Active alone is authoritative for authorization; Tier is display
// metadata and may be non-null while Active is false during the
// payment-failed retry window.
type SubscriptionStatus struct {
	Active bool
	Tier   *domain.PlanType
}

type profileService struct {
	store  domain.ProfileStore
	logger *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store domain.ProfileStore, logger *slog.Logger) ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{store: store, logger: logger}
}

func (s *profileService) EnsureProfile(ctx context.Context, userID, email string) (*domain.Profile, bool, error) {
	const op = "profile.ensure"

	if userID == "" {
		return nil, false, domain.Errorf(domain.EINVALID, op, "user id not provided")
	}
	if email == "" {
		return nil, false, domain.Errorf(domain.EINVALID, op, "email not provided")
	}

	created, err := s.store.Create(ctx, userID, email)
	if err != nil {
		return nil, false, domain.Internal(err, op, "failed to create profile")
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, false, domain.Internal(err, op, "failed to load profile")
	}
	if profile == nil {
		// Created above, so a miss here is store trouble, not absence.
		return nil, false, domain.Errorf(domain.EINTERNAL, op, "profile missing after create")
	}

	if created {
		s.logger.Info("profile created", "user_id", userID)
	}
	return profile, created, nil
}

func (s *profileService) SubscriptionStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	const op = "profile.status"

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load profile")
	}
	if profile == nil {
		return nil, domain.NotFound(op, "profile", userID)
	}

	return &SubscriptionStatus{
		Active: profile.SubscriptionActive,
		Tier:   profile.SubscriptionTier,
	}, nil
}

func (s *profileService) IsSubscriptionActive(ctx context.Context, userID string) (bool, error) {
	const op = "profile.check_active"

	if userID == "" {
		return false, domain.Errorf(domain.EINVALID, op, "user id not provided")
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, domain.Internal(err, op, "failed to load profile")
	}
	if profile == nil {
		return false, nil
	}
	return profile.SubscriptionActive, nil
}
