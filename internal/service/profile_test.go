package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/billing/internal/domain"
)

func TestEnsureProfile_CreatesOnFirstCall(t *testing.T) {
	store := newMemProfileStore()
	svc := NewProfileService(store, nil)

	profile, created, err := svc.EnsureProfile(context.Background(), "user_1", "a@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user_1", profile.UserID)
	assert.Equal(t, "a@example.com", profile.Email)
	assert.False(t, profile.SubscriptionActive)
	assert.Nil(t, profile.SubscriptionTier)
	assert.Nil(t, profile.SubscriptionID)
}

func TestEnsureProfile_ReplayIsNoOp(t *testing.T) {
	store := newMemProfileStore()
	svc := NewProfileService(store, nil)

	_, created, err := svc.EnsureProfile(context.Background(), "user_1", "a@example.com")
	require.NoError(t, err)
	require.True(t, created)

	// Second sign-in must not reset anything, even with a changed email.
	store.seed(domain.Profile{
		UserID:             "user_1",
		Email:              "a@example.com",
		SubscriptionActive: true,
		SubscriptionTier:   planPtr(domain.PlanMonth),
		SubscriptionID:     strPtr("sub_123"),
	})

	profile, created, err := svc.EnsureProfile(context.Background(), "user_1", "b@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "a@example.com", profile.Email)
	assert.True(t, profile.SubscriptionActive)
}

func TestEnsureProfile_MissingUserID(t *testing.T) {
	svc := NewProfileService(newMemProfileStore(), nil)

	_, _, err := svc.EnsureProfile(context.Background(), "", "a@example.com")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestSubscriptionStatus(t *testing.T) {
	store := newMemProfileStore()
	store.seed(domain.Profile{
		UserID:             "user_1",
		SubscriptionActive: true,
		SubscriptionTier:   planPtr(domain.PlanYear),
		SubscriptionID:     strPtr("sub_123"),
	})
	svc := NewProfileService(store, nil)

	status, err := svc.SubscriptionStatus(context.Background(), "user_1")
	require.NoError(t, err)
	assert.True(t, status.Active)
	require.NotNil(t, status.Tier)
	assert.Equal(t, domain.PlanYear, *status.Tier)
}

// Tier survives a failed payment; only the active flag drops. The UI shows
// the plan the user still nominally has while the provider retries.
func TestSubscriptionStatus_PaymentFailedWindow(t *testing.T) {
	store := newMemProfileStore()
	store.seed(domain.Profile{
		UserID:           "user_1",
		SubscriptionTier: planPtr(domain.PlanMonth),
		SubscriptionID:   strPtr("sub_123"),
	})
	svc := NewProfileService(store, nil)

	status, err := svc.SubscriptionStatus(context.Background(), "user_1")
	require.NoError(t, err)
	assert.False(t, status.Active)
	require.NotNil(t, status.Tier)
	assert.Equal(t, domain.PlanMonth, *status.Tier)
}

func TestSubscriptionStatus_MissingProfile(t *testing.T) {
	svc := NewProfileService(newMemProfileStore(), nil)

	_, err := svc.SubscriptionStatus(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestIsSubscriptionActive(t *testing.T) {
	store := newMemProfileStore()
	store.seed(domain.Profile{
		UserID:             "active_user",
		SubscriptionActive: true,
		SubscriptionID:     strPtr("sub_123"),
	})
	store.seed(domain.Profile{UserID: "inactive_user"})
	svc := NewProfileService(store, nil)

	active, err := svc.IsSubscriptionActive(context.Background(), "active_user")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = svc.IsSubscriptionActive(context.Background(), "inactive_user")
	require.NoError(t, err)
	assert.False(t, active)

	// Unknown user gates closed without an error.
	active, err = svc.IsSubscriptionActive(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestIsSubscriptionActive_StoreFailure(t *testing.T) {
	store := newMemProfileStore()
	store.err = errors.New("connection refused")
	svc := NewProfileService(store, nil)

	_, err := svc.IsSubscriptionActive(context.Background(), "user_1")
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}
