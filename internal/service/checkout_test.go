package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/billing/internal/billing"
	"github.com/platewise/billing/internal/domain"
)

func newCheckoutFixture() (*billing.MockProvider, CheckoutService) {
	provider := &billing.MockProvider{}
	svc := NewCheckoutService(provider, testCatalog(), "https://app.platewise.test", nil)
	return provider, svc
}

func TestCreateCheckoutSession_ReturnsRedirectURL(t *testing.T) {
	provider, svc := newCheckoutFixture()
	provider.CreateCheckoutSessionFunc = func(_ context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
		return &billing.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.test/cs_123"}, nil
	}

	url, err := svc.CreateCheckoutSession(context.Background(), CreateCheckoutParams{
		UserID:   "user_1",
		Email:    "a@example.com",
		PlanType: "month",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_123", url)

	require.Len(t, provider.CheckoutCalls, 1)
	call := provider.CheckoutCalls[0]
	assert.Equal(t, "price_month_test", call.PriceID)
	assert.Equal(t, "a@example.com", call.CustomerEmail)
	assert.Equal(t, "user_1", call.Metadata[MetadataUserIDKey])
	assert.Equal(t, "month", call.Metadata[MetadataPlanTypeKey])
	assert.Equal(t, "https://app.platewise.test/?session_id={CHECKOUT_SESSION_ID}", call.SuccessURL)
	assert.Equal(t, "https://app.platewise.test/subscribe", call.CancelURL)
}

func TestCreateCheckoutSession_UnknownPlanType(t *testing.T) {
	provider, svc := newCheckoutFixture()

	_, err := svc.CreateCheckoutSession(context.Background(), CreateCheckoutParams{
		UserID:   "user_1",
		Email:    "a@example.com",
		PlanType: "decade",
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Empty(t, provider.CheckoutCalls, "provider must not be called for an invalid plan")
}

func TestCreateCheckoutSession_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		params CreateCheckoutParams
	}{
		{"missing user id", CreateCheckoutParams{Email: "a@example.com", PlanType: "month"}},
		{"missing email", CreateCheckoutParams{UserID: "user_1", PlanType: "month"}},
		{"invalid email", CreateCheckoutParams{UserID: "user_1", Email: "not-an-email", PlanType: "month"}},
		{"missing plan type", CreateCheckoutParams{UserID: "user_1", Email: "a@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, svc := newCheckoutFixture()

			_, err := svc.CreateCheckoutSession(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Empty(t, provider.CheckoutCalls)
		})
	}
}

func TestCreateCheckoutSession_ProviderFailure(t *testing.T) {
	provider, svc := newCheckoutFixture()
	provider.CreateCheckoutSessionFunc = func(_ context.Context, _ billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
		return nil, errors.New("stripe unavailable")
	}

	_, err := svc.CreateCheckoutSession(context.Background(), CreateCheckoutParams{
		UserID:   "user_1",
		Email:    "a@example.com",
		PlanType: "week",
	})
	require.Error(t, err)
	assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
}
