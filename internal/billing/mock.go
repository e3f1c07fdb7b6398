package billing

import (
	"context"
	"sync"
)

// MockProvider implements Provider for testing. Behavior is overridden per
// test by setting the function fields; unset functions return zero values.
// Calls are recorded so tests can assert command issuance and ordering.
type MockProvider struct {
	mu sync.Mutex

	CreateCheckoutSessionFunc   func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)
	UpdateSubscriptionPriceFunc func(ctx context.Context, params UpdateSubscriptionPriceParams) (*Subscription, error)
	CancelSubscriptionFunc      func(ctx context.Context, params CancelSubscriptionParams) (*Subscription, error)
	VerifyWebhookSignatureFunc  func(payload []byte, signature string, secret string) error

	CheckoutCalls []CreateCheckoutSessionParams
	UpdateCalls   []UpdateSubscriptionPriceParams
	CancelCalls   []CancelSubscriptionParams
}

// Compile-time check to ensure MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.mu.Lock()
	m.CheckoutCalls = append(m.CheckoutCalls, params)
	m.mu.Unlock()

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}
	return &CheckoutSession{ID: "cs_test123", URL: "https://checkout.example.test/cs_test123"}, nil
}

func (m *MockProvider) UpdateSubscriptionPrice(ctx context.Context, params UpdateSubscriptionPriceParams) (*Subscription, error) {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, params)
	m.mu.Unlock()

	if m.UpdateSubscriptionPriceFunc != nil {
		return m.UpdateSubscriptionPriceFunc(ctx, params)
	}
	return &Subscription{ID: params.SubscriptionID, Status: "active", PriceID: params.PriceID}, nil
}

func (m *MockProvider) CancelSubscription(ctx context.Context, params CancelSubscriptionParams) (*Subscription, error) {
	m.mu.Lock()
	m.CancelCalls = append(m.CancelCalls, params)
	m.mu.Unlock()

	if m.CancelSubscriptionFunc != nil {
		return m.CancelSubscriptionFunc(ctx, params)
	}
	return &Subscription{ID: params.SubscriptionID, Status: "active", CancelAtPeriodEnd: params.CancelAtPeriodEnd}, nil
}

func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}
	return nil
}
