package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using the Stripe API.
type StripeProvider struct {
	client *client.API
	config StripeConfig
}

// Compile-time check to ensure StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a new Stripe billing provider with a bounded
// HTTP timeout and automatic retries for transient network failures.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		MaxNetworkRetries: stripe.Int64(int64(cfg.MaxRetries)),
	})

	sc := &client.API{}
	sc.Init(cfg.APIKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &StripeProvider{
		client: sc,
		config: cfg,
	}, nil
}

// CreateCheckoutSession creates a subscription-mode Checkout session.
// The metadata is attached to the session and echoed back verbatim on the
// checkout.session.completed event.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, p CreateCheckoutSessionParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx

	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}

	return &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

// UpdateSubscriptionPrice switches the subscription's single line item to
// the new price. Plans are single-item subscriptions; a subscription with
// no items means provider state this system did not create.
func (s *StripeProvider) UpdateSubscriptionPrice(ctx context.Context, p UpdateSubscriptionPriceParams) (*Subscription, error) {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx

	sub, err := s.client.Subscriptions.Get(p.SubscriptionID, getParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, ErrNoSubscriptionItems
	}

	updateParams := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(p.PriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	updateParams.Context = ctx

	updated, err := s.client.Subscriptions.Update(p.SubscriptionID, updateParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}

	return mapSubscription(updated), nil
}

// CancelSubscription schedules the subscription to cancel at period end
// (or immediately when CancelAtPeriodEnd is false). The terminal state is
// confirmed asynchronously by a customer.subscription.deleted event.
func (s *StripeProvider) CancelSubscription(ctx context.Context, p CancelSubscriptionParams) (*Subscription, error) {
	if p.CancelAtPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.Context = ctx

		sub, err := s.client.Subscriptions.Update(p.SubscriptionID, params)
		if err != nil {
			return nil, wrapStripeErr(err)
		}
		return mapSubscription(sub), nil
	}

	cancelParams := &stripe.SubscriptionCancelParams{}
	cancelParams.Context = ctx

	sub, err := s.client.Subscriptions.Cancel(p.SubscriptionID, cancelParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return mapSubscription(sub), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature against the
// raw payload bytes.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if err := webhook.ValidatePayload(payload, signature, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}
	return nil
}

func mapSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

// wrapStripeErr converts Stripe SDK errors into StripeError, mapping
// missing resources to ErrSubscriptionNotFound so callers can branch on it.
func wrapStripeErr(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		if sErr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, sErr.Msg)
		}
		return &StripeError{
			Message:       sErr.Msg,
			Code:          string(sErr.Code),
			RequestID:     sErr.RequestID,
			OriginalError: err,
		}
	}
	return err
}
