package service

import (
	"context"
	"log/slog"

	"github.com/platewise/billing/internal/billing"
	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/plans"
	"github.com/platewise/billing/internal/telemetry"
)

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	store    domain.ProfileStore
	provider billing.Provider
	catalog  *plans.Catalog
	logger   *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(store domain.ProfileStore, provider billing.Provider, catalog *plans.Catalog, logger *slog.Logger) SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionService{
		store:    store,
		provider: provider,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *subscriptionService) ChangePlan(ctx context.Context, params ChangePlanParams) (*domain.Profile, error) {
	const op = "subscription.change_plan"

	planType, ok := domain.ParsePlanType(params.PlanType)
	if !ok {
		return nil, domain.Errorf(domain.EINVALID, op, "plan type must be one of: week, month, year")
	}
	plan, ok := s.catalog.ByType(planType)
	if !ok {
		return nil, domain.Errorf(domain.EINVALID, op, "plan type not found: %s", params.PlanType)
	}

	profile, err := s.store.Get(ctx, params.UserID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load profile")
	}
	if profile == nil {
		return nil, domain.NotFound(op, "profile", params.UserID)
	}
	if profile.SubscriptionID == nil {
		return nil, domain.Errorf(domain.ENOTFOUND, op, "no active subscription found")
	}

	// Provider first: the cache is only updated once the source of truth
	// has accepted the change.
	_, err = s.provider.UpdateSubscriptionPrice(ctx, billing.UpdateSubscriptionPriceParams{
		SubscriptionID: *profile.SubscriptionID,
		PriceID:        plan.PriceID,
	})
	if err != nil {
		return nil, domain.Upstream(err, op, "failed to update subscription plan")
	}

	// The write-through is keyed on the subscription id read above. If the
	// reconciler cleared or replaced the subscription while the provider
	// call was in flight, the statement misses and the reconciled state
	// stands.
	updated, err := s.store.SetTier(ctx, params.UserID, planType, *profile.SubscriptionID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update cached tier")
	}
	if !updated {
		s.logger.Warn("subscription changed during plan update, keeping reconciled state",
			"user_id", params.UserID,
			"subscription_id", *profile.SubscriptionID,
		)
		fresh, err := s.store.Get(ctx, params.UserID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to reload profile")
		}
		return fresh, nil
	}

	s.logger.Info("subscription plan changed",
		"user_id", params.UserID,
		"subscription_id", *profile.SubscriptionID,
		"plan_type", planType,
	)

	profile.SubscriptionTier = &planType
	return profile, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "subscription.cancel"

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load profile")
	}
	if profile == nil {
		return nil, domain.NotFound(op, "profile", userID)
	}
	if profile.SubscriptionID == nil {
		return nil, domain.Conflict(op, "subscription is already inactive")
	}

	subscriptionID := *profile.SubscriptionID

	_, err = s.provider.CancelSubscription(ctx, billing.CancelSubscriptionParams{
		SubscriptionID:    subscriptionID,
		CancelAtPeriodEnd: true,
	})
	if err != nil {
		return nil, domain.Upstream(err, op, "failed to cancel subscription")
	}

	// Optimistic write-through: clear the cache now instead of waiting for
	// the deletion event. Keying the clear on the subscription id means the
	// event arriving later no-ops, and a different subscription activated
	// while the provider call was in flight is left alone; both orders
	// converge on the same terminal state.
	updated, err := s.store.ClearBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to clear cached subscription")
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsCanceled.WithLabelValues("command").Inc()
	}

	s.logger.Info("subscription canceled",
		"user_id", userID,
		"subscription_id", subscriptionID,
	)

	if !updated {
		fresh, err := s.store.Get(ctx, userID)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to reload profile")
		}
		return fresh, nil
	}

	profile.SubscriptionActive = false
	profile.SubscriptionTier = nil
	profile.SubscriptionID = nil
	return profile, nil
}

func (s *subscriptionService) SyncCheckoutCompleted(ctx context.Context, params CheckoutCompletedParams) error {
	const op = "subscription.sync_checkout_completed"

	// An unknown plan type in the metadata is stored as a null tier rather
	// than rejected: the subscription exists regardless of what the
	// metadata says.
	var tier *domain.PlanType
	if t, ok := domain.ParsePlanType(params.PlanType); ok {
		tier = &t
	}

	updated, err := s.store.Activate(ctx, params.UserID, tier, params.SubscriptionID)
	if err != nil {
		return domain.Internal(err, op, "failed to activate subscription")
	}
	if !updated {
		s.logger.Warn("checkout completed for unknown profile",
			"user_id", params.UserID,
			"subscription_id", params.SubscriptionID,
		)
		return nil
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsActivated.WithLabelValues(params.PlanType).Inc()
	}

	s.logger.Info("subscription activated",
		"user_id", params.UserID,
		"subscription_id", params.SubscriptionID,
		"plan_type", params.PlanType,
	)
	return nil
}

func (s *subscriptionService) SyncInvoicePaymentFailed(ctx context.Context, subscriptionID string) error {
	const op = "subscription.sync_invoice_payment_failed"

	updated, err := s.store.MarkPaymentFailed(ctx, subscriptionID)
	if err != nil {
		return domain.Internal(err, op, "failed to mark payment failed")
	}
	if !updated {
		s.logger.Info("payment failed for unknown subscription",
			"subscription_id", subscriptionID,
		)
		return nil
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentFailures.Inc()
	}

	s.logger.Info("subscription deactivated after failed payment",
		"subscription_id", subscriptionID,
	)
	return nil
}

func (s *subscriptionService) SyncSubscriptionDeleted(ctx context.Context, subscriptionID string) error {
	const op = "subscription.sync_subscription_deleted"

	updated, err := s.store.ClearBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return domain.Internal(err, op, "failed to clear subscription")
	}
	if !updated {
		// Expected after a user-initiated cancel already cleared the row.
		s.logger.Info("deletion for unknown subscription",
			"subscription_id", subscriptionID,
		)
		return nil
	}

	if telemetry.Business != nil {
		telemetry.Business.SubscriptionsCanceled.WithLabelValues("webhook").Inc()
	}

	s.logger.Info("subscription cleared after provider deletion",
		"subscription_id", subscriptionID,
	)
	return nil
}
