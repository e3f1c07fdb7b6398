package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/platewise/billing/internal/billing"
	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/plans"
	"github.com/platewise/billing/internal/telemetry"
)

// CheckoutService creates payment provider checkout sessions for new
// subscriptions.
type CheckoutService interface {
	// CreateCheckoutSession validates the request, resolves the plan's
	// price reference and asks the provider for a hosted checkout session.
	// Returns the redirect URL.
	//
	// No profile state changes here: the cache is only updated once the
	// provider confirms completion via webhook.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutParams) (string, error)
}

// CreateCheckoutParams contains parameters for creating a checkout session.
// UserID and Email come from the authenticated identity, PlanType from the
// request body.
type CreateCheckoutParams struct {
	UserID   string `validate:"required"`
	Email    string `validate:"required,email"`
	PlanType string `validate:"required"`
}

// MetadataUserIDKey and MetadataPlanTypeKey are the checkout session
// metadata keys. The provider echoes session metadata back verbatim on the
// completion event; these keys are the only reliable correlation between a
// checkout and a profile.
const (
	MetadataUserIDKey   = "user_id"
	MetadataPlanTypeKey = "plan_type"
)

type checkoutService struct {
	provider billing.Provider
	catalog  *plans.Catalog
	baseURL  string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCheckoutService creates a new CheckoutService. baseURL is the public
// origin used to build the success and cancel redirect targets.
func NewCheckoutService(provider billing.Provider, catalog *plans.Catalog, baseURL string, logger *slog.Logger) CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &checkoutService{
		provider: provider,
		catalog:  catalog,
		baseURL:  baseURL,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *checkoutService) CreateCheckoutSession(ctx context.Context, params CreateCheckoutParams) (string, error) {
	const op = "checkout.create"

	if err := s.validate.Struct(params); err != nil {
		return "", domain.Errorf(domain.EINVALID, op, "plan type, user id, or email not provided")
	}

	planType, ok := domain.ParsePlanType(params.PlanType)
	if !ok {
		return "", domain.Errorf(domain.EINVALID, op, "plan type must be one of: week, month, year")
	}
	plan, ok := s.catalog.ByType(planType)
	if !ok {
		return "", domain.Errorf(domain.EINVALID, op, "plan type not found: %s", params.PlanType)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		PriceID:       plan.PriceID,
		CustomerEmail: params.Email,
		Metadata: map[string]string{
			MetadataUserIDKey:   params.UserID,
			MetadataPlanTypeKey: string(planType),
		},
		SuccessURL: s.baseURL + "/?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/subscribe",
	})
	if err != nil {
		return "", domain.Upstream(err, op, "failed to create checkout session")
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutSessionsCreated.WithLabelValues(string(planType)).Inc()
	}

	s.logger.Info("checkout session created",
		"user_id", params.UserID,
		"plan_type", planType,
		"session_id", session.ID,
	)

	return session.URL, nil
}
