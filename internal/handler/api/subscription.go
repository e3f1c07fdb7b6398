package api

import (
	"encoding/json"
	"net/http"

	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/handler"
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/service"
)

// SubscriptionHandler handles subscription status reads and lifecycle commands
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	profileService      service.ProfileService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService service.SubscriptionService, profileService service.ProfileService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		profileService:      profileService,
	}
}

// SubscriptionStatusResponse is the response from GET /api/subscription/status
type SubscriptionStatusResponse struct {
	SubscriptionActive bool             `json:"subscription_active"`
	SubscriptionTier   *domain.PlanType `json:"subscription_tier"`
}

// ChangePlanRequest is the request body for POST /api/subscription/change-plan
type ChangePlanRequest struct {
	PlanType string `json:"plan_type"`
}

// HandleStatus handles GET /api/subscription/status
// Returns the cached subscription state for the authenticated user.
func (h *SubscriptionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "api.subscription", "Authentication required"))
		return
	}

	status, err := h.profileService.SubscriptionStatus(ctx, user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, SubscriptionStatusResponse{
		SubscriptionActive: status.Active,
		SubscriptionTier:   status.Tier,
	})
}

// HandleChangePlan handles POST /api/subscription/change-plan
// Moves the user's existing subscription to a different plan. The provider
// is updated first; the cached tier follows only on success.
func (h *SubscriptionHandler) HandleChangePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "api.subscription", "Authentication required"))
		return
	}

	var req ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "api.subscription", "Invalid request body"))
		return
	}

	profile, err := h.subscriptionService.ChangePlan(ctx, service.ChangePlanParams{
		UserID:   user.ID,
		PlanType: req.PlanType,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, SubscriptionStatusResponse{
		SubscriptionActive: profile.SubscriptionActive,
		SubscriptionTier:   profile.SubscriptionTier,
	})
}

// HandleCancel handles POST /api/subscription/cancel
// Schedules the subscription to end at the period boundary and clears the
// cached state optimistically. The deletion webhook later confirms.
func (h *SubscriptionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "api.subscription", "Authentication required"))
		return
	}

	profile, err := h.subscriptionService.Cancel(ctx, user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, SubscriptionStatusResponse{
		SubscriptionActive: profile.SubscriptionActive,
		SubscriptionTier:   profile.SubscriptionTier,
	})
}
