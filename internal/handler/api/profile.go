package api

import (
	"net/http"

	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/handler"
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/service"
)

// ProfileHandler handles profile creation and subscription status reads
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileResponse is the profile projection returned to clients.
// The subscription ID stays server-side.
type ProfileResponse struct {
	UserID             string           `json:"user_id"`
	Email              string           `json:"email"`
	SubscriptionActive bool             `json:"subscription_active"`
	SubscriptionTier   *domain.PlanType `json:"subscription_tier"`
}

// CheckSubscriptionResponse is the response from GET /api/check-subscription
type CheckSubscriptionResponse struct {
	SubscriptionActive bool `json:"subscriptionActive"`
}

func newProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:             p.UserID,
		Email:              p.Email,
		SubscriptionActive: p.SubscriptionActive,
		SubscriptionTier:   p.SubscriptionTier,
	}
}

// HandleEnsureProfile handles POST /api/profile
// Lazily creates the authenticated user's profile. Returns 201 when the
// profile was created by this call, 200 when it already existed. Clients
// call this on every sign-in, so replays are the common case.
func (h *ProfileHandler) HandleEnsureProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "api.profile", "Authentication required"))
		return
	}

	profile, created, err := h.profileService.EnsureProfile(ctx, user.ID, user.Email)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	handler.JSON(w, status, newProfileResponse(profile))
}

// HandleCheckSubscription handles GET /api/check-subscription?userId=...
// Server-to-server route gating check. Unlike the status endpoint this
// takes an explicit user ID and reports only the active flag; an unknown
// user reads as inactive.
func (h *ProfileHandler) HandleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "api.check_subscription", "userId query parameter is required"))
		return
	}

	active, err := h.profileService.IsSubscriptionActive(ctx, userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, CheckSubscriptionResponse{SubscriptionActive: active})
}
