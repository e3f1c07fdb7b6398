package api

import (
	"encoding/json"
	"net/http"

	"github.com/platewise/billing/internal/domain"
	"github.com/platewise/billing/internal/handler"
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/service"
)

// CheckoutHandler handles checkout session creation
type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateCheckoutRequest is the request body for POST /api/checkout
type CreateCheckoutRequest struct {
	PlanType string `json:"plan_type"`
}

// CheckoutResponse is the response from POST /api/checkout
type CheckoutResponse struct {
	URL string `json:"url"`
}

// HandleCreateCheckoutSession handles POST /api/checkout
// Creates a hosted checkout session for the authenticated user and returns
// the redirect URL. The user's identity, not the request body, determines
// which profile the eventual completion event will activate.
func (h *CheckoutHandler) HandleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "api.checkout", "Authentication required"))
		return
	}

	var req CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "api.checkout", "Invalid request body"))
		return
	}

	checkoutURL, err := h.checkoutService.CreateCheckoutSession(ctx, service.CreateCheckoutParams{
		UserID:   user.ID,
		Email:    user.Email,
		PlanType: req.PlanType,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, CheckoutResponse{URL: checkoutURL})
}
