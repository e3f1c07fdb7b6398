package routes

import (
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/router"
)

// RegisterAPIRoutes registers the subscription billing API.
//
// The user-facing routes require an authenticated user in the request
// context (WithUser must run earlier in the chain). The check-subscription
// route is called service-to-service with an explicit user ID and carries
// no end-user credential, so it skips RequireAuth.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Post("/api/checkout", deps.CheckoutHandler.HandleCreateCheckoutSession, middleware.RequireAuth)
	r.Post("/api/profile", deps.ProfileHandler.HandleEnsureProfile, middleware.RequireAuth)

	r.Get("/api/subscription/status", deps.SubscriptionHandler.HandleStatus, middleware.RequireAuth)
	r.Post("/api/subscription/change-plan", deps.SubscriptionHandler.HandleChangePlan, middleware.RequireAuth)
	r.Post("/api/subscription/cancel", deps.SubscriptionHandler.HandleCancel, middleware.RequireAuth)

	r.Get("/api/check-subscription", deps.ProfileHandler.HandleCheckSubscription)
}
