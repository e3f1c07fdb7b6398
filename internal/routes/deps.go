package routes

import (
	"net/http"

	"github.com/platewise/billing/internal/handler/api"
)

// APIDeps contains dependencies for the authenticated API routes
type APIDeps struct {
	CheckoutHandler     *api.CheckoutHandler
	ProfileHandler      *api.ProfileHandler
	SubscriptionHandler *api.SubscriptionHandler
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}
