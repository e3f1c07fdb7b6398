package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/platewise/billing/internal/billing"
	"github.com/platewise/billing/internal/handler"
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/service"
	"github.com/platewise/billing/internal/telemetry"
	"github.com/stripe/stripe-go/v82"
)

// maxPayloadBytes caps webhook request bodies. Stripe events are small;
// anything larger is rejected before signature verification.
const maxPayloadBytes = 64 * 1024

// eventKind enumerates the webhook event types this service reconciles.
// Everything else is acknowledged and ignored.
type eventKind string

const (
	eventCheckoutCompleted   eventKind = "checkout.session.completed"
	eventInvoiceFailed       eventKind = "invoice.payment_failed"
	eventSubscriptionDeleted eventKind = "customer.subscription.deleted"
)

// StripeHandler receives Stripe webhook events and applies them to
// subscription profiles through the subscription service.
type StripeHandler struct {
	provider      billing.Provider
	subscriptions service.SubscriptionService
	webhookSecret string
}

// NewStripeHandler creates a new Stripe webhook handler.
func NewStripeHandler(provider billing.Provider, subscriptions service.SubscriptionService, webhookSecret string) *StripeHandler {
	return &StripeHandler{
		provider:      provider,
		subscriptions: subscriptions,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Signature verification happens on the raw payload before any parsing.
// A 2xx response acknowledges the event; any 5xx makes Stripe redeliver,
// which is safe because every state transition is idempotent.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := middleware.GetLogger(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("failed to read webhook payload", "error", err)
		http.Error(w, "error reading request body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.provider.VerifyWebhookSignature(payload, signature, h.webhookSecret); err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warn("failed to parse webhook event", "error", err)
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	logger = logger.With("event_type", string(event.Type), "event_id", event.ID)

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(string(event.Type)).Inc()
		defer func() {
			telemetry.Business.WebhookLatency.WithLabelValues(string(event.Type)).Observe(time.Since(startTime).Seconds())
		}()
	}

	switch eventKind(event.Type) {
	case eventCheckoutCompleted:
		err = h.handleCheckoutCompleted(r, event)
	case eventInvoiceFailed:
		err = h.handleInvoicePaymentFailed(r, event)
	case eventSubscriptionDeleted:
		err = h.handleSubscriptionDeleted(r, event)
	default:
		logger.Debug("ignoring unhandled event type")
	}

	if err != nil {
		logger.Error("webhook processing failed", "error", err)
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(string(event.Type), "processing_failed").Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookProcessed.WithLabelValues(string(event.Type)).Inc()
	}

	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

// handleCheckoutCompleted activates a subscription from a completed
// checkout session. Sessions missing the user correlation or a subscription
// reference did not originate from this service's checkout flow and are
// skipped.
func (h *StripeHandler) handleCheckoutCompleted(r *http.Request, event stripe.Event) error {
	logger := middleware.GetLogger(r.Context())

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		logger.Warn("failed to parse checkout session from event", "error", err)
		return nil
	}

	// The plan type is optional: a session missing it still activates, with
	// a null cached tier. Only the user correlation is mandatory.
	userID := session.Metadata[service.MetadataUserIDKey]
	planType := session.Metadata[service.MetadataPlanTypeKey]
	if userID == "" {
		logger.Warn("checkout session missing user metadata, skipping",
			"session_id", session.ID)
		return nil
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		logger.Warn("checkout session has no subscription, skipping",
			"session_id", session.ID)
		return nil
	}

	return h.subscriptions.SyncCheckoutCompleted(r.Context(), service.CheckoutCompletedParams{
		UserID:         userID,
		PlanType:       planType,
		SubscriptionID: session.Subscription.ID,
	})
}

// handleInvoicePaymentFailed marks the owning profile inactive. The tier
// and subscription reference are kept so the customer can recover by
// fixing their payment method.
func (h *StripeHandler) handleInvoicePaymentFailed(r *http.Request, event stripe.Event) error {
	logger := middleware.GetLogger(r.Context())

	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		logger.Warn("failed to parse invoice from event", "error", err)
		return nil
	}

	subscriptionID := invoiceSubscriptionID(&invoice)
	if subscriptionID == "" {
		logger.Warn("invoice has no subscription, skipping", "invoice_id", invoice.ID)
		return nil
	}

	return h.subscriptions.SyncInvoicePaymentFailed(r.Context(), subscriptionID)
}

// handleSubscriptionDeleted resets the owning profile to the free state.
func (h *StripeHandler) handleSubscriptionDeleted(r *http.Request, event stripe.Event) error {
	logger := middleware.GetLogger(r.Context())

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		logger.Warn("failed to parse subscription from event", "error", err)
		return nil
	}

	if sub.ID == "" {
		logger.Warn("subscription deleted event missing ID, skipping")
		return nil
	}

	return h.subscriptions.SyncSubscriptionDeleted(r.Context(), sub.ID)
}

// invoiceSubscriptionID extracts the subscription reference from an
// invoice. One-off invoices have no subscription parent.
func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice.Parent == nil || invoice.Parent.SubscriptionDetails == nil {
		return ""
	}
	if invoice.Parent.SubscriptionDetails.Subscription == nil {
		return ""
	}
	return invoice.Parent.SubscriptionDetails.Subscription.ID
}
