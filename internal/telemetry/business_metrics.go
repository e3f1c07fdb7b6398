package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for billing-level observability.
type BusinessMetrics struct {
	// Checkout funnel
	CheckoutSessionsCreated *prometheus.CounterVec // labels: plan_type

	// Subscription lifecycle
	SubscriptionsActivated *prometheus.CounterVec // labels: plan_type
	SubscriptionsCanceled  *prometheus.CounterVec // labels: source ("command" or "webhook")
	PaymentFailures        prometheus.Counter

	// Webhooks
	WebhookReceived  *prometheus.CounterVec // labels: event_type
	WebhookProcessed *prometheus.CounterVec // labels: event_type
	WebhookFailed    *prometheus.CounterVec // labels: event_type, reason
	WebhookLatency   *prometheus.HistogramVec
}

// Business is the global metrics instance, set once by Init at startup.
// Nil when metrics are disabled (tests).
var Business *BusinessMetrics

// Init creates, registers, and installs the global business metrics.
func Init(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "platewise"
	}

	subsystem := "billing"

	return &BusinessMetrics{
		CheckoutSessionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_sessions_created_total",
				Help:      "Total checkout sessions created, by plan type",
			},
			[]string{"plan_type"},
		),
		SubscriptionsActivated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscriptions_activated_total",
				Help:      "Total subscriptions activated by completed checkouts",
			},
			[]string{"plan_type"},
		),
		SubscriptionsCanceled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subscriptions_canceled_total",
				Help:      "Total subscriptions canceled, by source (command or webhook)",
			},
			[]string{"source"},
		),
		PaymentFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_failures_total",
				Help:      "Total failed invoice payments applied to profiles",
			},
		),
		WebhookReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total webhook events received, by event type",
			},
			[]string{"event_type"},
		),
		WebhookProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_processed_total",
				Help:      "Total webhook events processed successfully, by event type",
			},
			[]string{"event_type"},
		),
		WebhookFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_failed_total",
				Help:      "Total webhook events that failed processing",
			},
			[]string{"event_type", "reason"},
		),
		WebhookLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_latency_seconds",
				Help:      "Webhook processing duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"event_type"},
		),
	}
}
