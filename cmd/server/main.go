package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/platewise/billing/internal"
	"github.com/platewise/billing/internal/billing"
	"github.com/platewise/billing/internal/handler/api"
	"github.com/platewise/billing/internal/handler/webhook"
	"github.com/platewise/billing/internal/identity"
	"github.com/platewise/billing/internal/middleware"
	"github.com/platewise/billing/internal/plans"
	"github.com/platewise/billing/internal/postgres"
	"github.com/platewise/billing/internal/router"
	"github.com/platewise/billing/internal/routes"
	"github.com/platewise/billing/internal/service"
	"github.com/platewise/billing/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	profileStore := postgres.NewProfileStore(pool)

	// Plan catalog from configured price references
	catalog, err := plans.NewCatalog(plans.Config{
		WeekPriceID:  cfg.Stripe.PriceWeekID,
		MonthPriceID: cfg.Stripe.PriceMonthID,
		YearPriceID:  cfg.Stripe.PriceYearID,
	})
	if err != nil {
		return fmt.Errorf("failed to build plan catalog: %w", err)
	}

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:         cfg.Stripe.SecretKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		MaxRetries:     3,
		TimeoutSeconds: cfg.Stripe.TimeoutSeconds,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Identity provider verifies session tokens minted by the identity
	// service with the shared secret
	identityProvider := identity.NewTokenProvider(cfg.SessionSecret)

	// Business metrics
	telemetry.Init("platewise")

	// Initialize services
	checkoutService := service.NewCheckoutService(billingProvider, catalog, cfg.BaseURL, logger)
	subscriptionService := service.NewSubscriptionService(profileStore, billingProvider, catalog, logger)
	profileService := service.NewProfileService(profileStore, logger)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		CheckoutHandler:     api.NewCheckoutHandler(checkoutService),
		ProfileHandler:      api.NewProfileHandler(profileService),
		SubscriptionHandler: api.NewSubscriptionHandler(subscriptionService, profileService),
	}

	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, subscriptionService, cfg.Stripe.WebhookSecret)
	webhookDeps := routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("platewise")

	// Per-IP rate limiting for the user-facing API only. Stripe delivers
	// webhooks in bursts from a handful of egress IPs; throttling those
	// would just churn redeliveries.
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		router.CORS([]string{cfg.BaseURL}),
		middleware.WithClientIP(),
		metrics.Middleware,
		middleware.MaxBodySize(middleware.SmallMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
		middleware.WithUser(identityProvider),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups. Webhook routes stay off the rate-limited
	// group; the handler verifies the Stripe signature instead.
	routes.RegisterAPIRoutes(r.Group(rateLimiter.Middleware), apiDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting billing server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
