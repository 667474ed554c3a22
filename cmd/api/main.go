package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhfg/crm-backend/config"
	"github.com/nhfg/crm-backend/pkg/ai"
	"github.com/nhfg/crm-backend/pkg/api/handlers"
	custommw "github.com/nhfg/crm-backend/pkg/api/middleware"
	"github.com/nhfg/crm-backend/pkg/auth"
	"github.com/nhfg/crm-backend/pkg/cache"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/email"
	"github.com/nhfg/crm-backend/pkg/export"
	"github.com/nhfg/crm-backend/pkg/integrationlog"
	"github.com/nhfg/crm-backend/pkg/jobs"
	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/metrics"
	custommiddleware "github.com/nhfg/crm-backend/pkg/middleware"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
	"github.com/nhfg/crm-backend/pkg/testdata"
)

// stores bundles the storage interfaces so memory and postgres backends
// wire identically.
type stores struct {
	leads domain.LeadStore
	logs  domain.IntegrationLogStore
	users domain.UserStore
	ping  func(context.Context) error
	close func()
}

func main() {
	// Load .env if present (development convenience)
	if err := godotenv.Load(); err == nil {
		log.Printf("🔧 Loaded environment from .env")
	}

	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize storage
	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer st.close()

	// Initialize Redis cache (optional)
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, caching disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize services
	leadService := leads.NewService(st.leads, redisClient)
	logService := integrationlog.NewService(st.logs)
	exportService := export.NewService(leadService)
	aiService := ai.NewService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.LeadAlertAddress, cfg.SendGridAPIKey)

	var tokenBlacklist *auth.TokenBlacklist
	if redisClient != nil {
		tokenBlacklist = auth.NewTokenBlacklist(redisClient)
	}

	// Bootstrap the admin account and optional demo data
	if err := bootstrap(cfg, st); err != nil {
		log.Fatalf("❌ Bootstrap failed: %v", err)
	}

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(leadService, logService, emailService, prometheusMetrics, cfg.TikTokWebhookSecret, cfg.GoogleWebhookKey)
	leadHandler := handlers.NewLeadHandler(leadService, aiService)
	authHandler := handlers.NewAuthHandler(st.users, tokenBlacklist, prometheusMetrics, cfg.JWTSecret, cfg.JWTExpirationHours)
	phoneHandler := handlers.NewPhoneHandler()
	exportHandler := handlers.NewExportHandler(exportService, prometheusMetrics)
	logHandler := handlers.NewIntegrationLogHandler(logService)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)
	webhookRateLimiter := custommiddleware.NewRateLimiter(cfg.WebhookRateLimitPerMinute, 20)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "NHFG CRM API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := st.ping(ctx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "disabled"
		if redisClient != nil {
			cacheStatus = "up"
			if _, err := redisClient.Redis.Ping(ctx).Result(); err != nil {
				cacheStatus = "down"
			}
		}

		status := http.StatusOK
		if dbStatus == "down" || cacheStatus == "down" {
			status = http.StatusServiceUnavailable
		}

		return c.JSON(status, map[string]any{
			"status":   map[bool]string{true: "healthy", false: "unhealthy"}[status == http.StatusOK],
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	api := e.Group("/api")

	// Webhook ingress (public, signature-gated, own rate bucket)
	api.POST("/webhooks/:platform", webhookHandler.Receive, webhookRateLimiter.RateLimitMiddleware())

	// Auth (strict rate limit on login)
	api.POST("/auth/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())

	// Authenticated routes
	protected := api.Group("", custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, st.users))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/leads", leadHandler.List)
		protected.GET("/leads/export", exportHandler.Download)
		protected.GET("/leads/:id", leadHandler.GetByID)
		protected.PATCH("/leads/:id/status", leadHandler.UpdateStatus)
		protected.POST("/leads/:id/notes", leadHandler.AppendNote)
		protected.POST("/leads/:id/analyze", leadHandler.Analyze)

		protected.POST("/phone/validate", phoneHandler.ValidatePhone)
		protected.POST("/phone/normalize", phoneHandler.NormalizePhone)

		protected.GET("/integration-logs", logHandler.List)
	}

	// Scheduled jobs
	cronManager := jobs.NewCronManager(logService, cfg.IntegrationLogRetentionDays, nil)
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to set up cron jobs: %v", err)
	}
	cronManager.Start()

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 NHFG CRM API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), webhooks %d req/min",
		cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst, cfg.WebhookRateLimitPerMinute)
	log.Printf("⏰ Cron jobs: Daily 3AM integration log purge (%d day retention)", cfg.IntegrationLogRetentionDays)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// openStores connects to Postgres when DATABASE_URL is set, otherwise falls
// back to the in-memory store for development.
func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("⚠️  DATABASE_URL not set, using in-memory store (data is not persisted)")
		mem := store.NewMemoryStore()
		return &stores{
			leads: mem,
			logs:  mem,
			users: mem,
			ping:  func(context.Context) error { return nil },
			close: func() {},
		}, nil
	}

	pg, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}

	log.Printf("✅ Postgres connected")
	return &stores{
		leads: pg,
		logs:  pg,
		users: pg,
		ping:  pg.Ping,
		close: pg.Close,
	}, nil
}

// bootstrap ensures the configured admin account exists and optionally seeds
// demo leads for local development.
func bootstrap(cfg *config.Config, st *stores) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := st.users.GetUserByEmail(ctx, cfg.AdminEmail); err != nil {
			if !domain.IsNotFound(err) {
				return fmt.Errorf("failed to look up admin user: %w", err)
			}

			hash, err := auth.HashPassword(cfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("failed to hash admin password: %w", err)
			}

			if err := st.users.CreateUser(ctx, &models.User{
				Email:        cfg.AdminEmail,
				Name:         "Administrator",
				Role:         models.RoleAdmin,
				PasswordHash: hash,
			}); err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			log.Printf("✅ Admin account created (%s)", cfg.AdminEmail)
		}
	}

	if cfg.SeedDemoData {
		if err := testdata.SeedLeads(ctx, st.leads, testdata.LeadGeneratorConfig{Count: 50}); err != nil {
			return err
		}
	}

	return nil
}
