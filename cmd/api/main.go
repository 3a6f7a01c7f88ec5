package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crediflow/crediflow-backend/internal/config"
	"github.com/crediflow/crediflow-backend/internal/contract"
	"github.com/crediflow/crediflow-backend/internal/handler"
	"github.com/crediflow/crediflow-backend/internal/middleware"
	"github.com/crediflow/crediflow-backend/internal/repository/postgres"
	"github.com/crediflow/crediflow-backend/internal/repository/storage"
	"github.com/crediflow/crediflow-backend/internal/service"
	"github.com/crediflow/crediflow-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize document storage
	objectRepo, err := storage.NewS3ObjectRepository(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	// Initialize contract renderer
	renderer, err := contract.NewHTMLRenderer(cfg.ContractTemplatePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize contract renderer")
	}

	// Initialize repositories
	staffRepo := postgres.NewStaffUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	loanTypeRepo := postgres.NewLoanTypeRepository(pool)
	loanRepo := postgres.NewLoanApplicationRepository(pool)
	feesRepo := postgres.NewLoanFeesRepository(pool)

	// WebSocket hub doubles as the event publisher for domain events
	hub := websocket.NewHub()

	// Initialize auth middleware (also issues login tokens)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTExpiry)

	// Initialize services
	docService := service.NewDocumentService(objectRepo)
	authService := service.NewAuthService(staffRepo, authMiddleware)
	staffService := service.NewStaffService(staffRepo)
	customerService := service.NewCustomerService(customerRepo, staffRepo, docService, hub)
	loanTypeService := service.NewLoanTypeService(loanTypeRepo)
	loanService := service.NewLoanService(loanRepo, customerRepo, loanTypeRepo, staffRepo, docService, renderer, hub)
	feeService := service.NewLoanFeeService(feesRepo, docService, hub)
	analyticsService := service.NewAnalyticsService(customerRepo, loanRepo, feesRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, staffService)
	staffHandler := handler.NewStaffHandler(staffService)
	customerHandler := handler.NewCustomerHandler(customerService, staffService)
	loanTypeHandler := handler.NewLoanTypeHandler(loanTypeService)
	loanHandler := handler.NewLoanHandler(loanService)
	feeHandler := handler.NewFeeHandler(feeService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Prometheus request metrics
	e.Use(middleware.MetricsMiddleware())

	// Per-user rate limiting
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, authHandler, staffHandler, customerHandler, loanTypeHandler, loanHandler, feeHandler, analyticsHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
