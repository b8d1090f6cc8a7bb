package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/domain"
	"github.com/inspecio/platform-iam/internal/infra/config"
	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/transport/http/handlers"
	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
	CSRF          *usecase.CSRFService
	Quotas        *usecase.QuotaService
	RateLimiter   *usecase.RateLimiter
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Metrics  *telemetry.Metrics
	Services ServiceSet
	Guard    *middleware.RouteGuard
	Cookies  *middleware.CookieManager
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if origins := deps.Config.CORS.AllowedOrigins; len(origins) > 0 {
		r.Use(middleware.CORS(origins))
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: deps.Config.Telemetry.Namespace,
	})
	if err != nil {
		deps.Logger.Warn("http metrics registration failed", zap.Error(err))
	} else {
		r.Use(httpMetrics.Handler())
	}

	// Session resolution runs on every request; enforcement is left to the
	// guards further down.
	r.Use(middleware.ResolveSession(deps.Services.Auth, deps.Cookies))
	r.Use(middleware.CSRFProtect(deps.Services.CSRF, deps.Metrics))

	checks := map[string]handlers.ReadinessCheck{}
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}
	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	guard := deps.Guard
	authMiddleware := middleware.RequireAuth(deps.Services.Auth, deps.Cookies)
	limiter := deps.Services.RateLimiter
	isDev := deps.Config.IsDevelopment()

	api := r.Group("/api/v1")
	api.Use(rateLimit(limiter, usecase.RateLimitGeneric, deps.Metrics))
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.CSRF, deps.Cookies, deps.Metrics)
		authHandler.RegisterRoutes(authGroup,
			rateLimit(limiter, usecase.RateLimitLogin, deps.Metrics))

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registrationHandler.RegisterRoutes(authGroup,
			rateLimit(limiter, usecase.RateLimitRegistration, deps.Metrics))

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, isDev)
		passwordHandler.RegisterRoutes(authGroup,
			rateLimit(limiter, usecase.RateLimitPasswordReset, deps.Metrics))

		authed := api.Group("")
		authed.Use(authMiddleware)

		sessionHandler := handlers.NewSessionHandler(deps.Services.CSRF)
		sessionHandler.RegisterRoutes(api, authed)

		accessHandler := handlers.NewAccessHandler()
		accessHandler.RegisterRoutes(api)

		quotaGroup := api.Group("")
		quotaGroup.Use(authMiddleware)
		quotaGroup.Use(guard.Guard(usecase.GuardConstraint{
			RequireAuth: true,
			Permission:  domain.PermissionViewDashboard,
		}))
		quotaHandler := handlers.NewQuotaHandler(deps.Services.Quotas)
		quotaHandler.RegisterRoutes(quotaGroup)
	}

	return r
}

func rateLimit(limiter *usecase.RateLimiter, category usecase.RateLimitCategory, metrics *telemetry.Metrics) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter, category, middleware.ClientIPIdentifier(), metrics)
}
