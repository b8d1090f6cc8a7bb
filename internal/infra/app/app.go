package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/inspecio/platform-iam/internal/core/port"
	"github.com/inspecio/platform-iam/internal/infra/config"
	"github.com/inspecio/platform-iam/internal/infra/database"
	kafkainfra "github.com/inspecio/platform-iam/internal/infra/kafka"
	"github.com/inspecio/platform-iam/internal/infra/logger"
	redisinfra "github.com/inspecio/platform-iam/internal/infra/redis"
	"github.com/inspecio/platform-iam/internal/infra/security"
	"github.com/inspecio/platform-iam/internal/infra/telemetry"
	"github.com/inspecio/platform-iam/internal/repository/memory"
	postgresrepo "github.com/inspecio/platform-iam/internal/repository/postgres"
	redisrepo "github.com/inspecio/platform-iam/internal/repository/redis"
	"github.com/inspecio/platform-iam/internal/transport/http/middleware"
	"github.com/inspecio/platform-iam/internal/transport/http/routes"
	"github.com/inspecio/platform-iam/internal/usecase"
)

// Application owns the process lifecycle: wiring, serving, and shutdown.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New wires the full dependency graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.ApplySecretFallbacks(log); err != nil {
		return nil, err
	}

	metrics, err := telemetry.New(cfg.Telemetry.Namespace, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	signer, err := security.NewTokenSigner(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token signer: %w", err)
	}

	box, err := security.NewSecretBox(cfg.Auth.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("init secret box: %w", err)
	}

	var (
		redisClient    *redisinfra.Client
		csrfStore      port.CSRFStore
		rateLimitStore port.RateLimitStore
	)
	if cfg.Redis.Host != "" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		csrfStore = redisrepo.NewCSRFStore(redisClient.Client(), cfg.Redis.KeyPrefix+":csrf")
		rateLimitStore = redisrepo.NewRateLimitStore(redisClient.Client(), cfg.Redis.KeyPrefix+":rate-limit")
	} else {
		log.Info("redis not configured, using in-memory stores")
		csrfStore = memory.NewCSRFStore()
		rateLimitStore = memory.NewRateLimitStore()
	}

	var (
		events   port.EventPublisher
		producer *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			events = kafkainfra.NewStubPublisher(log)
		} else {
			events = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		events = kafkainfra.NewStubPublisher(log)
	}

	repos := postgresrepo.NewRepositories(pool)

	csrfService, err := usecase.NewCSRFService(csrfStore, log)
	if err != nil {
		return nil, fmt.Errorf("init csrf service: %w", err)
	}

	authService, err := usecase.NewAuthService(repos.Users, signer, events, log)
	if err != nil {
		return nil, fmt.Errorf("init auth service: %w", err)
	}
	authService.WithCSRF(csrfService)

	registrationService, err := usecase.NewRegistrationService(repos.Users, events, log)
	if err != nil {
		return nil, fmt.Errorf("init registration service: %w", err)
	}

	passwordResetService, err := usecase.NewPasswordResetService(repos.Users, repos.ResetTokens, events, log)
	if err != nil {
		return nil, fmt.Errorf("init password reset service: %w", err)
	}

	quotaService, err := usecase.NewQuotaService(repos.Usage, log)
	if err != nil {
		return nil, fmt.Errorf("init quota service: %w", err)
	}

	rateLimiter, err := usecase.NewRateLimiter(rateLimitStore, events, log)
	if err != nil {
		return nil, fmt.Errorf("init rate limiter: %w", err)
	}
	applyRateLimitOverrides(rateLimiter, cfg.RateLimit)

	cookies := middleware.NewCookieManager(cfg.Cookie.Domain, cfg.Cookie.MaxAge, !cfg.IsDevelopment()).
		WithSecretBox(box)
	guard := middleware.NewRouteGuard(cfg.App.LoginPath, events, metrics, log)

	var cache routes.CacheChecker
	if redisClient != nil {
		cache = redisClient
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Guard:    guard,
		Cookies:  cookies,
		Database: pool,
		Cache:    cache,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			PasswordReset: passwordResetService,
			CSRF:          csrfService,
			Quotas:        quotaService,
			RateLimiter:   rateLimiter,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting IAM API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func applyRateLimitOverrides(limiter *usecase.RateLimiter, cfg config.RateLimitSettings) {
	limiter.WithRule(usecase.RateLimitGeneric, usecase.RateLimitRule{
		Limit:  cfg.GenericLimit,
		Window: cfg.GenericWindow,
	})
	limiter.WithRule(usecase.RateLimitLogin, usecase.RateLimitRule{
		Limit:  cfg.LoginLimit,
		Window: cfg.LoginWindow,
	})
	limiter.WithRule(usecase.RateLimitRegistration, usecase.RateLimitRule{
		Limit:  cfg.RegistrationLimit,
		Window: cfg.RegistrationWindow,
	})
	limiter.WithRule(usecase.RateLimitPasswordReset, usecase.RateLimitRule{
		Limit:  cfg.PasswordResetLimit,
		Window: cfg.PasswordResetWindow,
	})
}
