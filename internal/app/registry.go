package app

import (
	"net/http"
	"time"

	"hr-calendar/internal/balance"
	"hr-calendar/internal/employee"
	"hr-calendar/internal/event"
	"hr-calendar/internal/messaging/kafka"
	"hr-calendar/internal/middleware"
	"hr-calendar/internal/rbac"
	"hr-calendar/internal/rbac/infra"
	"hr-calendar/internal/realtime"
	"hr-calendar/internal/shared/config"
	"hr-calendar/internal/shared/counter"
	"hr-calendar/internal/shared/response"
	"hr-calendar/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerModules(router *gin.Engine, cfg config.Config, a *App, logger *zap.Logger) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(a.DB)
	eventRepo := event.NewRepository(a.DB)
	counterRepo := counter.NewRepository(a.DB)
	outboxRepo := kafka.NewOutboxRepository(a.DB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	if err := rbacService.LoadPolicy(rbac.DefaultPolicies, rbac.RoleInheritance); err != nil {
		return err
	}

	// --- Infrastructure services ---
	docs, err := newObjectStorage(cfg, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	balanceService := balance.NewService(
		employeeRepo,
		eventRepo,
		a.Redis,
		cfg.AnnualLeaveEntitlement,
		cfg.BalanceCacheTTL,
		logger,
	)
	employeeService := employee.NewService(a.DB, employeeRepo, a.Redis, balanceService, logger)
	eventService := event.NewService(a.DB, eventRepo, event.Dependencies{
		Employees:        employeeRepo,
		Counters:         counterRepo,
		Outbox:           outboxRepo,
		Balances:         balanceService,
		Storage:          docs,
		Notifier:         a.Hub,
		SickNoteMaxBytes: cfg.SickNoteMaxBytes,
	}, logger)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	eventHandler := event.NewHandler(eventService, rbacService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	realtimeHandler := realtime.NewHandler(a.Hub, cfg.JWTSecret, cfg.WSAllowedOrigins, logger)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst))

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":  "ok",
			"viewers": a.Hub.Count(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		}, nil)
	})
	realtime.RegisterRoutes(router, realtimeHandler)

	api := router.Group("/api/v1")
	{
		event.RegisterRoutes(api, eventHandler, rbacService, a.Redis, cfg.JWTSecret, logger)
		balance.RegisterRoutes(api, balanceHandler, rbacService, cfg.JWTSecret, logger)
		employee.RegisterRoutes(api, employeeHandler, rbacService, cfg.JWTSecret, logger)
		rbac.RegisterRoutes(api, rbacHandler, rbacService, cfg.JWTSecret, logger)
	}

	return nil
}

func newObjectStorage(cfg config.Config, logger *zap.Logger) (storage.ObjectStorage, error) {
	if !cfg.StorageEnabled() {
		logger.Warn("object storage not configured, sick-note uploads are disabled")
		return storage.NewDisabled(), nil
	}
	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:        cfg.StorageEndpoint,
		Region:          cfg.StorageRegion,
		Bucket:          cfg.StorageBucket,
		AccessKeyID:     cfg.StorageAccessKeyID,
		SecretAccessKey: cfg.StorageSecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3Storage(client, cfg.StorageBucket, logger), nil
}
