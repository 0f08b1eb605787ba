package app

import (
	"errors"

	"hr-calendar/internal/realtime"
	"hr-calendar/internal/shared/config"
	"hr-calendar/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// App owns the long-lived resources of the API process.
type App struct {
	DB    *gorm.DB
	Redis *redis.Client
	Hub   *realtime.Hub
}

// Close disconnects every viewer and releases the connections.
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func postgresConfig(cfg config.Config) connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		Port:     cfg.DBPort,
		SSLMode:  cfg.DBSSLMode,
	}
}

// BuildApp connects the infrastructure and mounts every module on router.
// Redis is optional: without it balances are not cached and the
// Idempotency-Key header is ignored.
func BuildApp(router *gin.Engine, cfg config.Config, logger *zap.Logger) (*App, error) {
	log := logger.Named("app")

	db, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), connectRetries)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	a := &App{DB: db, Hub: realtime.NewHub(logger)}

	if cfg.DBAutoMigrate {
		if err := Migrate(db); err != nil {
			_ = a.Close()
			return nil, err
		}
		log.Info("database schema migrated")
	}

	if cfg.RedisAddr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = rdb
		log.Info("redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, running without cache and idempotency")
	}

	if err := registerModules(router, cfg, a, logger); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
