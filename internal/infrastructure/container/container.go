// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"net/http"

	accountapp "github.com/pictura/v1/internal/application/account"
	feedapp "github.com/pictura/v1/internal/application/feed"
	generationapp "github.com/pictura/v1/internal/application/generation"
	likeapp "github.com/pictura/v1/internal/application/like"
	"github.com/pictura/v1/internal/infrastructure/ai/gemini"
	"github.com/pictura/v1/internal/infrastructure/config"
	"github.com/pictura/v1/internal/infrastructure/email"
	"github.com/pictura/v1/internal/infrastructure/http/apiserver"
	"github.com/pictura/v1/internal/infrastructure/monitoring"
	gormRepo "github.com/pictura/v1/internal/infrastructure/persistence/gorm"
	"github.com/pictura/v1/internal/infrastructure/persistence/migrations"
	"github.com/pictura/v1/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/pictura/v1/internal/infrastructure/persistence/redis"
	"github.com/pictura/v1/internal/infrastructure/security"
	"github.com/pictura/v1/internal/infrastructure/storage"
	"github.com/pictura/v1/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	ExternalServiceModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the Postgres connection
var DatabaseModule = fx.Provide(
	postgres.NewConnectionManager,
	func(cm *postgres.ConnectionManager) *gorm.DB {
		return cm.GetDB()
	},
)

// CacheModule provides Redis connectivity and the cache repository
var CacheModule = fx.Provide(
	redisRepo.NewClient,
	redisRepo.NewCacheRepository,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewGenerationRepository,
	gormRepo.NewLikeRepository,
	gormRepo.NewUserRepository,
)

// ExternalServiceModule provides adapters for external systems
var ExternalServiceModule = fx.Provide(
	gemini.NewClient,
	storage.NewS3Storage,
	email.NewSMTPService,
	security.NewAuthService,
	monitoring.NewMetricsCollector,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	generationapp.NewGenerationService,
	feedapp.NewFeedService,
	likeapp.NewLikeService,
	accountapp.NewAccountService,
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	apiserver.NewAPIServer,
)

// LifecycleModule runs migrations and manages server lifecycle
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	cm *postgres.ConnectionManager,
	redisClient *redis.Client,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Pictura",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			sqlDB, err := cm.GetDB().DB()
			if err != nil {
				return err
			}

			migrator, err := migrations.New(sqlDB, log)
			if err != nil {
				return err
			}
			if err := migrator.Up(); err != nil {
				return err
			}

			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Pictura")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}

			if err := cm.Close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
