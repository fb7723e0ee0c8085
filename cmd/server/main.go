package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fintrack/fintrack/cache/redis"
	"github.com/fintrack/fintrack/conf"
	"github.com/fintrack/fintrack/database"
	"github.com/fintrack/fintrack/database/mysql"
	"github.com/fintrack/fintrack/database/postgres"
	"github.com/fintrack/fintrack/handler"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/middleware"
	"github.com/fintrack/fintrack/service"
	"github.com/fintrack/fintrack/shutdown"
	transporthttp "github.com/fintrack/fintrack/transport/http"
	"github.com/fintrack/fintrack/validator"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "./conf", "config directory")
	flag.Parse()

	cfg, err := conf.LoadApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			func(c *conf.AppConfig) logger.Config { return c.Logger },
			func(c *conf.AppConfig) redis.Config { return c.Redis },
			func(c *conf.AppConfig) transporthttp.Config { return c.HTTP },
			func(c *conf.AppConfig) *middleware.AuthConfig { return &c.Auth },
			func(c *conf.AppConfig) *middleware.RateLimitConfig { return &c.RateLim },
			func(c *conf.AppConfig) *shutdown.Config { return &c.Shutdown },

			logger.NewLogger,
			validator.New,
			newDatabase,
			shutdown.NewManager,

			fx.Annotate(middleware.NewAuthMiddleware, fx.ResultTags(`name:"auth"`)),
			fx.Annotate(newRateLimitHandler, fx.ResultTags(`name:"ratelimit"`)),
			middleware.NewErrorHandler,
			transporthttp.NewHTTPServer,
		),
		redis.Module,
		service.Module,
		handler.Module,
		fx.Invoke(runMigrations),
		fx.Invoke(registerShutdownHooks),
	)

	app.Run()
}

func newDatabase(c *conf.AppConfig, log *logger.Logger) (*gorm.DB, error) {
	if c.Database.Driver == "mysql" {
		return mysql.NewDB(mysql.Config{
			Host:            c.Database.Host,
			Port:            c.Database.Port,
			User:            c.Database.User,
			Password:        c.Database.Password,
			DBName:          c.Database.DBName,
			MaxIdleConns:    c.Database.MaxIdleConns,
			MaxOpenConns:    c.Database.MaxOpenConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		}, log)
	}
	return postgres.NewDB(c.Database.Config, log)
}

func newRateLimitHandler(cfg *middleware.RateLimitConfig, cache *redis.Client) (fiber.Handler, error) {
	return middleware.NewRateLimitMiddleware(cfg, cache.Raw())
}

func runMigrations(db *gorm.DB, log *logger.Logger) error {
	return database.Migrate(context.Background(), db, log.Logger)
}

func registerShutdownHooks(lc fx.Lifecycle, mgr *shutdown.Manager, db *gorm.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			mgr.Shutdown(ctx)
			return nil
		},
	})

	mgr.RegisterHookWithPriority("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}, shutdown.PriorityLow)

	mgr.RegisterHook("logger", func(ctx context.Context) error {
		// Sync can fail on stderr; the process is exiting anyway.
		if err := log.Sync(); err != nil {
			log.Warn("logger sync failed", zap.Error(err))
		}
		return nil
	})
}
