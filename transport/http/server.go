package http

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/metrics"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * HTTP Server
 * ========================================================================
 * Fiber v3 server with health probes and the metrics endpoint. The
 * listener is created before the serve goroutine starts so a failed
 * port bind fails startup instead of racing it.
 * ======================================================================== */

// Config configures the HTTP server.
type Config struct {
	Port               int           `yaml:"port" mapstructure:"port"`
	Host               string        `yaml:"host" mapstructure:"host"`
	AppName            string        `yaml:"app_name" mapstructure:"app_name"`
	ReadTimeout        time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout" mapstructure:"health_check_timeout"`

	// EnableRecover toggles the panic recovery middleware. Defaults to
	// enabled; disable in tests to let panics surface.
	EnableRecover *bool `yaml:"enable_recover" mapstructure:"enable_recover"`

	Listen ListenOptions `yaml:"listen" mapstructure:"listen"`
}

// ListenOptions holds the serializable subset of Fiber's ListenConfig.
// Anything requiring a function value goes through ListenConfigCustomizer.
type ListenOptions struct {
	EnablePrefork         bool          `yaml:"enable_prefork" mapstructure:"enable_prefork"`
	DisableStartupMessage bool          `yaml:"disable_startup_message" mapstructure:"disable_startup_message"`
	EnablePrintRoutes     bool          `yaml:"enable_print_routes" mapstructure:"enable_print_routes"`
	ListenerNetwork       string        `yaml:"listener_network" mapstructure:"listener_network"`
	CertFile              string        `yaml:"cert_file" mapstructure:"cert_file"`
	CertKeyFile           string        `yaml:"cert_key_file" mapstructure:"cert_key_file"`
	CertClientFile        string        `yaml:"cert_client_file" mapstructure:"cert_client_file"`
	ShutdownTimeout       time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	UnixSocketFileMode    uint32        `yaml:"unix_socket_file_mode" mapstructure:"unix_socket_file_mode"`
	TLSMinVersion         uint16        `yaml:"tls_min_version" mapstructure:"tls_min_version"`
}

// ListenConfigCustomizer adjusts the ListenConfig before listening.
type ListenConfigCustomizer func(*fiber.ListenConfig)

// AppConfigCustomizer adjusts the Fiber config before the app is built.
type AppConfigCustomizer func(*fiber.Config)

// ServerParams are the server dependencies.
type ServerParams struct {
	fx.In
	Lc     fx.Lifecycle
	Config Config
	Logger *logger.Logger
	DB     *gorm.DB `optional:"true"`

	ErrorHandler           fiber.ErrorHandler     `optional:"true"`
	ListenConfigCustomizer ListenConfigCustomizer `optional:"true"`
	AppConfigCustomizer    AppConfigCustomizer    `optional:"true"`
}

// NewHTTPServer creates the HTTP server and registers its lifecycle.
func NewHTTPServer(p ServerParams) *fiber.App {
	readTimeout := p.Config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := p.Config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := p.Config.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 120 * time.Second
	}
	appName := p.Config.AppName
	if appName == "" {
		appName = "fintrack"
	}

	appConfig := fiber.Config{
		AppName:      appName,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	if p.AppConfigCustomizer != nil {
		p.AppConfigCustomizer(&appConfig)
	}
	if p.ErrorHandler != nil {
		appConfig.ErrorHandler = p.ErrorHandler
	}

	app := fiber.New(appConfig)

	enableRecover := true
	if p.Config.EnableRecover != nil {
		enableRecover = *p.Config.EnableRecover
	}
	if enableRecover {
		app.Use(recoverer.New(recoverer.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c fiber.Ctx, e any) {
				p.Logger.Error("panic recovered",
					zap.Any("error", e),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
					zap.String("ip", c.IP()),
				)
			},
		}))
	}

	healthCheckTimeout := p.Config.HealthCheckTimeout
	if healthCheckTimeout <= 0 {
		healthCheckTimeout = 2 * time.Second
	}
	registerHealthEndpoints(app, p.DB, healthCheckTimeout)

	metrics.RegisterMetricsEndpoint(app)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Config.Port)
			if p.Config.Host != "" {
				addr = fmt.Sprintf("%s:%d", p.Config.Host, p.Config.Port)
			}

			listenConfig := buildListenConfig(p.Config.Listen)
			if p.ListenConfigCustomizer != nil {
				p.ListenConfigCustomizer(&listenConfig)
			}

			listener, err := createListener(addr, listenConfig)
			if err != nil {
				p.Logger.Error("failed to create HTTP listener", zap.Error(err), zap.String("addr", addr))
				return fmt.Errorf("failed to bind to %s: %w", addr, err)
			}

			readyChan := make(chan struct{})
			errChan := make(chan error, 1)

			go func() {
				close(readyChan)

				p.Logger.Info("starting HTTP server", zap.String("addr", addr))
				if err := app.Listener(listener, listenConfig); err != nil {
					p.Logger.Error("HTTP server failed", zap.Error(err))
					errChan <- err
				}
			}()

			select {
			case <-readyChan:
				return nil
			case err := <-errChan:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping HTTP server")
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

func buildListenConfig(opts ListenOptions) fiber.ListenConfig {
	config := fiber.ListenConfig{
		EnablePrefork:         opts.EnablePrefork,
		DisableStartupMessage: opts.DisableStartupMessage,
		EnablePrintRoutes:     opts.EnablePrintRoutes,
		CertFile:              opts.CertFile,
		CertKeyFile:           opts.CertKeyFile,
		CertClientFile:        opts.CertClientFile,
	}

	if opts.ListenerNetwork != "" {
		config.ListenerNetwork = opts.ListenerNetwork
	} else {
		config.ListenerNetwork = "tcp4"
	}

	if opts.ShutdownTimeout > 0 {
		config.ShutdownTimeout = opts.ShutdownTimeout
	}
	if opts.UnixSocketFileMode > 0 {
		config.UnixSocketFileMode = os.FileMode(opts.UnixSocketFileMode)
	}
	if opts.TLSMinVersion > 0 {
		config.TLSMinVersion = opts.TLSMinVersion
	}

	return config
}

/* ========================================================================
 * Health Check Endpoints
 * ========================================================================
 * /healthz answers as long as the process is alive; /readyz also pings
 * the database within the configured timeout.
 * ======================================================================== */

func registerHealthEndpoints(app *fiber.App, db *gorm.DB, timeout time.Duration) {
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/readyz", func(c fiber.Ctx) error {
		checks := make(map[string]string)
		healthy := true

		if db != nil {
			checkTimeout := timeout
			if checkTimeout <= 0 {
				checkTimeout = 2 * time.Second
			}
			sqlDB, err := db.DB()
			if err != nil {
				checks["database"] = "error: " + err.Error()
				healthy = false
			} else {
				ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
				defer cancel()
				if err := sqlDB.PingContext(ctx); err != nil {
					checks["database"] = "error: " + err.Error()
					healthy = false
				} else {
					checks["database"] = "ok"
				}
			}
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		checks["memory_alloc_mb"] = fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024)
		checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

		status := "ok"
		statusCode := fiber.StatusOK
		if !healthy {
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"checks": checks,
		})
	})
}
