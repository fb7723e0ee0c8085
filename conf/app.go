package conf

import (
	"github.com/fintrack/fintrack/cache/redis"
	"github.com/fintrack/fintrack/database/postgres"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/middleware"
	"github.com/fintrack/fintrack/shutdown"
	transporthttp "github.com/fintrack/fintrack/transport/http"
)

// AppConfig aggregates the configuration of every component.
type AppConfig struct {
	App struct {
		Name string `yaml:"name" mapstructure:"name"`
	} `yaml:"app" mapstructure:"app"`

	HTTP     transporthttp.Config       `yaml:"http" mapstructure:"http"`
	Database DatabaseConfig             `yaml:"database" mapstructure:"database"`
	Redis    redis.Config               `yaml:"redis" mapstructure:"redis"`
	Logger   logger.Config              `yaml:"logger" mapstructure:"logger"`
	Auth     middleware.AuthConfig      `yaml:"auth" mapstructure:"auth"`
	RateLim  middleware.RateLimitConfig `yaml:"ratelimit" mapstructure:"ratelimit"`
	Shutdown shutdown.Config            `yaml:"shutdown" mapstructure:"shutdown"`
}

// DatabaseConfig selects the relational backend. Driver is "postgres"
// (default) or "mysql"; the connection settings are shared.
type DatabaseConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	postgres.Config `yaml:",inline" mapstructure:",squash"`
}

// LoadApp loads the application configuration from the given directory.
func LoadApp(configPath string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := NewLoader(configPath, "config", "yaml").Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
