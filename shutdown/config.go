package shutdown

import "time"

// Config configures graceful shutdown. After Timeout remaining hooks
// are abandoned.
type Config struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// Hook priorities. Lower runs earlier; equal priorities run in
// parallel.
const (
	PriorityFirst  = 0
	PriorityHigh   = 10
	PriorityNormal = 50
	PriorityLow    = 90
)
