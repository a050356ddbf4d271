package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Pool   PoolConfig   `mapstructure:"pool"   validate:"required"`
	Client ClientConfig `mapstructure:"client" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// PoolConfig contains the request pool settings.
type PoolConfig struct {
	// MaxConcurrency bounds simultaneous outbound executions.
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"required,gt=0"`

	// QueueSize is the admission queue buffer size.
	QueueSize int `mapstructure:"queue_size" validate:"gte=0"`

	// PollInterval is the dispatch loop's idle re-check delay.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gte=0"`
}

// ClientConfig contains the outbound HTTP client settings.
type ClientConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}
