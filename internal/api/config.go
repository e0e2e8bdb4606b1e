// Package api provides the thin HTTP front-end of the metatool service: it
// receives uploaded metadata documents, hands them to the validation engine
// and returns the serialized FieldSets.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metatool-io/metatool/internal/api/middleware"
	"github.com/metatool-io/metatool/internal/config"
)

const (
	defaultPort           = 5005
	maxPort               = 65535
	defaultHost           = "0.0.0.0"
	defaultTimeout        = 30 * time.Second
	defaultLogLevel       = slog.LevelInfo
	defaultMaxRequestSize = int64(8 << 20)
	defaultRequestsPerSec = 10
	defaultCORSMaxAge     = 86400
)

var (
	// ErrInvalidPort indicates the port number is outside valid range (1-65535).
	ErrInvalidPort = errors.New("invalid port")

	// ErrEmptyHost indicates the server host address is empty.
	ErrEmptyHost = errors.New("host cannot be empty")

	// ErrInvalidTimeout indicates a timeout is zero or negative.
	ErrInvalidTimeout = errors.New("timeouts must be positive")

	// ErrInvalidMaxRequestSize indicates the max request size is zero or negative.
	ErrInvalidMaxRequestSize = errors.New("max request size must be positive")
)

// ServerConfig holds HTTP server configuration.
// Pure configuration only - no runtime dependencies.
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        slog.Level
	MaxRequestSize  int64
	RequestsPerSec  int
	CORS            middleware.CORSConfig
}

// LoadServerConfig loads server configuration from environment variables
// with sensible defaults.
func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            config.GetEnvInt("METATOOL_SERVER_PORT", defaultPort),
		Host:            config.GetEnvStr("METATOOL_SERVER_HOST", defaultHost),
		ReadTimeout:     config.GetEnvDuration("METATOOL_SERVER_READ_TIMEOUT", defaultTimeout),
		WriteTimeout:    config.GetEnvDuration("METATOOL_SERVER_WRITE_TIMEOUT", defaultTimeout),
		ShutdownTimeout: config.GetEnvDuration("METATOOL_SERVER_SHUTDOWN_TIMEOUT", defaultTimeout),
		LogLevel:        config.GetEnvLogLevel("METATOOL_LOG_LEVEL", defaultLogLevel),
		MaxRequestSize:  int64(config.GetEnvInt("METATOOL_MAX_REQUEST_SIZE", int(defaultMaxRequestSize))),
		RequestsPerSec:  config.GetEnvInt("METATOOL_REQUESTS_PER_SECOND", defaultRequestsPerSec),
		CORS: middleware.CORSConfig{
			// "*" is the development default; restrict in production.
			AllowedOrigins: []string{config.GetEnvStr("METATOOL_CORS_ALLOWED_ORIGINS", "*")},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Correlation-ID"},
			MaxAge:         defaultCORSMaxAge,
		},
	}
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration is usable.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if c.Host == "" {
		return ErrEmptyHost
	}

	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRequestSize <= 0 {
		return ErrInvalidMaxRequestSize
	}

	return nil
}
