package httpapi

import (
	"fmt"
	"strings"
	"time"
)

// HTTPAPIConfig configures the HTTP API module.
type HTTPAPIConfig struct {
	// Address is the host:port to listen on. Use ":0" for an ephemeral port.
	Address string `yaml:"address" toml:"address" json:"address" env:"ADDRESS" default:":8080" desc:"Listen address"`

	// BasePath prefixes every route, e.g. "/api".
	BasePath string `yaml:"basePath" toml:"basePath" json:"basePath" env:"BASE_PATH" desc:"Path prefix for all routes"`

	ReadTimeout     time.Duration `yaml:"readTimeout" toml:"readTimeout" json:"readTimeout" env:"READ_TIMEOUT" default:"15s" desc:"Maximum duration for reading a request"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" toml:"writeTimeout" json:"writeTimeout" env:"WRITE_TIMEOUT" default:"15s" desc:"Maximum duration for writing a response"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" toml:"idleTimeout" json:"idleTimeout" env:"IDLE_TIMEOUT" default:"60s" desc:"Keep-alive idle timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" toml:"shutdownTimeout" json:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT" default:"10s" desc:"Graceful shutdown limit"`

	// MaxBigIndex bounds ?big=true requests. Larger indices answer 422.
	MaxBigIndex int `yaml:"maxBigIndex" toml:"maxBigIndex" json:"maxBigIndex" env:"MAX_BIG_INDEX" default:"100000" desc:"Largest index served with ?big=true"`

	// AllowedOrigins enables CORS for the listed origins. "*" allows any.
	AllowedOrigins []string `yaml:"allowedOrigins" toml:"allowedOrigins" json:"allowedOrigins" env:"ALLOWED_ORIGINS" desc:"CORS allowed origins"`
}

// Validate implements app.ConfigValidator.
func (c *HTTPAPIConfig) Validate() error {
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("%w: basePath must start with '/': %q", ErrInvalidConfig, c.BasePath)
	}
	c.BasePath = strings.TrimSuffix(c.BasePath, "/")
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.MaxBigIndex < 0 {
		return fmt.Errorf("%w: maxBigIndex must not be negative, got %d", ErrInvalidConfig, c.MaxBigIndex)
	}
	return nil
}
