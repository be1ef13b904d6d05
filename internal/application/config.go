package application

import "time"

// ServerConfig is the application-scope schema: the shape of the HTTP
// server's configuration and its code defaults. Field names double as
// config file keys, uppercased environment variable names and CLI flags.
type ServerConfig struct {
	Port                 string        `config:"port" usage:"HTTP port exposed by the service"`
	ReadHeaderTimeout    time.Duration `config:"read_header_timeout" usage:"Maximum duration to read request headers"`
	WriteTimeout         time.Duration `config:"write_timeout" usage:"Maximum duration writing a response"`
	IdleTimeout          time.Duration `config:"idle_timeout" usage:"Maximum keep-alive idle duration"`
	ShutdownGracePeriod  time.Duration `config:"shutdown_grace_period" usage:"Grace period for in-flight requests on shutdown"`
	RateLimitRPS         float64       `config:"rate_limit_rps" usage:"Requests per second allowed (0 disables limiting)"`
	RateLimitBurst       int           `config:"rate_limit_burst" usage:"Burst capacity for the rate limiter"`
	EnableRequestLogging bool          `config:"enable_request_logging" usage:"Emit an access log line per request"`
}

// RuntimeConfig is the runtime-scope schema, declared by the deployment
// rather than the application. Overlapping names would override the
// application scope's declarations.
type RuntimeConfig struct {
	Environment string `config:"environment" usage:"Deployment environment name"`
	LogLevel    string `config:"log_level" usage:"Minimum log level (debug, info, warn, error)"`
}

// Defaults returns the application-scope defaults.
func Defaults() ServerConfig {
	return ServerConfig{
		Port:                 "8080",
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		ShutdownGracePeriod:  10 * time.Second,
		RateLimitRPS:         25.0,
		RateLimitBurst:       50,
		EnableRequestLogging: true,
	}
}

// RuntimeDefaults returns the runtime-scope defaults.
func RuntimeDefaults() RuntimeConfig {
	return RuntimeConfig{
		Environment: "development",
		LogLevel:    "info",
	}
}
