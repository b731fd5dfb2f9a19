// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"stylesync-backend/internal/domain/tryon"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Gateway drivers.
const (
	DriverSupabase = "supabase"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment"`

	Server   Server   `yaml:"server" json:"server"`
	Logging  Logging  `yaml:"logging" json:"logging"`
	Gateway  Gateway  `yaml:"gateway" json:"gateway"`
	Supabase Supabase `yaml:"supabase" json:"supabase"`
	AWS      AWS      `yaml:"aws" json:"aws"`
	Cache    Cache    `yaml:"cache" json:"cache"`
	Stylist  Stylist  `yaml:"stylist" json:"stylist"`
	TryOn    TryOn    `yaml:"tryon" json:"tryon"`
	Session  Session  `yaml:"session" json:"session"`
	Tracing  Tracing  `yaml:"tracing" json:"tracing"`
	Metrics  Metrics  `yaml:"metrics" json:"metrics"`
	CORS     CORS     `yaml:"cors" json:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"`
}

// Address is host:port for net/http.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Logging holds the log level; it can change at runtime.
type Logging struct {
	Level string `yaml:"level" json:"level"`
}

// Breaker configures the gateway circuit breaker.
type Breaker struct {
	Enabled             bool          `yaml:"enabled" json:"enabled"`
	MaxRequests         uint32        `yaml:"max_requests" json:"max_requests"`
	Interval            time.Duration `yaml:"interval" json:"interval"`
	OpenTimeout         time.Duration `yaml:"open_timeout" json:"open_timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" json:"consecutive_failures"`
}

// Gateway selects and tunes the remote store.
type Gateway struct {
	Driver        string        `yaml:"driver" json:"driver"`
	SeedCatalog   bool          `yaml:"seed_catalog" json:"seed_catalog"`
	SlowThreshold time.Duration `yaml:"slow_threshold" json:"slow_threshold"`
	Breaker       Breaker       `yaml:"breaker" json:"breaker"`
}

// Supabase holds the project connection and token verification settings.
type Supabase struct {
	URL       string `yaml:"url" json:"url"`
	AnonKey   string `yaml:"anon_key" json:"anon_key"`
	JWTSecret string `yaml:"jwt_secret" json:"jwt_secret"`
}

// AWS holds the DynamoDB table and EventBridge bus.
type AWS struct {
	Region        string `yaml:"region" json:"region"`
	DynamoDBTable string `yaml:"dynamodb_table" json:"dynamodb_table"`
	EventBusName  string `yaml:"event_bus_name" json:"event_bus_name"`
	EventSource   string `yaml:"event_source" json:"event_source"`
	EnableEvents  bool   `yaml:"enable_events" json:"enable_events"`
}

// Cache configures the product listing cache. A zero TTL disables it.
type Cache struct {
	MaxItems      int           `yaml:"max_items" json:"max_items"`
	MaxBytes      int64         `yaml:"max_bytes" json:"max_bytes"`
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// Stylist holds the simulated generation and chat latencies.
type Stylist struct {
	Delay     time.Duration `yaml:"delay" json:"delay"`
	ChatDelay time.Duration `yaml:"chat_delay" json:"chat_delay"`
}

// TryOn holds the compositor settings.
type TryOn struct {
	Delay         time.Duration  `yaml:"delay" json:"delay"`
	MaxImageBytes int            `yaml:"max_image_bytes" json:"max_image_bytes"`
	MaxPixels     int            `yaml:"max_pixels" json:"max_pixels"`
	Geometry      tryon.Geometry `yaml:"geometry" json:"geometry"`
}

// Session controls shopper session expiry.
type Session struct {
	TTL           time.Duration `yaml:"ttl" json:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// Tracing configures the OTLP exporter.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	Insecure    bool    `yaml:"insecure" json:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// CORS configures cross-origin access for the storefront.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.Environment {
	case Development, Staging, Production:
	default:
		add("unknown environment %q", c.Environment)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		add("server.max_upload_bytes must be positive")
	}

	switch c.Gateway.Driver {
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			add("supabase.url and supabase.anon_key are required for the supabase driver")
		}
	case DriverDynamoDB:
		if c.AWS.DynamoDBTable == "" {
			add("aws.dynamodb_table is required for the dynamodb driver")
		}
	case DriverMemory:
		if c.Environment == Production {
			add("the memory driver cannot be used in production")
		}
	default:
		add("unknown gateway.driver %q", c.Gateway.Driver)
	}
	if c.Environment == Production && c.Supabase.JWTSecret == "" && c.Supabase.URL == "" {
		add("production needs supabase.jwt_secret or supabase.url to verify tokens")
	}
	if c.AWS.EnableEvents && c.AWS.EventBusName == "" {
		add("aws.event_bus_name is required when events are enabled")
	}

	if c.Stylist.Delay < 0 || c.Stylist.ChatDelay < 0 || c.TryOn.Delay < 0 {
		add("delays must not be negative")
	}
	if err := c.TryOn.Geometry.Validate(); err != nil {
		add("tryon.geometry: %v", err)
	}
	if c.TryOn.MaxImageBytes <= 0 || c.TryOn.MaxPixels <= 0 {
		add("tryon limits must be positive")
	}
	if c.Session.TTL <= 0 {
		add("session.ttl must be positive")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		add("tracing.sample_rate must be within [0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

func getEnvironment() Environment {
	switch env := Environment(strings.ToLower(os.Getenv("ENVIRONMENT"))); env {
	case Staging, Production:
		return env
	default:
		return Development
	}
}
