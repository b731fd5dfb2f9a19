package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stylesync-backend/internal/domain/tryon"
)

// Loader builds a Config from layered sources, lowest priority first:
// defaults, base.<ext>, <environment>.<ext>, local.<ext> (development only),
// and environment variables.
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
	fileLoaders []FileLoader
	getenv      func(string) string
}

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader reads files from basePath ("config" when empty).
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
		getenv:      os.Getenv,
	}
}

// RegisterLoader adds a file format. Earlier loaders win when a file exists
// in several formats.
func (l *Loader) RegisterLoader(loader FileLoader) {
	l.fileLoaders = append(l.fileLoaders, loader)
}

// Load applies every source and validates the result.
func (l *Loader) Load() (*Config, error) {
	l.sources = []string{"defaults"}
	cfg := l.defaultConfig()

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}
	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")

	// Files cannot move the service to another environment.
	cfg.Environment = l.environment
	cfg.LoadedFrom = append([]string(nil), l.sources...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Sources returns the sources applied by the last Load.
func (l *Loader) Sources() []string {
	return append([]string(nil), l.sources...)
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		err = loader.Load(file, cfg)
		file.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		l.sources = append(l.sources, path)
		return nil
	}
	return fs.ErrNotExist
}

// loadEnvironmentVariables overlays the variables the deployment sets.
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := l.getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := l.getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := l.getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := l.getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_HOST", &cfg.Server.Host)
	num("SERVER_PORT", &cfg.Server.Port)
	str("LOG_LEVEL", &cfg.Logging.Level)

	str("GATEWAY_DRIVER", &cfg.Gateway.Driver)
	flag("SEED_CATALOG", &cfg.Gateway.SeedCatalog)
	flag("ENABLE_CIRCUIT_BREAKER", &cfg.Gateway.Breaker.Enabled)

	str("SUPABASE_URL", &cfg.Supabase.URL)
	str("SUPABASE_ANON_KEY", &cfg.Supabase.AnonKey)
	str("SUPABASE_JWT_SECRET", &cfg.Supabase.JWTSecret)

	str("AWS_REGION", &cfg.AWS.Region)
	str("TABLE_NAME", &cfg.AWS.DynamoDBTable)
	str("EVENT_BUS_NAME", &cfg.AWS.EventBusName)
	flag("ENABLE_EVENTS", &cfg.AWS.EnableEvents)

	dur("CACHE_TTL", &cfg.Cache.TTL)
	dur("STYLIST_DELAY", &cfg.Stylist.Delay)
	dur("STYLIST_CHAT_DELAY", &cfg.Stylist.ChatDelay)
	dur("TRYON_DELAY", &cfg.TryOn.Delay)
	dur("SESSION_TTL", &cfg.Session.TTL)

	flag("ENABLE_TRACING", &cfg.Tracing.Enabled)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)
	flag("ENABLE_METRICS", &cfg.Metrics.Enabled)

	if v := l.getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}

	return errors.Join(errs...)
}

func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxUploadBytes:  tryon.DefaultMaxBytes,
		},
		Logging: Logging{Level: "info"},
		Gateway: Gateway{
			Driver:        DriverMemory,
			SeedCatalog:   true,
			SlowThreshold: 500 * time.Millisecond,
			Breaker: Breaker{
				Enabled:             true,
				MaxRequests:         3,
				Interval:            60 * time.Second,
				OpenTimeout:         30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		AWS: AWS{
			Region:        "us-east-1",
			DynamoDBTable: "stylesync-" + strings.ToLower(string(l.environment)),
			EventBusName:  "default",
			EventSource:   "stylesync.storefront",
		},
		Cache: Cache{
			MaxItems:      500,
			MaxBytes:      16 << 20,
			TTL:           30 * time.Second,
			SweepInterval: time.Minute,
		},
		Stylist: Stylist{Delay: 2 * time.Second, ChatDelay: time.Second},
		TryOn: TryOn{
			Delay:         2500 * time.Millisecond,
			MaxImageBytes: tryon.DefaultMaxBytes,
			MaxPixels:     tryon.DefaultMaxPixels,
			Geometry:      tryon.DefaultGeometry(),
		},
		Session: Session{
			TTL:           24 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Tracing: Tracing{
			ServiceName: "stylesync-backend",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			SampleRate:  0.1,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "stylesync",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}

// YAMLLoader decodes YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	return yaml.NewDecoder(reader).Decode(target)
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader decodes JSON files. Durations are nanoseconds.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}

// FromEnvironment returns a loader for the environment named by ENVIRONMENT
// reading files from CONFIG_DIR (default "config").
func FromEnvironment() *Loader {
	return NewLoader(os.Getenv("CONFIG_DIR"), getEnvironment())
}

// Load reads the configuration using FromEnvironment.
func Load() (*Config, error) {
	return FromEnvironment().Load()
}
