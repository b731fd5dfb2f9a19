package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"stylesync-backend/internal/application/services"
	"stylesync-backend/internal/application/session"
	"stylesync-backend/internal/async"
	"stylesync-backend/internal/config"
	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/domain/stylist"
	"stylesync-backend/internal/domain/tryon"
	"stylesync-backend/internal/infrastructure/cache"
	"stylesync-backend/internal/infrastructure/dynamodb"
	"stylesync-backend/internal/infrastructure/imagesource"
	"stylesync-backend/internal/infrastructure/memory"
	"stylesync-backend/internal/infrastructure/messaging"
	"stylesync-backend/internal/infrastructure/observability"
	"stylesync-backend/internal/infrastructure/persistence"
	"stylesync-backend/internal/infrastructure/supabase"
	"stylesync-backend/internal/interfaces/http/handlers"
	"stylesync-backend/internal/middleware"
	"stylesync-backend/pkg/auth"
)

const (
	eventQueueSize       = 256
	supabaseAudience     = "authenticated"
	tracerShutdownBudget = 5 * time.Second
)

// Logging pairs the root logger with the level the config watcher adjusts.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

// Delays holds the simulated latencies that can change at runtime.
type Delays struct {
	Stylist *async.Adjustable
	Chat    *async.Adjustable
	TryOn   *async.Adjustable
}

// ============================================================================
// CONFIG PROVIDERS
// ============================================================================

func provideLoader() *config.Loader {
	return config.FromEnvironment()
}

func provideConfig(loader *config.Loader) (*config.Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func provideLogging(cfg *config.Config) (Logging, error) {
	logger, level, err := observability.NewLogger(observability.LoggerConfig{
		Production: cfg.IsProduction(),
		Level:      cfg.Logging.Level,
	})
	if err != nil {
		return Logging{}, err
	}
	logger = logger.With(zap.String("environment", string(cfg.Environment)))
	return Logging{Logger: logger, Level: level}, nil
}

func provideLogger(l Logging) *zap.Logger {
	return l.Logger
}

func provideDelays(cfg *config.Config) Delays {
	return Delays{
		Stylist: async.NewAdjustable(cfg.Stylist.Delay),
		Chat:    async.NewAdjustable(cfg.Stylist.ChatDelay),
		TryOn:   async.NewAdjustable(cfg.TryOn.Delay),
	}
}

// provideWatcher reloads the log level and delays when config files change.
// It returns nil outside development or when the directory cannot be watched.
func provideWatcher(loader *config.Loader, cfg *config.Config, logging Logging, delays Delays) (*config.ConfigWatcher, func()) {
	logger := logging.Logger
	w, err := config.NewConfigWatcher(loader, cfg, logger)
	if err != nil {
		logger.Warn("Config hot reload disabled", zap.Error(err))
		return nil, func() {}
	}
	w.OnChange(func(next *config.Config) {
		if err := observability.SetLevel(logging.Level, next.Logging.Level); err != nil {
			logger.Warn("Ignoring log level change", zap.Error(err))
		}
		delays.Stylist.Set(next.Stylist.Delay)
		delays.Chat.Set(next.Stylist.ChatDelay)
		delays.TryOn.Set(next.TryOn.Delay)
	})
	return w, w.Stop
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS
// ============================================================================

func provideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Tracer, func(), error) {
	tracer, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownBudget)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tracer, cleanup, nil
}

// provideAWSConfig only resolves credentials when something uses AWS.
func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if cfg.Gateway.Driver != config.DriverDynamoDB && !cfg.AWS.EnableEvents {
		return aws.Config{Region: cfg.AWS.Region}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// provideSupabaseClient returns nil when no project is configured.
func provideSupabaseClient(cfg *config.Config) (*supa.Client, error) {
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" {
		return nil, nil
	}
	return supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
}

func provideCache(cfg *config.Config, collector *observability.Collector, logger *zap.Logger) *cache.MemoryCache {
	return cache.NewMemoryCache("products", cfg.Cache.MaxItems, cfg.Cache.MaxBytes, logger,
		cache.WithObserver(collector))
}

// provideGateway builds the configured adapter and wraps it in the breaker,
// cache, tracing, and metrics decorators.
func provideGateway(
	cfg *config.Config,
	awsCfg aws.Config,
	client *supa.Client,
	memCache *cache.MemoryCache,
	tracer *observability.Tracer,
	collector *observability.Collector,
	logger *zap.Logger,
) (catalog.Gateway, error) {
	var base catalog.Gateway
	switch cfg.Gateway.Driver {
	case config.DriverSupabase:
		if client == nil {
			return nil, fmt.Errorf("supabase driver selected without a supabase client")
		}
		base = supabase.NewGateway(client, logger)
	case config.DriverDynamoDB:
		base = dynamodb.NewGateway(awsdynamodb.NewFromConfig(awsCfg), cfg.AWS.DynamoDBTable, logger)
	case config.DriverMemory:
		base = memory.NewGateway(nil)
	default:
		return nil, fmt.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
	}
	logger.Info("Catalog gateway selected", zap.String("driver", cfg.Gateway.Driver))

	chain := persistence.ChainConfig{
		BreakerStates: collector,
		Tracer:        tracer.Tracer(),
		Recorder:      collector,
		SlowThreshold: cfg.Gateway.SlowThreshold,
	}
	if b := cfg.Gateway.Breaker; b.Enabled {
		breaker := persistence.DefaultBreakerConfig()
		breaker.MaxRequests = b.MaxRequests
		breaker.Interval = b.Interval
		breaker.Timeout = b.OpenTimeout
		breaker.MinRequests = b.ConsecutiveFailures
		chain.Breaker = &breaker
	}
	if cfg.Cache.TTL > 0 {
		chain.Cache = memCache
		chain.CacheTTL = cfg.Cache.TTL
	}
	return persistence.Decorate(base, chain, logger), nil
}

func providePublisher(cfg *config.Config, awsCfg aws.Config, collector *observability.Collector, logger *zap.Logger) (messaging.Publisher, func()) {
	if !cfg.AWS.EnableEvents {
		return messaging.NoopPublisher{}, func() {}
	}
	inner := messaging.NewEventBridgePublisher(eventbridge.NewFromConfig(awsCfg),
		cfg.AWS.EventBusName, cfg.AWS.EventSource, collector, logger)
	pub := messaging.NewAsyncPublisher(inner, eventQueueSize, logger)
	return pub, pub.Close
}

func provideImageSource(cfg *config.Config, logger *zap.Logger) *imagesource.Source {
	return imagesource.New(int64(cfg.TryOn.MaxImageBytes), logger)
}

// ============================================================================
// DOMAIN PROVIDERS
// ============================================================================

func provideSeed(cfg *config.Config) []catalog.Product {
	if !cfg.Gateway.SeedCatalog {
		return nil
	}
	return catalog.Seed(time.Now().UTC())
}

func provideEngine() *stylist.Engine {
	return stylist.NewEngine()
}

func provideCompositor(cfg *config.Config) *tryon.Compositor {
	return tryon.NewCompositor(
		tryon.WithGeometry(cfg.TryOn.Geometry),
		tryon.WithLimits(cfg.TryOn.MaxImageBytes, cfg.TryOn.MaxPixels),
	)
}

// ============================================================================
// APPLICATION PROVIDERS
// ============================================================================

func provideStorefront(gw catalog.Gateway, pub messaging.Publisher, seed []catalog.Product, logger *zap.Logger) *services.Storefront {
	return services.NewStorefront(gw, pub, seed, logger)
}

func provideStylist(
	storefront *services.Storefront,
	engine *stylist.Engine,
	compositor *tryon.Compositor,
	gw catalog.Gateway,
	pub messaging.Publisher,
	delays Delays,
	collector *observability.Collector,
	logger *zap.Logger,
) *services.Stylist {
	return services.NewStylist(storefront, engine, compositor, gw, pub, delays.Stylist, collector, logger)
}

func provideAssistant(delays Delays, logger *zap.Logger) *services.Assistant {
	return services.NewAssistant(stylist.NewAssistant(), delays.Chat, logger)
}

func provideTryOn(
	storefront *services.Storefront,
	compositor *tryon.Compositor,
	images imagesource.Loader,
	delays Delays,
	collector *observability.Collector,
	logger *zap.Logger,
) *services.TryOn {
	return services.NewTryOn(storefront, compositor, images, delays.TryOn, collector, logger)
}

func provideAdmin(gw catalog.Gateway, logger *zap.Logger) *services.Admin {
	return services.NewAdmin(gw, logger)
}

func provideSessions(cfg *config.Config, collector *observability.Collector, logger *zap.Logger) *session.Registry {
	return session.NewRegistry(cfg.Session.TTL, collector, logger)
}

// ============================================================================
// INTERFACE PROVIDERS
// ============================================================================

// provideVerifier prefers local JWT verification and falls back to asking
// Supabase. A nil verifier leaves every request anonymous.
func provideVerifier(cfg *config.Config, client *supa.Client, logger *zap.Logger) (auth.Verifier, error) {
	var chain auth.Chain
	if cfg.Supabase.JWTSecret != "" {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.Supabase.JWTSecret,
			Audience:  []string{supabaseAudience},
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if client != nil {
		chain = append(chain, auth.NewRemoteVerifier(auth.SupabaseLookup(client)))
	}
	if len(chain) == 0 {
		logger.Warn("No token verifier configured; all requests are anonymous")
		return nil, nil
	}
	return chain, nil
}

func provideHandler(
	storefront *services.Storefront,
	stylistSvc *services.Stylist,
	tryOn *services.TryOn,
	admin *services.Admin,
	assistant *services.Assistant,
	sessions *session.Registry,
	gw catalog.Gateway,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *handlers.Handler {
	return handlers.New(storefront, stylistSvc, tryOn, admin, sessions, logger,
		handlers.WithCartRecorder(collector),
		handlers.WithAssistant(assistant),
		handlers.WithMaxUpload(cfg.Server.MaxUploadBytes),
		handlers.WithReadinessCheck("catalog", func(ctx context.Context) error {
			_, err := gw.ListProducts(ctx, catalog.ProductFilter{Limit: 1})
			return err
		}),
	)
}

func provideRouter(
	h *handlers.Handler,
	verifier auth.Verifier,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *chi.Mux {
	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = collector.Handler()
	}
	breaker := middleware.DefaultCircuitBreakerConfig("api")
	return handlers.NewRouter(h, verifier, metrics, collector, handlers.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSMaxAge:     cfg.CORS.MaxAge,
		RequestTimeout: cfg.Server.RequestTimeout,
		Breaker:        &breaker,
	}, logger)
}
