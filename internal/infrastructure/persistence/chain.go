package persistence

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/infrastructure/cache"
)

// ChainConfig selects which decorators wrap an adapter. Nil dependencies
// switch the corresponding layer off.
type ChainConfig struct {
	Breaker       *BreakerConfig
	BreakerStates StateListener
	Cache         cache.Cache
	CacheTTL      time.Duration
	Tracer        trace.Tracer
	Recorder      Recorder
	SlowThreshold time.Duration
}

// Decorate stacks the decorators around base, innermost first: circuit
// breaker, cache, tracing, then metrics and logging.
func Decorate(base catalog.Gateway, cfg ChainConfig, logger *zap.Logger) catalog.Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	gw := base
	if cfg.Breaker != nil {
		gw = NewBreakerGateway(gw, *cfg.Breaker, cfg.BreakerStates, logger)
	}
	if cfg.Cache != nil {
		gw = NewCachingGateway(gw, cfg.Cache, cfg.CacheTTL, logger)
	}
	if cfg.Tracer != nil {
		gw = NewTracingGateway(gw, cfg.Tracer)
	}
	return NewInstrumentedGateway(gw, cfg.Recorder, logger, cfg.SlowThreshold)
}
