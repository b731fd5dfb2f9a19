// Package persistence decorates a catalog.Gateway with the cross-cutting
// concerns every adapter needs: circuit breaking, caching, tracing, and
// metrics with logging.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

// ============================================================================
// CIRCUIT BREAKER DECORATOR
// ============================================================================

// BreakerConfig configures the gateway circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the settings used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "catalog-gateway",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// StateListener is told about breaker transitions.
type StateListener interface {
	SetBreakerState(name string, state float64)
}

// BreakerGateway stops calling the remote store while it keeps failing.
// Only transport failures and timeouts count against it.
type BreakerGateway struct {
	inner catalog.Gateway
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerGateway wraps inner. listener may be nil.
func NewBreakerGateway(inner catalog.Gateway, cfg BreakerConfig, listener StateListener, logger *zap.Logger) *BreakerGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if listener != nil {
				listener.SetBreakerState(name, float64(to))
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !(apperrors.IsTransport(err) || apperrors.IsType(err, apperrors.ErrorTypeTimeout))
		},
	})
	return &BreakerGateway{inner: inner, cb: cb}
}

// State reports the breaker's current state.
func (g *BreakerGateway) State() gobreaker.State {
	return g.cb.State()
}

func guard[T any](cb *gobreaker.CircuitBreaker, op string, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperrors.Transport(apperrors.CodeServiceUnavailable, op, err).Build()
		}
		return zero, err
	}
	return out.(T), nil
}

func guardErr(cb *gobreaker.CircuitBreaker, op string, fn func() error) error {
	_, err := guard(cb, op, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (g *BreakerGateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	return guard(g.cb, "ListProducts", func() ([]catalog.Product, error) { return g.inner.ListProducts(ctx, filter) })
}

func (g *BreakerGateway) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return guard(g.cb, "CreateProduct", func() (catalog.Product, error) { return g.inner.CreateProduct(ctx, p) })
}

func (g *BreakerGateway) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return guard(g.cb, "UpdateProduct", func() (catalog.Product, error) { return g.inner.UpdateProduct(ctx, p) })
}

func (g *BreakerGateway) DeleteProduct(ctx context.Context, id string) error {
	return guardErr(g.cb, "DeleteProduct", func() error { return g.inner.DeleteProduct(ctx, id) })
}

func (g *BreakerGateway) CreateOrder(ctx context.Context, o catalog.NewOrder) (string, error) {
	return guard(g.cb, "CreateOrder", func() (string, error) { return g.inner.CreateOrder(ctx, o) })
}

func (g *BreakerGateway) ListOrders(ctx context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	return guard(g.cb, "ListOrders", func() ([]catalog.Order, error) { return g.inner.ListOrders(ctx, f) })
}

func (g *BreakerGateway) SaveOutfit(ctx context.Context, o catalog.NewSavedOutfit) (string, error) {
	return guard(g.cb, "SaveOutfit", func() (string, error) { return g.inner.SaveOutfit(ctx, o) })
}

func (g *BreakerGateway) DeleteOutfit(ctx context.Context, id string) error {
	return guardErr(g.cb, "DeleteOutfit", func() error { return g.inner.DeleteOutfit(ctx, id) })
}

func (g *BreakerGateway) ListUserOutfits(ctx context.Context, userID string) ([]catalog.SavedOutfit, error) {
	return guard(g.cb, "ListUserOutfits", func() ([]catalog.SavedOutfit, error) { return g.inner.ListUserOutfits(ctx, userID) })
}

func (g *BreakerGateway) TopProfiles(ctx context.Context, limit int) ([]catalog.Profile, error) {
	return guard(g.cb, "TopProfiles", func() ([]catalog.Profile, error) { return g.inner.TopProfiles(ctx, limit) })
}
