package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
)

// ============================================================================
// METRICS AND LOGGING DECORATOR
// ============================================================================

// Recorder receives one observation per gateway call.
type Recorder interface {
	ObserveGateway(operation string, err error, d time.Duration)
}

// InstrumentedGateway records metrics and logs every call.
type InstrumentedGateway struct {
	inner         catalog.Gateway
	recorder      Recorder
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewInstrumentedGateway wraps inner. recorder may be nil.
func NewInstrumentedGateway(inner catalog.Gateway, recorder Recorder, logger *zap.Logger, slowThreshold time.Duration) *InstrumentedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedGateway{
		inner:         inner,
		recorder:      recorder,
		logger:        logger.Named("gateway"),
		slowThreshold: slowThreshold,
	}
}

func instrument[T any](g *InstrumentedGateway, op string, fields []zap.Field, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)

	if g.recorder != nil {
		g.recorder.ObserveGateway(op, err, elapsed)
	}

	fields = append(fields, zap.String("operation", op), zap.Duration("duration", elapsed))
	switch {
	case err != nil:
		g.logger.Warn("Gateway call failed", append(fields, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.logger.Warn("Slow gateway call", fields...)
	default:
		g.logger.Debug("Gateway call", fields...)
	}
	return out, err
}

func (g *InstrumentedGateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	return instrument(g, "ListProducts", []zap.Field{zap.Int("limit", filter.Limit)}, func() ([]catalog.Product, error) {
		return g.inner.ListProducts(ctx, filter)
	})
}

func (g *InstrumentedGateway) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return instrument(g, "CreateProduct", []zap.Field{zap.String("product_id", p.ID)}, func() (catalog.Product, error) {
		return g.inner.CreateProduct(ctx, p)
	})
}

func (g *InstrumentedGateway) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return instrument(g, "UpdateProduct", []zap.Field{zap.String("product_id", p.ID)}, func() (catalog.Product, error) {
		return g.inner.UpdateProduct(ctx, p)
	})
}

func (g *InstrumentedGateway) DeleteProduct(ctx context.Context, id string) error {
	_, err := instrument(g, "DeleteProduct", []zap.Field{zap.String("product_id", id)}, func() (struct{}, error) {
		return struct{}{}, g.inner.DeleteProduct(ctx, id)
	})
	return err
}

func (g *InstrumentedGateway) CreateOrder(ctx context.Context, o catalog.NewOrder) (string, error) {
	return instrument(g, "CreateOrder", []zap.Field{zap.String("user_id", o.UserID), zap.Int("items", len(o.Items))}, func() (string, error) {
		return g.inner.CreateOrder(ctx, o)
	})
}

func (g *InstrumentedGateway) ListOrders(ctx context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	return instrument(g, "ListOrders", []zap.Field{zap.String("user_id", f.UserID)}, func() ([]catalog.Order, error) {
		return g.inner.ListOrders(ctx, f)
	})
}

func (g *InstrumentedGateway) SaveOutfit(ctx context.Context, o catalog.NewSavedOutfit) (string, error) {
	return instrument(g, "SaveOutfit", []zap.Field{zap.String("user_id", o.UserID)}, func() (string, error) {
		return g.inner.SaveOutfit(ctx, o)
	})
}

func (g *InstrumentedGateway) DeleteOutfit(ctx context.Context, id string) error {
	_, err := instrument(g, "DeleteOutfit", []zap.Field{zap.String("outfit_id", id)}, func() (struct{}, error) {
		return struct{}{}, g.inner.DeleteOutfit(ctx, id)
	})
	return err
}

func (g *InstrumentedGateway) ListUserOutfits(ctx context.Context, userID string) ([]catalog.SavedOutfit, error) {
	return instrument(g, "ListUserOutfits", []zap.Field{zap.String("user_id", userID)}, func() ([]catalog.SavedOutfit, error) {
		return g.inner.ListUserOutfits(ctx, userID)
	})
}

func (g *InstrumentedGateway) TopProfiles(ctx context.Context, limit int) ([]catalog.Profile, error) {
	return instrument(g, "TopProfiles", []zap.Field{zap.Int("limit", limit)}, func() ([]catalog.Profile, error) {
		return g.inner.TopProfiles(ctx, limit)
	})
}
