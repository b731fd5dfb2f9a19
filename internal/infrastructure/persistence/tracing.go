package persistence

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/infrastructure/observability"
)

// ============================================================================
// TRACING DECORATOR
// ============================================================================

// TracingGateway opens one span per gateway call.
type TracingGateway struct {
	inner  catalog.Gateway
	tracer trace.Tracer
}

// NewTracingGateway wraps inner.
func NewTracingGateway(inner catalog.Gateway, tracer trace.Tracer) *TracingGateway {
	return &TracingGateway{inner: inner, tracer: tracer}
}

func traced[T any](ctx context.Context, tracer trace.Tracer, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "gateway."+op, trace.WithAttributes(attrs...))
	out, err := fn(ctx)
	observability.EndSpan(span, err)
	return out, err
}

func (g *TracingGateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("filter.categories", len(filter.Categories)),
		attribute.Int("filter.ids", len(filter.IDs)),
		attribute.Int("filter.limit", filter.Limit),
	}
	return traced(ctx, g.tracer, "ListProducts", attrs, func(ctx context.Context) ([]catalog.Product, error) {
		return g.inner.ListProducts(ctx, filter)
	})
}

func (g *TracingGateway) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return traced(ctx, g.tracer, "CreateProduct", []attribute.KeyValue{attribute.String("product.id", p.ID)},
		func(ctx context.Context) (catalog.Product, error) { return g.inner.CreateProduct(ctx, p) })
}

func (g *TracingGateway) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return traced(ctx, g.tracer, "UpdateProduct", []attribute.KeyValue{attribute.String("product.id", p.ID)},
		func(ctx context.Context) (catalog.Product, error) { return g.inner.UpdateProduct(ctx, p) })
}

func (g *TracingGateway) DeleteProduct(ctx context.Context, id string) error {
	_, err := traced(ctx, g.tracer, "DeleteProduct", []attribute.KeyValue{attribute.String("product.id", id)},
		func(ctx context.Context) (struct{}, error) { return struct{}{}, g.inner.DeleteProduct(ctx, id) })
	return err
}

func (g *TracingGateway) CreateOrder(ctx context.Context, o catalog.NewOrder) (string, error) {
	attrs := []attribute.KeyValue{
		attribute.String("user.id", o.UserID),
		attribute.Int("order.items", len(o.Items)),
		attribute.Float64("order.total", o.TotalAmount),
	}
	return traced(ctx, g.tracer, "CreateOrder", attrs,
		func(ctx context.Context) (string, error) { return g.inner.CreateOrder(ctx, o) })
}

func (g *TracingGateway) ListOrders(ctx context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	return traced(ctx, g.tracer, "ListOrders", []attribute.KeyValue{attribute.String("user.id", f.UserID)},
		func(ctx context.Context) ([]catalog.Order, error) { return g.inner.ListOrders(ctx, f) })
}

func (g *TracingGateway) SaveOutfit(ctx context.Context, o catalog.NewSavedOutfit) (string, error) {
	attrs := []attribute.KeyValue{
		attribute.String("user.id", o.UserID),
		attribute.String("outfit.occasion", o.Occasion),
	}
	return traced(ctx, g.tracer, "SaveOutfit", attrs,
		func(ctx context.Context) (string, error) { return g.inner.SaveOutfit(ctx, o) })
}

func (g *TracingGateway) DeleteOutfit(ctx context.Context, id string) error {
	_, err := traced(ctx, g.tracer, "DeleteOutfit", []attribute.KeyValue{attribute.String("outfit.id", id)},
		func(ctx context.Context) (struct{}, error) { return struct{}{}, g.inner.DeleteOutfit(ctx, id) })
	return err
}

func (g *TracingGateway) ListUserOutfits(ctx context.Context, userID string) ([]catalog.SavedOutfit, error) {
	return traced(ctx, g.tracer, "ListUserOutfits", []attribute.KeyValue{attribute.String("user.id", userID)},
		func(ctx context.Context) ([]catalog.SavedOutfit, error) { return g.inner.ListUserOutfits(ctx, userID) })
}

func (g *TracingGateway) TopProfiles(ctx context.Context, limit int) ([]catalog.Profile, error) {
	return traced(ctx, g.tracer, "TopProfiles", []attribute.KeyValue{attribute.Int("limit", limit)},
		func(ctx context.Context) ([]catalog.Profile, error) { return g.inner.TopProfiles(ctx, limit) })
}
