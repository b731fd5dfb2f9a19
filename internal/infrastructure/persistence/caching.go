package persistence

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/infrastructure/cache"
)

// ============================================================================
// CACHING DECORATOR
// ============================================================================

const productKeyPrefix = "products:"

// CachingGateway serves repeated ListProducts calls from a cache. Any product
// write clears every cached listing. All other calls pass straight through.
type CachingGateway struct {
	catalog.Gateway
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingGateway wraps inner.
func NewCachingGateway(inner catalog.Gateway, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachingGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingGateway{Gateway: inner, cache: c, ttl: ttl, logger: logger}
}

func (g *CachingGateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	key, err := productKey(filter)
	if err != nil {
		return g.Gateway.ListProducts(ctx, filter)
	}

	if raw, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		var products []catalog.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		g.logger.Warn("Discarding unreadable cache entry", zap.String("key", key))
		_ = g.cache.Delete(ctx, key)
	}

	products, err := g.Gateway.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(products); err == nil {
		if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil {
			g.logger.Debug("Failed to cache products", zap.Error(err))
		}
	}
	return products, nil
}

func (g *CachingGateway) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	out, err := g.Gateway.CreateProduct(ctx, p)
	g.invalidate(ctx, err)
	return out, err
}

func (g *CachingGateway) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	out, err := g.Gateway.UpdateProduct(ctx, p)
	g.invalidate(ctx, err)
	return out, err
}

func (g *CachingGateway) DeleteProduct(ctx context.Context, id string) error {
	err := g.Gateway.DeleteProduct(ctx, id)
	g.invalidate(ctx, err)
	return err
}

// invalidate clears listings after a write. A failed write may still have
// reached the store, so the cache is cleared either way.
func (g *CachingGateway) invalidate(ctx context.Context, _ error) {
	if err := g.cache.Clear(ctx, productKeyPrefix); err != nil {
		g.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

func productKey(f catalog.ProductFilter) (string, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return productKeyPrefix + string(raw), nil
}
