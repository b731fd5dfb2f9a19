// Package services holds the storefront use cases. Services orchestrate the
// gateway, the domain engines, and the event publisher; they own no state.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stylesync-backend/internal/domain/cart"
	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/internal/infrastructure/messaging"
)

// LeaderboardSize is how many profiles the dashboard shows.
const LeaderboardSize = 10

// ShopQuery narrows the catalog page. Category "all" or empty keeps every
// category; Query matches name and description case-insensitively.
type ShopQuery struct {
	Category string `json:"category"`
	Query    string `json:"q"`
}

// Dashboard is everything the signed-in shopper's dashboard shows.
type Dashboard struct {
	Outfits     []catalog.SavedOutfit `json:"outfits"`
	Orders      []catalog.Order       `json:"orders"`
	Leaderboard []catalog.Profile     `json:"leaderboard"`
}

// Storefront serves the catalog, the cart, checkout, and the dashboard.
type Storefront struct {
	gateway   catalog.Gateway
	publisher messaging.Publisher
	seed      []catalog.Product
	logger    *zap.Logger
	now       func() time.Time
}

// NewStorefront returns the service. seed is appended after the remote
// catalog; pass nil to serve remote products only.
func NewStorefront(gateway catalog.Gateway, publisher messaging.Publisher, seed []catalog.Product, logger *zap.Logger) *Storefront {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Storefront{
		gateway:   gateway,
		publisher: publisher,
		seed:      seed,
		logger:    logger,
		now:       time.Now,
	}
}

// products lists remote products matching filter followed by the seed
// entries that match it too. A remote product shadows a seed product with the
// same ID. Gateway failures degrade to the seed alone.
func (s *Storefront) products(ctx context.Context, filter catalog.ProductFilter) []catalog.Product {
	remote, err := s.gateway.ListProducts(ctx, filter)
	if err != nil {
		s.logger.Warn("Catalog unavailable, serving static products only",
			zap.Error(err),
			zap.Int("categories", len(filter.Categories)),
			zap.Int("ids", len(filter.IDs)),
		)
		remote = nil
	}
	if len(s.seed) == 0 {
		return remote
	}

	seen := make(map[string]struct{}, len(remote))
	for _, p := range remote {
		seen[p.ID] = struct{}{}
	}
	seedFilter := catalog.ProductFilter{Categories: filter.Categories, IDs: filter.IDs}
	out := make([]catalog.Product, 0, len(remote)+len(s.seed))
	out = append(out, remote...)
	for _, p := range seedFilter.Apply(s.seed) {
		if _, dup := seen[p.ID]; !dup {
			out = append(out, p)
		}
	}
	return out
}

// Catalog returns the shop page: remote products newest first, then the
// static catalog, narrowed by q.
func (s *Storefront) Catalog(ctx context.Context, q ShopQuery) []catalog.Product {
	all := s.products(ctx, catalog.ProductFilter{NewestFirst: true})
	return catalog.Search(all, q.Category, q.Query)
}

// Product looks up one product in the remote catalog or the static one.
func (s *Storefront) Product(ctx context.Context, id string) (catalog.Product, error) {
	if id != "" {
		if p, ok := catalog.Find(s.products(ctx, catalog.ProductFilter{IDs: []string{id}}), id); ok {
			return p, nil
		}
	}
	return catalog.Product{}, apperrors.NotFound(apperrors.CodeProductNotFound, "product not found").
		WithResource(id).
		Build()
}

// CartView refreshes the cart's product snapshots and returns its state.
// When the catalog cannot be reached the snapshots stay as they were.
func (s *Storefront) CartView(ctx context.Context, store *cart.Store) cart.Snapshot {
	if ids := store.ProductIDs(); len(ids) > 0 {
		store.Refresh(s.products(ctx, catalog.ProductFilter{IDs: ids}))
	}
	return store.Snapshot()
}

// Checkout turns the cart into a pending order, announces it, and empties
// the cart. The cart is left untouched on any failure.
func (s *Storefront) Checkout(ctx context.Context, userID string, store *cart.Store) (catalog.Order, error) {
	if userID == "" {
		return catalog.Order{}, apperrors.Unauthorized("sign in to check out").
			WithOperation("Checkout").
			Build()
	}
	snap := store.Snapshot()
	if len(snap.Lines) == 0 {
		return catalog.Order{}, apperrors.Validation(apperrors.CodeCartEmpty, "cart is empty").
			WithOperation("Checkout").
			WithUserID(userID).
			Build()
	}

	items := make([]catalog.OrderItem, len(snap.Lines))
	for i, l := range snap.Lines {
		items[i] = catalog.OrderItem{ProductID: l.ProductID, Quantity: l.Quantity, Product: l.Product}
	}
	order := catalog.NewOrder{
		UserID:      userID,
		Items:       items,
		TotalAmount: snap.Total,
		Status:      catalog.OrderPending,
	}

	id, err := s.gateway.CreateOrder(ctx, order)
	if err != nil {
		s.logger.Error("Checkout failed", zap.String("user_id", userID), zap.Error(err))
		return catalog.Order{}, apperrors.Wrap(err, "Checkout", "order could not be placed")
	}
	now := s.now()

	if err := s.publisher.Publish(ctx, messaging.OrderPlaced(id, order, now)); err != nil {
		s.logger.Warn("OrderPlaced not published", zap.String("order_id", id), zap.Error(err))
	}
	store.Clear()

	s.logger.Info("Order placed",
		zap.String("order_id", id),
		zap.String("user_id", userID),
		zap.Float64("total", order.TotalAmount),
		zap.Int("items", snap.Count),
	)
	return catalog.Order{
		ID:          id,
		UserID:      userID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   now,
	}, nil
}

// Dashboard loads the shopper's outfits, their orders, and the leaderboard
// in parallel. Each part that fails is shown empty.
func (s *Storefront) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	if userID == "" {
		return Dashboard{}, apperrors.Unauthorized("sign in to see your dashboard").Build()
	}

	d := Dashboard{
		Outfits:     []catalog.SavedOutfit{},
		Orders:      []catalog.Order{},
		Leaderboard: []catalog.Profile{},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outfits, err := s.gateway.ListUserOutfits(gctx, userID)
		if err != nil {
			s.logger.Warn("Dashboard outfits unavailable", zap.String("user_id", userID), zap.Error(err))
			return nil
		}
		d.Outfits = outfits
		return nil
	})
	g.Go(func() error {
		orders, err := s.gateway.ListOrders(gctx, catalog.OrderFilter{UserID: userID})
		if err != nil {
			s.logger.Warn("Dashboard orders unavailable", zap.String("user_id", userID), zap.Error(err))
			return nil
		}
		d.Orders = orders
		return nil
	})
	g.Go(func() error {
		profiles, err := s.gateway.TopProfiles(gctx, LeaderboardSize)
		if err != nil {
			s.logger.Warn("Leaderboard unavailable", zap.Error(err))
			return nil
		}
		d.Leaderboard = profiles
		return nil
	})
	_ = g.Wait()
	return d, nil
}

// DeleteOutfit removes one of the shopper's saved outfits.
func (s *Storefront) DeleteOutfit(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperrors.Unauthorized("sign in to manage outfits").Build()
	}
	outfits, err := s.gateway.ListUserOutfits(ctx, userID)
	if err != nil {
		return apperrors.Wrap(err, "DeleteOutfit", "outfits could not be loaded")
	}
	owned := false
	for _, o := range outfits {
		if o.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		return apperrors.NotFound(apperrors.CodeOutfitNotFound, "outfit not found").
			WithResource(id).
			WithUserID(userID).
			Build()
	}
	if err := s.gateway.DeleteOutfit(ctx, id); err != nil {
		return apperrors.Wrap(err, "DeleteOutfit", "outfit could not be deleted")
	}
	return nil
}
