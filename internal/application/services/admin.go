package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

// Stats summarises the store for the admin page.
type Stats struct {
	Products int     `json:"total_products"`
	Orders   int     `json:"total_orders"`
	Revenue  float64 `json:"revenue"`
}

// Admin manages the remote catalog. Callers must have checked the admin role.
type Admin struct {
	gateway catalog.Gateway
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewAdmin returns the admin service.
func NewAdmin(gateway catalog.Gateway, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Admin{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

func staticProduct(id string) error {
	return apperrors.Validation(apperrors.CodeProductInvalid, "static catalog products cannot be changed").
		WithResource(id).
		Build()
}

func (a *Admin) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	p, err := in.ToProduct(a.newID(), a.now().UTC())
	if err != nil {
		return catalog.Product{}, err
	}
	created, err := a.gateway.CreateProduct(ctx, p)
	if err != nil {
		return catalog.Product{}, apperrors.Wrap(err, "CreateProduct", "product could not be created")
	}
	a.logger.Info("Product created", zap.String("product_id", created.ID), zap.String("category", string(created.Category)))
	return created, nil
}

func (a *Admin) UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (catalog.Product, error) {
	if catalog.IsSeedID(id) {
		return catalog.Product{}, staticProduct(id)
	}
	p, err := in.ToProduct(id, time.Time{})
	if err != nil {
		return catalog.Product{}, err
	}
	updated, err := a.gateway.UpdateProduct(ctx, p)
	if err != nil {
		return catalog.Product{}, apperrors.Wrap(err, "UpdateProduct", "product could not be updated")
	}
	a.logger.Info("Product updated", zap.String("product_id", id))
	return updated, nil
}

func (a *Admin) DeleteProduct(ctx context.Context, id string) error {
	if catalog.IsSeedID(id) {
		return staticProduct(id)
	}
	if err := a.gateway.DeleteProduct(ctx, id); err != nil {
		return apperrors.Wrap(err, "DeleteProduct", "product could not be deleted")
	}
	a.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// Stats counts remote products and orders and sums order totals.
func (a *Admin) Stats(ctx context.Context) (Stats, error) {
	var (
		products []catalog.Product
		orders   []catalog.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = a.gateway.ListProducts(gctx, catalog.ProductFilter{})
		return err
	})
	g.Go(func() (err error) {
		orders, err = a.gateway.ListOrders(gctx, catalog.OrderFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, apperrors.Wrap(err, "Stats", "statistics unavailable")
	}

	s := Stats{Products: len(products), Orders: len(orders)}
	for _, o := range orders {
		s.Revenue += o.TotalAmount
	}
	return s, nil
}
