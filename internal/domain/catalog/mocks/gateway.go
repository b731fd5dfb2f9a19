// Package mocks provides testify mocks of the catalog ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stylesync-backend/internal/domain/catalog"
)

// Gateway is a mock catalog.Gateway.
type Gateway struct {
	mock.Mock
}

var _ catalog.Gateway = (*Gateway)(nil)

func (m *Gateway) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *Gateway) CreateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	args := m.Called(ctx, product)
	p, _ := args.Get(0).(catalog.Product)
	return p, args.Error(1)
}

func (m *Gateway) UpdateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	args := m.Called(ctx, product)
	p, _ := args.Get(0).(catalog.Product)
	return p, args.Error(1)
}

func (m *Gateway) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Gateway) CreateOrder(ctx context.Context, order catalog.NewOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *Gateway) ListOrders(ctx context.Context, filter catalog.OrderFilter) ([]catalog.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]catalog.Order)
	return orders, args.Error(1)
}

func (m *Gateway) SaveOutfit(ctx context.Context, outfit catalog.NewSavedOutfit) (string, error) {
	args := m.Called(ctx, outfit)
	return args.String(0), args.Error(1)
}

func (m *Gateway) DeleteOutfit(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Gateway) ListUserOutfits(ctx context.Context, userID string) ([]catalog.SavedOutfit, error) {
	args := m.Called(ctx, userID)
	outfits, _ := args.Get(0).([]catalog.SavedOutfit)
	return outfits, args.Error(1)
}

func (m *Gateway) TopProfiles(ctx context.Context, limit int) ([]catalog.Profile, error) {
	args := m.Called(ctx, limit)
	profiles, _ := args.Get(0).([]catalog.Profile)
	return profiles, args.Error(1)
}
