package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

type steppingClock struct{ t time.Time }

func (c *steppingClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func TestGateway_Products(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(catalog.Seed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	clock := &steppingClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	g.SetClock(clock.now)

	all, err := g.ListProducts(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	created, err := g.CreateProduct(ctx, catalog.Product{Name: "Blazer", Category: catalog.CategoryOuterwear, Price: 99})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	newest, err := g.ListProducts(ctx, catalog.ProductFilter{NewestFirst: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, created.ID, newest[0].ID)

	created.Price = 79
	updated, err := g.UpdateProduct(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 79.0, updated.Price)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = g.UpdateProduct(ctx, catalog.Product{ID: "missing"})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, g.DeleteProduct(ctx, created.ID))
	all, _ = g.ListProducts(ctx, catalog.ProductFilter{})
	assert.Len(t, all, 10)

	all[0].Tags[0] = "mutated"
	again, _ := g.ListProducts(ctx, catalog.ProductFilter{IDs: []string{all[0].ID}})
	assert.Equal(t, "indian", again[0].Tags[0])
}

func TestGateway_OrdersAndOutfits(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(nil)
	clock := &steppingClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	g.SetClock(clock.now)

	first, err := g.CreateOrder(ctx, catalog.NewOrder{UserID: "u1", Items: []catalog.OrderItem{{ProductID: "a", Quantity: 1}}, TotalAmount: 10, Status: catalog.OrderPending})
	require.NoError(t, err)
	second, err := g.CreateOrder(ctx, catalog.NewOrder{UserID: "u1", Items: []catalog.OrderItem{{ProductID: "b", Quantity: 2}}, TotalAmount: 40, Status: catalog.OrderPending})
	require.NoError(t, err)
	_, err = g.CreateOrder(ctx, catalog.NewOrder{UserID: "u2", Items: []catalog.OrderItem{{ProductID: "c", Quantity: 1}}, TotalAmount: 5, Status: catalog.OrderPending})
	require.NoError(t, err)

	_, err = g.CreateOrder(ctx, catalog.NewOrder{UserID: "u1", Status: catalog.OrderPending})
	assert.True(t, apperrors.IsValidation(err))

	mine, err := g.ListOrders(ctx, catalog.OrderFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second, mine[0].ID)
	assert.Equal(t, first, mine[1].ID)

	everyone, _ := g.ListOrders(ctx, catalog.OrderFilter{})
	assert.Len(t, everyone, 3)

	id, err := g.SaveOutfit(ctx, catalog.NewSavedOutfit{UserID: "u1", OutfitName: "party outfit - 2024-06-01", ProductIDs: []string{"a", "b", "c"}, Score: 90, Occasion: "party"})
	require.NoError(t, err)
	outfits, err := g.ListUserOutfits(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, outfits, 1)
	assert.Equal(t, id, outfits[0].ID)

	require.NoError(t, g.DeleteOutfit(ctx, id))
	outfits, _ = g.ListUserOutfits(ctx, "u1")
	assert.Empty(t, outfits)
}

func TestGateway_TopProfiles(t *testing.T) {
	g := NewGateway(nil)
	empty, err := g.TopProfiles(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	for i, score := range []int{50, 90, 70} {
		g.PutProfile(catalog.Profile{ID: string(rune('a' + i)), StyleScore: score})
	}
	g.PutProfile(catalog.Profile{ID: "a", StyleScore: 95})

	top, err := g.TopProfiles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].ID)
	assert.Equal(t, "b", top[1].ID)
}

func TestGateway_SetError(t *testing.T) {
	g := NewGateway(nil)
	boom := errors.New("boom")
	g.SetError("ListProducts", boom)

	_, err := g.ListProducts(context.Background(), catalog.ProductFilter{})
	assert.ErrorIs(t, err, boom)

	g.SetError("ListProducts", nil)
	_, err = g.ListProducts(context.Background(), catalog.ProductFilter{})
	assert.NoError(t, err)
}
