// Package memory is a process-local catalog.Gateway used for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

// Gateway keeps products, orders, outfits, and profiles in insertion order
// behind a single lock.
type Gateway struct {
	mu       sync.RWMutex
	products []catalog.Product
	orders   []catalog.Order
	outfits  []catalog.SavedOutfit
	profiles []catalog.Profile

	now          func() time.Time
	shouldFailOn map[string]error
}

// NewGateway returns a store holding the given products in order.
func NewGateway(products []catalog.Product) *Gateway {
	g := &Gateway{
		now:          time.Now,
		shouldFailOn: make(map[string]error),
	}
	for _, p := range products {
		g.products = append(g.products, clone(p))
	}
	return g
}

// SetClock replaces time.Now.
func (g *Gateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// SetError makes every later call to method fail with err. A nil err clears it.
func (g *Gateway) SetError(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.shouldFailOn, method)
		return
	}
	g.shouldFailOn[method] = err
}

// PutProfile inserts or replaces a leaderboard profile.
func (g *Gateway) PutProfile(p catalog.Profile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.profiles {
		if g.profiles[i].ID == p.ID {
			g.profiles[i] = p
			return
		}
	}
	g.profiles = append(g.profiles, p)
}

func (g *Gateway) fail(method string) error {
	return g.shouldFailOn[method]
}

func (g *Gateway) ListProducts(_ context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fail("ListProducts"); err != nil {
		return nil, err
	}
	out := filter.Apply(g.products)
	for i := range out {
		out[i] = clone(out[i])
	}
	return out, nil
}

func (g *Gateway) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateProduct"); err != nil {
		return catalog.Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = g.now()
	}
	g.products = append(g.products, clone(p))
	return clone(p), nil
}

func (g *Gateway) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("UpdateProduct"); err != nil {
		return catalog.Product{}, err
	}
	for i := range g.products {
		if g.products[i].ID == p.ID {
			p.CreatedAt = g.products[i].CreatedAt
			g.products[i] = clone(p)
			return clone(p), nil
		}
	}
	return catalog.Product{}, apperrors.NotFound(apperrors.CodeProductNotFound, "product not found").WithResource(p.ID).Build()
}

func (g *Gateway) DeleteProduct(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("DeleteProduct"); err != nil {
		return err
	}
	for i := range g.products {
		if g.products[i].ID == id {
			g.products = append(g.products[:i], g.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (g *Gateway) CreateOrder(_ context.Context, o catalog.NewOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateOrder"); err != nil {
		return "", err
	}
	order := catalog.Order{
		ID:          uuid.NewString(),
		UserID:      o.UserID,
		Items:       append([]catalog.OrderItem(nil), o.Items...),
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   g.now(),
	}
	g.orders = append(g.orders, order)
	return order.ID, nil
}

func (g *Gateway) ListOrders(_ context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fail("ListOrders"); err != nil {
		return nil, err
	}
	out := make([]catalog.Order, 0, len(g.orders))
	for _, o := range g.orders {
		if f.UserID == "" || o.UserID == f.UserID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (g *Gateway) SaveOutfit(_ context.Context, o catalog.NewSavedOutfit) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("SaveOutfit"); err != nil {
		return "", err
	}
	outfit := catalog.SavedOutfit{
		ID:         uuid.NewString(),
		UserID:     o.UserID,
		OutfitName: o.OutfitName,
		ProductIDs: append([]string(nil), o.ProductIDs...),
		Score:      o.Score,
		Occasion:   o.Occasion,
		CreatedAt:  g.now(),
	}
	g.outfits = append(g.outfits, outfit)
	return outfit.ID, nil
}

func (g *Gateway) DeleteOutfit(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("DeleteOutfit"); err != nil {
		return err
	}
	for i := range g.outfits {
		if g.outfits[i].ID == id {
			g.outfits = append(g.outfits[:i], g.outfits[i+1:]...)
			break
		}
	}
	return nil
}

func (g *Gateway) ListUserOutfits(_ context.Context, userID string) ([]catalog.SavedOutfit, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fail("ListUserOutfits"); err != nil {
		return nil, err
	}
	out := make([]catalog.SavedOutfit, 0)
	for _, o := range g.outfits {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (g *Gateway) TopProfiles(_ context.Context, limit int) ([]catalog.Profile, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fail("TopProfiles"); err != nil {
		return nil, err
	}
	out := append([]catalog.Profile(nil), g.profiles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StyleScore > out[j].StyleScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []catalog.Profile{}
	}
	return out, nil
}

func clone(p catalog.Product) catalog.Product {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

var _ catalog.Gateway = (*Gateway)(nil)
