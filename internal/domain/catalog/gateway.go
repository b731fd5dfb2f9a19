package catalog

import "context"

// ProductFilter narrows ListProducts. The zero value lists everything in
// store order.
type ProductFilter struct {
	Categories  []Category
	IDs         []string
	Limit       int
	NewestFirst bool
}

// Gateway is the remote product, order, and outfit store. Every call is a
// best-effort network round trip; callers decide how to degrade on failure and
// nothing in the core retries.
type Gateway interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	UpdateProduct(ctx context.Context, product Product) (Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order NewOrder) (string, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	SaveOutfit(ctx context.Context, outfit NewSavedOutfit) (string, error)
	DeleteOutfit(ctx context.Context, id string) error
	ListUserOutfits(ctx context.Context, userID string) ([]SavedOutfit, error)

	TopProfiles(ctx context.Context, limit int) ([]Profile, error)
}
