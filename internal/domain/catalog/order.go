package catalog

import (
	"time"

	apperrors "stylesync-backend/internal/errors"
)

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
)

// OrderItem is one purchased line with the product as it was at checkout.
type OrderItem struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"gte=1"`
	Product   *Product `json:"product,omitempty"`
}

// Order is a placed order as the remote store reports it.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewOrder is what checkout hands the gateway.
type NewOrder struct {
	UserID      string      `json:"user_id" validate:"required"`
	Items       []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64     `json:"total_amount" validate:"gte=0"`
	Status      OrderStatus `json:"status" validate:"required,oneof=pending shipped completed"`
}

// Validate checks the order before it is sent anywhere.
func (o NewOrder) Validate() error {
	if err := Validator().Struct(o); err != nil {
		return apperrors.Validation(apperrors.CodeValidationFailed, "invalid order").
			WithUserID(o.UserID).
			WithCause(err).
			Build()
	}
	return nil
}

// OrderFilter narrows ListOrders. An empty UserID lists every order.
type OrderFilter struct {
	UserID string
	Limit  int
}

// OrderRecord is the raw row shape for orders.
type OrderRecord struct {
	ID          string      `json:"id" validate:"required"`
	UserID      string      `json:"user_id" validate:"required"`
	Items       []OrderItem `json:"items" validate:"omitempty,dive"`
	TotalAmount *float64    `json:"total_amount" validate:"omitempty,gte=0"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// ToOrder validates and converts the row. Unknown statuses read as pending.
func (r OrderRecord) ToOrder() (Order, error) {
	if err := Validator().Struct(r); err != nil {
		return Order{}, apperrors.Validation(apperrors.CodeValidationFailed, "order record failed validation").
			WithResource(r.ID).
			WithCause(err).
			Build()
	}
	o := Order{
		ID:        r.ID,
		UserID:    r.UserID,
		Items:     r.Items,
		Status:    OrderStatus(r.Status),
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
	if r.TotalAmount != nil {
		o.TotalAmount = *r.TotalAmount
	}
	switch o.Status {
	case OrderPending, OrderShipped, OrderCompleted:
	default:
		o.Status = OrderPending
	}
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	return o, nil
}

// SavedOutfit is an outfit a shopper chose to keep.
type SavedOutfit struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	OutfitName string    `json:"outfit_name"`
	ProductIDs []string  `json:"product_ids"`
	Score      int       `json:"ai_score"`
	Occasion   string    `json:"event_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSavedOutfit is the payload for SaveOutfit.
type NewSavedOutfit struct {
	UserID     string   `json:"user_id" validate:"required"`
	OutfitName string   `json:"outfit_name" validate:"required,max=200"`
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
	Score      int      `json:"ai_score" validate:"gte=0,lte=100"`
	Occasion   string   `json:"event_type,omitempty"`
}

// Validate checks the outfit before it is persisted.
func (o NewSavedOutfit) Validate() error {
	if err := Validator().Struct(o); err != nil {
		return apperrors.Validation(apperrors.CodeValidationFailed, "invalid outfit").
			WithUserID(o.UserID).
			WithCause(err).
			Build()
	}
	return nil
}

// DefaultOutfitName is used when the shopper does not name an outfit.
func DefaultOutfitName(occasion string, at time.Time) string {
	return occasion + " outfit - " + at.Format("2006-01-02")
}

// SavedOutfitRecord is the raw row shape for saved outfits.
type SavedOutfitRecord struct {
	ID         string   `json:"id" validate:"required"`
	UserID     string   `json:"user_id" validate:"required"`
	OutfitName string   `json:"outfit_name"`
	ProductIDs []string `json:"product_ids"`
	Score      *int     `json:"ai_score"`
	Occasion   *string  `json:"event_type"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// ToSavedOutfit validates and converts the row.
func (r SavedOutfitRecord) ToSavedOutfit() (SavedOutfit, error) {
	if err := Validator().Struct(r); err != nil {
		return SavedOutfit{}, apperrors.Validation(apperrors.CodeValidationFailed, "outfit record failed validation").
			WithResource(r.ID).
			WithCause(err).
			Build()
	}
	o := SavedOutfit{
		ID:         r.ID,
		UserID:     r.UserID,
		OutfitName: r.OutfitName,
		ProductIDs: append([]string{}, r.ProductIDs...),
		CreatedAt:  parseTimestamp(r.CreatedAt),
	}
	if r.Score != nil {
		o.Score = *r.Score
	}
	if r.Occasion != nil {
		o.Occasion = *r.Occasion
	}
	return o, nil
}

// Profile is the public part of a shopper profile shown on the leaderboard.
type Profile struct {
	ID         string `json:"id" validate:"required"`
	FullName   string `json:"full_name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	StyleScore int    `json:"style_score" validate:"gte=0"`
}
