// Package messaging publishes storefront events to Amazon EventBridge.
package messaging

import (
	"time"

	"github.com/google/uuid"

	"stylesync-backend/internal/domain/catalog"
)

// Event types.
const (
	TypeOrderPlaced = "OrderPlaced"
	TypeOutfitSaved = "OutfitSaved"
)

// Event is one fact the storefront announces to downstream consumers.
type Event struct {
	ID          string                 `json:"event_id"`
	Type        string                 `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	UserID      string                 `json:"user_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Data        map[string]interface{} `json:"data"`
}

// OrderPlaced is published after checkout created the order.
func OrderPlaced(orderID string, order catalog.NewOrder, at time.Time) Event {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, map[string]interface{}{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
		})
	}
	return Event{
		ID:          uuid.New().String(),
		Type:        TypeOrderPlaced,
		AggregateID: orderID,
		UserID:      order.UserID,
		OccurredAt:  at.UTC(),
		Data: map[string]interface{}{
			"total_amount": order.TotalAmount,
			"items":        items,
		},
	}
}

// OutfitSaved is published after a generated outfit was persisted.
func OutfitSaved(outfitID string, outfit catalog.NewSavedOutfit, at time.Time) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        TypeOutfitSaved,
		AggregateID: outfitID,
		UserID:      outfit.UserID,
		OccurredAt:  at.UTC(),
		Data: map[string]interface{}{
			"outfit_name": outfit.OutfitName,
			"product_ids": outfit.ProductIDs,
			"ai_score":    outfit.Score,
			"event_type":  outfit.Occasion,
		},
	}
}
