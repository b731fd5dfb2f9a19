package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"stylesync-backend/internal/domain/catalog"
)

// Entity types stored in the single table.
const (
	entityProduct = "PRODUCT"
	entityOrder   = "ORDER"
	entityOutfit  = "OUTFIT"
	entityProfile = "PROFILE"

	metadataSK = "METADATA"
)

// Keys are present on every item.
type Keys struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
}

type productItem struct {
	Keys
	catalog.ProductRecord
}

type orderItem struct {
	Keys
	ID          string              `dynamodbav:"ID"`
	UserID      string              `dynamodbav:"UserID"`
	Items       []catalog.OrderItem `dynamodbav:"Items"`
	TotalAmount float64             `dynamodbav:"TotalAmount"`
	Status      string              `dynamodbav:"Status"`
	CreatedAt   string              `dynamodbav:"CreatedAt"`
}

type outfitItem struct {
	Keys
	ID         string   `dynamodbav:"ID"`
	UserID     string   `dynamodbav:"UserID"`
	OutfitName string   `dynamodbav:"OutfitName"`
	ProductIDs []string `dynamodbav:"ProductIDs"`
	Score      int      `dynamodbav:"Score"`
	Occasion   string   `dynamodbav:"Occasion,omitempty"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
}

type profileItem struct {
	Keys
	ID         string `dynamodbav:"ID"`
	FullName   string `dynamodbav:"FullName,omitempty"`
	AvatarURL  string `dynamodbav:"AvatarURL,omitempty"`
	StyleScore int    `dynamodbav:"StyleScore"`
}

func productPK(id string) string { return "PRODUCT#" + id }
func userPK(userID string) string { return "USER#" + userID }
func profilePK(id string) string { return "PROFILE#" + id }

// orderSK and outfitSK sort chronologically inside a user's partition.
func orderSK(at time.Time, id string) string {
	return fmt.Sprintf("ORDER#%s#%s", at.UTC().Format(time.RFC3339Nano), id)
}

func outfitSK(at time.Time, id string) string {
	return fmt.Sprintf("OUTFIT#%s#%s", at.UTC().Format(time.RFC3339Nano), id)
}

// idFromSK returns the trailing ID of an ORDER# or OUTFIT# sort key.
func idFromSK(sk string) string {
	return sk[strings.LastIndex(sk, "#")+1:]
}

func newProductItem(p catalog.Product) productItem {
	return productItem{
		Keys:          Keys{PK: productPK(p.ID), SK: metadataSK, EntityType: entityProduct},
		ProductRecord: catalog.RecordFromProduct(p),
	}
}

func newOrderItem(id string, o catalog.NewOrder, at time.Time) orderItem {
	return orderItem{
		Keys:        Keys{PK: userPK(o.UserID), SK: orderSK(at, id), EntityType: entityOrder},
		ID:          id,
		UserID:      o.UserID,
		Items:       o.Items,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   catalog.FormatTimestamp(at),
	}
}

func (i orderItem) record() catalog.OrderRecord {
	total := i.TotalAmount
	return catalog.OrderRecord{
		ID:          i.ID,
		UserID:      i.UserID,
		Items:       i.Items,
		TotalAmount: &total,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
	}
}

func newOutfitItem(id string, o catalog.NewSavedOutfit, at time.Time) outfitItem {
	return outfitItem{
		Keys:       Keys{PK: userPK(o.UserID), SK: outfitSK(at, id), EntityType: entityOutfit},
		ID:         id,
		UserID:     o.UserID,
		OutfitName: o.OutfitName,
		ProductIDs: o.ProductIDs,
		Score:      o.Score,
		Occasion:   o.Occasion,
		CreatedAt:  catalog.FormatTimestamp(at),
	}
}

func (i outfitItem) record() catalog.SavedOutfitRecord {
	score := i.Score
	occasion := i.Occasion
	return catalog.SavedOutfitRecord{
		ID:         i.ID,
		UserID:     i.UserID,
		OutfitName: i.OutfitName,
		ProductIDs: i.ProductIDs,
		Score:      &score,
		Occasion:   &occasion,
		CreatedAt:  i.CreatedAt,
	}
}

func newProfileItem(p catalog.Profile) profileItem {
	return profileItem{
		Keys:       Keys{PK: profilePK(p.ID), SK: metadataSK, EntityType: entityProfile},
		ID:         p.ID,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		StyleScore: p.StyleScore,
	}
}

func (i profileItem) profile() catalog.Profile {
	return catalog.Profile{ID: i.ID, FullName: i.FullName, AvatarURL: i.AvatarURL, StyleScore: i.StyleScore}
}
