// Package catalog holds the storefront's read model: products, the records the
// remote store keeps about orders and saved outfits, and the Gateway port the
// core uses to reach that store.
package catalog

import (
	"strings"
	"time"
)

// Category is one of the fixed product categories the storefront sells.
type Category string

const (
	CategoryDresses       Category = "dresses"
	CategoryTops          Category = "tops"
	CategoryBottoms       Category = "bottoms"
	CategoryOuterwear     Category = "outerwear"
	CategoryShoes         Category = "shoes"
	CategoryAccessories   Category = "accessories"
	CategoryMensTops      Category = "mens-tops"
	CategoryMensBottoms   Category = "mens-bottoms"
	CategoryMensOuterwear Category = "mens-outerwear"
	CategoryMensShoes     Category = "mens-shoes"
)

// Categories lists every category in storefront display order.
func Categories() []Category {
	return []Category{
		CategoryDresses, CategoryTops, CategoryBottoms, CategoryOuterwear, CategoryShoes,
		CategoryAccessories, CategoryMensTops, CategoryMensBottoms, CategoryMensOuterwear,
		CategoryMensShoes,
	}
}

// ParseCategory returns the category named by s. The boolean is false for
// unknown names.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// lowStockThreshold is the stock level under which the storefront warns the shopper.
const lowStockThreshold = 10

// Product is a validated catalog entry. The core never mutates a Product; Tags
// is copied on construction so callers cannot alias it.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"image_url"`
	Stock       int       `json:"stock"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasAnyTag reports whether the product carries at least one of the given tags.
func (p Product) HasAnyTag(tags map[string]struct{}) bool {
	for _, tag := range p.Tags {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// LowStock reports whether the product is in stock but running out. Stock is
// informational only; nothing in the core refuses a sale because of it.
func (p Product) LowStock() bool {
	return p.Stock > 0 && p.Stock < lowStockThreshold
}

// OutOfStock reports whether the product has no stock left.
func (p Product) OutOfStock() bool {
	return p.Stock == 0
}

// Matches reports whether the product's name or description contains query,
// case-insensitively. An empty query matches everything.
func (p Product) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

func cloneTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
