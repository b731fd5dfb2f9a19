package catalog

import (
	"sort"
)

// Apply returns the products that satisfy the filter. Adapters without a
// native query language use it to emulate the remote store.
func (f ProductFilter) Apply(products []Product) []Product {
	var cats map[Category]struct{}
	if len(f.Categories) > 0 {
		cats = make(map[Category]struct{}, len(f.Categories))
		for _, c := range f.Categories {
			cats[c] = struct{}{}
		}
	}
	var ids map[string]struct{}
	if len(f.IDs) > 0 {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = struct{}{}
		}
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if cats != nil {
			if _, ok := cats[p.Category]; !ok {
				continue
			}
		}
		if ids != nil {
			if _, ok := ids[p.ID]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	if f.NewestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// Search keeps products in the given category (empty or "all" keeps every
// category) whose name or description contains query.
func Search(products []Product, category string, query string) []Product {
	var want Category
	if category != "" && category != "all" {
		c, ok := ParseCategory(category)
		if !ok {
			return []Product{}
		}
		want = c
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if want != "" && p.Category != want {
			continue
		}
		if !p.Matches(query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Index maps product IDs to products. Later duplicates win.
func Index(products []Product) map[string]Product {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

// Find returns the first product with the given ID.
func Find(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
