// Package supabase implements catalog.Gateway on top of the Supabase
// PostgREST tables products, orders, saved_outfits, and profiles.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

const (
	tableProducts = "products"
	tableOrders   = "orders"
	tableOutfits  = "saved_outfits"
	tableProfiles = "profiles"

	returnRows    = "representation"
	returnMinimal = "minimal"
)

// Tables is the part of the Supabase client the gateway needs.
type Tables interface {
	From(table string) *postgrest.QueryBuilder
}

// Gateway talks to Supabase over PostgREST. Every row read is validated
// before it reaches the core; rows that fail are logged and dropped.
type Gateway struct {
	db     Tables
	logger *zap.Logger
}

// NewClient connects to the Supabase project at url with the given key.
func NewClient(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// NewGateway wraps a Supabase client.
func NewGateway(db Tables, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{db: db, logger: logger.Named("supabase")}
}

// productRow is the write shape; the database assigns id and created_at when
// they are empty.
type productRow struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
	Stock       int      `json:"stock"`
	Tags        []string `json:"tags"`
}

func toRow(p catalog.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Tags:        p.Tags,
	}
}

func transport(op string, err error) error {
	return apperrors.Transport(apperrors.CodeSupabaseError, op, err).Build()
}

func decode[T any](op string, body []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, transport(op, fmt.Errorf("unreadable response: %w", err))
	}
	return rows, nil
}

func (g *Gateway) ListProducts(_ context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	q := g.db.From(tableProducts).Select("*", "", false)
	if len(filter.Categories) > 0 {
		cats := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			cats[i] = string(c)
		}
		q = q.In("category", cats)
	}
	if len(filter.IDs) > 0 {
		q = q.In("id", filter.IDs)
	}
	if filter.NewestFirst {
		q = q.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit, "")
	}

	body, _, err := q.Execute()
	if err != nil {
		return nil, transport("ListProducts", err)
	}
	records, err := decode[catalog.ProductRecord]("ListProducts", body)
	if err != nil {
		return nil, err
	}
	products, rejected := catalog.ProductsFromRecords(records)
	for _, rerr := range rejected {
		g.logger.Warn("Dropping invalid product row", zap.Error(rerr))
	}
	return products, nil
}

func (g *Gateway) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	body, _, err := g.db.From(tableProducts).Insert(toRow(p), false, "", returnRows, "").Execute()
	if err != nil {
		return catalog.Product{}, transport("CreateProduct", err)
	}
	return g.firstProduct("CreateProduct", p.ID, body)
}

func (g *Gateway) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	row := toRow(p)
	row.ID = ""
	body, _, err := g.db.From(tableProducts).Update(row, returnRows, "").Eq("id", p.ID).Execute()
	if err != nil {
		return catalog.Product{}, transport("UpdateProduct", err)
	}
	return g.firstProduct("UpdateProduct", p.ID, body)
}

func (g *Gateway) firstProduct(op, id string, body []byte) (catalog.Product, error) {
	records, err := decode[catalog.ProductRecord](op, body)
	if err != nil {
		return catalog.Product{}, err
	}
	if len(records) == 0 {
		return catalog.Product{}, apperrors.NotFound(apperrors.CodeProductNotFound, "product not found").
			WithOperation(op).
			WithResource(id).
			Build()
	}
	return records[0].ToProduct()
}

func (g *Gateway) DeleteProduct(_ context.Context, id string) error {
	if _, _, err := g.db.From(tableProducts).Delete(returnMinimal, "").Eq("id", id).Execute(); err != nil {
		return transport("DeleteProduct", err)
	}
	return nil
}

func (g *Gateway) CreateOrder(_ context.Context, o catalog.NewOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	body, _, err := g.db.From(tableOrders).Insert(o, false, "", returnRows, "").Execute()
	if err != nil {
		return "", transport("CreateOrder", err)
	}
	rows, err := decode[catalog.OrderRecord]("CreateOrder", body)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", transport("CreateOrder", fmt.Errorf("insert returned no row"))
	}
	return rows[0].ID, nil
}

func (g *Gateway) ListOrders(_ context.Context, f catalog.OrderFilter) ([]catalog.Order, error) {
	q := g.db.From(tableOrders).Select("*", "", false)
	if f.UserID != "" {
		q = q.Eq("user_id", f.UserID)
	}
	q = q.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if f.Limit > 0 {
		q = q.Limit(f.Limit, "")
	}

	body, _, err := q.Execute()
	if err != nil {
		return nil, transport("ListOrders", err)
	}
	rows, err := decode[catalog.OrderRecord]("ListOrders", body)
	if err != nil {
		return nil, err
	}
	orders := make([]catalog.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.ToOrder()
		if err != nil {
			g.logger.Warn("Dropping invalid order row", zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (g *Gateway) SaveOutfit(_ context.Context, o catalog.NewSavedOutfit) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	body, _, err := g.db.From(tableOutfits).Insert(o, false, "", returnRows, "").Execute()
	if err != nil {
		return "", transport("SaveOutfit", err)
	}
	rows, err := decode[catalog.SavedOutfitRecord]("SaveOutfit", body)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", transport("SaveOutfit", fmt.Errorf("insert returned no row"))
	}
	return rows[0].ID, nil
}

func (g *Gateway) DeleteOutfit(_ context.Context, id string) error {
	if _, _, err := g.db.From(tableOutfits).Delete(returnMinimal, "").Eq("id", id).Execute(); err != nil {
		return transport("DeleteOutfit", err)
	}
	return nil
}

func (g *Gateway) ListUserOutfits(_ context.Context, userID string) ([]catalog.SavedOutfit, error) {
	body, _, err := g.db.From(tableOutfits).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, transport("ListUserOutfits", err)
	}
	rows, err := decode[catalog.SavedOutfitRecord]("ListUserOutfits", body)
	if err != nil {
		return nil, err
	}
	outfits := make([]catalog.SavedOutfit, 0, len(rows))
	for _, row := range rows {
		o, err := row.ToSavedOutfit()
		if err != nil {
			g.logger.Warn("Dropping invalid outfit row", zap.Error(err))
			continue
		}
		outfits = append(outfits, o)
	}
	return outfits, nil
}

func (g *Gateway) TopProfiles(_ context.Context, limit int) ([]catalog.Profile, error) {
	q := g.db.From(tableProfiles).
		Select("id,full_name,avatar_url,style_score", "", false).
		Order("style_score", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}
	body, _, err := q.Execute()
	if err != nil {
		return nil, transport("TopProfiles", err)
	}
	rows, err := decode[catalog.Profile]("TopProfiles", body)
	if err != nil {
		return nil, err
	}
	profiles := make([]catalog.Profile, 0, len(rows))
	for _, p := range rows {
		if err := catalog.Validator().Struct(p); err != nil {
			g.logger.Warn("Dropping invalid profile row", zap.String("profile_id", p.ID), zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

var _ catalog.Gateway = (*Gateway)(nil)
