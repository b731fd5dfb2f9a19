package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "stylesync-backend/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator used for every record crossing the
// gateway boundary.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := ParseCategory(fl.Field().String())
			return ok
		})
	})
	return validate
}

// ProductRecord is the loosely-typed row shape the remote stores hand back.
// It is converted to a Product only after validation.
type ProductRecord struct {
	ID          string   `json:"id" dynamodbav:"ID" validate:"required"`
	Name        string   `json:"name" dynamodbav:"Name" validate:"required,max=200"`
	Description *string  `json:"description,omitempty" dynamodbav:"Description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" dynamodbav:"Price" validate:"omitempty,gte=0"`
	Category    string   `json:"category" dynamodbav:"Category" validate:"required,category"`
	ImageURL    string   `json:"image_url" dynamodbav:"ImageURL" validate:"omitempty,uri"`
	Stock       *int     `json:"stock" dynamodbav:"Stock" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags" dynamodbav:"Tags" validate:"omitempty,dive,max=50"`
	CreatedAt   string   `json:"created_at,omitempty" dynamodbav:"CreatedAt,omitempty"`
}

// ToProduct validates the record and converts it. Missing price and stock
// become zero; a missing or unparsable timestamp becomes the zero time.
func (r ProductRecord) ToProduct() (Product, error) {
	if err := Validator().Struct(r); err != nil {
		return Product{}, apperrors.Validation(apperrors.CodeProductInvalid, "product record failed validation").
			WithResource(r.ID).
			WithCause(err).
			Build()
	}

	category, _ := ParseCategory(r.Category)
	p := Product{
		ID:        r.ID,
		Name:      strings.TrimSpace(r.Name),
		Category:  category,
		ImageURL:  r.ImageURL,
		Tags:      cloneTags(r.Tags),
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	return p, nil
}

// RecordFromProduct is the inverse of ToProduct, used when writing.
func RecordFromProduct(p Product) ProductRecord {
	price := p.Price
	stock := p.Stock
	rec := ProductRecord{
		ID:       p.ID,
		Name:     p.Name,
		Price:    &price,
		Category: string(p.Category),
		ImageURL: p.ImageURL,
		Stock:    &stock,
		Tags:     cloneTags(p.Tags),
	}
	if p.Description != "" {
		desc := p.Description
		rec.Description = &desc
	}
	if !p.CreatedAt.IsZero() {
		rec.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return rec
}

// ProductsFromRecords converts every record that validates. Rejected records
// are returned separately so adapters can log them.
func ProductsFromRecords(records []ProductRecord) ([]Product, []error) {
	products := make([]Product, 0, len(records))
	var rejected []error
	for _, rec := range records {
		p, err := rec.ToProduct()
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		products = append(products, p)
	}
	return products, rejected
}

// ProductInput is the admin-facing shape for creating or updating a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required,category"`
	ImageURL    string   `json:"image_url" validate:"required,uri"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
}

// ToProduct validates the input and builds a product with the given identity.
func (in ProductInput) ToProduct(id string, createdAt time.Time) (Product, error) {
	if err := Validator().Struct(in); err != nil {
		return Product{}, apperrors.Validation(apperrors.CodeProductInvalid, "invalid product").
			WithCause(err).
			Build()
	}
	category, _ := ParseCategory(in.Category)
	return Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    category,
		ImageURL:    in.ImageURL,
		Stock:       in.Stock,
		Tags:        cloneTags(in.Tags),
		CreatedAt:   createdAt,
	}, nil
}

// ParseTags splits the comma separated tag list the admin form submits.
func ParseTags(s string) []string {
	return cloneTags(strings.Split(s, ","))
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// FormatTimestamp renders timestamps the way every adapter stores them.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
