// Package dto holds the request bodies the HTTP API accepts.
package dto

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"stylesync-backend/internal/domain/catalog"
	apperrors "stylesync-backend/internal/errors"
)

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=100"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/{id}. Zero or a
// negative quantity removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// GenerateOutfitRequest is the body of POST /stylist/generate.
type GenerateOutfitRequest struct {
	Occasion string `json:"occasion" validate:"required,max=50"`
}

// SaveOutfitRequest is the optional body of POST /stylist/outfits.
type SaveOutfitRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// ChatRequest is the body of POST /stylist/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

// ProductRequest is the body of the admin product endpoints.
type ProductRequest = catalog.ProductInput

// Decode reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set, leaving dst at its zero value.
func Decode(r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return apperrors.Validation(apperrors.CodeInvalidInput, "invalid request body").WithCause(err).Build()
		}
	}
	if err := catalog.Validator().Struct(dst); err != nil {
		return apperrors.Validation(apperrors.CodeValidationFailed, "request validation failed").WithCause(err).Build()
	}
	return nil
}
