package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stylesync-backend/internal/interfaces/http/dto"
	"stylesync-backend/pkg/api"
)

// CreateProduct handles POST /admin/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.admin.CreateProduct(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /admin/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.admin.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /admin/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminStats handles GET /admin/stats.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}
