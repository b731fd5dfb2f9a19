package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stylesync-backend/internal/application/services"
	"stylesync-backend/internal/interfaces/http/dto"
	"stylesync-backend/pkg/api"
	"stylesync-backend/pkg/auth"
)

// ListProducts handles GET /products?category=&q=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := services.ShopQuery{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	api.Success(w, http.StatusOK, h.storefront.Catalog(r.Context(), q))
}

// GetProduct handles GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.storefront.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, p)
}

// GetCart handles GET /cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	api.Success(w, http.StatusOK, h.storefront.CartView(r.Context(), s.Cart))
}

// AddCartItem handles POST /cart/items.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req dto.AddCartItemRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.storefront.Product(r.Context(), req.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	s.Cart.AddItem(product)
	h.recordCart("add")
	api.Success(w, http.StatusOK, s.Cart.Snapshot())
}

// UpdateCartItem handles PUT /cart/items/{id}.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req dto.UpdateCartItemRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}

	s.Cart.UpdateQuantity(chi.URLParam(r, "id"), *req.Quantity)
	h.recordCart("update")
	api.Success(w, http.StatusOK, s.Cart.Snapshot())
}

// RemoveCartItem handles DELETE /cart/items/{id}.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Cart.RemoveItem(chi.URLParam(r, "id"))
	h.recordCart("remove")
	api.Success(w, http.StatusOK, s.Cart.Snapshot())
}

// Checkout handles POST /cart/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	order, err := h.storefront.Checkout(r.Context(), auth.UserID(r.Context()), s.Cart)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recordCart("checkout")
	api.Success(w, http.StatusCreated, order)
}

// Dashboard handles GET /dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.storefront.Dashboard(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, d)
}

// DeleteOutfit handles DELETE /outfits/{id}.
func (h *Handler) DeleteOutfit(w http.ResponseWriter, r *http.Request) {
	if err := h.storefront.DeleteOutfit(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
