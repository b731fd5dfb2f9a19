package handlers

import (
	"net/http"
	"strings"

	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/pkg/api"
)

// TryOnProducts handles GET /tryon/products.
func (h *Handler) TryOnProducts(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.tryOn.Candidates(r.Context()))
}

// TryOn handles POST /tryon with a multipart "photo" and "productId". The
// preview is returned as JSON with a data URL, or as raw PNG when the client
// accepts image/png.
func (h *Handler) TryOn(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	photo, err := h.readUpload(w, r, "photo")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	productID := strings.TrimSpace(r.FormValue("productId"))
	if productID == "" {
		h.fail(w, r, apperrors.Validation(apperrors.CodeMissingField, "productId is required").Build())
		return
	}

	ticket := s.TryOn.Begin()
	result, err := h.tryOn.Preview(r.Context(), photo, productID)
	if err != nil {
		s.TryOn.Abandon(ticket)
		h.fail(w, r, err)
		return
	}
	if !s.TryOn.Publish(ticket, result) {
		w.Header().Set(SupersededHeader, "true")
	}

	if strings.Contains(r.Header.Get("Accept"), "image/png") {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(result.PNG)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// CurrentTryOn handles GET /tryon/current.
func (h *Handler) CurrentTryOn(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	result, ok := s.TryOn.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	api.Success(w, http.StatusOK, result)
}
