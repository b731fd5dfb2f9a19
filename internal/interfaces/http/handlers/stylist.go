package handlers

import (
	"net/http"

	"stylesync-backend/internal/interfaces/http/dto"
	"stylesync-backend/pkg/api"
	"stylesync-backend/pkg/auth"
)

// GenerateOutfit handles POST /stylist/generate. The result becomes the
// session's current outfit unless a later generate finished first.
func (h *Handler) GenerateOutfit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req dto.GenerateOutfitRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}

	ticket := s.Outfit.Begin()
	outfit, err := h.stylist.Generate(r.Context(), req.Occasion)
	if err != nil {
		s.Outfit.Abandon(ticket)
		h.fail(w, r, err)
		return
	}
	if !s.Outfit.Publish(ticket, outfit) {
		w.Header().Set(SupersededHeader, "true")
	}
	api.Success(w, http.StatusOK, outfit)
}

// CurrentOutfit handles GET /stylist/current.
func (h *Handler) CurrentOutfit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	outfit, ok := s.Outfit.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	api.Success(w, http.StatusOK, outfit)
}

// SaveOutfit handles POST /stylist/outfits, saving the current outfit.
func (h *Handler) SaveOutfit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req dto.SaveOutfitRequest
	if err := dto.Decode(r, &req, true); err != nil {
		h.fail(w, r, err)
		return
	}

	outfit, _ := s.Outfit.Current()
	id, err := h.stylist.Save(r.Context(), auth.UserID(r.Context()), outfit, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, map[string]string{"id": id})
}

// AnalyzeStyle handles POST /stylist/analyze with a multipart "photo".
func (h *Handler) AnalyzeStyle(w http.ResponseWriter, r *http.Request) {
	photo, err := h.readUpload(w, r, "photo")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	analysis, err := h.stylist.Analyze(r.Context(), photo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, analysis)
}

// ChatGreeting handles GET /stylist/chat.
func (h *Handler) ChatGreeting(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.assistant.Greeting())
}

// Chat handles POST /stylist/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := dto.Decode(r, &req, false); err != nil {
		h.fail(w, r, err)
		return
	}
	reply, err := h.assistant.Chat(r.Context(), req.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, reply)
}
