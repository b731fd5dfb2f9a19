// Package handlers exposes the storefront services over a JSON HTTP API.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"stylesync-backend/internal/application/services"
	"stylesync-backend/internal/application/session"
	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/pkg/api"
)

// SupersededHeader is set when a newer request from the same session
// replaced this response's result before it finished.
const SupersededHeader = "X-Superseded"

// CartRecorder counts cart mutations.
type CartRecorder interface {
	CartMutation(operation string)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler serves every API route.
type Handler struct {
	storefront *services.Storefront
	stylist    *services.Stylist
	tryOn      *services.TryOn
	admin      *services.Admin
	assistant  *services.Assistant
	sessions   *session.Registry

	cartRecorder CartRecorder
	readiness    map[string]ReadinessCheck
	maxUpload    int64
	logger       *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithCartRecorder counts cart mutations.
func WithCartRecorder(r CartRecorder) Option {
	return func(h *Handler) { h.cartRecorder = r }
}

// WithAssistant serves the stylist chat with a. Without it replies come
// immediately.
func WithAssistant(a *services.Assistant) Option {
	return func(h *Handler) { h.assistant = a }
}

// WithReadinessCheck adds a named check to /ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(h *Handler) { h.readiness[name] = check }
}

// WithMaxUpload bounds multipart uploads.
func WithMaxUpload(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// New returns the API handler.
func New(
	storefront *services.Storefront,
	stylist *services.Stylist,
	tryOn *services.TryOn,
	admin *services.Admin,
	sessions *session.Registry,
	logger *zap.Logger,
	opts ...Option,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		storefront: storefront,
		stylist:    stylist,
		tryOn:      tryOn,
		admin:      admin,
		sessions:   sessions,
		readiness:  make(map[string]ReadinessCheck),
		maxUpload:  10 << 20,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.assistant == nil {
		h.assistant = services.NewAssistant(nil, nil, logger)
	}
	return h
}

// session resolves the caller's session and echoes its ID so the storefront
// can keep using it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.sessions.Get(r.Header.Get(session.Header))
	w.Header().Set(session.Header, s.ID)
	return s
}

// fail renders err and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	api.FromError(w, err)
}

// readUpload returns the bytes of the multipart file field. Oversized
// uploads are reported as too large rather than as a malformed form.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperrors.Decode(apperrors.CodeImageTooLarge, field, err).Build()
		}
		return nil, apperrors.Validation(apperrors.CodeInvalidInput, "expected a multipart form").WithCause(err).Build()
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, apperrors.Validation(apperrors.CodeMissingField, field+" is required").WithCause(err).Build()
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return nil, apperrors.Decode(apperrors.CodeImageDecodeFailed, field, err).Build()
	}
	if int64(len(data)) > h.maxUpload {
		return nil, apperrors.Decode(apperrors.CodeImageTooLarge, field, errors.New("upload exceeds limit")).Build()
	}
	return data, nil
}

func (h *Handler) recordCart(op string) {
	if h.cartRecorder != nil {
		h.cartRecorder.CartMutation(op)
	}
}
