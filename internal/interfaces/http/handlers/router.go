package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"stylesync-backend/internal/application/session"
	"stylesync-backend/internal/middleware"
	"stylesync-backend/pkg/auth"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	AllowedOrigins []string
	CORSMaxAge     int
	RequestTimeout time.Duration
	// Breaker is applied to /api/v1 when non-nil.
	Breaker *middleware.CircuitBreakerConfig
}

// NewRouter builds the chi router with every route and middleware. metrics
// may be nil to leave /metrics unmounted.
func NewRouter(
	h *Handler,
	verifier auth.Verifier,
	metrics http.Handler,
	recorder middleware.HTTPRecorder,
	cfg RouterConfig,
	logger *zap.Logger,
) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", session.Header, middleware.RequestIDHeader},
		ExposedHeaders:   []string{session.Header, middleware.RequestIDHeader, SupersededHeader},
		AllowCredentials: true,
		MaxAge:           cfg.CORSMaxAge,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout, logger))
		if cfg.Breaker != nil {
			r.Use(middleware.CircuitBreaker(*cfg.Breaker, logger))
		}
		r.Use(auth.Authenticate(verifier, logger))

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{id}", h.UpdateCartItem)
			r.Delete("/items/{id}", h.RemoveCartItem)
			r.With(auth.RequireUser).Post("/checkout", h.Checkout)
		})

		r.Route("/stylist", func(r chi.Router) {
			r.Post("/generate", h.GenerateOutfit)
			r.Get("/current", h.CurrentOutfit)
			r.Post("/analyze", h.AnalyzeStyle)
			r.Get("/chat", h.ChatGreeting)
			r.Post("/chat", h.Chat)
			r.With(auth.RequireUser).Post("/outfits", h.SaveOutfit)
		})

		r.Get("/tryon/products", h.TryOnProducts)
		r.Get("/tryon/current", h.CurrentTryOn)
		r.Post("/tryon", h.TryOn)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Get("/dashboard", h.Dashboard)
			r.Delete("/outfits/{id}", h.DeleteOutfit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
			r.Get("/stats", h.AdminStats)
		})
	})

	return r
}
