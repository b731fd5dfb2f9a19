package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"stylesync-backend/pkg/api"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("Should generate request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(w, req)

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("Should use provided request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "test-request-id")
		w := httptest.NewRecorder()

		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-request-id", GetRequestID(r.Context()))
		}))
		handler.ServeHTTP(w, req)

		assert.Equal(t, "test-request-id", w.Header().Get(RequestIDHeader))
	})

	t.Run("Empty without middleware", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("Should handle panic gracefully", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler := Recovery(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "error")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Panic while serving request", logs.All()[0].Message)
	})

	t.Run("Should pass through normal requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler := Recovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		}))
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("Writes 504 when the handler gives up silently", func(t *testing.T) {
		handler := Timeout(10*time.Millisecond, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("Keeps the handler's own response", func(t *testing.T) {
		handler := Timeout(10*time.Millisecond, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			api.Error(w, http.StatusServiceUnavailable, "gave up")
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "gave up")
	})

	t.Run("Fast requests are untouched", func(t *testing.T) {
		var deadline bool
		handler := Timeout(time.Second, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, deadline = r.Context().Deadline()
			w.WriteHeader(http.StatusNoContent)
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

		assert.True(t, deadline)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

type httpObservation struct {
	method, route string
	status        int
}

type recordingHTTP struct {
	mu  sync.Mutex
	obs []httpObservation
}

func (r *recordingHTTP) ObserveHTTP(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, httpObservation{method, route, status})
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &recordingHTTP{}

	r := chi.NewRouter()
	r.Use(Logger(zap.New(core), rec))
	r.Get("/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "missing")
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fine"))
	})

	for _, path := range []string{"/cart/items/p-1", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.obs, 2)
	assert.Equal(t, httpObservation{http.MethodGet, "/cart/items/{id}", http.StatusNotFound}, rec.obs[0])
	assert.Equal(t, httpObservation{http.MethodGet, "/ok", http.StatusOK}, rec.obs[1])

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cfg := CircuitBreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}

	failing := true
	handler := CircuitBreaker(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			api.Error(w, http.StatusInternalServerError, "down")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	serve := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	// Failures pass through with the handler's own body until the breaker trips.
	for i := 0; i < 2; i++ {
		w := serve()
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "down")
	}

	failing = false
	w := serve()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "too many failures")
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("api")
	assert.Equal(t, "api", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.InDelta(t, 0.8, cfg.FailureThreshold, 1e-9)
}
