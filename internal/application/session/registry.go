// Package session keeps per-shopper state between requests: the cart and the
// latest stylist and try-on results.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylesync-backend/internal/application/services"
	"stylesync-backend/internal/async"
	"stylesync-backend/internal/domain/cart"
	"stylesync-backend/internal/domain/stylist"
)

// Header carries the session ID between the storefront and the API.
const Header = "X-Session-ID"

// Session is one shopper's state. The cart is shared by every surface that
// shows it; the Latest slots hold the result currently on screen.
type Session struct {
	ID     string
	Cart   *cart.Store
	Outfit async.Latest[stylist.GeneratedOutfit]
	TryOn  async.Latest[services.TryOnResult]

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Gauge receives the number of live sessions after every change.
type Gauge interface {
	SessionsActive(n int)
}

// Registry owns every live session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	gauge    Gauge
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistry returns a registry that expires sessions idle for ttl.
func NewRegistry(ttl time.Duration, gauge Gauge, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		gauge:    gauge,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, creating one when id is empty or unknown.
// A created session gets a fresh ID unless id is a valid UUID.
func (r *Registry) Get(id string) *Session {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.touch(now)
		return s
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	s := &Session{ID: id, Cart: cart.New(), lastSeen: now}
	r.sessions[id] = s
	r.report()
	return s
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.report()
		r.logger.Debug("Expired idle sessions", zap.Int("count", removed), zap.Int("remaining", len(r.sessions)))
	}
	return removed
}

func (r *Registry) report() {
	if r.gauge != nil {
		r.gauge.SessionsActive(len(r.sessions))
	}
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
