// Package di assembles the service from its configuration with Wire.
package di

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stylesync-backend/internal/application/session"
	"stylesync-backend/internal/config"
	"stylesync-backend/internal/infrastructure/cache"
)

// Container holds the assembled service and the background work it needs.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Router   *chi.Mux
	Sessions *session.Registry
	Cache    *cache.MemoryCache
	Watcher  *config.ConfigWatcher
	Delays   Delays

	runOnce sync.Once
	wg      sync.WaitGroup
}

func provideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	router *chi.Mux,
	sessions *session.Registry,
	memCache *cache.MemoryCache,
	watcher *config.ConfigWatcher,
	delays Delays,
) *Container {
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Router:   router,
		Sessions: sessions,
		Cache:    memCache,
		Watcher:  watcher,
		Delays:   delays,
	}
}

// Handler returns the HTTP entry point.
func (c *Container) Handler() http.Handler {
	return c.Router
}

// Start launches the session and cache sweepers. They stop when ctx is done.
// A zero interval disables a sweeper. Calling Start again has no effect.
func (c *Container) Start(ctx context.Context) {
	c.runOnce.Do(func() {
		if c.Config.Session.SweepInterval > 0 {
			c.goSweep(func() { c.Sessions.Run(ctx, c.Config.Session.SweepInterval) })
		}
		if c.Config.Cache.TTL > 0 && c.Config.Cache.SweepInterval > 0 {
			c.goSweep(func() { c.Cache.Run(ctx, c.Config.Cache.SweepInterval) })
		}
		c.Logger.Debug("Background sweepers started",
			zap.Duration("session_sweep", c.Config.Session.SweepInterval),
			zap.Duration("cache_sweep", c.Config.Cache.SweepInterval))
	})
}

// Wait blocks until every sweeper started by Start has returned.
func (c *Container) Wait() {
	c.wg.Wait()
}

func (c *Container) goSweep(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// ColdStartTracker records when the process started so Lambda invocations
// can report whether they paid for initialisation.
type ColdStartTracker struct {
	startedAt time.Time
	mu        sync.Mutex
	served    bool
}

// NewColdStartTracker starts the clock.
func NewColdStartTracker() *ColdStartTracker {
	return &ColdStartTracker{startedAt: time.Now()}
}

// Invocation reports whether this is the first invocation and how long ago
// the process started.
func (t *ColdStartTracker) Invocation() (cold bool, sinceStart time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cold = !t.served
	t.served = true
	return cold, time.Since(t.startedAt)
}
