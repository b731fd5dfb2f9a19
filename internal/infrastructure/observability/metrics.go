package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every Prometheus metric the storefront exports. Each
// collector owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Gateway metrics
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Cache metrics
	CacheLookups   *prometheus.CounterVec
	CacheEvictions *prometheus.CounterVec

	// Storefront metrics
	CartMutations   *prometheus.CounterVec
	OutfitsCreated  *prometheus.CounterVec
	TryOnRenders    *prometheus.CounterVec
	TryOnDuration   prometheus.Histogram
	EventsPublished *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

// NewCollector creates and registers the metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Catalog gateway calls by operation and outcome",
		}, []string{"operation", "status"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Catalog gateway call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted to make room",
		}, []string{"cache"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation",
		}, []string{"operation"}),
		OutfitsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outfits_generated_total",
			Help:      "Generated outfits by occasion and whether the tag match was used",
		}, []string{"occasion", "matched"}),
		TryOnRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tryon_renders_total",
			Help:      "Try-on previews by outcome",
		}, []string{"status"}),
		TryOnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tryon_render_duration_seconds",
			Help:      "Time spent decoding and compositing try-on previews",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events sent to the event bus by type and outcome",
		}, []string{"type", "status"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Shopper sessions currently held in memory",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GatewayCalls,
		c.GatewayDuration,
		c.BreakerState,
		c.CacheLookups,
		c.CacheEvictions,
		c.CartMutations,
		c.OutfitsCreated,
		c.TryOnRenders,
		c.TryOnDuration,
		c.EventsPublished,
		c.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one finished request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveGateway records one gateway call.
func (c *Collector) ObserveGateway(operation string, err error, d time.Duration) {
	c.GatewayCalls.WithLabelValues(operation, outcome(err)).Inc()
	c.GatewayDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetBreakerState records a circuit breaker transition.
func (c *Collector) SetBreakerState(name string, state float64) {
	c.BreakerState.WithLabelValues(name).Set(state)
}

// CacheHit implements cache.Observer.
func (c *Collector) CacheHit(name string) {
	c.CacheLookups.WithLabelValues(name, "hit").Inc()
}

// CacheMiss implements cache.Observer.
func (c *Collector) CacheMiss(name string) {
	c.CacheLookups.WithLabelValues(name, "miss").Inc()
}

// CacheEviction implements cache.Observer.
func (c *Collector) CacheEviction(name string) {
	c.CacheEvictions.WithLabelValues(name).Inc()
}

// CartMutation counts a cart operation.
func (c *Collector) CartMutation(operation string) {
	c.CartMutations.WithLabelValues(operation).Inc()
}

// OutfitGenerated counts a generated outfit.
func (c *Collector) OutfitGenerated(occasion string, matched bool) {
	c.OutfitsCreated.WithLabelValues(occasion, strconv.FormatBool(matched)).Inc()
}

// TryOnRendered records a try-on attempt.
func (c *Collector) TryOnRendered(err error, d time.Duration) {
	c.TryOnRenders.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		c.TryOnDuration.Observe(d.Seconds())
	}
}

// EventPublished counts an attempted event publication.
func (c *Collector) EventPublished(eventType string, err error) {
	c.EventsPublished.WithLabelValues(eventType, outcome(err)).Inc()
}

// SessionsActive sets the live session gauge.
func (c *Collector) SessionsActive(n int) {
	c.ActiveSessions.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
