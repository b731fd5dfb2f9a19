package stylist

import (
	"math/rand"
	"sync"
	"time"

	"stylesync-backend/internal/domain/catalog"
)

const (
	// OutfitSize is the number of products in a generated outfit.
	OutfitSize = 3
	// AnalysisSize is the number of products a style analysis suggests.
	AnalysisSize = 4

	minOutfitScore   = 85
	maxOutfitScore   = 99
	minAnalysisScore = 80
	maxAnalysisScore = 99
)

// ScoreSource returns an integer in [min, max].
type ScoreSource interface {
	Score(min, max int) int
}

// ScoreFunc adapts a function to ScoreSource.
type ScoreFunc func(min, max int) int

// Score implements ScoreSource.
func (f ScoreFunc) Score(min, max int) int { return f(min, max) }

// randomScores draws uniformly from math/rand.
type randomScores struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// RandomScores returns the default score source.
func RandomScores(seed int64) ScoreSource {
	return &randomScores{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomScores) Score(min, max int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.rng.Intn(max-min+1)
}

// GeneratedOutfit is one recommendation.
type GeneratedOutfit struct {
	Occasion    Occasion          `json:"occasion"`
	Products    []catalog.Product `json:"products"`
	Score       int               `json:"score"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ProductIDs returns the IDs of the outfit's products in order.
func (o GeneratedOutfit) ProductIDs() []string {
	ids := make([]string, len(o.Products))
	for i, p := range o.Products {
		ids[i] = p.ID
	}
	return ids
}

// StyleAnalysis is the result of analysing a shopper's photo.
type StyleAnalysis struct {
	Score       int               `json:"score"`
	Suggestions []catalog.Product `json:"suggestions"`
}

// Engine generates outfits. It holds no state between calls besides its
// score source and clock.
type Engine struct {
	scores ScoreSource
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithScoreSource replaces the random score source.
func WithScoreSource(s ScoreSource) Option {
	return func(e *Engine) { e.scores = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine with a time-seeded random score source.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scores: RandomScores(time.Now().UnixNano()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate picks the first OutfitSize products sharing a tag with the
// occasion. When fewer match it falls back to the first OutfitSize products
// of the whole catalog, and a smaller catalog is returned whole.
func (e *Engine) Generate(occasion Occasion, products []catalog.Product) GeneratedOutfit {
	return GeneratedOutfit{
		Occasion:    occasion,
		Products:    Select(occasion, products, OutfitSize),
		Score:       clamp(e.scores.Score(minOutfitScore, maxOutfitScore), minOutfitScore, maxOutfitScore),
		GeneratedAt: e.now(),
	}
}

// Analyze suggests the first AnalysisSize products.
func (e *Engine) Analyze(products []catalog.Product) StyleAnalysis {
	return StyleAnalysis{
		Score:       clamp(e.scores.Score(minAnalysisScore, maxAnalysisScore), minAnalysisScore, maxAnalysisScore),
		Suggestions: head(products, AnalysisSize),
	}
}

// Select implements the outfit selection rule for n products.
func Select(occasion Occasion, products []catalog.Product, n int) []catalog.Product {
	tags := occasion.tagSet()
	if tags != nil {
		matches := make([]catalog.Product, 0, n)
		for _, p := range products {
			if p.HasAnyTag(tags) {
				matches = append(matches, p)
				if len(matches) == n {
					return matches
				}
			}
		}
	}
	return head(products, n)
}

func head(products []catalog.Product, n int) []catalog.Product {
	if len(products) < n {
		n = len(products)
	}
	out := make([]catalog.Product, n)
	copy(out, products[:n])
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
