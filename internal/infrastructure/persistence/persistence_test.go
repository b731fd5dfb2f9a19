package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/domain/catalog/mocks"
	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/internal/infrastructure/cache"
)

var (
	ctx      = context.Background()
	products = []catalog.Product{
		{ID: "a", Name: "Tee", Category: catalog.CategoryTops, Price: 10},
		{ID: "b", Name: "Jeans", Category: catalog.CategoryBottoms, Price: 40},
	}
	remoteDown = apperrors.Transport(apperrors.CodeSupabaseError, "ListProducts", errors.New("connection refused")).Build()
)

type recorded struct {
	op  string
	err error
}

type fakeRecorder struct{ calls []recorded }

func (r *fakeRecorder) ObserveGateway(op string, err error, _ time.Duration) {
	r.calls = append(r.calls, recorded{op, err})
}

type fakeStates struct{ last float64 }

func (s *fakeStates) SetBreakerState(_ string, state float64) { s.last = state }

func ids(ps []catalog.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestBreakerGateway_OpensOnTransportFailures(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("ListProducts", ctx, catalog.ProductFilter{}).Return(nil, remoteDown)

	states := &fakeStates{}
	gw := NewBreakerGateway(inner, BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}, states, nil)

	for i := 0; i < 3; i++ {
		_, err := gw.ListProducts(ctx, catalog.ProductFilter{})
		require.ErrorIs(t, err, remoteDown)
	}
	assert.Equal(t, gobreaker.StateOpen, gw.State())
	assert.Equal(t, float64(gobreaker.StateOpen), states.last)

	_, err := gw.ListProducts(ctx, catalog.ProductFilter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeServiceUnavailable))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	inner.AssertNumberOfCalls(t, "ListProducts", 3)
}

func TestBreakerGateway_ValidationErrorsDoNotTrip(t *testing.T) {
	invalid := apperrors.Validation(apperrors.CodeValidationFailed, "bad").Build()
	inner := &mocks.Gateway{}
	inner.On("DeleteOutfit", ctx, "x").Return(invalid)

	gw := NewBreakerGateway(inner, BreakerConfig{Name: "test", MaxRequests: 1, FailureThreshold: 0.1, MinRequests: 1}, nil, nil)
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, gw.DeleteOutfit(ctx, "x"), invalid)
	}
	assert.Equal(t, gobreaker.StateClosed, gw.State())
}

func TestBreakerGateway_PassesResults(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("CreateOrder", ctx, mock.Anything).Return("order-1", nil)
	inner.On("TopProfiles", ctx, 10).Return([]catalog.Profile{{ID: "p", StyleScore: 90}}, nil)

	gw := NewBreakerGateway(inner, DefaultBreakerConfig(), nil, nil)

	id, err := gw.CreateOrder(ctx, catalog.NewOrder{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)

	profiles, err := gw.TopProfiles(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestCachingGateway_ServesRepeatListingsFromCache(t *testing.T) {
	inner := &mocks.Gateway{}
	filter := catalog.ProductFilter{NewestFirst: true}
	inner.On("ListProducts", ctx, filter).Return(products, nil)
	inner.On("ListProducts", ctx, catalog.ProductFilter{IDs: []string{"a"}}).Return(products[:1], nil)

	gw := NewCachingGateway(inner, cache.NewMemoryCache("products", 10, 1<<20, nil), time.Minute, nil)

	first, err := gw.ListProducts(ctx, filter)
	require.NoError(t, err)
	second, err := gw.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
	inner.AssertNumberOfCalls(t, "ListProducts", 1)

	only, err := gw.ListProducts(ctx, catalog.ProductFilter{IDs: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(only))
	inner.AssertNumberOfCalls(t, "ListProducts", 2)
}

func TestCachingGateway_WritesInvalidate(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("ListProducts", ctx, catalog.ProductFilter{}).Return(products, nil)
	inner.On("DeleteProduct", ctx, "a").Return(nil)
	inner.On("CreateProduct", ctx, mock.Anything).Return(products[0], nil)

	c := cache.NewMemoryCache("products", 10, 1<<20, nil)
	gw := NewCachingGateway(inner, c, time.Minute, nil)

	_, _ = gw.ListProducts(ctx, catalog.ProductFilter{})
	require.NoError(t, gw.DeleteProduct(ctx, "a"))
	_, _ = gw.ListProducts(ctx, catalog.ProductFilter{})
	_, err := gw.CreateProduct(ctx, products[0])
	require.NoError(t, err)
	_, _ = gw.ListProducts(ctx, catalog.ProductFilter{})

	inner.AssertNumberOfCalls(t, "ListProducts", 3)
}

func TestCachingGateway_ErrorsAreNotCached(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("ListProducts", ctx, catalog.ProductFilter{}).Return(nil, remoteDown).Once()
	inner.On("ListProducts", ctx, catalog.ProductFilter{}).Return(products, nil).Once()

	gw := NewCachingGateway(inner, cache.NewMemoryCache("products", 10, 1<<20, nil), time.Minute, nil)

	_, err := gw.ListProducts(ctx, catalog.ProductFilter{})
	require.Error(t, err)
	got, err := gw.ListProducts(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestInstrumentedGateway_Records(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("ListUserOutfits", ctx, "u1").Return([]catalog.SavedOutfit{{ID: "o"}}, nil)
	inner.On("DeleteProduct", ctx, "x").Return(remoteDown)

	rec := &fakeRecorder{}
	gw := NewInstrumentedGateway(inner, rec, nil, time.Second)

	outfits, err := gw.ListUserOutfits(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, outfits, 1)
	assert.Error(t, gw.DeleteProduct(ctx, "x"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "ListUserOutfits", rec.calls[0].op)
	assert.NoError(t, rec.calls[0].err)
	assert.Equal(t, "DeleteProduct", rec.calls[1].op)
	assert.Error(t, rec.calls[1].err)
}

func TestDecorate_FullChain(t *testing.T) {
	inner := &mocks.Gateway{}
	inner.On("ListProducts", mock.Anything, catalog.ProductFilter{}).Return(products, nil)
	inner.On("SaveOutfit", mock.Anything, mock.Anything).Return("outfit-1", nil)

	breaker := DefaultBreakerConfig()
	rec := &fakeRecorder{}
	gw := Decorate(inner, ChainConfig{
		Breaker:  &breaker,
		Cache:    cache.NewMemoryCache("products", 10, 1<<20, nil),
		CacheTTL: time.Minute,
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Recorder: rec,
	}, nil)

	for i := 0; i < 3; i++ {
		got, err := gw.ListProducts(ctx, catalog.ProductFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(got))
	}
	id, err := gw.SaveOutfit(ctx, catalog.NewSavedOutfit{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, "outfit-1", id)

	inner.AssertNumberOfCalls(t, "ListProducts", 1)
	assert.Len(t, rec.calls, 4)
}
