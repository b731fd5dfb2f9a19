package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylesync-backend/internal/async"
	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/domain/tryon"
	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/internal/infrastructure/imagesource"
)

// CandidateLimit caps the remote try-on candidates.
const CandidateLimit = 12

// TryOnCategories are the garments that can be overlaid on a photo.
var TryOnCategories = []catalog.Category{catalog.CategoryTops, catalog.CategoryDresses, catalog.CategoryOuterwear}

// TryOnResult is a rendered preview.
type TryOnResult struct {
	ProductID  string    `json:"product_id"`
	PNG        []byte    `json:"-"`
	DataURL    string    `json:"image"`
	RenderedAt time.Time `json:"rendered_at"`
}

// TryOnRecorder observes renders.
type TryOnRecorder interface {
	TryOnRendered(err error, d time.Duration)
}

// TryOn renders garment previews on shopper photos.
type TryOn struct {
	storefront *Storefront
	compositor *tryon.Compositor
	images     imagesource.Loader
	delay      async.Delayer
	recorder   TryOnRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewTryOn wires the try-on use cases.
func NewTryOn(storefront *Storefront, compositor *tryon.Compositor, images imagesource.Loader, delay async.Delayer, recorder TryOnRecorder, logger *zap.Logger) *TryOn {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay == nil {
		delay = async.None
	}
	return &TryOn{
		storefront: storefront,
		compositor: compositor,
		images:     images,
		delay:      delay,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Candidates lists remote garments in catalog order followed by the static
// ones.
func (t *TryOn) Candidates(ctx context.Context) []catalog.Product {
	return t.storefront.products(ctx, catalog.ProductFilter{
		Categories: TryOnCategories,
		Limit:      CandidateLimit,
	})
}

// Preview composites productID's image over userImage.
func (t *TryOn) Preview(ctx context.Context, userImage []byte, productID string) (result TryOnResult, err error) {
	start := time.Now()
	defer func() {
		if t.recorder != nil {
			t.recorder.TryOnRendered(err, time.Since(start))
		}
	}()

	product, err := t.storefront.Product(ctx, productID)
	if err != nil {
		return TryOnResult{}, err
	}
	if err := t.delay.Wait(ctx); err != nil {
		return TryOnResult{}, apperrors.Timeout("try-on interrupted").WithCause(err).Build()
	}

	garment, err := t.images.Load(ctx, product.ImageURL)
	if err != nil {
		return TryOnResult{}, err
	}
	img, err := t.compositor.Compose(ctx, userImage, garment)
	if err != nil {
		t.logger.Info("Try-on decode failed", zap.String("product_id", productID), zap.Error(err))
		return TryOnResult{}, err
	}
	png, err := tryon.EncodePNG(img)
	if err != nil {
		return TryOnResult{}, err
	}

	return TryOnResult{
		ProductID:  productID,
		PNG:        png,
		DataURL:    tryon.DataURL(png),
		RenderedAt: t.now(),
	}, nil
}
