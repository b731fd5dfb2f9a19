package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylesync-backend/internal/async"
	"stylesync-backend/internal/domain/catalog"
	"stylesync-backend/internal/domain/stylist"
	"stylesync-backend/internal/domain/tryon"
	apperrors "stylesync-backend/internal/errors"
	"stylesync-backend/internal/infrastructure/messaging"
)

// OutfitRecorder counts generated outfits.
type OutfitRecorder interface {
	OutfitGenerated(occasion string, matched bool)
}

// Stylist generates, analyses, and saves outfits.
type Stylist struct {
	storefront *Storefront
	engine     *stylist.Engine
	decoder    *tryon.Compositor
	gateway    catalog.Gateway
	publisher  messaging.Publisher
	delay      async.Delayer
	recorder   OutfitRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewStylist wires the stylist use cases. decoder is only used to check that
// uploaded photos are images. delay stands in for model latency.
func NewStylist(
	storefront *Storefront,
	engine *stylist.Engine,
	decoder *tryon.Compositor,
	gateway catalog.Gateway,
	publisher messaging.Publisher,
	delay async.Delayer,
	recorder OutfitRecorder,
	logger *zap.Logger,
) *Stylist {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay == nil {
		delay = async.None
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Stylist{
		storefront: storefront,
		engine:     engine,
		decoder:    decoder,
		gateway:    gateway,
		publisher:  publisher,
		delay:      delay,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate builds an outfit for the named occasion from the full catalog in
// catalog order.
func (s *Stylist) Generate(ctx context.Context, occasion string) (stylist.GeneratedOutfit, error) {
	occ, err := stylist.ParseOccasion(occasion)
	if err != nil {
		return stylist.GeneratedOutfit{}, err
	}
	products := s.storefront.products(ctx, catalog.ProductFilter{})
	if err := s.delay.Wait(ctx); err != nil {
		return stylist.GeneratedOutfit{}, apperrors.Timeout("outfit generation interrupted").WithCause(err).Build()
	}

	outfit := s.engine.Generate(occ, products)
	matched := allTagged(occ, outfit.Products)
	if s.recorder != nil {
		s.recorder.OutfitGenerated(string(occ), matched)
	}
	s.logger.Debug("Outfit generated",
		zap.String("occasion", string(occ)),
		zap.Strings("product_ids", outfit.ProductIDs()),
		zap.Int("score", outfit.Score),
		zap.Bool("matched", matched),
	)
	return outfit, nil
}

// allTagged reports whether the outfit came from the occasion's tag filter
// rather than the fallback.
func allTagged(occ stylist.Occasion, products []catalog.Product) bool {
	if len(products) == 0 {
		return false
	}
	tags := make(map[string]struct{})
	for _, t := range occ.Tags() {
		tags[t] = struct{}{}
	}
	for _, p := range products {
		if !p.HasAnyTag(tags) {
			return false
		}
	}
	return true
}

// Analyze checks that photo is a readable image and suggests the first
// remote products. The photo itself does not influence the result. When the
// catalog cannot be reached the analysis has no suggestions.
func (s *Stylist) Analyze(ctx context.Context, photo []byte) (stylist.StyleAnalysis, error) {
	if _, err := s.decoder.Decode(ctx, tryon.InputUser, photo); err != nil {
		return stylist.StyleAnalysis{}, err
	}
	products, err := s.gateway.ListProducts(ctx, catalog.ProductFilter{Limit: stylist.AnalysisSize})
	if err != nil {
		s.logger.Warn("Analysis suggestions unavailable", zap.Error(err))
		products = nil
	}
	if err := s.delay.Wait(ctx); err != nil {
		return stylist.StyleAnalysis{}, apperrors.Timeout("style analysis interrupted").WithCause(err).Build()
	}
	return s.engine.Analyze(products), nil
}

// Save persists outfit for userID. An empty name gets the dated default.
func (s *Stylist) Save(ctx context.Context, userID string, outfit stylist.GeneratedOutfit, name string) (string, error) {
	if userID == "" {
		return "", apperrors.Unauthorized("sign in to save outfits").Build()
	}
	if len(outfit.Products) == 0 {
		return "", apperrors.Validation(apperrors.CodeOutfitMissing, "generate an outfit first").
			WithUserID(userID).
			Build()
	}
	now := s.now()
	if name == "" {
		name = catalog.DefaultOutfitName(string(outfit.Occasion), now)
	}
	saved := catalog.NewSavedOutfit{
		UserID:     userID,
		OutfitName: name,
		ProductIDs: outfit.ProductIDs(),
		Score:      outfit.Score,
		Occasion:   string(outfit.Occasion),
	}

	id, err := s.gateway.SaveOutfit(ctx, saved)
	if err != nil {
		if apperrors.IsValidation(err) {
			return "", err
		}
		s.logger.Error("Saving outfit failed", zap.String("user_id", userID), zap.Error(err))
		return "", apperrors.NewError(apperrors.ErrorTypeTransport, apperrors.CodeOutfitSaveFailed, "outfit could not be saved").
			WithOperation("SaveOutfit").
			WithUserID(userID).
			WithCause(err).
			Build()
	}
	if err := s.publisher.Publish(ctx, messaging.OutfitSaved(id, saved, now)); err != nil {
		s.logger.Warn("OutfitSaved not published", zap.String("outfit_id", id), zap.Error(err))
	}
	return id, nil
}
