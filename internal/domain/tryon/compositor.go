package tryon

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	// Registered decoders for shopper uploads and product images.
	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	apperrors "stylesync-backend/internal/errors"
)

const (
	// InputUser and InputGarment name the two inputs in decode errors.
	InputUser    = "user image"
	InputGarment = "garment image"

	DefaultMaxBytes  = 10 << 20
	DefaultMaxPixels = 40_000_000
)

// Compositor renders try-on previews. It is safe for concurrent use.
type Compositor struct {
	geometry  Geometry
	maxBytes  int
	maxPixels int
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithGeometry replaces the default overlay geometry.
func WithGeometry(g Geometry) Option {
	return func(c *Compositor) { c.geometry = g }
}

// WithLimits bounds the encoded size and decoded pixel count of each input.
// Zero leaves a limit at its default.
func WithLimits(maxBytes, maxPixels int) Option {
	return func(c *Compositor) {
		if maxBytes > 0 {
			c.maxBytes = maxBytes
		}
		if maxPixels > 0 {
			c.maxPixels = maxPixels
		}
	}
}

// NewCompositor returns a compositor using DefaultGeometry unless overridden.
func NewCompositor(opts ...Option) *Compositor {
	c := &Compositor{
		geometry:  DefaultGeometry(),
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geometry returns the overlay geometry in use.
func (c *Compositor) Geometry() Geometry {
	return c.geometry
}

// Compose decodes both inputs concurrently and draws the garment over the
// user's photo. Either input failing to decode fails the whole request with a
// decode error naming that input. The result has the photo's dimensions.
func (c *Compositor) Compose(ctx context.Context, userImage, garmentImage []byte) (*image.RGBA, error) {
	var base, garment image.Image

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := c.Decode(gctx, InputUser, userImage)
		base = img
		return err
	})
	g.Go(func() error {
		img, err := c.Decode(gctx, InputGarment, garmentImage)
		garment = img
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.ComposeImages(base, garment), nil
}

// ComposeImages draws base at full opacity and then garment scaled into the
// overlay rectangle at the configured opacity.
func (c *Compositor) ComposeImages(base, garment image.Image) *image.RGBA {
	bounds := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), base, bounds.Min, draw.Src)

	overlay := c.geometry.Overlay(out.Bounds())
	if overlay.Empty() {
		return out
	}

	scaled := image.NewRGBA(image.Rect(0, 0, overlay.Dx(), overlay.Dy()))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), garment, garment.Bounds(), xdraw.Src, nil)

	mask := image.NewUniform(color.Alpha{A: c.geometry.alpha()})
	draw.DrawMask(out, overlay, scaled, image.Point{}, mask, image.Point{}, draw.Over)
	return out
}

// Decode parses one input after checking its size limits. Every failure is a
// decode error naming the input.
func (c *Compositor) Decode(ctx context.Context, input string, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.Decode(apperrors.CodeImageDecodeFailed, input, fmt.Errorf("empty input")).Build()
	}
	if len(data) > c.maxBytes {
		return nil, apperrors.Decode(apperrors.CodeImageTooLarge, input,
			fmt.Errorf("%d bytes exceeds limit of %d", len(data), c.maxBytes)).Build()
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Decode(apperrors.CodeImageDecodeFailed, input, err).Build()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > c.maxPixels {
		return nil, apperrors.Decode(apperrors.CodeImageTooLarge, input,
			fmt.Errorf("%dx%d pixels is outside the accepted size", cfg.Width, cfg.Height)).Build()
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Decode(apperrors.CodeImageDecodeFailed, input, err).Build()
	}
	return img, nil
}

// EncodePNG flattens img into a PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.Internal(apperrors.CodeInternalError, "failed to encode preview").WithCause(err).Build()
	}
	return buf.Bytes(), nil
}

// DataURL renders PNG bytes as a data URL the storefront can show directly.
func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
