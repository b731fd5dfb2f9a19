// Package tryon overlays a garment image onto a shopper's photo.
//
// There is no body detection. The garment is scaled into a fixed rectangle
// that roughly covers the torso of a front-facing portrait and blended over
// the photo at reduced opacity.
package tryon

import (
	"fmt"
	"image"
	"math"
)

// Geometry places the garment relative to the base image. Fractions are of
// the base image's width or height.
type Geometry struct {
	WidthFraction  float64 `json:"width_fraction" yaml:"width_fraction"`
	HeightFraction float64 `json:"height_fraction" yaml:"height_fraction"`
	TopFraction    float64 `json:"top_fraction" yaml:"top_fraction"`
	Opacity        float64 `json:"opacity" yaml:"opacity"`
}

// DefaultGeometry covers 60% of the width and 40% of the height, starting 20%
// from the top, at 80% opacity.
func DefaultGeometry() Geometry {
	return Geometry{
		WidthFraction:  0.6,
		HeightFraction: 0.4,
		TopFraction:    0.2,
		Opacity:        0.8,
	}
}

// Validate checks that every fraction is usable.
func (g Geometry) Validate() error {
	switch {
	case g.WidthFraction <= 0 || g.WidthFraction > 1:
		return fmt.Errorf("width fraction must be in (0, 1], got %v", g.WidthFraction)
	case g.HeightFraction <= 0 || g.HeightFraction > 1:
		return fmt.Errorf("height fraction must be in (0, 1], got %v", g.HeightFraction)
	case g.TopFraction < 0 || g.TopFraction >= 1:
		return fmt.Errorf("top fraction must be in [0, 1), got %v", g.TopFraction)
	case g.Opacity < 0 || g.Opacity > 1:
		return fmt.Errorf("opacity must be in [0, 1], got %v", g.Opacity)
	}
	return nil
}

// Overlay returns the rectangle the garment is drawn into, horizontally
// centred inside base. It may extend past the bottom edge; drawing clips it.
func (g Geometry) Overlay(base image.Rectangle) image.Rectangle {
	w := int(math.Round(float64(base.Dx()) * g.WidthFraction))
	h := int(math.Round(float64(base.Dy()) * g.HeightFraction))
	x := base.Min.X + (base.Dx()-w)/2
	y := base.Min.Y + int(math.Round(float64(base.Dy())*g.TopFraction))
	return image.Rect(x, y, x+w, y+h)
}

// alpha is the opacity as an 8-bit mask value.
func (g Geometry) alpha() uint8 {
	return uint8(math.Round(g.Opacity * 255))
}
