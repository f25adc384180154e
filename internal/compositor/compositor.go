// Package compositor applies the mouth-region pixel rule to a video frame.
// Compose is a pure function of (raster, region, openFactor, effective
// amplitude); the source raster is never mutated.
package compositor

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Pranati-2/DeepReal/internal/raster"
)

// Pixel-rule constants. The cavity radius scales with the open factor inside
// the mouth circle; the lip band height scales with effective amplitude.
const (
	cavityScale   = 0.2
	lipBandScale  = 10.0
	cavityDim     = 0.5
	lipRedGain    = 1.2
	lipGreenBlue  = 0.8
	mouthRadScale = 0.5
)

// Compose copies src and mutates the mouth region: pixels closer to the
// region center than 0.2×regionHeight×openFactor darken (open oral cavity);
// remaining in-circle pixels within ±10×effAmp rows of the vertical center
// get a red boost and green/blue dim (lip highlight). Everything else is
// untouched. All channel operations clamp to [0, 255].
func Compose(src *raster.Image, region raster.Rect, openFactor, effAmp float64) *raster.Image {
	out := src.Clone()

	cx, cy := region.Center()
	center := mgl64.Vec2{cx, cy}
	mouthRadius := mouthRadScale * float64(region.H)
	cavityRadius := cavityScale * float64(region.H) * openFactor
	lipBand := lipBandScale * effAmp

	for y := region.Y; y < region.Y+region.H; y++ {
		for x := region.X; x < region.X+region.W; x++ {
			if !out.In(x, y) {
				continue
			}
			d := mgl64.Vec2{float64(x), float64(y)}.Sub(center).Len()
			if d >= mouthRadius {
				continue
			}

			c, _ := out.RGBAAt(x, y)
			switch {
			case d < cavityRadius:
				c = color.RGBA{
					R: scale(c.R, cavityDim),
					G: scale(c.G, cavityDim),
					B: scale(c.B, cavityDim),
					A: c.A,
				}
			case absDiff(float64(y), cy) <= lipBand:
				c = color.RGBA{
					R: scale(c.R, lipRedGain),
					G: scale(c.G, lipGreenBlue),
					B: scale(c.B, lipGreenBlue),
					A: c.A,
				}
			default:
				continue
			}
			_ = out.SetRGBA(x, y, c)
		}
	}
	return out
}

// scale multiplies one channel, clamping to [0, 255].
func scale(v uint8, f float64) uint8 {
	s := float64(v) * f
	if s > 255 {
		return 255
	}
	if s < 0 {
		return 0
	}
	return uint8(s)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
