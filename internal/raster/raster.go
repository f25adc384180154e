// Package raster provides the bounds-checked RGBA raster the compositor
// mutates, replacing raw indexed byte access with a 2D abstraction.
package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"time"
)

// ErrBounds is returned by the checked accessors on out-of-range coordinates.
var ErrBounds = errors.New("raster: coordinates out of bounds")

// Image is a row-major RGBA raster. Pix holds 4 bytes per pixel; Stride is
// the byte width of one row.
type Image struct {
	W, H   int
	Stride int
	Pix    []uint8

	// Timestamp associates the raster with a position on the output
	// timeline. Set by the scheduler when the frame is captured.
	Timestamp time.Duration
}

// New allocates a zero (transparent black) raster.
func New(w, h int) *Image {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Image{
		W:      w,
		H:      h,
		Stride: w * 4,
		Pix:    make([]uint8, w*h*4),
	}
}

// FromImage copies any stdlib image into a raster.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			img.Pix[i+0] = uint8(r >> 8)
			img.Pix[i+1] = uint8(g >> 8)
			img.Pix[i+2] = uint8(bl >> 8)
			img.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return img
}

// ToImage converts the raster back to a stdlib RGBA image, sharing no memory
// with the receiver.
func (img *Image) ToImage() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.W, img.H))
	copy(out.Pix, img.Pix)
	return out
}

// Clone returns a deep copy. The scheduler hands clones to the sink so the
// compositor never retains a mutable alias after handoff.
func (img *Image) Clone() *Image {
	cp := &Image{
		W:         img.W,
		H:         img.H,
		Stride:    img.Stride,
		Pix:       make([]uint8, len(img.Pix)),
		Timestamp: img.Timestamp,
	}
	copy(cp.Pix, img.Pix)
	return cp
}

// In reports whether (x, y) lies inside the raster.
func (img *Image) In(x, y int) bool {
	return x >= 0 && x < img.W && y >= 0 && y < img.H
}

// RGBAAt returns the pixel at (x, y).
func (img *Image) RGBAAt(x, y int) (color.RGBA, error) {
	if !img.In(x, y) {
		return color.RGBA{}, ErrBounds
	}
	i := y*img.Stride + x*4
	return color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}, nil
}

// SetRGBA writes the pixel at (x, y).
func (img *Image) SetRGBA(x, y int, c color.RGBA) error {
	if !img.In(x, y) {
		return ErrBounds
	}
	i := y*img.Stride + x*4
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
	return nil
}

// Fill paints the whole raster one color.
func (img *Image) Fill(c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H int
}

// Center returns the rectangle's center point.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// RegionProportions expresses the mouth region as fixed proportions of the
// frame size. The region is configured, not detected.
type RegionProportions struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	W float64 `mapstructure:"w"`
	H float64 `mapstructure:"h"`
}

// DefaultRegionProportions centers the region on the lower third of the
// frame, where a head-and-shoulders shot puts the mouth.
func DefaultRegionProportions() RegionProportions {
	return RegionProportions{X: 0.35, Y: 0.62, W: 0.30, H: 0.22}
}

// MouthRegion resolves proportions against a frame size. Constant per
// generation call.
func MouthRegion(w, h int, prop RegionProportions) Rect {
	return Rect{
		X: int(math.Round(float64(w) * prop.X)),
		Y: int(math.Round(float64(h) * prop.Y)),
		W: int(math.Round(float64(w) * prop.W)),
		H: int(math.Round(float64(h) * prop.H)),
	}
}
