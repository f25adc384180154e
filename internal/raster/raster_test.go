package raster

import (
	"image"
	"image/color"
	"testing"
)

func TestBoundsChecking(t *testing.T) {
	img := New(4, 3)

	if err := img.SetRGBA(3, 2, color.RGBA{R: 255, A: 255}); err != nil {
		t.Fatalf("in-bounds set failed: %v", err)
	}
	c, err := img.RGBAAt(3, 2)
	if err != nil {
		t.Fatalf("in-bounds get failed: %v", err)
	}
	if c.R != 255 || c.A != 255 {
		t.Errorf("unexpected pixel: %+v", c)
	}

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		if _, err := img.RGBAAt(p[0], p[1]); err != ErrBounds {
			t.Errorf("RGBAAt(%d,%d): expected ErrBounds, got %v", p[0], p[1], err)
		}
		if err := img.SetRGBA(p[0], p[1], color.RGBA{}); err != ErrBounds {
			t.Errorf("SetRGBA(%d,%d): expected ErrBounds, got %v", p[0], p[1], err)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := New(2, 2)
	img.Fill(color.RGBA{R: 10, G: 20, B: 30, A: 255})

	cp := img.Clone()
	_ = cp.SetRGBA(0, 0, color.RGBA{R: 99, A: 255})

	orig, _ := img.RGBAAt(0, 0)
	if orig.R != 10 {
		t.Errorf("clone mutation leaked into source: %+v", orig)
	}
}

func TestFromImageToImageRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	img := FromImage(src)
	out := img.ToImage()

	got := out.RGBAAt(1, 1)
	if got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("round trip lost pixel: %+v", got)
	}
	if &out.Pix[0] == &img.Pix[0] {
		t.Error("ToImage must not share backing memory")
	}
}

func TestMouthRegion(t *testing.T) {
	r := MouthRegion(640, 480, DefaultRegionProportions())

	if r.X != 224 || r.Y != 298 || r.W != 192 || r.H != 106 {
		t.Errorf("unexpected region: %+v", r)
	}

	cx, cy := r.Center()
	if cx != 320 || cy != 351 {
		t.Errorf("unexpected center: (%v, %v)", cx, cy)
	}
}

func TestNewClampsNegativeSize(t *testing.T) {
	img := New(-3, -1)
	if img.W != 0 || img.H != 0 || len(img.Pix) != 0 {
		t.Errorf("negative sizes should clamp to empty raster: %+v", img)
	}
}
