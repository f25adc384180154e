// Package video provides the seekable frame sources the scheduler drives.
// A Source exposes a duration, native dimensions, and a settable playback
// position; Seek blocks until the platform confirms the position, which is
// the scheduler's single suspension point per frame.
package video

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	// Frame files are JPEG or PNG.
	_ "image/jpeg"
	_ "image/png"

	"github.com/Pranati-2/DeepReal/internal/raster"
)

// Common errors
var (
	ErrSourceLoad   = errors.New("video: source could not be loaded")
	ErrSourceClosed = errors.New("video: source is closed")
	ErrNoFrames     = errors.New("video: no frame files found")
)

// Source is a seekable video input. Implementations are not safe for
// concurrent use; one SyncJob owns one Source for its lifetime.
type Source interface {
	// Duration is the source play time.
	Duration() time.Duration
	// Bounds returns the native pixel dimensions.
	Bounds() (w, h int)
	// Seek sets the playback position and returns once the seek has
	// completed. Positions past the end clamp to the final frame.
	Seek(t time.Duration) error
	// Frame returns the raster at the current playback position.
	Frame() (*raster.Image, error)
	// Close releases decoded frame data.
	Close() error
}

// StillSource plays a single decoded image for a fixed duration — the
// degenerate video a portrait photo gives the engine.
type StillSource struct {
	frame    *raster.Image
	duration time.Duration
	closed   bool
}

// NewStillSource builds a StillSource from an already-decoded raster.
func NewStillSource(frame *raster.Image, duration time.Duration) *StillSource {
	return &StillSource{frame: frame, duration: duration}
}

// OpenStill decodes an image file into a StillSource.
func OpenStill(path string, duration time.Duration) (*StillSource, error) {
	img, err := decodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return NewStillSource(img, duration), nil
}

func (s *StillSource) Duration() time.Duration { return s.duration }

func (s *StillSource) Bounds() (int, int) {
	return s.frame.W, s.frame.H
}

func (s *StillSource) Seek(time.Duration) error {
	if s.closed {
		return ErrSourceClosed
	}
	return nil
}

func (s *StillSource) Frame() (*raster.Image, error) {
	if s.closed {
		return nil, ErrSourceClosed
	}
	return s.frame, nil
}

func (s *StillSource) Close() error {
	s.closed = true
	s.frame = nil
	return nil
}

// FrameSequenceSource plays an ordered list of pre-decoded frames at a
// native frame rate. Seeking selects the nearest frame index, clamped to the
// final frame.
type FrameSequenceSource struct {
	frames []*raster.Image
	fps    int
	pos    int
	closed bool
}

// NewFrameSequenceSource wraps decoded frames. All frames must share the
// first frame's dimensions.
func NewFrameSequenceSource(frames []*raster.Image, fps int) (*FrameSequenceSource, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: non-positive fps %d", ErrSourceLoad, fps)
	}
	w, h := frames[0].W, frames[0].H
	for i, f := range frames {
		if f.W != w || f.H != h {
			return nil, fmt.Errorf("%w: frame %d is %dx%d, want %dx%d",
				ErrSourceLoad, i, f.W, f.H, w, h)
		}
	}
	return &FrameSequenceSource{frames: frames, fps: fps}, nil
}

// OpenFrameDir decodes every .jpg/.jpeg/.png in dir, sorted by name, into a
// frame sequence at the given native rate.
func OpenFrameDir(dir string, fps int) (*FrameSequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceLoad, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	sort.Strings(paths)

	frames := make([]*raster.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodeImageFile(p)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}
	return NewFrameSequenceSource(frames, fps)
}

func (s *FrameSequenceSource) Duration() time.Duration {
	return time.Duration(float64(len(s.frames)) / float64(s.fps) * float64(time.Second))
}

func (s *FrameSequenceSource) Bounds() (int, int) {
	return s.frames[0].W, s.frames[0].H
}

func (s *FrameSequenceSource) Seek(t time.Duration) error {
	if s.closed {
		return ErrSourceClosed
	}
	if t < 0 {
		t = 0
	}
	idx := int(math.Round(t.Seconds() * float64(s.fps)))
	if idx >= len(s.frames) {
		idx = len(s.frames) - 1
	}
	s.pos = idx
	return nil
}

func (s *FrameSequenceSource) Frame() (*raster.Image, error) {
	if s.closed {
		return nil, ErrSourceClosed
	}
	return s.frames[s.pos], nil
}

func (s *FrameSequenceSource) Close() error {
	s.closed = true
	s.frames = nil
	return nil
}

// decodeImageFile reads and decodes one image file into a raster.
func decodeImageFile(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceLoad, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSourceLoad, filepath.Base(path), err)
	}
	return raster.FromImage(img), nil
}
