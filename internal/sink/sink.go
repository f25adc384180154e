// Package sink captures composited frames and muxes them with the audio
// track into one playable container. The capability interface isolates the
// engine from the concrete container format.
package sink

import (
	"errors"

	"github.com/Pranati-2/DeepReal/internal/raster"
)

// Common errors
var (
	// ErrUnsupportedEnvironment means the platform lacks frame-capture or
	// muxing capability. Raised by Start before any other work happens.
	ErrUnsupportedEnvironment = errors.New("sink: frame capture not supported in this environment")
	// ErrNoData means Finish produced zero output bytes.
	ErrNoData = errors.New("sink: recording produced no data")
	// ErrFinished means Push was called after Finish.
	ErrFinished = errors.New("sink: recording already finished")
	// ErrInvalidRate rejects a non-positive capture rate.
	ErrInvalidRate = errors.New("sink: invalid capture frame rate")
)

// Container is the finished output: composited video plus audio track as one
// opaque binary blob for external code to display, download, or persist.
type Container struct {
	Data []byte
	MIME string
}

// FrameSink consumes composited frames in call order and produces the final
// container.
type FrameSink interface {
	// Push appends one frame. Frames are encoded in arrival order.
	Push(frame *raster.Image) error
	// Finish flushes buffered frames together with the audio track and
	// returns the container, or ErrNoData if nothing was produced. It may
	// be called exactly once.
	Finish() (*Container, error)
}

// Capability probes and opens the platform's capture/muxing facility.
type Capability interface {
	// Supported reports whether this environment can capture and mux.
	Supported() bool
	// Start opens a sink bound to the capture rate. It fails fast with
	// ErrUnsupportedEnvironment when Supported is false, before any audio
	// decoding or scheduling begins.
	Start(fps int) (FrameSink, error)
}
