// Package audio decodes speech clips and extracts the per-frame energy
// envelope that drives the lip-sync engine.
package audio

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrSourceLoad   = errors.New("audio: clip could not be decoded")
	ErrEmptyClip    = errors.New("audio: clip contains no samples")
	ErrInvalidRate  = errors.New("audio: invalid frame rate")
	ErrChannelRange = errors.New("audio: channel index out of range")
)

// SampleBuffer holds decoded float samples per channel plus the clip's
// format. Values are not required to be pre-clamped to [-1,1]; clamping
// happens at encode time in the wav package.
type SampleBuffer struct {
	Data       [][]float64 // channels, each an ordered sample sequence
	SampleRate int
}

// Channels returns the channel count.
func (b *SampleBuffer) Channels() int {
	return len(b.Data)
}

// Len returns the sample count of channel 0.
func (b *SampleBuffer) Len() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the play time of the buffer.
func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Len()) / float64(b.SampleRate) * float64(time.Second))
}

// Channel returns one channel's samples.
func (b *SampleBuffer) Channel(i int) ([]float64, error) {
	if i < 0 || i >= len(b.Data) {
		return nil, ErrChannelRange
	}
	return b.Data[i], nil
}

// Amplitude is the mean absolute sample magnitude over the analysis window
// belonging to one output video frame. One Amplitude per frame index,
// indices contiguous from 0.
type Amplitude struct {
	FrameIndex int
	Value      float64
}
