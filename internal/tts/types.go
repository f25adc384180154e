// Package tts provides Text-to-Speech synthesis for DeepReal. Providers hand
// back PCM16 WAV clips that feed straight into the sync engine.
package tts

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrProviderUnavailable = errors.New("TTS provider unavailable")
	ErrEmptyText           = errors.New("no text to synthesize")
)

// Provider is the interface all TTS providers must implement
type Provider interface {
	// Name returns the provider identifier (e.g., "tone")
	Name() string

	// Synthesize converts text to a WAV clip
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// Health checks if the provider is available
	Health(ctx context.Context) error
}

// SynthesizeRequest represents a synthesis request
type SynthesizeRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed,omitempty"` // 0.5 to 2.0, 0 means 1.0
}

// SynthesizeResponse represents a synthesis result
type SynthesizeResponse struct {
	Audio      []byte        `json:"audio"`       // PCM16 WAV container
	SampleRate int           `json:"sample_rate"` // Sample rate in Hz
	Duration   time.Duration `json:"duration"`    // Audio duration
	Provider   string        `json:"provider"`    // Provider name
}
