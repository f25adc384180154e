package tts

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Pranati-2/DeepReal/internal/wav"
)

// ToneConfig controls the synthetic voice.
type ToneConfig struct {
	SampleRate     int     `mapstructure:"sample_rate"`
	BaseFrequency  float64 `mapstructure:"base_frequency"`
	WordsPerMinute float64 `mapstructure:"words_per_minute"`
}

// DefaultToneConfig returns the stock synthetic voice settings.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate:     16000,
		BaseFrequency:  170,
		WordsPerMinute: 150,
	}
}

// ToneProvider is an offline stand-in for a real speech backend. It renders
// one amplitude-modulated tone burst per word, with silence between words,
// so the downstream envelope analysis sees speech-like cadence.
type ToneProvider struct {
	cfg ToneConfig
}

// NewToneProvider creates the synthetic tone provider.
func NewToneProvider(cfg ToneConfig) *ToneProvider {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.BaseFrequency <= 0 {
		cfg.BaseFrequency = 170
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 150
	}
	return &ToneProvider{cfg: cfg}
}

func (p *ToneProvider) Name() string { return "tone" }

func (p *ToneProvider) Health(context.Context) error { return nil }

func (p *ToneProvider) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	words := strings.Fields(req.Text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}

	rate := float64(p.cfg.SampleRate)
	wordDur := 60.0 / (p.cfg.WordsPerMinute * speed)
	voiced := int(wordDur * 0.7 * rate)
	gap := int(wordDur * 0.3 * rate)

	samples := make([]float64, 0, (voiced+gap)*len(words))
	for wi, word := range words {
		// Longer words carry slightly longer bursts so cadence is not
		// perfectly metronomic.
		n := voiced + len(word)*voiced/24
		freq := p.cfg.BaseFrequency * (1.0 + 0.05*math.Sin(float64(wi)))
		for i := 0; i < n; i++ {
			t := float64(i) / rate
			env := math.Sin(math.Pi * float64(i) / float64(n)) // attack/decay
			samples = append(samples, 0.6*env*math.Sin(2*math.Pi*freq*t))
		}
		samples = append(samples, make([]float64, gap)...)
	}

	data, err := wav.Encode(1, p.cfg.SampleRate, samples)
	if err != nil {
		return nil, fmt.Errorf("tone: encode: %w", err)
	}
	return &SynthesizeResponse{
		Audio:      data,
		SampleRate: p.cfg.SampleRate,
		Duration:   time.Duration(float64(len(samples)) / rate * float64(time.Second)),
		Provider:   p.Name(),
	}, nil
}
