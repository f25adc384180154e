package tts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranati-2/DeepReal/internal/audio"
)

func TestToneProviderProducesDecodableClip(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())

	resp, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "hello there world"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Audio)
	assert.Equal(t, "tone", resp.Provider)
	assert.Equal(t, 16000, resp.SampleRate)

	buf, err := audio.DecodeClip(resp.Audio)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Channels())
	// Decoded duration matches what the provider reported.
	assert.InDelta(t, resp.Duration.Seconds(), buf.Duration().Seconds(), 0.01)
}

func TestToneProviderCadence(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())

	one, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "one"})
	require.NoError(t, err)
	three, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "one two three"})
	require.NoError(t, err)

	if three.Duration <= one.Duration {
		t.Fatalf("three words (%v) should run longer than one (%v)", three.Duration, one.Duration)
	}
}

func TestToneProviderSpeed(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())

	normal, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "steady pace here"})
	require.NoError(t, err)
	fast, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "steady pace here", Speed: 2.0})
	require.NoError(t, err)

	assert.Less(t, fast.Duration, normal.Duration)
}

func TestToneProviderEmptyText(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())

	_, err := p.Synthesize(context.Background(), &SynthesizeRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestToneProviderCancelledContext(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Synthesize(ctx, &SynthesizeRequest{Text: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToneProviderHealth(t *testing.T) {
	p := NewToneProvider(DefaultToneConfig())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, p.Health(ctx))
}
