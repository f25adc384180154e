package audio

import (
	"math"
	"testing"

	"github.com/Pranati-2/DeepReal/internal/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantClip(t *testing.T, value float64, n, rate int) []byte {
	t.Helper()
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}
	data, err := wav.Encode(1, rate, samples)
	require.NoError(t, err)
	return data
}

func TestDecodeClip(t *testing.T) {
	clip := constantClip(t, 0.5, 16000, 16000)

	buf, err := DecodeClip(clip)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Channels())
	assert.Equal(t, 16000, buf.SampleRate)
	assert.Equal(t, 16000, buf.Len())
	assert.InDelta(t, 1.0, buf.Duration().Seconds(), 1e-9)
	assert.InDelta(t, 0.5, buf.Data[0][100], 1e-4)
}

func TestDecodeClip_Garbage(t *testing.T) {
	_, err := DecodeClip([]byte("definitely not a wav container"))
	assert.ErrorIs(t, err, ErrSourceLoad)
}

func TestDecodeClip_Empty(t *testing.T) {
	data, err := wav.Encode(1, 16000, nil)
	require.NoError(t, err)
	_, err = DecodeClip(data)
	assert.ErrorIs(t, err, ErrEmptyClip)
}

func TestDecodeClip_DeinterleavesStereo(t *testing.T) {
	data, err := wav.EncodeChannels(8000, [][]float64{
		{0.25, 0.25, 0.25, 0.25},
		{-0.5, -0.5, -0.5, -0.5},
	})
	require.NoError(t, err)

	buf, err := DecodeClip(data)
	require.NoError(t, err)
	require.Equal(t, 2, buf.Channels())
	assert.InDelta(t, 0.25, buf.Data[0][2], 1e-4)
	assert.InDelta(t, -0.5, buf.Data[1][2], 1e-4)
}

func TestAmplitudes_OnePerFrame(t *testing.T) {
	// 1.5 seconds at 16kHz, 30fps -> 45 windows
	buf := &SampleBuffer{
		Data:       [][]float64{make([]float64, 24000)},
		SampleRate: 16000,
	}
	for i := range buf.Data[0] {
		buf.Data[0][i] = 0.2
	}

	amps, err := Amplitudes(buf, 30)
	require.NoError(t, err)
	require.Len(t, amps, 45)
	for i, a := range amps {
		assert.Equal(t, i, a.FrameIndex)
		assert.InDelta(t, 0.2, a.Value, 1e-9)
	}
}

func TestAmplitudes_ShortFinalWindowPadsWithZeros(t *testing.T) {
	// 800 samples at 16kHz is 0.05s; at 30fps that is ceil(1.5) = 2 windows
	// of round(16000/30) = 533 samples. The second window only has 267 real
	// samples; the rest count as zero.
	n := 800
	buf := &SampleBuffer{
		Data:       [][]float64{make([]float64, n)},
		SampleRate: 16000,
	}
	for i := range buf.Data[0] {
		buf.Data[0][i] = 1.0
	}

	amps, err := Amplitudes(buf, 30)
	require.NoError(t, err)
	require.Len(t, amps, 2)

	spf := int(math.Round(16000.0 / 30.0))
	assert.InDelta(t, 1.0, amps[0].Value, 1e-9)
	want := float64(n-spf) / float64(spf)
	assert.InDelta(t, want, amps[1].Value, 1e-9)
}

func TestAmplitudes_UsesChannelZero(t *testing.T) {
	buf := &SampleBuffer{
		Data: [][]float64{
			make([]float64, 1600), // silence
			make([]float64, 1600),
		},
		SampleRate: 16000,
	}
	for i := range buf.Data[1] {
		buf.Data[1][i] = 0.9
	}

	amps, err := Amplitudes(buf, 10)
	require.NoError(t, err)
	for _, a := range amps {
		assert.Zero(t, a.Value)
	}
}

func TestAmplitudes_InvalidInput(t *testing.T) {
	buf := &SampleBuffer{Data: [][]float64{{0.1}}, SampleRate: 16000}

	_, err := Amplitudes(buf, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = Amplitudes(nil, 30)
	assert.ErrorIs(t, err, ErrEmptyClip)

	_, err = Amplitudes(&SampleBuffer{SampleRate: 16000}, 30)
	assert.ErrorIs(t, err, ErrEmptyClip)
}
