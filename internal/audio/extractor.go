package audio

import (
	"fmt"
	"math"

	"github.com/Pranati-2/DeepReal/internal/wav"
)

// DecodeClip decodes an opaque audio clip into a SampleBuffer. The clip is
// expected to be a PCM16 WAV container (what the TTS collaborators hand us);
// anything undecodable surfaces as ErrSourceLoad.
func DecodeClip(data []byte) (*SampleBuffer, error) {
	f, err := wav.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceLoad, err)
	}
	return BufferFromFile(f)
}

// BufferFromFile de-interleaves an already-decoded WAV file into per-channel
// float samples. Zero-duration clips fail rather than silently producing an
// empty analysis.
func BufferFromFile(f *wav.File) (*SampleBuffer, error) {
	if len(f.Samples) == 0 {
		return nil, ErrEmptyClip
	}

	frames := len(f.Samples) / f.NumChannels
	channels := make([][]float64, f.NumChannels)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	floats := f.FloatSamples()
	for i := 0; i < frames; i++ {
		for c := 0; c < f.NumChannels; c++ {
			channels[c][i] = floats[i*f.NumChannels+c]
		}
	}

	return &SampleBuffer{Data: channels, SampleRate: f.SampleRate}, nil
}

// Amplitudes computes one amplitude value per output video frame: the mean of
// |sample| over the half-open window [i·spf, (i+1)·spf) of channel 0, where
// spf = round(sampleRate/fps). The final window may run past the end of the
// buffer; missing samples count as zero rather than shortening the window.
func Amplitudes(buf *SampleBuffer, fps int) ([]Amplitude, error) {
	if fps <= 0 {
		return nil, ErrInvalidRate
	}
	if buf == nil || buf.Len() == 0 {
		return nil, ErrEmptyClip
	}

	ch := buf.Data[0]
	samplesPerFrame := int(math.Round(float64(buf.SampleRate) / float64(fps)))
	if samplesPerFrame < 1 {
		samplesPerFrame = 1
	}
	frameCount := int(math.Ceil(buf.Duration().Seconds() * float64(fps)))

	out := make([]Amplitude, frameCount)
	for i := 0; i < frameCount; i++ {
		start := i * samplesPerFrame
		end := start + samplesPerFrame

		var sum float64
		for s := start; s < end && s < len(ch); s++ {
			sum += math.Abs(ch[s])
		}
		out[i] = Amplitude{
			FrameIndex: i,
			Value:      sum / float64(samplesPerFrame),
		}
	}
	return out, nil
}
