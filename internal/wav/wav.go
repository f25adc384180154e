// Package wav implements a minimal 16-bit linear PCM WAV encoder/decoder.
// It is the one audio container DeepReal materializes itself; everything
// beyond the 44-byte canonical header is delegated to the output muxer.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Common errors
var (
	ErrShortHeader  = errors.New("wav: header shorter than 44 bytes")
	ErrBadMarker    = errors.New("wav: missing RIFF/WAVE/fmt /data marker")
	ErrNotPCM       = errors.New("wav: audio format is not linear PCM")
	ErrNot16Bit     = errors.New("wav: bits per sample is not 16")
	ErrSizeMismatch = errors.New("wav: declared data size disagrees with body")
	ErrNoChannels   = errors.New("wav: zero channels")
	ErrZeroRate     = errors.New("wav: zero sample rate")
)

// OutputVolume is the fixed gain applied to every sample at encode time,
// before quantization. Matches the playback volume the web app bakes in.
const OutputVolume = 0.9

const headerSize = 44

// File is a decoded WAV container: interleaved int16 PCM plus the header
// fields needed to reconstruct or re-encode it. Header-declared byte counts
// are always consistent with len(Samples).
type File struct {
	NumChannels   int
	SampleRate    int
	BitsPerSample int
	Samples       []int16 // interleaved across channels
}

// Duration returns the play time of the PCM payload.
func (f *File) Duration() time.Duration {
	if f.NumChannels == 0 || f.SampleRate == 0 {
		return 0
	}
	frames := len(f.Samples) / f.NumChannels
	return time.Duration(float64(frames) / float64(f.SampleRate) * float64(time.Second))
}

// FloatSamples reconstructs float samples, symmetric to the encode branch:
// negatives divide by 0x8000, non-negatives by 0x7FFF, then the fixed
// OutputVolume gain is undone so a round-trip lands within one quantization
// step of the source signal.
//
// Undoing the gain assumes the clip was produced by Encode. A foreign WAV
// recorded at full scale comes back amplified by 1/OutputVolume and can
// exceed [-1, 1]; use RawFloatSamples for clips of unknown origin.
func (f *File) FloatSamples() []float64 {
	out := f.RawFloatSamples()
	for i := range out {
		out[i] /= OutputVolume
	}
	return out
}

// RawFloatSamples converts the PCM payload to floats with only the
// 0x8000/0x7FFF division, no gain compensation. Always lands in [-1, 1].
func (f *File) RawFloatSamples() []float64 {
	out := make([]float64, len(f.Samples))
	for i, s := range f.Samples {
		if s < 0 {
			out[i] = float64(s) / 0x8000
		} else {
			out[i] = float64(s) / 0x7FFF
		}
	}
	return out
}

// pcmWriter accumulates the first write error so the header assembly below
// stays linear instead of checking every binary.Write.
type pcmWriter struct {
	w   io.Writer
	err error
}

func (pw *pcmWriter) fourCC(s string) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.w.Write([]byte(s))
}

func (pw *pcmWriter) u32(v uint32) {
	if pw.err != nil {
		return
	}
	pw.err = binary.Write(pw.w, binary.LittleEndian, v)
}

func (pw *pcmWriter) u16(v uint16) {
	if pw.err != nil {
		return
	}
	pw.err = binary.Write(pw.w, binary.LittleEndian, v)
}

// Quantize converts one float sample to int16 PCM: clamp to [-1,1], apply
// OutputVolume, then scale negatives by 0x8000 and non-negatives by 0x7FFF.
func Quantize(s float64) int16 {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	s *= OutputVolume
	if s < 0 {
		return int16(math.Round(s * 0x8000))
	}
	return int16(math.Round(s * 0x7FFF))
}

// Encode serializes float samples (interleaved when numChannels > 1) into a
// complete little-endian PCM16 WAV file.
func Encode(numChannels, sampleRate int, samples []float64) ([]byte, error) {
	if numChannels <= 0 {
		return nil, ErrNoChannels
	}
	if sampleRate <= 0 {
		return nil, ErrZeroRate
	}

	n := uint32(len(samples))
	dataSize := n * 2 // samples are already interleaved, 2 bytes each

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+int(dataSize)))
	pw := &pcmWriter{w: buf}

	pw.fourCC("RIFF")
	pw.u32(36 + dataSize)
	pw.fourCC("WAVE")

	pw.fourCC("fmt ")
	pw.u32(16) // PCM fmt chunk size
	pw.u16(1)  // linear PCM
	pw.u16(uint16(numChannels))
	pw.u32(uint32(sampleRate))
	pw.u32(uint32(sampleRate * numChannels * 2)) // byte rate
	pw.u16(uint16(numChannels * 2))              // block align
	pw.u16(16)                                   // bits per sample

	pw.fourCC("data")
	pw.u32(dataSize)
	if pw.err != nil {
		return nil, fmt.Errorf("wav: write header: %w", pw.err)
	}

	for _, s := range samples {
		pw.u16(uint16(Quantize(s)))
	}
	if pw.err != nil {
		return nil, fmt.Errorf("wav: write samples: %w", pw.err)
	}

	return buf.Bytes(), nil
}

// EncodeChannels interleaves per-channel sample slices and encodes them.
// Channels shorter than the longest one are zero-padded.
func EncodeChannels(sampleRate int, channels [][]float64) ([]byte, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	frames := 0
	for _, ch := range channels {
		if len(ch) > frames {
			frames = len(ch)
		}
	}
	interleaved := make([]float64, 0, frames*len(channels))
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			if i < len(ch) {
				interleaved = append(interleaved, ch[i])
			} else {
				interleaved = append(interleaved, 0)
			}
		}
	}
	return Encode(len(channels), sampleRate, interleaved)
}

// Decode parses a PCM16 WAV file produced by Encode or any standard encoder
// using the canonical 44-byte header.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, ErrShortHeader
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " || string(data[36:40]) != "data" {
		return nil, ErrBadMarker
	}

	le := binary.LittleEndian
	format := le.Uint16(data[20:22])
	if format != 1 {
		return nil, ErrNotPCM
	}
	numChannels := int(le.Uint16(data[22:24]))
	if numChannels == 0 {
		return nil, ErrNoChannels
	}
	sampleRate := int(le.Uint32(data[24:28]))
	if sampleRate == 0 {
		return nil, ErrZeroRate
	}
	bits := int(le.Uint16(data[34:36]))
	if bits != 16 {
		return nil, ErrNot16Bit
	}

	dataSize := int(le.Uint32(data[40:44]))
	body := data[headerSize:]
	if dataSize > len(body) {
		return nil, ErrSizeMismatch
	}
	body = body[:dataSize&^1] // int16 alignment

	samples := make([]int16, len(body)/2)
	for i := range samples {
		samples[i] = int16(le.Uint16(body[i*2 : i*2+2]))
	}

	return &File{
		NumChannels:   numChannels,
		SampleRate:    sampleRate,
		BitsPerSample: bits,
		Samples:       samples,
	}, nil
}

// QuantizationStep is the maximum absolute round-trip error of one encoded
// sample, used by callers comparing decoded output against the source signal.
func QuantizationStep() float64 {
	return 1.0 / float64(math.MaxInt16+1)
}

// SamplesToBytes converts int16 samples to little-endian PCM bytes, the raw
// payload format the output muxer interleaves.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
