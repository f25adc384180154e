// Pure Go AVI muxer: one MJPEG video stream interleaved with an optional
// PCM16 audio stream. Each pushed raster is JPEG-encoded immediately; Finish
// assembles the container in memory.
package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/Pranati-2/DeepReal/internal/raster"
)

// MIMEAVI is the container MIME type of the finished recording.
const MIMEAVI = "video/x-msvideo"

// AudioTrack is the PCM audio merged into the container at Finish.
type AudioTrack struct {
	Data       []byte // interleaved little-endian int16 PCM
	SampleRate int
	Channels   int
}

func (t AudioTrack) byteRate() int {
	return t.SampleRate * t.Channels * 2
}

// AudioTrackSink is implemented by sinks that can merge an audio track.
// The engine attaches the track after Start, before the first Push.
type AudioTrackSink interface {
	SetAudioTrack(track AudioTrack)
}

// AVIConfig configures the platform capability.
type AVIConfig struct {
	// Format is the requested container format. Only "avi" is capturable
	// here; anything else fails the capability probe.
	Format string `mapstructure:"format"`
	// JPEGQuality is the per-frame encode quality, 1-100.
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// DefaultAVIConfig returns the capability defaults.
func DefaultAVIConfig() AVIConfig {
	return AVIConfig{Format: "avi", JPEGQuality: 90}
}

// AVICapability is the platform implementation of Capability.
type AVICapability struct {
	cfg AVIConfig
}

// NewAVICapability builds the capability from config.
func NewAVICapability(cfg AVIConfig) *AVICapability {
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultAVIConfig().JPEGQuality
	}
	return &AVICapability{cfg: cfg}
}

// Supported reports whether the requested container format can be produced.
func (c *AVICapability) Supported() bool {
	return c.cfg.Format == "avi" || c.cfg.Format == ""
}

// Start opens a frame sink bound to the capture rate.
func (c *AVICapability) Start(fps int) (FrameSink, error) {
	if !c.Supported() {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedEnvironment, c.cfg.Format)
	}
	if fps <= 0 {
		return nil, ErrInvalidRate
	}
	return &aviSink{fps: fps, quality: c.cfg.JPEGQuality}, nil
}

// aviSink buffers JPEG-encoded frames until Finish.
type aviSink struct {
	fps      int
	quality  int
	frames   [][]byte
	w, h     int
	audio    AudioTrack
	finished bool
}

// SetAudioTrack attaches the PCM audio merged at Finish.
func (s *aviSink) SetAudioTrack(track AudioTrack) {
	s.audio = track
}

// Push JPEG-encodes one composited frame in call order.
func (s *aviSink) Push(frame *raster.Image) error {
	if s.finished {
		return ErrFinished
	}
	if len(s.frames) == 0 {
		s.w, s.h = frame.W, frame.H
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.ToImage(), &jpeg.Options{Quality: s.quality}); err != nil {
		return fmt.Errorf("sink: encode frame %d: %w", len(s.frames), err)
	}
	s.frames = append(s.frames, buf.Bytes())
	return nil
}

// Finish assembles the AVI container from the buffered frames and the audio
// track. Zero frames and zero audio yield ErrNoData.
func (s *aviSink) Finish() (*Container, error) {
	if s.finished {
		return nil, ErrFinished
	}
	s.finished = true

	if len(s.frames) == 0 && len(s.audio.Data) == 0 {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	if err := writeAVI(&buf, s); err != nil {
		return nil, fmt.Errorf("sink: mux: %w", err)
	}
	return &Container{Data: buf.Bytes(), MIME: MIMEAVI}, nil
}

// binaryWriter accumulates the first error, keeping the header assembly
// below linear.
type binaryWriter struct {
	w   io.Writer
	err error
}

func (bw *binaryWriter) fourCC(s string) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte(s))
}

func (bw *binaryWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) u16(v uint16) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) bytes(data []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(data)
}

const (
	avihSize      = 56
	strhSize      = 56
	bmpInfoSize   = 40
	waveFmtSize   = 16
	videoStrlSize = 4 + (8 + strhSize) + (8 + bmpInfoSize) // "strl" + strh + strf
	audioStrlSize = 4 + (8 + strhSize) + (8 + waveFmtSize)
)

// chunk is one interleaved movi entry plus its idx1 bookkeeping.
type chunk struct {
	id   string
	data []byte
}

func pad(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// interleave lays out the movi chunks: one 00dc per frame, each followed by
// the audio slice covering that frame's time window, remainder audio flushed
// after the last frame so truncated jobs still carry the full track.
func interleave(s *aviSink) []chunk {
	var chunks []chunk

	perFrame := 0
	if s.audio.byteRate() > 0 && s.fps > 0 {
		perFrame = s.audio.byteRate() / s.fps
		perFrame &^= 1 // int16 alignment
	}

	audio := s.audio.Data
	off := 0
	for _, jpg := range s.frames {
		chunks = append(chunks, chunk{id: "00dc", data: jpg})
		if perFrame > 0 && off < len(audio) {
			end := off + perFrame
			if end > len(audio) {
				end = len(audio)
			}
			chunks = append(chunks, chunk{id: "01wb", data: audio[off:end]})
			off = end
		}
	}
	if off < len(audio) {
		chunks = append(chunks, chunk{id: "01wb", data: audio[off:]})
	}
	return chunks
}

func writeAVI(w io.Writer, s *aviSink) error {
	hasAudio := len(s.audio.Data) > 0
	chunks := interleave(s)

	streams := uint32(1)
	hdrlSize := uint32(4 + (8 + avihSize) + (8 + videoStrlSize))
	if hasAudio {
		streams = 2
		hdrlSize += 8 + audioStrlSize
	}

	moviSize := uint32(4)
	for _, c := range chunks {
		moviSize += uint32(8 + pad(len(c.data)))
	}
	idx1Size := uint32(len(chunks) * 16)
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + (8 + idx1Size)

	maxFrame := 0
	for _, jpg := range s.frames {
		if len(jpg) > maxFrame {
			maxFrame = len(jpg)
		}
	}

	bw := &binaryWriter{w: w}

	bw.fourCC("RIFF")
	bw.u32(fileSize)
	bw.fourCC("AVI ")

	// ── hdrl ──
	bw.fourCC("LIST")
	bw.u32(hdrlSize)
	bw.fourCC("hdrl")

	bw.fourCC("avih")
	bw.u32(avihSize)
	bw.u32(uint32(1_000_000 / s.fps)) // microseconds per frame
	bw.u32(uint32(maxFrame * s.fps))  // max bytes/sec
	bw.u32(0)                         // padding granularity
	bw.u32(0x10)                      // AVIF_HASINDEX
	bw.u32(uint32(len(s.frames)))
	bw.u32(0) // initial frames
	bw.u32(streams)
	bw.u32(uint32(maxFrame)) // suggested buffer
	bw.u32(uint32(s.w))
	bw.u32(uint32(s.h))
	bw.u32(0) // reserved ×4
	bw.u32(0)
	bw.u32(0)
	bw.u32(0)

	// video strl
	bw.fourCC("LIST")
	bw.u32(videoStrlSize)
	bw.fourCC("strl")

	bw.fourCC("strh")
	bw.u32(strhSize)
	bw.fourCC("vids")
	bw.fourCC("MJPG")
	bw.u32(0) // flags
	bw.u16(0) // priority
	bw.u16(0) // language
	bw.u32(0) // initial frames
	bw.u32(1) // scale
	bw.u32(uint32(s.fps))
	bw.u32(0) // start
	bw.u32(uint32(len(s.frames)))
	bw.u32(uint32(maxFrame)) // suggested buffer
	bw.u32(0)                // quality
	bw.u32(0)                // sample size
	bw.u16(0)                // rect left
	bw.u16(0)                // rect top
	bw.u16(uint16(s.w))
	bw.u16(uint16(s.h))

	bw.fourCC("strf")
	bw.u32(bmpInfoSize)
	bw.u32(bmpInfoSize)
	bw.u32(uint32(s.w))
	bw.u32(uint32(s.h))
	bw.u16(1)  // planes
	bw.u16(24) // bpp
	bw.fourCC("MJPG")
	bw.u32(uint32(s.w * s.h * 3))
	bw.u32(0) // x pels/m
	bw.u32(0) // y pels/m
	bw.u32(0) // clr used
	bw.u32(0) // clr important

	if hasAudio {
		blockAlign := uint32(s.audio.Channels * 2)

		bw.fourCC("LIST")
		bw.u32(audioStrlSize)
		bw.fourCC("strl")

		bw.fourCC("strh")
		bw.u32(strhSize)
		bw.fourCC("auds")
		bw.u32(0) // handler
		bw.u32(0) // flags
		bw.u16(0) // priority
		bw.u16(0) // language
		bw.u32(0) // initial frames
		bw.u32(blockAlign)
		bw.u32(uint32(s.audio.byteRate()))
		bw.u32(0) // start
		bw.u32(uint32(len(s.audio.Data)) / blockAlign)
		bw.u32(uint32(s.audio.byteRate() / s.fps)) // suggested buffer
		bw.u32(0)                                  // quality
		bw.u32(blockAlign)                         // sample size
		bw.u16(0)                                  // rect ×4
		bw.u16(0)
		bw.u16(0)
		bw.u16(0)

		bw.fourCC("strf")
		bw.u32(waveFmtSize)
		bw.u16(1) // PCM
		bw.u16(uint16(s.audio.Channels))
		bw.u32(uint32(s.audio.SampleRate))
		bw.u32(uint32(s.audio.byteRate()))
		bw.u16(uint16(blockAlign))
		bw.u16(16) // bits per sample
	}

	// ── movi ──
	bw.fourCC("LIST")
	bw.u32(moviSize)
	bw.fourCC("movi")

	padByte := []byte{0}
	for _, c := range chunks {
		bw.fourCC(c.id)
		bw.u32(uint32(len(c.data)))
		bw.bytes(c.data)
		if len(c.data)%2 != 0 {
			bw.bytes(padByte)
		}
	}

	// ── idx1 ──
	bw.fourCC("idx1")
	bw.u32(idx1Size)

	offset := uint32(4) // from movi start
	for _, c := range chunks {
		bw.fourCC(c.id)
		if c.id == "00dc" {
			bw.u32(0x10) // AVIIF_KEYFRAME
		} else {
			bw.u32(0)
		}
		bw.u32(offset)
		bw.u32(uint32(len(c.data)))
		offset += uint32(8 + pad(len(c.data)))
	}

	if bw.err != nil {
		return bw.err
	}
	return nil
}
