// Package engine runs lip-sync jobs: it walks a video source frame by frame,
// drives the mouth overlay from the audio amplitude envelope, and feeds the
// composited frames into a recording sink.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Pranati-2/DeepReal/internal/audio"
	"github.com/Pranati-2/DeepReal/internal/bus"
	"github.com/Pranati-2/DeepReal/internal/compositor"
	"github.com/Pranati-2/DeepReal/internal/raster"
	"github.com/Pranati-2/DeepReal/internal/sink"
	"github.com/Pranati-2/DeepReal/internal/video"
	"github.com/Pranati-2/DeepReal/internal/viseme"
	"github.com/Pranati-2/DeepReal/internal/wav"
)

// State tracks where a job is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateSeeking
	StateCapturing
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeking:
		return "seeking"
	case StateCapturing:
		return "capturing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a single sync job.
type Options struct {
	FPS     int
	Profile viseme.Profile
	Region  raster.RegionProportions
}

// Job is a single lip-sync run. Jobs are single-use: construct one per
// video/audio pair and call Run exactly once.
type Job struct {
	id         string
	source     video.Source
	clip       []byte
	capability sink.Capability
	opts       Options

	bus    *bus.EventBus
	logger zerolog.Logger

	cancelled atomic.Bool

	mu    sync.Mutex
	state State

	// Filled in during Run; exposed for progress reporting.
	framesCaptured atomic.Int64
}

// New builds a job over the given video source and WAV clip. The sink
// capability is probed when Run starts, before any audio is decoded.
func New(source video.Source, clip []byte, capability sink.Capability, opts Options, eventBus *bus.EventBus, logger zerolog.Logger) *Job {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	id := uuid.New().String()
	return &Job{
		id:         id,
		source:     source,
		clip:       clip,
		capability: capability,
		opts:       opts,
		bus:        eventBus,
		logger:     logger.With().Str("job_id", id).Logger(),
	}
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
	j.logger.Debug().Str("state", s.String()).Msg("state transition")
}

// FramesCaptured reports how many frames have been pushed to the sink so far.
// Safe to call from another goroutine while Run is in flight.
func (j *Job) FramesCaptured() int {
	return int(j.framesCaptured.Load())
}

// Cancel requests a graceful stop. The flag is polled before every seek, so
// the frame currently being captured still lands in the output before the
// job moves to finalization.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Run executes the job to completion and returns the finished container.
// Cancellation (via Cancel or the context) truncates the output rather than
// discarding it: whatever was captured so far is still muxed and returned.
func (j *Job) Run(ctx context.Context) (*sink.Container, error) {
	defer j.source.Close()

	// Mirror context cancellation onto the cancel flag so the frame loop
	// only has one thing to poll.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			j.cancelled.Store(true)
		case <-watchdogDone:
		}
	}()

	// Probe the recording environment before spending any work on audio
	// decode. An unsupported sink should fail fast.
	if !j.capability.Supported() {
		return nil, j.fail(fmt.Errorf("recorder: %w", sink.ErrUnsupportedEnvironment))
	}
	frameSink, err := j.capability.Start(j.opts.FPS)
	if err != nil {
		return nil, j.fail(fmt.Errorf("recorder start: %w", err))
	}
	finished := false
	defer func() {
		// Release sink buffers when a failure bails out mid-run.
		if !finished {
			frameSink.Finish()
		}
	}()

	wavFile, err := wav.Decode(j.clip)
	if err != nil {
		return nil, j.fail(fmt.Errorf("%w: %v", audio.ErrSourceLoad, err))
	}
	buf, err := audio.BufferFromFile(wavFile)
	if err != nil {
		return nil, j.fail(err)
	}
	amps, err := audio.Amplitudes(buf, j.opts.FPS)
	if err != nil {
		return nil, j.fail(err)
	}

	// Hand the raw PCM track to the sink if it can mux audio alongside
	// the frames.
	if ats, ok := frameSink.(sink.AudioTrackSink); ok {
		ats.SetAudioTrack(sink.AudioTrack{
			Data:       wav.SamplesToBytes(wavFile.Samples),
			SampleRate: wavFile.SampleRate,
			Channels:   wavFile.NumChannels,
		})
	}

	w, h := j.source.Bounds()
	region := raster.MouthRegion(w, h, j.opts.Region)

	longest := j.source.Duration()
	if d := buf.Duration(); d > longest {
		longest = d
	}
	frameCount := int(math.Ceil(longest.Seconds() * float64(j.opts.FPS)))

	j.publish(bus.EventTypeJobStarted, map[string]any{
		"job_id":      j.id,
		"frame_count": frameCount,
		"fps":         j.opts.FPS,
		"profile":     string(j.opts.Profile),
	})
	j.logger.Info().
		Int("frame_count", frameCount).
		Int("fps", j.opts.FPS).
		Dur("audio", buf.Duration()).
		Dur("video", j.source.Duration()).
		Msg("job started")

	frameDur := time.Second / time.Duration(j.opts.FPS)
	lastMouth := viseme.MouthState(-1)
	truncated := false

	for i := 0; i < frameCount; i++ {
		if j.cancelled.Load() {
			truncated = true
			j.publish(bus.EventTypeJobCancelled, map[string]any{
				"job_id": j.id,
				"frames": i,
			})
			j.logger.Warn().Int("frames", i).Msg("job cancelled")
			break
		}
		if i >= len(amps) {
			// Audio ran out before the longer video track did.
			truncated = true
			j.publish(bus.EventTypeJobTruncated, map[string]any{
				"job_id": j.id,
				"frames": i,
			})
			j.logger.Info().Int("frames", i).Msg("amplitude sequence exhausted, truncating")
			break
		}

		j.setState(StateSeeking)
		ts := time.Duration(i) * frameDur
		if err := j.source.Seek(ts); err != nil {
			return nil, j.fail(fmt.Errorf("seek frame %d: %w", i, err))
		}

		j.setState(StateCapturing)
		frame, err := j.source.Frame()
		if err != nil {
			return nil, j.fail(fmt.Errorf("capture frame %d: %w", i, err))
		}

		amp := amps[i].Value
		effAmp := viseme.EffectiveAmplitude(amp, j.opts.Profile)
		open := viseme.OpenFactor(amp, j.opts.Profile)

		composited := compositor.Compose(frame, region, open, effAmp)
		composited.Timestamp = ts
		if err := frameSink.Push(composited); err != nil {
			return nil, j.fail(fmt.Errorf("push frame %d: %w", i, err))
		}
		j.framesCaptured.Add(1)

		if mouth := viseme.State(amp); mouth != lastMouth {
			lastMouth = mouth
			j.publish(bus.EventTypeMouthState, map[string]any{
				"job_id": j.id,
				"frame":  i,
				"state":  mouth.String(),
			})
		}
		j.publish(bus.EventTypeFrameCaptured, map[string]any{
			"job_id": j.id,
			"frame":  i,
			"total":  frameCount,
		})
	}

	j.setState(StateFinalizing)
	container, err := frameSink.Finish()
	finished = true
	if err != nil {
		return nil, j.fail(fmt.Errorf("finalize: %w", err))
	}

	j.setState(StateDone)
	j.publish(bus.EventTypeJobCompleted, map[string]any{
		"job_id":    j.id,
		"frames":    j.FramesCaptured(),
		"truncated": truncated,
		"mime":      container.MIME,
		"bytes":     len(container.Data),
	})
	j.logger.Info().
		Int("frames", j.FramesCaptured()).
		Bool("truncated", truncated).
		Int("bytes", len(container.Data)).
		Msg("job completed")
	return container, nil
}

func (j *Job) fail(err error) error {
	j.setState(StateFailed)
	j.publish(bus.EventTypeJobFailed, map[string]any{
		"job_id": j.id,
		"error":  err.Error(),
	})
	j.logger.Error().Err(err).Msg("job failed")
	return err
}

func (j *Job) publish(eventType bus.EventType, data map[string]any) {
	if j.bus == nil {
		return
	}
	j.bus.Publish(bus.Event{Type: eventType, Data: data})
}
