package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranati-2/DeepReal/internal/bus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.Engine.FPS)
	assert.Equal(t, "default", cfg.Engine.Profile)
	assert.Equal(t, 5*time.Second, cfg.Engine.StillDuration)
	assert.Equal(t, "avi", cfg.Recorder.Format)
	assert.Equal(t, 16000, cfg.TTS.SampleRate)
	assert.InDelta(t, 0.35, cfg.Region.X, 1e-9)
	assert.InDelta(t, 0.22, cfg.Region.H, 1e-9)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
engine:
  fps: 24
  profile: exaggerated
recorder:
  jpeg_quality: 75
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Engine.FPS)
	assert.Equal(t, "exaggerated", cfg.Engine.Profile)
	assert.Equal(t, 75, cfg.Recorder.JPEGQuality)
	// Unset fields keep their defaults
	assert.Equal(t, "avi", cfg.Recorder.Format)
	assert.Equal(t, 16000, cfg.TTS.SampleRate)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 30\n"), 0o644))

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, zerolog.Nop(), nil, func(old, cfg *Config) {
		changed <- cfg
	})
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, 30, w.Current().Engine.FPS)

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 60\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 60, cfg.Engine.FPS)
		assert.Equal(t, 60, w.Current().Engine.FPS)
	case <-time.After(3 * time.Second):
		t.Fatal("config change never observed")
	}
}

func TestWatcher_KeepsPreviousOnInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 30\n"), 0o644))

	w, err := NewWatcher(path, zerolog.Nop(), nil, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(":\nnot yaml at all ["), 0o644))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 30, w.Current().Engine.FPS, "invalid edit must not replace config")
}

func TestWatcher_PublishesReloadEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 30\n"), 0o644))

	eventBus := bus.NewEventBus()
	reloaded := make(chan bus.Event, 1)
	eventBus.Subscribe(bus.EventTypeConfigReloaded, func(e bus.Event) {
		select {
		case reloaded <- e:
		default:
		}
	})

	w, err := NewWatcher(path, zerolog.Nop(), eventBus, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  fps: 60\n"), 0o644))

	select {
	case e := <-reloaded:
		assert.Equal(t, path, e.Data["path"])
	case <-time.After(3 * time.Second):
		t.Fatal("no config.reloaded event")
	}
}
