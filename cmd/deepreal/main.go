package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Pranati-2/DeepReal/internal/bus"
	"github.com/Pranati-2/DeepReal/internal/config"
	"github.com/Pranati-2/DeepReal/internal/engine"
	"github.com/Pranati-2/DeepReal/internal/logging"
	"github.com/Pranati-2/DeepReal/internal/sink"
	"github.com/Pranati-2/DeepReal/internal/tts"
	"github.com/Pranati-2/DeepReal/internal/video"
	"github.com/Pranati-2/DeepReal/internal/viseme"
)

func main() {
	videoPath := flag.String("video", "", "source image file or directory of frames")
	audioPath := flag.String("audio", "", "PCM16 WAV clip; empty uses -text with the tone synthesizer")
	text := flag.String("text", "", "text to synthesize when no -audio is given")
	profileName := flag.String("profile", "", "sync profile: default|subtle|exaggerated|realistic")
	fps := flag.Int("fps", 0, "output frame rate (0 uses config)")
	outPath := flag.String("out", "out.avi", "output container path")
	configPath := flag.String("config", "", "config file (default ~/.deepreal/config.yaml)")
	flag.Parse()

	if *videoPath == "" {
		fmt.Fprintln(os.Stderr, "deepreal: -video is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, cfgPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deepreal: config: %v\n", err)
		os.Exit(1)
	}
	if *fps > 0 {
		cfg.Engine.FPS = *fps
	}
	if *profileName != "" {
		cfg.Engine.Profile = *profileName
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deepreal: logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := run(cfg, cfgPath, logger, *videoPath, *audioPath, *text, *outPath); err != nil {
		logger.Error("main", "run failed", err)
		fmt.Fprintf(os.Stderr, "deepreal: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig also reports which file backs the config, so a watcher can be
// pointed at it. Empty when running on defaults with no file on disk.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	if dir, derr := config.GetConfigDir(); derr == nil {
		p := filepath.Join(dir, "config.yaml")
		if _, serr := os.Stat(p); serr == nil {
			return cfg, p, nil
		}
	}
	return cfg, "", nil
}

func run(cfg *config.Config, cfgPath string, logger *logging.Logger, videoPath, audioPath, text, outPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := viseme.ParseProfile(cfg.Engine.Profile)
	if err != nil {
		return err
	}

	source, err := openSource(cfg, videoPath)
	if err != nil {
		return err
	}

	clip, err := loadClip(ctx, cfg, logger, audioPath, text)
	if err != nil {
		source.Close()
		return err
	}

	eventBus := bus.NewEventBus()
	progress := logger.Component("progress")

	// Hot reload: edits to the config file are picked up for the next run;
	// the job in flight keeps the parameters it started with.
	if cfgPath != "" {
		watcher, err := config.NewWatcher(cfgPath, logger.Zerolog(), eventBus, nil)
		if err != nil {
			logger.Warn("config", fmt.Sprintf("config watch disabled: %v", err))
		} else {
			defer watcher.Stop()
		}
	}
	eventBus.Subscribe(bus.EventTypeConfigReloaded, func(e bus.Event) {
		path, _ := e.Data["path"].(string)
		progress.Info().Str("path", path).Msg("config reloaded, applies to the next run")
	})
	eventBus.Subscribe(bus.EventTypeFrameCaptured, func(e bus.Event) {
		frame, _ := e.Data["frame"].(int)
		total, _ := e.Data["total"].(int)
		if total > 0 && frame%30 == 0 {
			progress.Info().Int("frame", frame).Int("total", total).Msg("capturing")
		}
	})
	eventBus.SubscribeMultiple([]bus.EventType{bus.EventTypeJobTruncated, bus.EventTypeJobCancelled}, func(e bus.Event) {
		frames, _ := e.Data["frames"].(int)
		progress.Info().Int("frames", frames).Str("reason", string(e.Type)).Msg("output truncated")
	})

	job := engine.New(source, clip, sink.NewAVICapability(cfg.Recorder), engine.Options{
		FPS:     cfg.Engine.FPS,
		Profile: profile,
		Region:  cfg.Region,
	}, eventBus, logger.Component("engine"))

	start := time.Now()
	container, err := job.Run(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, container.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("main", fmt.Sprintf("wrote %s (%d frames, %d bytes, %s) in %s",
		outPath, job.FramesCaptured(), len(container.Data), container.MIME,
		time.Since(start).Round(time.Millisecond)))
	return nil
}

// openSource treats a directory as a frame sequence and anything else as a
// still image held for the configured duration.
func openSource(cfg *config.Config, path string) (video.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("video source: %w", err)
	}
	if info.IsDir() {
		return video.OpenFrameDir(path, cfg.Engine.SourceFPS)
	}
	return video.OpenStill(path, cfg.Engine.StillDuration)
}

func loadClip(ctx context.Context, cfg *config.Config, logger *logging.Logger, audioPath, text string) ([]byte, error) {
	if audioPath != "" {
		data, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, fmt.Errorf("audio clip: %w", err)
		}
		return data, nil
	}

	provider := tts.NewToneProvider(cfg.TTS)
	logger.Info("tts", fmt.Sprintf("no audio clip given, synthesizing with %q", provider.Name()))
	resp, err := provider.Synthesize(ctx, &tts.SynthesizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return resp.Audio, nil
}
