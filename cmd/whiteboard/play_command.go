package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/whiteboard-go/config"
	"github.com/Carmen-Shannon/whiteboard-go/engine"
	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
	"github.com/Carmen-Shannon/whiteboard-go/engine/presenter"
	"github.com/Carmen-Shannon/whiteboard-go/engine/provider"
	"github.com/Carmen-Shannon/whiteboard-go/engine/renderer"
	"github.com/Carmen-Shannon/whiteboard-go/engine/viewport"
	"github.com/Carmen-Shannon/whiteboard-go/engine/window"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var muted bool
	var silent bool

	cmd := &cobra.Command{
		Use:   "play <prompt or plan>",
		Short: "Open a window and draw a plan in time with its narration",
		Long: "Play looks the prompt up in library.dir and draws the plan step by step.\n\n" +
			"Keys: space pause, m mute, r repeat, f focus, = and - zoom. Drag to pan, scroll to zoom.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if silent {
				cfg.Audio.Enabled = false
			}
			if muted {
				cfg.Audio.Muted = true
			}
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			return runPlayer(runCtx, cfg, logger, joinArgs(args))
		},
	}

	cmd.Flags().BoolVar(&muted, "muted", false, "Start with narration muted")
	cmd.Flags().BoolVar(&silent, "silent", false, "Do not open an audio device; narration still paces the steps")
	return cmd
}

func runPlayer(ctx context.Context, cfg *config.Config, logger *slog.Logger, prompt string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib := provider.NewLibrary(cfg.Library.Dir, logger)
	pipeline := audio.NewPipeline(
		audio.WithLogger(logger),
		audio.WithWorkers(cfg.Audio.DecodeWorkers),
		audio.WithQueueSize(cfg.Audio.DecodeQueue),
	)
	player := newPlayer(cfg, logger)

	// The controller is built before the engine it wakes.
	var eng atomic.Pointer[engine.Engine]
	wake := func() {
		if e := eng.Load(); e != nil {
			(*e).Wake()
		}
	}

	controller := playback.NewController(
		playback.WithLogger(logger),
		playback.WithPlanner(lib),
		playback.WithNarrator(lib),
		playback.WithPipeline(pipeline),
		playback.WithPlayer(player),
		playback.WithAwaitTimeout(cfg.AudioTimeout()),
		playback.WithBreathing(cfg.Breathing()),
		playback.WithWakeFunc(wake),
	)
	defer controller.Close()
	if cfg.Audio.Muted {
		controller.ToggleMute()
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
	)
	if err != nil {
		return err
	}

	mode := presenter.PresentModeUncapped
	if cfg.Window.VSync {
		mode = presenter.PresentModeVSync
	}
	bg, _, _ := cfg.Colors()
	pres, err := presenter.NewPresenter(win.SurfaceDescriptor(), win.Width(), win.Height(),
		presenter.WithLogger(logger),
		presenter.WithPresentMode(mode),
		presenter.WithForceFallbackAdapter(cfg.Window.ForceFallbackAdapter),
		presenter.WithClearColor(float64(bg.R)/255, float64(bg.G)/255, float64(bg.B)/255),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("create presenter: %w", err)
	}

	e := engine.NewEngine(
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithPresenter(pres),
		engine.WithController(controller),
		engine.WithScheduler(playback.NewScheduler(controller,
			playback.WithFrameRates(cfg.Engine.FullFrameRate, cfg.Engine.ReducedFrameRate),
		)),
		engine.WithRenderer(renderer.NewRenderer(
			renderer.WithLogger(logger),
			renderer.WithDrawingWindow(cfg.Render.DrawingWindow),
			renderer.WithColors(cfg.Colors()),
			renderer.WithLineWidth(cfg.Render.LineWidth),
			renderer.WithMarkerRadius(cfg.Render.MarkerRadius),
			renderer.WithFontSize(cfg.Render.FontSize),
			renderer.WithContextualOpacity(cfg.Render.ContextualOpacity),
			renderer.WithNearBlackLuminance(cfg.Render.NearBlackLuminance),
		)),
		engine.WithViewport(viewport.NewViewport(
			viewport.WithSize(win.Width(), win.Height()),
			viewport.WithZoomBounds(cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom),
			viewport.WithZoomSpeed(cfg.Viewport.ZoomSpeed),
			viewport.WithSmoothing(cfg.Viewport.Smoothing, cfg.Viewport.TouchSmoothing),
			viewport.WithTouch(cfg.Viewport.Touch),
			viewport.WithSmallScreen(cfg.Viewport.SmallScreenPx),
		)),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithTitle(cfg.Window.Title),
	)
	eng.Store(&e)

	if _, err := controller.Submit(ctx, prompt); err != nil {
		return fmt.Errorf("submit %q: %w", prompt, err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.Quit()
		case <-done:
		}
	}()

	started := time.Now()
	e.Run()
	close(done)
	t := controller.Telemetry()
	logger.Info("player closed",
		"component", "cli",
		"status", t.Status,
		"step", t.StepIndex,
		"steps", t.StepCount,
		"elapsed", time.Since(started).Round(time.Second),
	)
	return nil
}

// newPlayer opens the speaker when audio is enabled. A silent clock keeps narration timing
// when the device cannot be opened.
func newPlayer(cfg *config.Config, logger *slog.Logger) audio.Player {
	if !cfg.Audio.Enabled {
		return audio.NewClockPlayer(time.Now)
	}
	p, err := audio.NewOtoPlayer(cfg.Audio.SampleRate, cfg.Audio.Channels, logger)
	if err != nil {
		logger.Warn("audio output unavailable, playing silently", "component", "cli", "error", err)
		return audio.NewClockPlayer(time.Now)
	}
	return p
}
