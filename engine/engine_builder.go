package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
	"github.com/Carmen-Shannon/whiteboard-go/engine/presenter"
	"github.com/Carmen-Shannon/whiteboard-go/engine/profiler"
	"github.com/Carmen-Shannon/whiteboard-go/engine/renderer"
	"github.com/Carmen-Shannon/whiteboard-go/engine/viewport"
	"github.com/Carmen-Shannon/whiteboard-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger used by the engine and the components it creates.
//
// Parameters:
//   - logger: the slog logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets a preconfigured profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (30Hz).
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 30
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine reads input from and presents into.
// Without a window the engine runs headless until Quit.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithPresenter sets the presenter that puts each painted frame on screen.
func WithPresenter(p presenter.Presenter) EngineBuilderOption {
	return func(e *engine) {
		e.presenter = p
	}
}

// WithController sets the playback controller. Required.
func WithController(c playback.Controller) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithScheduler sets the frame scheduler. It must wrap the engine's controller.
func WithScheduler(s playback.Scheduler) EngineBuilderOption {
	return func(e *engine) {
		e.scheduler = s
	}
}

// WithRenderer sets the progressive renderer.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithViewport sets the camera.
func WithViewport(v viewport.Viewport) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = v
	}
}

// WithCanvas sets the raster the board is painted into.
func WithCanvas(c canvas.Raster) EngineBuilderOption {
	return func(e *engine) {
		e.raster = c
	}
}

// WithClock sets the time source used for playback frames.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithTitle sets the base window title; playback status is appended to it.
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}

// WithFrameRateFunc overrides the scheduler as the source of the render frame rate.
//
// Parameters:
//   - fn: returns the frames per second for the next frame, zero to sleep until woken
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRateFunc(fn func() int) EngineBuilderOption {
	return func(e *engine) {
		e.frameRateFunc = fn
	}
}
