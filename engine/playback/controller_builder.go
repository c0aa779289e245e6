package playback

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/provider"
)

// ControllerBuilderOption is a functional option applied to a controller during construction via NewController.
type ControllerBuilderOption func(*controller)

// WithLogger sets the logger used for playback diagnostics.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - ControllerBuilderOption: a function that applies the logger option to a controller
func WithLogger(logger *slog.Logger) ControllerBuilderOption {
	return func(c *controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlanner sets the collaborator Submit asks for plans.
//
// Parameters:
//   - p: the planner
//
// Returns:
//   - ControllerBuilderOption: a function that applies the planner option to a controller
func WithPlanner(p provider.Planner) ControllerBuilderOption {
	return func(c *controller) {
		c.planner = p
	}
}

// WithNarrator sets the collaborator Submit asks for narration. Without one, submitted plans play
// silently with estimated step durations.
//
// Parameters:
//   - n: the narrator
//
// Returns:
//   - ControllerBuilderOption: a function that applies the narrator option to a controller
func WithNarrator(n provider.Narrator) ControllerBuilderOption {
	return func(c *controller) {
		c.narrator = n
	}
}

// WithPipeline sets the audio pipeline that decodes narration. The default is a one-worker pipeline.
// The controller closes the pipeline when it is closed.
func WithPipeline(p audio.Pipeline) ControllerBuilderOption {
	return func(c *controller) {
		c.pipeline = p
	}
}

// WithPlayer sets the narration output. The default is a silent clock-driven player.
func WithPlayer(p audio.Player) ControllerBuilderOption {
	return func(c *controller) {
		c.player = p
	}
}

// WithClock sets the time source used by commands that do not carry a frame time.
func WithClock(now func() time.Time) ControllerBuilderOption {
	return func(c *controller) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithAwaitTimeout sets how long a step waits for narration before drawing without it.
func WithAwaitTimeout(d time.Duration) ControllerBuilderOption {
	return func(c *controller) {
		if d > 0 {
			c.awaitTimeout = d
		}
	}
}

// WithBreathing sets the hold between steps.
func WithBreathing(d time.Duration) ControllerBuilderOption {
	return func(c *controller) {
		if d >= 0 {
			c.breathing = d
		}
	}
}

// WithWakeFunc sets a function called whenever background work or a command changes the state, so
// an idle frame loop can resume.
func WithWakeFunc(fn func()) ControllerBuilderOption {
	return func(c *controller) {
		c.wake = fn
	}
}
