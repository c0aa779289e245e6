package physics

import (
	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// WorldBuilderOption is a functional option for configuring a World.
type WorldBuilderOption func(*world)

// WithGravity sets the gravity vector in board units per second squared.
//
// Parameters:
//   - g: the gravity vector
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithGravity(g common.Vec2) WorldBuilderOption {
	return func(w *world) {
		w.gravity = g
	}
}

// WithIterations sets the number of constraint relaxation passes per sub-step.
// Values <= 0 keep the default.
func WithIterations(n int) WorldBuilderOption {
	return func(w *world) {
		if n > 0 {
			w.iterations = n
		}
	}
}

// WithDamping sets the fraction of particle velocity lost per sub-step, clamped to [0, 1].
func WithDamping(d float64) WorldBuilderOption {
	return func(w *world) {
		w.damping = common.Clamp01(d)
	}
}

// WithBounds confines particles and bodies to an axis-aligned box.
//
// Parameters:
//   - b: the bounds in step-local coordinates; nil leaves the world unbounded
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithBounds(b *plan.Bounds) WorldBuilderOption {
	return func(w *world) {
		if b == nil {
			w.bounds = nil
			return
		}
		bb := *b
		w.bounds = &bb
	}
}

// WithSubstep sets the fixed integration step in seconds. Values <= 0 keep the default of 1/120s.
func WithSubstep(h float64) WorldBuilderOption {
	return func(w *world) {
		if h > 0 {
			w.substep = h
		}
	}
}

// WithConfig applies a step's physics configuration. A nil config keeps the defaults.
//
// Parameters:
//   - pc: the physics configuration from the plan
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithConfig(pc *plan.PhysicsConfig) WorldBuilderOption {
	return func(w *world) {
		if pc == nil {
			return
		}
		if pc.Gravity != (common.Vec2{}) {
			w.gravity = pc.Gravity
		}
		WithIterations(pc.Iterations)(w)
		if pc.Damping > 0 {
			WithDamping(pc.Damping)(w)
		}
		if pc.Bounds != nil {
			WithBounds(pc.Bounds)(w)
		}
	}
}
