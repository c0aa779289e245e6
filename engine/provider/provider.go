// Package provider defines the collaborators that produce plans and narration, and file-backed
// implementations of them for offline playback.
package provider

import (
	"context"
	"errors"

	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

var (
	// ErrPlanNotFound is returned when a planner has no plan for a prompt.
	ErrPlanNotFound = errors.New("no plan for prompt")
	// ErrNoNarration is returned when a narrator has nothing for a plan.
	ErrNoNarration = errors.New("no narration for plan")
)

// Planner turns a prompt into a whiteboard plan.
type Planner interface {
	// Plan produces the plan for prompt.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - prompt: the user's question
	//
	// Returns:
	//   - *plan.WhiteboardPlan: the plan, not yet resolved
	//   - error: an error if no plan could be produced
	Plan(ctx context.Context, prompt string) (*plan.WhiteboardPlan, error)
}

// Narrator produces spoken narration for a plan.
type Narrator interface {
	// Narrate produces the narration for p.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - p: the plan being narrated
	//
	// Returns:
	//   - audio.Narration: per-step clips or one split clip
	//   - error: an error if narration is unavailable; playback continues without audio
	Narrate(ctx context.Context, p *plan.WhiteboardPlan) (audio.Narration, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(ctx context.Context, prompt string) (*plan.WhiteboardPlan, error)

func (f PlannerFunc) Plan(ctx context.Context, prompt string) (*plan.WhiteboardPlan, error) {
	return f(ctx, prompt)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(ctx context.Context, p *plan.WhiteboardPlan) (audio.Narration, error)

func (f NarratorFunc) Narrate(ctx context.Context, p *plan.WhiteboardPlan) (audio.Narration, error) {
	return f(ctx, p)
}
