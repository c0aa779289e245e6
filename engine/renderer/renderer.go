// Package renderer paints a resolved whiteboard plan at an arbitrary instant of its playback.
//
// The renderer is stateless with respect to time except for two things that must persist across
// frames: the start time of each item's post-draw tween and the physics worlds seeded by steps.
// Both are cleared when the plan changes or playback is repeated.
package renderer

import (
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/physics"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/tween"
)

// Frame is the playback instant to paint.
type Frame struct {
	// StepIndex is the step currently being drawn.
	StepIndex int
	// Elapsed is the time in seconds since the step started, on the playback clock.
	Elapsed float64
	// StepDuration is the total duration of the current step in seconds.
	StepDuration float64
	// Now is a monotonic time in seconds used for post-draw motion and physics.
	Now float64
}

// FrameAt builds a Frame from a step progress fraction.
func FrameAt(step int, progress, stepDuration, now float64) Frame {
	return Frame{StepIndex: step, Elapsed: common.Clamp01(progress) * stepDuration, StepDuration: stepDuration, Now: now}
}

// PenTip is where the drawing activity of a frame is, in world coordinates.
type PenTip struct {
	Point common.Vec2
	// Active is true while a non-text item of the current step is partially drawn. When false
	// Point is the current step's origin.
	Active bool
}

// Renderer paints plan steps at fractional progress onto a canvas.
type Renderer interface {
	// SetPlan replaces the plan being drawn and clears all motion and physics state.
	// The plan must already be resolved.
	//
	// Parameters:
	//   - p: the resolved plan, or nil to draw an empty board
	SetPlan(p *plan.WhiteboardPlan)

	// Plan returns the plan being drawn.
	//
	// Returns:
	//   - *plan.WhiteboardPlan: the current plan, possibly nil
	Plan() *plan.WhiteboardPlan

	// Reset clears motion and physics state while keeping the plan, as used by repeat.
	Reset()

	// Draw paints the board for frame f: the background, every earlier step at full progress,
	// and the current step at its scheduled progress.
	//
	// Parameters:
	//   - c: the target canvas
	//   - view: the world to device transform supplied by the viewport
	//   - f: the playback instant
	//
	// Returns:
	//   - PenTip: the current drawing position for camera tracking
	Draw(c canvas.Canvas, view common.Affine, f Frame) PenTip

	// DrawComplete paints the whole plan at full progress, as it looks once playback is done.
	//
	// Parameters:
	//   - c: the target canvas
	//   - view: the world to device transform
	//   - now: the motion clock in seconds
	DrawComplete(c canvas.Canvas, view common.Affine, now float64)

	// DrawLoading paints the loading indicator shown while a plan or its audio is being produced.
	//
	// Parameters:
	//   - c: the target canvas
	//   - phase: seconds since loading began, drives the animation
	//   - message: optional status text drawn under the indicator
	DrawLoading(c canvas.Canvas, phase float64, message string)
}

type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	plan        *plan.WhiteboardPlan
	occurrences map[string][]int
	tweens      tween.Registry
	worlds      map[int]physics.World
	lastNow     float64
	hasNow      bool

	drawingWindow     float64
	background        common.Color
	foreground        common.Color
	highlight         common.Color
	lineWidth         float64
	haloWidth         float64
	markerRadius      float64
	fontSize          float64
	contextualOpacity float64
	nearBlack         float64
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:                &sync.Mutex{},
		logger:            slog.Default(),
		tweens:            tween.NewRegistry(),
		worlds:            make(map[int]physics.World),
		drawingWindow:     DefaultDrawingWindow,
		background:        common.ColorBoard,
		foreground:        common.ColorForeground,
		highlight:         common.ColorHighlight,
		lineWidth:         3,
		haloWidth:         4,
		markerRadius:      4,
		fontSize:          20,
		contextualOpacity: 0.45,
		nearBlack:         DefaultNearBlackLuminance,
	}
	for _, opt := range options {
		opt(r)
	}
	r.logger = r.logger.With("component", "renderer")
	return r
}

func (r *renderer) SetPlan(p *plan.WhiteboardPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = p
	r.occurrences = make(map[string][]int)
	for i := 0; i < p.Len(); i++ {
		for id := range p.Steps[i].ItemIDs() {
			r.occurrences[id] = append(r.occurrences[id], i)
		}
	}
	for _, idx := range r.occurrences {
		slices.Sort(idx)
	}
	r.resetLocked()
	r.logger.Debug("plan set", "steps", p.Len())
}

func (r *renderer) Plan() *plan.WhiteboardPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plan
}

func (r *renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *renderer) resetLocked() {
	r.tweens.Clear()
	clear(r.worlds)
	r.hasNow = false
}

func (r *renderer) Draw(c canvas.Canvas, view common.Affine, f Frame) PenTip {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Clear(r.background)
	if f.StepIndex < 0 || f.StepIndex >= r.plan.Len() {
		return PenTip{}
	}
	r.advancePhysics(f.Now)

	cur := f.StepIndex
	current := &r.plan.Steps[cur]
	start := r.plan.DiagramStart(cur)
	for j := 0; j < cur; j++ {
		r.drawLayer(c, view, j, cur, j >= start, f.Now)
	}

	tip := PenTip{Point: current.Origin}
	items := current.Items()
	timings := Schedule(items, f.StepDuration, r.drawingWindow)
	for i, it := range items {
		t := ItemProgress(f.Elapsed, timings[i])
		p, drawn := r.drawAt(c, view, cur, it, t, current.IsHighlighted(it.Common().ID), f.Now)
		if drawn && t > 0 && t < 1 && it.Kind() != plan.KindText {
			tip = PenTip{Point: current.Origin.Add(p), Active: true}
		}
	}
	return tip
}

func (r *renderer) DrawComplete(c canvas.Canvas, view common.Affine, now float64) {
	r.mu.Lock()
	n := r.plan.Len()
	r.mu.Unlock()
	if n == 0 {
		c.Clear(r.background)
		return
	}
	r.Draw(c, view, Frame{StepIndex: n - 1, Elapsed: math.MaxFloat64, StepDuration: 1, Now: now})
}

// drawLayer paints an earlier step at full progress. Items that reappear in a later step up to the
// current one are left to that step. Within the current diagram, when the current step lists
// retained labels, only those earlier text labels stay on the board.
func (r *renderer) drawLayer(c canvas.Canvas, view common.Affine, j, cur int, sameDiagram bool, now float64) {
	step := &r.plan.Steps[j]
	current := &r.plan.Steps[cur]
	for _, it := range step.Items() {
		id := it.Common().ID
		if r.superseded(id, j, cur) {
			continue
		}
		if sameDiagram && it.Kind() == plan.KindText && current.RetainedLabelIDs != nil &&
			!slices.Contains(current.RetainedLabelIDs, id) {
			continue
		}
		r.drawAt(c, view, j, it, 1, current.IsHighlighted(id), now)
	}
}

func (r *renderer) superseded(id string, j, cur int) bool {
	for _, k := range r.occurrences[id] {
		if k > j && k <= cur {
			return true
		}
	}
	return false
}

// drawAt paints one item of step si at progress t with the step's origin and the item's motion
// applied. It reports the local pen position and whether anything was drawn.
func (r *renderer) drawAt(c canvas.Canvas, view common.Affine, si int, it plan.Item, t float64, highlighted bool, now float64) (common.Vec2, bool) {
	contextual := false
	if txt, ok := it.(*plan.Text); ok && txt.IsContextual {
		contextual = true
	}
	if t <= 0 && !contextual {
		return common.Vec2{}, false
	}

	step := &r.plan.Steps[si]
	base := it.Common()
	st := style{
		stroke:    ResolveColor(base.Color, r.foreground, r.nearBlack),
		lineWidth: common.Coalesce(base.LineWidth, r.lineWidth),
	}

	var world physics.World
	if k := it.Kind(); k == plan.KindSoftBody || k == plan.KindRigidBody {
		world = r.world(si)
		if t >= 1 {
			r.activate(world, si, it)
		}
	}

	c.Save()
	defer c.Restore()
	c.SetTransform(view)
	c.Translate(step.Origin.X, step.Origin.Y)
	if t >= 1 && base.Animate != nil {
		r.tweens.Start(base.ID, now)
		if s := r.tweens.State(base.ID, base.Animate, now); !s.IsRest() {
			s.Apply(c, anchor(it))
		}
	}

	if highlighted && t >= 1 {
		halo := style{
			stroke:    r.highlight.WithAlpha(0.35),
			lineWidth: st.lineWidth + 2*r.haloWidth,
			halo:      true,
		}
		r.drawItem(c, it, 1, halo, world)
	}
	return r.drawItem(c, it, t, st, world), true
}

// world returns the physics world for step si, creating it empty on first use.
func (r *renderer) world(si int) physics.World {
	if w, ok := r.worlds[si]; ok {
		return w
	}
	w := physics.NewWorld(physics.WithConfig(r.plan.Steps[si].Physics))
	r.worlds[si] = w
	return w
}

// activate adds a fully drawn body to its step's world. Bodies still fading in are drawn at
// their seeded position and do not take part in the simulation.
func (r *renderer) activate(w physics.World, si int, it plan.Item) {
	switch v := it.(type) {
	case *plan.SoftBody:
		if _, ok := w.SoftBody(v.ID); !ok {
			w.AddSoftBody(v)
			r.logger.Debug("soft body activated", "step", si, "id", v.ID)
		}
	case *plan.RigidBody:
		if _, ok := w.RigidBody(v.ID); !ok {
			w.AddRigidBody(v)
			r.logger.Debug("rigid body activated", "step", si, "id", v.ID)
		}
	}
}

// advancePhysics steps every seeded world by the time since the previous frame.
func (r *renderer) advancePhysics(now float64) {
	if !r.hasNow {
		r.lastNow, r.hasNow = now, true
		return
	}
	dt := common.Clamp(now-r.lastNow, 0, 0.1)
	r.lastNow = now
	if dt == 0 {
		return
	}
	for _, w := range r.worlds {
		w.Step(dt)
	}
}
