package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/geometry"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/provider"
)

// Controller owns playback of one plan at a time: which step is on the board, how far it has
// been drawn, and the narration that paces it. Commands may be called from any goroutine; Tick
// is called once per rendered frame.
type Controller interface {
	// Submit asks the planner for a plan and plays it once it arrives. Any playback in progress
	// is stopped.
	//
	// Parameters:
	//   - ctx: bounds plan and narration generation
	//   - prompt: the user's question
	//
	// Returns:
	//   - string: the submission id reported in Telemetry
	//   - error: ErrNoPlanner when no planner is configured
	Submit(ctx context.Context, prompt string) (string, error)

	// Load resolves p and starts playing it with narration n. n may be empty.
	//
	// Parameters:
	//   - p: the plan as produced by a planner
	//   - n: the narration
	//
	// Returns:
	//   - error: ErrNoPlan when p has no steps
	Load(p *plan.WhiteboardPlan, n audio.Narration) error

	// Repeat restarts the current plan from its first step, reusing decoded narration.
	//
	// Returns:
	//   - error: ErrNoPlan when nothing has been loaded
	Repeat() error

	// TogglePause pauses or resumes drawing. It does nothing unless a plan is playing.
	//
	// Returns:
	//   - bool: true if playback is now paused
	TogglePause() bool

	// ToggleMute silences or restores narration without affecting pacing.
	//
	// Returns:
	//   - bool: true if narration is now muted
	ToggleMute() bool

	// RequestFocus asks the viewport to recenter on the current focal point.
	RequestFocus()

	// Tick advances playback to now and returns the resulting state.
	//
	// Parameters:
	//   - now: the frame time
	//
	// Returns:
	//   - State: the state to render
	Tick(now time.Time) State

	// State returns the current state without advancing.
	State() State

	// Plan returns the resolved plan being played, or nil.
	Plan() *plan.WhiteboardPlan

	// Warnings returns the geometry warnings produced when the current plan was resolved.
	Warnings() []geometry.Warning

	// Telemetry returns the host UI view of playback.
	Telemetry() Telemetry

	// Close stops playback and releases background work.
	Close()
}

type phase int

const (
	phaseIdle phase = iota
	phaseAwait
	phasePlaying
	phaseBreathing
)

type awaitResult struct {
	asset *audio.Asset
	err   error
}

type controller struct {
	mu     *sync.Mutex
	logger *slog.Logger
	clock  func() time.Time
	wake   func()

	planner      provider.Planner
	narrator     provider.Narrator
	pipeline     audio.Pipeline
	player       audio.Player
	awaitTimeout time.Duration
	breathing    time.Duration

	rootCtx      context.Context
	rootCancel   context.CancelFunc
	submitCancel context.CancelFunc
	submissionID string

	plan     *plan.WhiteboardPlan
	warnings []geometry.Warning
	slots    audio.Slots

	status         Status
	message        string
	epoch          int
	idx            int
	phase          phase
	progress       float64
	pausedProgress float64
	paused         bool
	muted          bool
	focus          bool

	// gen invalidates in-flight audio waits whenever the step changes or playback pauses.
	gen         int
	awaitCancel context.CancelFunc
	pending     *awaitResult

	asset       *audio.Asset
	duration    time.Duration
	base        time.Duration
	resumedAt   time.Time
	breathUntil time.Time
	breathLeft  time.Duration
}

var _ Controller = &controller{}

// NewController creates a Controller.
//
// Parameters:
//   - options: variadic list of ControllerBuilderOption functions
//
// Returns:
//   - Controller: the new controller in the IDLE state
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:           &sync.Mutex{},
		logger:       slog.Default(),
		clock:        time.Now,
		awaitTimeout: audio.DefaultAwaitTimeout,
		breathing:    DefaultBreathing,
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With("component", "playback")
	if c.pipeline == nil {
		c.pipeline = audio.NewPipeline(audio.WithLogger(c.logger))
	}
	if c.player == nil {
		c.player = audio.NewClockPlayer(c.clock)
	}
	c.rootCtx, c.rootCancel = context.WithCancel(context.Background())
	return c
}

func (c *controller) notify() {
	if c.wake != nil {
		c.wake()
	}
}

func (c *controller) Submit(ctx context.Context, prompt string) (string, error) {
	if c.planner == nil {
		return "", ErrNoPlanner
	}
	id := uuid.NewString()

	c.mu.Lock()
	if c.submitCancel != nil {
		c.submitCancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	c.submitCancel = cancel
	c.submissionID = id
	c.stopLocked()
	c.status = StatusThinking
	c.message = ""
	c.mu.Unlock()

	c.logger.Info("submission started", "id", id, "prompt", prompt)
	c.notify()
	go c.runSubmission(sctx, id, prompt)
	return id, nil
}

func (c *controller) runSubmission(ctx context.Context, id, prompt string) {
	p, err := c.planner.Plan(ctx, prompt)
	if ctx.Err() != nil {
		return
	}
	if err == nil && p.Len() == 0 {
		err = ErrNoPlan
	}
	if err != nil {
		c.fail(id, fmt.Errorf("plan generation failed: %w", err))
		return
	}

	c.mu.Lock()
	if id != c.submissionID {
		c.mu.Unlock()
		return
	}
	c.status = StatusPreparing
	c.message = "Preparing audio"
	c.mu.Unlock()
	c.notify()

	var n audio.Narration
	if c.narrator != nil {
		n, err = c.narrator.Narrate(ctx, p)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Warn("narration unavailable, playing without audio", "id", id, "error", err)
			n = audio.Narration{}
		}
	}
	if err := c.load(p, n, id); err != nil {
		c.fail(id, err)
	}
}

func (c *controller) fail(id string, err error) {
	c.mu.Lock()
	if id != c.submissionID {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	c.status = StatusError
	c.message = err.Error()
	c.mu.Unlock()
	c.logger.Error("submission failed", "id", id, "error", err)
	c.notify()
}

func (c *controller) Load(p *plan.WhiteboardPlan, n audio.Narration) error {
	c.mu.Lock()
	if c.submitCancel != nil {
		c.submitCancel()
		c.submitCancel = nil
	}
	id := uuid.NewString()
	c.submissionID = id
	c.mu.Unlock()
	return c.load(p, n, id)
}

func (c *controller) load(p *plan.WhiteboardPlan, n audio.Narration, id string) error {
	if p.Len() == 0 {
		return ErrNoPlan
	}
	resolved, warnings := geometry.Resolve(p)
	for _, w := range warnings {
		c.logger.Warn("geometry", "warning", w.String())
	}

	c.mu.Lock()
	if id != c.submissionID {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded plan", "id", id)
		return nil
	}
	// the previous plan's queued decodes would only delay this one
	c.pipeline.Cancel()
	slots := c.pipeline.Load(resolved.Len(), n)
	c.stopLocked()
	c.plan = resolved
	c.warnings = warnings
	c.slots = slots
	c.restartLocked()
	c.mu.Unlock()

	c.logger.Info("plan loaded", "id", id, "steps", resolved.Len(), "narrated", !n.Empty())
	c.notify()
	return nil
}

func (c *controller) Repeat() error {
	c.mu.Lock()
	if c.plan == nil || c.status == StatusThinking {
		c.mu.Unlock()
		return ErrNoPlan
	}
	c.stopLocked()
	c.restartLocked()
	c.mu.Unlock()
	c.logger.Info("repeat")
	c.notify()
	return nil
}

// restartLocked begins the loaded plan from its first step.
func (c *controller) restartLocked() {
	c.epoch++
	c.idx = 0
	c.progress = 0
	c.pausedProgress = 0
	c.paused = false
	c.status = StatusDrawing
	c.message = ""
	c.startAwaitLocked()
}

// stopLocked cancels waits and silences narration.
func (c *controller) stopLocked() {
	c.cancelAwaitLocked()
	c.gen++
	c.pending = nil
	c.player.Stop()
	c.asset = nil
	c.paused = false
	c.phase = phaseIdle
}

func (c *controller) cancelAwaitLocked() {
	if c.awaitCancel != nil {
		c.awaitCancel()
		c.awaitCancel = nil
	}
}

// startAwaitLocked begins waiting for the current step's narration. Narration that is already
// decoded, or known to be absent, is picked up on the next tick without a goroutine.
func (c *controller) startAwaitLocked() {
	c.cancelAwaitLocked()
	c.gen++
	c.phase = phaseAwait
	c.pending = nil
	c.duration = HeuristicDuration(&c.plan.Steps[c.idx])

	step, gen, slots := c.idx, c.gen, c.slots
	if slots == nil {
		c.pending = &awaitResult{err: audio.ErrSlotAbsent}
		return
	}
	select {
	case <-slots.Ready(step):
		a, err := slots.Await(c.rootCtx, step, 0)
		c.pending = &awaitResult{asset: a, err: err}
		return
	default:
	}

	if step == 0 {
		c.status = StatusPreparing
	}
	c.message = "Preparing audio"
	ctx, cancel := context.WithCancel(c.rootCtx)
	c.awaitCancel = cancel
	timeout := c.awaitTimeout
	go func() {
		a, err := slots.Await(ctx, step, timeout)
		if errors.Is(err, context.Canceled) {
			return
		}
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.pending = &awaitResult{asset: a, err: err}
		c.mu.Unlock()
		c.notify()
	}()
}

func (c *controller) Tick(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if (c.status == StatusDrawing || c.status == StatusPreparing) && !c.paused {
		// a frame can cross at most await -> playing -> breathing -> next step
		for i := 0; i < 4; i++ {
			if !c.advanceLocked(now) {
				break
			}
		}
	}
	s := c.stateLocked()
	c.focus = false
	return s
}

// advanceLocked moves the step loop forward and reports whether the phase changed.
func (c *controller) advanceLocked(now time.Time) bool {
	switch c.phase {
	case phaseAwait:
		if c.pending == nil {
			return false
		}
		res := c.pending
		c.pending = nil
		c.beginStepLocked(res, now)
		return true
	case phasePlaying:
		c.progress = max(c.progress, c.measureLocked(now))
		if c.progress < 1 {
			return false
		}
		c.progress = 1
		c.phase = phaseBreathing
		c.breathUntil = now.Add(c.breathing)
		return true
	case phaseBreathing:
		if now.Before(c.breathUntil) {
			return false
		}
		c.nextStepLocked()
		return true
	}
	return false
}

func (c *controller) beginStepLocked(res *awaitResult, now time.Time) {
	c.cancelAwaitLocked()
	c.asset = nil
	c.duration = HeuristicDuration(&c.plan.Steps[c.idx])
	switch {
	case res.err == nil && res.asset.Duration() > 0:
		if err := c.player.Play(res.asset, 0); err != nil {
			c.logger.Warn("narration playback failed", "step", c.idx, "error", err)
			break
		}
		c.asset = res.asset
		c.duration = seconds(res.asset.Duration())
	case errors.Is(res.err, audio.ErrAudioTimeout):
		c.logger.Warn("narration not ready, drawing without audio", "step", c.idx)
	case res.err != nil && !errors.Is(res.err, audio.ErrSlotAbsent):
		c.logger.Warn("narration unavailable", "step", c.idx, "error", res.err)
	}
	c.base = 0
	c.resumedAt = now
	c.progress = 0
	c.phase = phasePlaying
	c.status = StatusDrawing
	c.message = ""
	c.logger.Debug("step started", "step", c.idx, "duration", c.duration, "narrated", c.asset != nil)
}

func (c *controller) nextStepLocked() {
	c.player.Stop()
	c.asset = nil
	if c.idx+1 >= c.plan.Len() {
		c.phase = phaseIdle
		c.progress = 1
		c.status = StatusDone
		c.logger.Info("playback complete", "steps", c.plan.Len())
		return
	}
	c.idx++
	c.progress = 0
	c.startAwaitLocked()
}

// measureLocked returns the current step's progress from the narration clock when narration is
// playing, and from the wall clock otherwise.
func (c *controller) measureLocked(now time.Time) float64 {
	if c.duration <= 0 {
		return 1
	}
	wall := c.base + now.Sub(c.resumedAt)
	elapsed := wall
	if c.asset != nil {
		elapsed = seconds(c.player.Position())
		if !c.player.Playing() {
			// output stalled or ended; never wait longer than the wall clock says
			elapsed = max(elapsed, wall)
		}
	}
	return common.Clamp01(float64(elapsed) / float64(c.duration))
}

func (c *controller) TogglePause() bool {
	c.mu.Lock()
	if c.status != StatusDrawing && c.status != StatusPreparing {
		paused := c.paused
		c.mu.Unlock()
		return paused
	}
	now := c.clock()
	if c.paused {
		c.resumeLocked(now)
	} else {
		c.pauseLocked(now)
	}
	paused := c.paused
	c.mu.Unlock()
	c.notify()
	return paused
}

func (c *controller) pauseLocked(now time.Time) {
	c.paused = true
	switch c.phase {
	case phasePlaying:
		if c.asset != nil {
			off := seconds(c.player.Pause())
			c.progress = max(c.progress, common.Clamp01(float64(off)/float64(c.duration)))
		} else {
			c.progress = max(c.progress, c.measureLocked(now))
		}
		c.pausedProgress = c.progress
	case phaseBreathing:
		c.breathLeft = max(c.breathUntil.Sub(now), 0)
		c.pausedProgress = 1
	case phaseAwait:
		c.cancelAwaitLocked()
		c.gen++
		c.pending = nil
		c.pausedProgress = 0
	}
	c.logger.Debug("paused", "step", c.idx, "progress", c.pausedProgress)
}

func (c *controller) resumeLocked(now time.Time) {
	c.paused = false
	switch c.phase {
	case phasePlaying:
		offset := time.Duration(c.pausedProgress * float64(c.duration))
		c.base = offset
		c.resumedAt = now
		if c.asset != nil {
			if err := c.player.Play(c.asset, offset.Seconds()); err != nil {
				c.logger.Warn("narration resume failed", "step", c.idx, "error", err)
				c.asset = nil
			}
		}
	case phaseBreathing:
		c.breathUntil = now.Add(c.breathLeft)
	case phaseAwait:
		c.startAwaitLocked()
	}
	c.logger.Debug("resumed", "step", c.idx, "progress", c.pausedProgress)
}

func (c *controller) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	c.player.SetMuted(c.muted)
	return c.muted
}

func (c *controller) RequestFocus() {
	c.mu.Lock()
	c.focus = true
	c.mu.Unlock()
	c.notify()
}

func (c *controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *controller) stateLocked() State {
	return State{
		Status:           c.status,
		CurrentStepIndex: c.idx,
		StepCount:        c.plan.Len(),
		StepProgress:     c.progress,
		StepDuration:     c.duration,
		PausedProgress:   c.pausedProgress,
		IsPaused:         c.paused,
		IsMuted:          c.muted,
		Epoch:            c.epoch,
		FocusRequested:   c.focus,
		Message:          c.message,
	}
}

func (c *controller) Plan() *plan.WhiteboardPlan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan
}

func (c *controller) Warnings() []geometry.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

func (c *controller) Telemetry() Telemetry {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stateLocked()
	t := Telemetry{
		SubmissionID:    c.submissionID,
		Status:          s.Status.Title(),
		StepIndex:       s.CurrentStepIndex,
		StepCount:       s.StepCount,
		StepProgress:    s.StepProgress,
		OverallProgress: s.OverallProgress(),
		Message:         s.Message,
		Paused:          s.IsPaused,
		Muted:           s.IsMuted,
	}
	if c.plan != nil && c.idx < c.plan.Len() && c.status != StatusThinking {
		t.Explanation = c.plan.Steps[c.idx].Explanation
	}
	return t
}

func (c *controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitCancel != nil {
		c.submitCancel()
		c.submitCancel = nil
	}
	c.stopLocked()
	c.rootCancel()
	c.pipeline.Close()
	c.logger.Debug("closed")
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
