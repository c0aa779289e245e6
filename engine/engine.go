package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
	"github.com/Carmen-Shannon/whiteboard-go/engine/presenter"
	"github.com/Carmen-Shannon/whiteboard-go/engine/profiler"
	"github.com/Carmen-Shannon/whiteboard-go/engine/renderer"
	"github.com/Carmen-Shannon/whiteboard-go/engine/viewport"
	"github.com/Carmen-Shannon/whiteboard-go/engine/window"
)

// keyPanPixels is how far one arrow key press moves the camera, in screen pixels.
const keyPanPixels = 80

// engine implements the Engine interface.
// Coordinates the tick, render and window threads around one playback controller.
type engine struct {
	mu     *sync.Mutex
	logger *slog.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	wakeChannel     chan struct{}      // Wakes a sleeping render loop

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	presenter presenter.Presenter

	controller playback.Controller
	scheduler  playback.Scheduler
	renderer   renderer.Renderer
	viewport   viewport.Viewport
	raster     canvas.Raster

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	frameRateFunc  func() int
	clock          func() time.Time

	title     string
	lastTitle string

	// pending framebuffer size from the window thread, applied by the render loop
	pendingWidth, pendingHeight int

	// render loop state
	start        time.Time
	lastFrame    time.Time
	epoch        int
	hasEpoch     bool
	loading      bool
	loadingSince time.Time
}

// Engine is the main entry point for the whiteboard.
// It orchestrates the tick loop, the adaptive render loop and window input.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Controller returns the playback controller driving the board.
	Controller() playback.Controller

	// Scheduler returns the frame scheduler wrapping the controller.
	Scheduler() playback.Scheduler

	// Renderer returns the progressive renderer.
	Renderer() renderer.Renderer

	// Viewport returns the camera.
	Viewport() viewport.Viewport

	// Canvas returns the raster the board is painted into.
	Canvas() canvas.Raster

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetFrameRateFunc replaces the source of the render frame rate, which is re-read after every
	// frame. Zero means sleep until Wake. By default the scheduler decides.
	//
	// Parameters:
	//   - fn: returns the frames per second for the next frame
	SetFrameRateFunc(fn func() int)

	// FrameRate returns the frame rate the render loop will use next.
	FrameRate() int

	// Wake makes a sleeping render loop draw a frame now. Safe to call from any goroutine.
	Wake()

	// HandleKey applies the keyboard binding for keyCode.
	//
	// Parameters:
	//   - keyCode: a common.Key* code
	//
	// Returns:
	//   - bool: true if the key is bound
	HandleKey(keyCode uint32) bool

	// RenderFrame advances playback to now and paints one frame, presenting it when a presenter
	// is attached.
	//
	// Parameters:
	//   - now: the frame time
	//
	// Returns:
	//   - playback.State: the state that was painted
	RenderFrame(now time.Time) playback.State

	// Run starts the engine loops and blocks until the window closes or Quit is called.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine around a playback controller.
// Components not supplied through options are created with defaults sized to the window.
//
// Parameters:
//   - options: functional options for engine configuration; WithController is required
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		logger:          slog.Default(),
		tickRateChannel: make(chan time.Duration, 1),
		wakeChannel:     make(chan struct{}, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		engineTickRate:  time.Second / 30,
		clock:           time.Now,
		title:           "Whiteboard",
	}

	for _, opt := range options {
		opt(e)
	}

	if e.controller == nil {
		panic("engine: a playback controller is required")
	}
	e.logger = e.logger.With("component", "engine")
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	width, height := 1280, 720
	if e.window != nil {
		width, height = e.window.Width(), e.window.Height()
	} else if e.raster != nil {
		width, height = e.raster.Size()
	}
	if e.raster == nil {
		e.raster = canvas.NewRaster(width, height)
	}
	if e.viewport == nil {
		e.viewport = viewport.NewViewport(viewport.WithSize(width, height))
	}
	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(renderer.WithLogger(e.logger))
	}
	if e.scheduler == nil {
		e.scheduler = playback.NewScheduler(e.controller)
	}
	e.start = e.clock()

	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow routes window input to the viewport, the controller and the scheduler.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		e.pendingWidth, e.pendingHeight = width, height
		e.mu.Unlock()
		if e.presenter != nil {
			e.presenter.Resize(width, height)
		}
		e.Wake()
	})
	e.window.SetScrollCallback(func(x, y float64, delta float32) {
		e.viewport.ZoomAt(common.V2(x, y), float64(delta))
		e.Wake()
	})
	e.window.SetDragStartCallback(func(x, y int32) {
		e.viewport.BeginPan(common.V2(float64(x), float64(y)))
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		if e.viewport.Panning() {
			e.viewport.PanTo(common.V2(float64(x), float64(y)))
			e.Wake()
		}
	})
	e.window.SetDragEndCallback(func(x, y int32) {
		e.viewport.EndPan()
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.HandleKey(keyCode)
	})
	e.window.SetIconifyCallback(func(iconified bool) {
		e.scheduler.SetVisible(!iconified)
		e.Wake()
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Controller() playback.Controller {
	return e.controller
}

func (e *engine) Scheduler() playback.Scheduler {
	return e.scheduler
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Viewport() viewport.Viewport {
	return e.viewport
}

func (e *engine) Canvas() canvas.Raster {
	return e.raster
}

func (e *engine) Run() {
	e.scheduler.Start()
	e.running.Store(true)
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.wg.Wait()
	e.scheduler.Stop()

	if e.presenter != nil {
		e.presenter.Release()
	}
	if e.window != nil && e.window.IsRunning() {
		if err := e.window.Close(); err != nil {
			e.logger.Warn("close window", "error", err)
		}
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	wasRunning := e.running.Load()
	e.signalQuit()
	if wasRunning && e.window != nil {
		e.window.RequestClose()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

func (e *engine) Wake() {
	select {
	case e.wakeChannel <- struct{}{}:
	default:
	}
}

// handle launches the engine and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Keeps the window title in sync with playback and fires the tick callback. Listens for dynamic
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.updateTitle()
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the adaptive render loop in its own goroutine.
// After each frame the loop sleeps for the remainder of 1/FrameRate, or until woken when the
// rate is zero. Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastRender).Seconds())
		lastRender = frameStart

		e.RenderFrame(e.clock())

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}
		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}

		if !e.waitNextFrame(e.FrameRate(), frameStart) {
			return
		}
	}
}

// waitNextFrame sleeps until the next frame is due. It returns false when the engine is quitting.
func (e *engine) waitNextFrame(rate int, frameStart time.Time) bool {
	if rate <= 0 {
		select {
		case <-e.quitChannel:
			return false
		case <-e.wakeChannel:
			return true
		}
	}

	remaining := time.Second/time.Duration(rate) - time.Since(frameStart)
	if remaining <= 0 {
		return true
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-e.quitChannel:
		return false
	case <-timer.C:
	case <-e.wakeChannel:
	}
	return true
}

func (e *engine) FrameRate() int {
	if e.frameRateFunc != nil {
		return e.frameRateFunc()
	}
	return e.scheduler.FrameRate()
}

func (e *engine) RenderFrame(now time.Time) playback.State {
	e.applyPendingSize()

	st, _ := e.scheduler.Tick(now)
	dt := 0.0
	if !e.lastFrame.IsZero() {
		dt = max(now.Sub(e.lastFrame).Seconds(), 0)
	}
	e.lastFrame = now
	motion := now.Sub(e.start).Seconds()

	e.syncPlan(st)

	view := e.viewport.Transform()
	tip := renderer.PenTip{}
	switch {
	case st.Status.Loading():
		if !e.loading {
			e.loading = true
			e.loadingSince = now
		}
		e.renderer.DrawLoading(e.raster, now.Sub(e.loadingSince).Seconds(), st.Message)
	case st.Status == playback.StatusDone:
		e.renderer.DrawComplete(e.raster, view, motion)
	case st.Status == playback.StatusDrawing:
		tip = e.renderer.Draw(e.raster, view, renderer.Frame{
			StepIndex:    st.CurrentStepIndex,
			Elapsed:      st.Elapsed().Seconds(),
			StepDuration: st.StepDuration.Seconds(),
			Now:          motion,
		})
	default:
		e.renderer.Draw(e.raster, view, renderer.Frame{StepIndex: -1})
	}
	if !st.Status.Loading() {
		e.loading = false
	}

	e.track(st, tip, dt)

	if e.presenter != nil {
		if err := e.presenter.Present(e.raster.Pixels()); err != nil {
			e.logger.Debug("present frame", "error", err)
		}
	}
	return st
}

// applyPendingSize resizes the raster and viewport to the last framebuffer size from the window.
func (e *engine) applyPendingSize() {
	e.mu.Lock()
	width, height := e.pendingWidth, e.pendingHeight
	e.pendingWidth, e.pendingHeight = 0, 0
	e.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	e.raster.Resize(width, height)
	e.viewport.SetSize(width, height)
}

// syncPlan hands a newly loaded plan to the renderer, or resets its motion state on repeat.
func (e *engine) syncPlan(st playback.State) {
	p := e.controller.Plan()
	switch {
	case p != e.renderer.Plan():
		e.renderer.SetPlan(p)
		e.viewport.Reset()
		if p.Len() > 0 {
			e.viewport.Focus(viewport.Focal{Point: p.Steps[0].Origin})
		}
	case e.hasEpoch && st.Epoch != e.epoch:
		e.renderer.Reset()
		if p.Len() > 0 {
			e.viewport.Focus(viewport.Focal{Point: p.Steps[0].Origin})
		}
	}
	e.epoch, e.hasEpoch = st.Epoch, true
}

// track moves the camera toward the pen, or recenters it when focus was requested.
func (e *engine) track(st playback.State, tip renderer.PenTip, dt float64) {
	p := e.renderer.Plan()
	if st.CurrentStepIndex < 0 || st.CurrentStepIndex >= p.Len() {
		return
	}
	point := tip.Point
	if st.Status != playback.StatusDrawing {
		point = p.Steps[st.CurrentStepIndex].Origin
	}
	focal := viewport.Focal{Point: point, Step: st.CurrentStepIndex}
	switch {
	case st.FocusRequested:
		e.viewport.Focus(focal)
	case st.Status == playback.StatusDrawing:
		e.viewport.Update(dt, focal)
	}
}

func (e *engine) HandleKey(keyCode uint32) bool {
	switch keyCode {
	case common.KeySpace:
		paused := e.controller.TogglePause()
		e.logger.Debug("toggle pause", "paused", paused)
	case common.KeyM:
		muted := e.controller.ToggleMute()
		e.logger.Debug("toggle mute", "muted", muted)
	case common.KeyR:
		if err := e.controller.Repeat(); err != nil {
			e.logger.Debug("repeat ignored", "error", err)
		}
	case common.KeyF:
		e.controller.RequestFocus()
	case common.KeyEqual, common.KeyMinus:
		width, height := e.viewport.Size()
		delta := 1.0
		if keyCode == common.KeyMinus {
			delta = -1
		}
		e.viewport.ZoomAt(common.V2(float64(width)/2, float64(height)/2), delta)
	case common.KeyLeft, common.KeyRight, common.KeyUp, common.KeyDown:
		e.nudge(keyCode)
	case common.KeyEsc:
		e.Quit()
		return true
	default:
		return false
	}
	e.Wake()
	return true
}

// nudge pans the camera by keyPanPixels in the direction of an arrow key. It is ignored while a
// mouse drag is in progress.
func (e *engine) nudge(keyCode uint32) {
	if e.viewport.Panning() {
		return
	}
	var dir common.Vec2
	switch keyCode {
	case common.KeyLeft:
		dir = common.V2(-1, 0)
	case common.KeyRight:
		dir = common.V2(1, 0)
	case common.KeyUp:
		dir = common.V2(0, -1)
	case common.KeyDown:
		dir = common.V2(0, 1)
	}
	width, height := e.viewport.Size()
	start := common.V2(float64(width)/2, float64(height)/2)
	e.viewport.BeginPan(start)
	e.viewport.PanTo(start.Sub(dir.Scale(keyPanPixels)))
	e.viewport.EndPan()
}

// updateTitle mirrors playback status into the window title.
func (e *engine) updateTitle() {
	if e.window == nil {
		return
	}
	title := e.statusTitle()
	if title == e.lastTitle {
		return
	}
	e.lastTitle = title
	e.window.SetTitle(title)
}

func (e *engine) statusTitle() string {
	tel := e.controller.Telemetry()
	title := fmt.Sprintf("%s - %s", e.title, tel.Status)
	if tel.StepCount > 0 {
		title += fmt.Sprintf(" %d/%d", tel.StepIndex+1, tel.StepCount)
	}
	if tel.Paused {
		title += " (paused)"
	}
	if tel.Muted {
		title += " (muted)"
	}
	return title
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetFrameRateFunc(fn func() int) {
	e.frameRateFunc = fn
}
