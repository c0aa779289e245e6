package engine_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine"
	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/playback"
)

type fakeClock struct {
	mu *sync.Mutex
	t  time.Time
}

func newClock() *fakeClock { return &fakeClock{mu: &sync.Mutex{}, t: time.Unix(5000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func testPlan() *plan.WhiteboardPlan {
	return &plan.WhiteboardPlan{Steps: []plan.Step{
		{
			Origin:          common.V2(400, 300),
			Explanation:     "a circle on the board",
			DrawingCommands: []plan.Item{&plan.Circle{Base: plan.Base{ID: "c"}, Center: plan.Abs(0, 0), Radius: 40}},
		},
		{
			Origin:          common.V2(-600, 100),
			Explanation:     "a second diagram somewhere else",
			DrawingCommands: []plan.Item{&plan.Circle{Base: plan.Base{ID: "d"}, Center: plan.Abs(0, 0), Radius: 40}},
		},
	}}
}

func newTestEngine(t *testing.T) (engine.Engine, playback.Controller, *fakeClock) {
	t.Helper()
	clk := newClock()
	c := playback.NewController(
		playback.WithClock(clk.Now),
		playback.WithPlayer(audio.NewClockPlayer(clk.Now)),
		playback.WithBreathing(0),
	)
	t.Cleanup(c.Close)
	e := engine.NewEngine(
		engine.WithController(c),
		engine.WithCanvas(canvas.NewRaster(320, 240)),
		engine.WithClock(clk.Now),
	)
	e.Scheduler().Start()
	return e, c, clk
}

func TestNewEngineRequiresController(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic without a controller")
		}
	}()
	engine.NewEngine()
}

func TestRenderFrameHandsPlanToRenderer(t *testing.T) {
	e, c, clk := newTestEngine(t)

	if st := e.RenderFrame(clk.Now()); st.Status != playback.StatusIdle {
		t.Fatalf("unexpected status: got %v want %v", st.Status, playback.StatusIdle)
	}
	if e.Renderer().Plan() != nil {
		t.Fatalf("renderer should start without a plan")
	}

	if err := c.Load(testPlan(), audio.Narration{}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	st := e.RenderFrame(clk.Advance(500 * time.Millisecond))
	if st.Status != playback.StatusDrawing {
		t.Fatalf("unexpected status: got %v want %v", st.Status, playback.StatusDrawing)
	}
	if e.Renderer().Plan() != c.Plan() {
		t.Fatalf("renderer did not receive the loaded plan")
	}
	if w, h := e.Canvas().Size(); w != 320 || h != 240 {
		t.Fatalf("unexpected canvas size: got %dx%d", w, h)
	}
}

func TestCameraFollowsSteps(t *testing.T) {
	e, c, clk := newTestEngine(t)
	if err := c.Load(testPlan(), audio.Narration{}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	e.RenderFrame(clk.Now())
	if got := e.Viewport().Center(); got.Dist(common.V2(400, 300)) > 50 {
		t.Fatalf("camera should start on the first step, got %+v", got)
	}

	for i := 0; i < 200; i++ {
		st := e.RenderFrame(clk.Advance(100 * time.Millisecond))
		if st.CurrentStepIndex == 1 && st.StepProgress > 0.9 {
			break
		}
	}
	if got := e.Viewport().Center(); got.Dist(common.V2(-600, 100)) > 100 {
		t.Fatalf("camera should have followed the second step, got %+v", got)
	}
}

func TestHandleKeyBindings(t *testing.T) {
	e, c, clk := newTestEngine(t)
	if err := c.Load(testPlan(), audio.Narration{}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	e.RenderFrame(clk.Now())

	if !e.HandleKey(common.KeySpace) || !c.State().IsPaused {
		t.Fatalf("space should pause")
	}
	if !e.HandleKey(common.KeySpace) || c.State().IsPaused {
		t.Fatalf("space should resume")
	}
	if !e.HandleKey(common.KeyM) || !c.State().IsMuted {
		t.Fatalf("m should mute")
	}
	zoom := e.Viewport().Zoom()
	if !e.HandleKey(common.KeyEqual) || e.Viewport().Zoom() <= zoom {
		t.Fatalf("= should zoom in")
	}
	if e.HandleKey('Q') {
		t.Fatalf("q is not bound")
	}
	center := e.Viewport().Center()
	if !e.HandleKey(common.KeyRight) || e.Viewport().Center().X <= center.X {
		t.Fatalf("right arrow should move the camera right: got %v from %v", e.Viewport().Center(), center)
	}
	if e.Viewport().Tracking() {
		t.Fatalf("arrow keys should suspend tracking")
	}
}

func TestFocusKeyRecenters(t *testing.T) {
	e, c, clk := newTestEngine(t)
	if err := c.Load(testPlan(), audio.Narration{}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	e.RenderFrame(clk.Now())
	e.Viewport().BeginPan(common.V2(0, 0))
	e.Viewport().PanTo(common.V2(500, 500))
	e.Viewport().EndPan()

	e.HandleKey(common.KeyF)
	e.RenderFrame(clk.Advance(10 * time.Millisecond))
	if !e.Viewport().Tracking() {
		t.Fatalf("focus should resume tracking")
	}
	if got := e.Viewport().Center(); got.Dist(common.V2(400, 300)) > 50 {
		t.Fatalf("focus should recenter on the current step, got %+v", got)
	}
}

func TestFrameRate(t *testing.T) {
	e, c, _ := newTestEngine(t)
	if got := e.FrameRate(); got != playback.DefaultReducedRate {
		t.Fatalf("idle rate: got %d want %d", got, playback.DefaultReducedRate)
	}
	if err := c.Load(testPlan(), audio.Narration{}); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if got := e.FrameRate(); got != playback.DefaultFullRate {
		t.Fatalf("drawing rate: got %d want %d", got, playback.DefaultFullRate)
	}
	e.SetFrameRateFunc(func() int { return 7 })
	if got := e.FrameRate(); got != 7 {
		t.Fatalf("override rate: got %d want 7", got)
	}
	e.Wake()
	e.Wake()
}

func TestRunHeadlessStopsOnQuit(t *testing.T) {
	e, _, _ := newTestEngine(t)
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after quit")
	}
}
