package viewport

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// viewportImpl is the single implementation of Viewport.
type viewportImpl struct {
	mu *sync.Mutex

	width, height int
	center        common.Vec2
	zoom          float64

	initialCenter common.Vec2
	initialZoom   float64
	minZoom       float64
	maxZoom       float64
	zoomSpeed     float64

	// Smoothing rates in 1/s; the touch rate applies on small screens or touch input.
	smoothing      float64
	touchSmoothing float64
	smallScreen    int
	touch          bool

	panning     bool
	panStart    common.Vec2
	panCenter   common.Vec2
	manual      bool
	manualStep  int
	hasLastStep bool
	lastStep    int
}

var _ Viewport = &viewportImpl{}

// NewViewport creates a Viewport centered on the origin at zoom 1.
//
// Parameters:
//   - options: functional options to configure the viewport
//
// Returns:
//   - Viewport: the newly created viewport
func NewViewport(options ...ViewportOption) Viewport {
	v := &viewportImpl{
		mu:             &sync.Mutex{},
		width:          800,
		height:         600,
		initialZoom:    1,
		minZoom:        0.1,
		maxZoom:        8,
		zoomSpeed:      0.1,
		smoothing:      4,
		touchSmoothing: 9,
		smallScreen:    640,
	}
	for _, option := range options {
		option(v)
	}
	v.initialZoom = common.Clamp(v.initialZoom, v.minZoom, v.maxZoom)
	v.center = v.initialCenter
	v.zoom = v.initialZoom
	return v
}

// --- internal helpers ---

// Caller must hold the mutex.
func (v *viewportImpl) halfSize() common.Vec2 {
	return common.V2(float64(v.width)/2, float64(v.height)/2)
}

// Caller must hold the mutex.
func (v *viewportImpl) screenToWorld(p common.Vec2) common.Vec2 {
	return p.Sub(v.halfSize()).Scale(1 / v.zoom).Add(v.center)
}

// rate returns the smoothing rate for the current screen. Caller must hold the mutex.
func (v *viewportImpl) rate() float64 {
	if v.touch || min(v.width, v.height) < v.smallScreen {
		return v.touchSmoothing
	}
	return v.smoothing
}

// --- Viewport methods ---

func (v *viewportImpl) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = max(width, 1)
	v.height = max(height, 1)
}

func (v *viewportImpl) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *viewportImpl) Center() common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center
}

func (v *viewportImpl) SetCenter(c common.Vec2) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = c
}

func (v *viewportImpl) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

func (v *viewportImpl) SetZoom(z float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = common.Clamp(z, v.minZoom, v.maxZoom)
}

func (v *viewportImpl) Transform() common.Affine {
	v.mu.Lock()
	defer v.mu.Unlock()
	h := v.halfSize()
	return common.Affine{
		A: v.zoom,
		D: v.zoom,
		E: h.X - v.center.X*v.zoom,
		F: h.Y - v.center.Y*v.zoom,
	}
}

func (v *viewportImpl) ScreenToWorld(p common.Vec2) common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screenToWorld(p)
}

func (v *viewportImpl) WorldToScreen(p common.Vec2) common.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return p.Sub(v.center).Scale(v.zoom).Add(v.halfSize())
}

func (v *viewportImpl) Update(dt float64, f Focal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStep, v.hasLastStep = f.Step, true
	if v.manual && f.Step != v.manualStep && !v.panning {
		v.manual = false
	}
	if v.manual || v.panning || dt <= 0 {
		return
	}
	alpha := 1 - math.Exp(-v.rate()*dt)
	v.center = v.center.Lerp(f.Point, alpha)
}

func (v *viewportImpl) Focus(f Focal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = f.Point
	v.manual = false
	v.panning = false
	v.lastStep, v.hasLastStep = f.Step, true
}

// suspend stops tracking until the focal step changes. Caller must hold the mutex.
func (v *viewportImpl) suspend() {
	v.manual = true
	if v.hasLastStep {
		v.manualStep = v.lastStep
	}
}

func (v *viewportImpl) BeginPan(screen common.Vec2) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panning = true
	v.panStart = screen
	v.panCenter = v.center
	v.suspend()
}

func (v *viewportImpl) PanTo(screen common.Vec2) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.panning {
		return
	}
	moved := screen.Sub(v.panStart).Scale(1 / v.zoom)
	v.center = v.panCenter.Sub(moved)
}

func (v *viewportImpl) EndPan() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panning = false
}

func (v *viewportImpl) Panning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panning
}

func (v *viewportImpl) ZoomAt(screen common.Vec2, delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	anchor := v.screenToWorld(screen)
	v.zoom = common.Clamp(v.zoom*math.Exp(delta*v.zoomSpeed), v.minZoom, v.maxZoom)
	// keep anchor under the cursor
	v.center = anchor.Sub(screen.Sub(v.halfSize()).Scale(1 / v.zoom))
	if v.panning {
		v.panStart = screen
		v.panCenter = v.center
	}
	v.suspend()
}

func (v *viewportImpl) Tracking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.manual && !v.panning
}

func (v *viewportImpl) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = v.initialCenter
	v.zoom = v.initialZoom
	v.manual = false
	v.panning = false
	v.hasLastStep = false
}
