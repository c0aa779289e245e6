// Package viewport moves the camera over the unbounded board: it follows the pen while a step is
// drawn and yields to the user while they pan or zoom.
package viewport

import "github.com/Carmen-Shannon/whiteboard-go/common"

// Focal is the point the camera should keep centered, tagged with the step it belongs to.
// A manual pan or zoom suspends tracking until Step changes.
type Focal struct {
	Point common.Vec2
	Step  int
}

// Viewport defines the camera over the board. The camera state is the world point at the center
// of the screen and a zoom factor in screen pixels per world unit.
type Viewport interface {
	// SetSize sets the screen size in pixels.
	//
	// Parameters:
	//   - width, height: the framebuffer size
	SetSize(width, height int)

	// Size returns the screen size in pixels.
	Size() (width, height int)

	// Center returns the world point at the middle of the screen.
	Center() common.Vec2

	// SetCenter moves the camera without smoothing.
	SetCenter(c common.Vec2)

	// Zoom returns the current zoom factor.
	Zoom() float64

	// SetZoom sets the zoom factor, clamped to the configured limits.
	SetZoom(z float64)

	// Transform returns the world to screen transform for the canvas.
	//
	// Returns:
	//   - common.Affine: the view transform
	Transform() common.Affine

	// ScreenToWorld maps a screen pixel position to board coordinates.
	ScreenToWorld(p common.Vec2) common.Vec2

	// WorldToScreen maps board coordinates to a screen pixel position.
	WorldToScreen(p common.Vec2) common.Vec2

	// Update eases the camera toward centering f. Tracking resumes after a manual gesture once
	// f.Step differs from the step current during the gesture.
	//
	// Parameters:
	//   - dt: seconds since the previous update
	//   - f: the focal point for this frame
	Update(dt float64, f Focal)

	// Focus recenters on f immediately and resumes tracking.
	//
	// Parameters:
	//   - f: the focal point
	Focus(f Focal)

	// BeginPan starts a drag at a screen position.
	BeginPan(screen common.Vec2)

	// PanTo drags the board so the point under the drag start follows the cursor.
	PanTo(screen common.Vec2)

	// EndPan finishes a drag.
	EndPan()

	// Panning reports whether a drag is in progress.
	Panning() bool

	// ZoomAt zooms by delta wheel steps keeping the world point under screen fixed. Positive
	// delta zooms in.
	//
	// Parameters:
	//   - screen: the cursor position in pixels
	//   - delta: the wheel offset
	ZoomAt(screen common.Vec2, delta float64)

	// Tracking reports whether the camera currently follows the focal point.
	Tracking() bool

	// Reset restores the initial center and zoom and resumes tracking.
	Reset()
}
