package viewport

import "github.com/Carmen-Shannon/whiteboard-go/common"

// ViewportOption is a functional option for configuring a Viewport.
type ViewportOption func(*viewportImpl)

// WithSize sets the initial screen size.
//
// Parameters:
//   - width, height: the framebuffer size in pixels
//
// Returns:
//   - ViewportOption: functional option to set the size
func WithSize(width, height int) ViewportOption {
	return func(v *viewportImpl) {
		v.width = max(width, 1)
		v.height = max(height, 1)
	}
}

// WithCenter sets the initial world point at the middle of the screen.
//
// Parameters:
//   - c: the world point
//
// Returns:
//   - ViewportOption: functional option to set the center
func WithCenter(c common.Vec2) ViewportOption {
	return func(v *viewportImpl) {
		v.initialCenter = c
	}
}

// WithZoom sets the initial zoom factor.
//
// Parameters:
//   - z: screen pixels per world unit
//
// Returns:
//   - ViewportOption: functional option to set the zoom
func WithZoom(z float64) ViewportOption {
	return func(v *viewportImpl) {
		if z > 0 {
			v.initialZoom = z
		}
	}
}

// WithZoomBounds sets the zoom limits.
//
// Parameters:
//   - min: the smallest zoom factor
//   - max: the largest zoom factor
//
// Returns:
//   - ViewportOption: functional option to set zoom bounds
func WithZoomBounds(min, max float64) ViewportOption {
	return func(v *viewportImpl) {
		if min > 0 && max >= min {
			v.minZoom = min
			v.maxZoom = max
		}
	}
}

// WithZoomSpeed sets how strongly one wheel step zooms.
//
// Parameters:
//   - speed: the exponent per wheel step
//
// Returns:
//   - ViewportOption: functional option to set zoom speed
func WithZoomSpeed(speed float64) ViewportOption {
	return func(v *viewportImpl) {
		v.zoomSpeed = speed
	}
}

// WithSmoothing sets the tracking rates in 1/s for regular screens and for small or touch screens.
//
// Parameters:
//   - regular: the rate on large screens
//   - touch: the faster rate on small or touch screens
//
// Returns:
//   - ViewportOption: functional option to set smoothing
func WithSmoothing(regular, touch float64) ViewportOption {
	return func(v *viewportImpl) {
		if regular > 0 {
			v.smoothing = regular
		}
		if touch > 0 {
			v.touchSmoothing = touch
		}
	}
}

// WithTouch marks the input as touch so the snappier smoothing always applies.
func WithTouch(touch bool) ViewportOption {
	return func(v *viewportImpl) {
		v.touch = touch
	}
}

// WithSmallScreen sets the shorter screen side in pixels below which the touch smoothing applies.
func WithSmallScreen(px int) ViewportOption {
	return func(v *viewportImpl) {
		v.smallScreen = px
	}
}
