// Package canvas defines the immediate-mode 2D drawing surface the progressive renderer paints onto,
// along with a CPU raster implementation and a recording implementation.
package canvas

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// Canvas is an immediate-mode 2D drawing surface with a current transform, a current path and a
// save/restore state stack. Path coordinates are transformed by the current transform at the time
// they are added, so changing the transform mid-path only affects subsequent points.
type Canvas interface {
	// Size returns the surface size in device pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// Clear fills the whole surface with c, ignoring the transform and alpha.
	//
	// Parameters:
	//   - c: the clear color
	Clear(c common.Color)

	// Save pushes the current transform, alpha, colors and line width.
	Save()

	// Restore pops the state pushed by the matching Save. Unbalanced calls are ignored.
	Restore()

	// Translate prepends a translation to the current transform.
	//
	// Parameters:
	//   - x: the x offset in current user units
	//   - y: the y offset in current user units
	Translate(x, y float64)

	// Rotate prepends a rotation by theta radians.
	//
	// Parameters:
	//   - theta: the rotation angle in radians
	Rotate(theta float64)

	// Scale prepends a scale.
	//
	// Parameters:
	//   - sx: horizontal factor
	//   - sy: vertical factor
	Scale(sx, sy float64)

	// SetTransform replaces the current transform.
	//
	// Parameters:
	//   - m: the new transform
	SetTransform(m common.Affine)

	// Transform returns the current transform.
	//
	// Returns:
	//   - common.Affine: the user to device transform
	Transform() common.Affine

	// SetAlpha sets the global alpha multiplied into every paint operation.
	//
	// Parameters:
	//   - a: alpha in [0, 1]
	SetAlpha(a float64)

	// Alpha returns the current global alpha.
	//
	// Returns:
	//   - float64: alpha in [0, 1]
	Alpha() float64

	// SetStrokeColor sets the color used by Stroke.
	SetStrokeColor(c common.Color)

	// SetFillColor sets the color used by Fill and FillText.
	SetFillColor(c common.Color)

	// SetLineWidth sets the stroke width in user units.
	SetLineWidth(w float64)

	// BeginPath discards the current path.
	BeginPath()

	// MoveTo starts a new sub-path at (x, y).
	MoveTo(x, y float64)

	// LineTo adds a straight segment to (x, y). Without a current point it behaves as MoveTo.
	LineTo(x, y float64)

	// QuadTo adds a quadratic Bezier segment with control (cx, cy) ending at (x, y).
	QuadTo(cx, cy, x, y float64)

	// Arc adds a circular arc centered at (cx, cy). Angles are in radians, measured clockwise
	// from the positive x axis in a y-down space, and the arc runs from start to end in the
	// direction of increasing angle. If a sub-path is open a line joins its last point to the arc start.
	//
	// Parameters:
	//   - cx: center x
	//   - cy: center y
	//   - r: radius
	//   - start: start angle
	//   - end: end angle
	Arc(cx, cy, r, start, end float64)

	// ClosePath closes the current sub-path.
	ClosePath()

	// Stroke outlines the current path with the stroke color and line width.
	Stroke()

	// Fill fills the current path with the fill color.
	Fill()

	// FillText draws s with its left baseline at (x, y) in the fill color.
	//
	// Parameters:
	//   - s: the text
	//   - x: left edge in user units
	//   - y: baseline in user units
	//   - size: font size in user units
	FillText(s string, x, y, size float64)

	// MeasureText returns the advance width of s at the given size, in user units.
	//
	// Parameters:
	//   - s: the text
	//   - size: font size in user units
	//
	// Returns:
	//   - float64: the advance width
	MeasureText(s string, size float64) float64
}

// style is the paint state saved and restored alongside the transform.
type style struct {
	alpha     float64
	stroke    common.Color
	fill      common.Color
	lineWidth float64
}

func defaultStyle() style {
	return style{
		alpha:     1,
		stroke:    common.ColorForeground,
		fill:      common.ColorForeground,
		lineWidth: 1,
	}
}

// toMatrix converts a column-major Affine into gg's row-major Matrix.
func toMatrix(m common.Affine) gg.Matrix {
	return gg.Matrix{A: m.A, B: m.C, C: m.E, D: m.B, E: m.D, F: m.F}
}

func fromMatrix(m gg.Matrix) common.Affine {
	return common.Affine{A: m.A, B: m.D, C: m.B, D: m.E, E: m.C, F: m.F}
}

// pathSink receives path commands in user space. gg.Context satisfies it directly.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
}

// appendArc adds a circular arc to s as cubic segments built by gg.Path.Arc. When joined is
// true the arc start is connected to the open sub-path with a line instead of starting a new one.
func appendArc(s pathSink, joined bool, cx, cy, r, start, end float64) bool {
	if end-start <= 0 || r <= 0 {
		return false
	}
	sin, cos := math.Sincos(start)
	arc := gg.NewPath()
	arc.MoveTo(cx+r*cos, cy+r*sin)
	arc.Arc(cx, cy, r, start, end)
	arc.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			if joined {
				s.LineTo(c[0], c[1])
			} else {
				s.MoveTo(c[0], c[1])
			}
		case gg.LineTo:
			s.LineTo(c[0], c[1])
		case gg.CubicTo:
			s.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
		}
	})
	return true
}
