package common

import "math"

// Clamp restricts v to the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float64: v limited to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 restricts v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Affine is a 2D affine transform stored as the six non-constant entries of a
// 3x3 matrix in column-major order:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translation returns a transform that translates by (tx, ty).
func Translation(tx, ty float64) Affine {
	return Affine{A: 1, D: 1, E: tx, F: ty}
}

// Scaling returns a transform that scales by (sx, sy) around the origin.
func Scaling(sx, sy float64) Affine {
	return Affine{A: sx, D: sy}
}

// Rotation returns a transform that rotates by theta radians around the origin.
func Rotation(theta float64) Affine {
	s, c := math.Sincos(theta)
	return Affine{A: c, B: s, C: -s, D: c}
}

// Mul returns m * o, i.e. the transform that applies o first and then m.
//
// Parameters:
//   - o: the transform applied first
//
// Returns:
//   - Affine: the composed transform
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

// Apply transforms point p.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m.A*p.X + m.C*p.Y + m.E, m.B*p.X + m.D*p.Y + m.F}
}

// ScaleFactor returns the geometric mean of the axis scale factors, used to scale line widths.
func (m Affine) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// QuadPoint evaluates a quadratic Bezier curve at t.
//
// Parameters:
//   - p0: start point
//   - c: control point
//   - p1: end point
//   - t: curve parameter in [0, 1]
//
// Returns:
//   - Vec2: the point on the curve
func QuadPoint(p0, c, p1 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
		Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
	}
}

// SplitQuad returns the control and end point of the sub-curve of the quadratic
// Bezier (p0, c, p1) over [0, t] (de Casteljau).
func SplitQuad(p0, c, p1 Vec2, t float64) (Vec2, Vec2) {
	q0 := p0.Lerp(c, t)
	q1 := c.Lerp(p1, t)
	return q0, q0.Lerp(q1, t)
}
