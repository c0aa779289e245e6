// Package geometry resolves relative plan points into absolute step-local coordinates.
package geometry

import (
	"math"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// CircleIntersections returns the two intersection points of circles (c1, r1) and (c2, r2).
// The first point lies on the counter-clockwise side of the c1→c2 direction.
//
// When the circles do not meet at a unique pair of points (too far apart, one contained in
// the other, or concentric) both returned points are the fallback c1 + r1·dir(c1→c2), with
// dir = (1, 0) for concentric circles, and ok is false.
//
// Parameters:
//   - c1: center of the first circle
//   - r1: radius of the first circle
//   - c2: center of the second circle
//   - r2: radius of the second circle
//
// Returns:
//   - common.Vec2: intersection candidate 0
//   - common.Vec2: intersection candidate 1
//   - bool: false if the fallback was used
func CircleIntersections(c1 common.Vec2, r1 float64, c2 common.Vec2, r2 float64) (common.Vec2, common.Vec2, bool) {
	delta := c2.Sub(c1)
	d := delta.Len()
	if d == 0 || d > r1+r2 || d < math.Abs(r1-r2) {
		dir := common.V2(1, 0)
		if d > 0 {
			dir = delta.Scale(1 / d)
		}
		fb := c1.Add(dir.Scale(r1))
		return fb, fb, false
	}

	a := (r1*r1 - r2*r2 + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, r1*r1-a*a))
	unit := delta.Scale(1 / d)
	m := c1.Add(unit.Scale(a))
	off := unit.Perp().Scale(h)
	return m.Add(off), m.Sub(off), true
}
