package plan

import (
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// Point is a coordinate in the local frame of the step that declares it. A point is
// either absolute (X, Y) or relative, in which case it is defined as one of the two
// intersections of previously declared circles and must be resolved before drawing.
type Point struct {
	X   float64
	Y   float64
	Rel *RelativeRef
}

// RelativeRef names two circles by id and selects one of their intersections.
type RelativeRef struct {
	Circle1 string `json:"referenceCircleId1"`
	Circle2 string `json:"referenceCircleId2"`
	// Index selects the intersection: 0 for the first, anything else for the second.
	Index int `json:"intersectionIndex"`
}

// Abs returns an absolute point at (x, y).
func Abs(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rel returns a relative point at intersection index of circles c1 and c2.
func Rel(c1, c2 string, index int) Point {
	return Point{Rel: &RelativeRef{Circle1: c1, Circle2: c2, Index: index}}
}

// IsRelative reports whether the point still references circles.
func (p Point) IsRelative() bool {
	return p.Rel != nil
}

// Vec returns the absolute coordinates. Relative points return (0, 0).
func (p Point) Vec() common.Vec2 {
	return common.Vec2{X: p.X, Y: p.Y}
}

// pointJSON is the union of both wire shapes.
type pointJSON struct {
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Circle1 string   `json:"referenceCircleId1,omitempty"`
	Circle2 string   `json:"referenceCircleId2,omitempty"`
	Index   *int     `json:"intersectionIndex,omitempty"`
}

func (pj *pointJSON) point() (Point, error) {
	if pj.Circle1 != "" || pj.Circle2 != "" {
		if pj.Circle1 == "" || pj.Circle2 == "" {
			return Point{}, fmt.Errorf("relative point needs both referenceCircleId1 and referenceCircleId2")
		}
		return Rel(pj.Circle1, pj.Circle2, common.Deref(pj.Index, 0)), nil
	}
	return Abs(common.Deref(pj.X, 0), common.Deref(pj.Y, 0)), nil
}

func (p Point) toJSON() pointJSON {
	if p.Rel != nil {
		idx := p.Rel.Index
		return pointJSON{Circle1: p.Rel.Circle1, Circle2: p.Rel.Circle2, Index: &idx}
	}
	x, y := p.X, p.Y
	return pointJSON{X: &x, Y: &y}
}

// MarshalJSON writes either {x, y} or the relative reference shape.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toJSON())
}

// UnmarshalJSON accepts either {x, y} or {referenceCircleId1, referenceCircleId2, intersectionIndex}.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pj pointJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	out, err := pj.point()
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// PathPoint is a path vertex. When Control is set the segment ending at this vertex is a
// quadratic curve through that control point.
type PathPoint struct {
	At      Point
	Control *Point
}

type pathPointJSON struct {
	pointJSON
	Control *Point `json:"control,omitempty"`
}

// MarshalJSON flattens the vertex coordinates next to the optional control point.
func (pp PathPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathPointJSON{pointJSON: pp.At.toJSON(), Control: pp.Control})
}

// UnmarshalJSON reads a vertex written as a point with an optional "control" member.
func (pp *PathPoint) UnmarshalJSON(data []byte) error {
	var pj pathPointJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	at, err := pj.pointJSON.point()
	if err != nil {
		return err
	}
	*pp = PathPoint{At: at, Control: pj.Control}
	return nil
}
