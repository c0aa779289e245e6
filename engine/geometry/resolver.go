package geometry

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// WarningKind classifies a resolver diagnostic.
type WarningKind int

const (
	// WarningMissingCircle means a relative point referenced a circle id not declared earlier in the plan.
	WarningMissingCircle WarningKind = iota
	// WarningNoIntersection means the referenced circles do not intersect at a unique pair of points.
	WarningNoIntersection
)

func (k WarningKind) String() string {
	switch k {
	case WarningMissingCircle:
		return "missing-circle"
	case WarningNoIntersection:
		return "no-intersection"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning reports a relative point that was replaced with a fallback.
type Warning struct {
	StepIndex int
	ItemID    string
	Kind      WarningKind
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("step %d item %q: %s: %s", w.StepIndex, w.ItemID, w.Kind, w.Message)
}

type circleRecord struct {
	center common.Vec2 // world coordinates
	radius float64
}

// resolver carries the state of one forward pass.
type resolver struct {
	circles  map[string]circleRecord
	warnings []Warning
	step     int
	origin   common.Vec2
	itemID   string
}

// Resolve returns a copy of p in which every point is absolute. The input plan is not
// modified and repeated calls on the same plan produce identical output.
//
// The pass walks steps in order and each step's items in declaration order (drawing
// commands, then annotations). A circle becomes available as a reference as soon as it has
// been visited. Unresolvable references fall back to a deterministic point and yield a
// Warning instead of an error.
//
// Parameters:
//   - p: the plan to resolve
//
// Returns:
//   - *plan.WhiteboardPlan: the resolved plan, nil if p is nil
//   - []Warning: fallbacks that were applied, in encounter order
func Resolve(p *plan.WhiteboardPlan) (*plan.WhiteboardPlan, []Warning) {
	if p == nil {
		return nil, nil
	}
	r := &resolver{circles: make(map[string]circleRecord)}
	out := &plan.WhiteboardPlan{
		Summary: p.Summary,
		Steps:   make([]plan.Step, len(p.Steps)),
	}
	for i := range p.Steps {
		src := &p.Steps[i]
		r.step = i
		r.origin = src.Origin

		dst := *src
		dst.HighlightIDs = slices.Clone(src.HighlightIDs)
		dst.RetainedLabelIDs = slices.Clone(src.RetainedLabelIDs)
		dst.DrawingCommands = r.items(src.DrawingCommands)
		dst.Annotations = r.items(src.Annotations)
		if src.Physics != nil {
			pc := *src.Physics
			dst.Physics = &pc
		}
		out.Steps[i] = dst
	}
	return out, r.warnings
}

func (r *resolver) items(in []plan.Item) []plan.Item {
	if in == nil {
		return nil
	}
	out := make([]plan.Item, len(in))
	for i, it := range in {
		out[i] = r.item(it)
	}
	return out
}

func (r *resolver) item(it plan.Item) plan.Item {
	r.itemID = it.Common().ID
	switch v := it.(type) {
	case *plan.Circle:
		c := *v
		c.Center = r.point(v.Center)
		r.circles[c.ID] = circleRecord{center: r.origin.Add(c.Center.Vec()), radius: c.Radius}
		return &c
	case *plan.Rectangle:
		c := *v
		c.Position = r.point(v.Position)
		return &c
	case *plan.Path:
		c := *v
		c.Points = r.pathPoints(v.Points)
		return &c
	case *plan.Arrow:
		c := *v
		c.From = r.point(v.From)
		c.To = r.point(v.To)
		c.Control = r.optional(v.Control)
		return &c
	case *plan.Text:
		c := *v
		c.Position = r.point(v.Position)
		return &c
	case *plan.Strikethrough:
		c := *v
		c.Points = r.pathPoints(v.Points)
		return &c
	case *plan.SoftBody:
		c := *v
		c.Origin = r.point(v.Origin)
		c.Pinned = append([]plan.Edge(nil), v.Pinned...)
		return &c
	case *plan.RigidBody:
		c := *v
		c.Center = r.point(v.Center)
		return &c
	default:
		panic(fmt.Sprintf("geometry: unhandled item type %T", it))
	}
}

func (r *resolver) pathPoints(in []plan.PathPoint) []plan.PathPoint {
	if in == nil {
		return nil
	}
	out := make([]plan.PathPoint, len(in))
	for i, pp := range in {
		out[i] = plan.PathPoint{At: r.point(pp.At), Control: r.optional(pp.Control)}
	}
	return out
}

func (r *resolver) optional(p *plan.Point) *plan.Point {
	if p == nil {
		return nil
	}
	v := r.point(*p)
	return &v
}

// point resolves p into the current step's local frame.
func (r *resolver) point(p plan.Point) plan.Point {
	if !p.IsRelative() {
		return plan.Abs(p.X, p.Y)
	}
	ref := p.Rel
	a, okA := r.circles[ref.Circle1]
	b, okB := r.circles[ref.Circle2]
	if !okA || !okB {
		missing := ref.Circle1
		if okA {
			missing = ref.Circle2
		}
		r.warn(WarningMissingCircle, fmt.Sprintf("reference circle %q is not declared earlier in the plan", missing))
		return plan.Abs(0, 0)
	}

	p0, p1, ok := CircleIntersections(a.center, a.radius, b.center, b.radius)
	if !ok {
		r.warn(WarningNoIntersection, fmt.Sprintf("circles %q and %q do not intersect; using point on %q toward %q",
			ref.Circle1, ref.Circle2, ref.Circle1, ref.Circle2))
	}
	world := p0
	if ref.Index != 0 {
		world = p1
	}
	local := world.Sub(r.origin)
	return plan.Abs(local.X, local.Y)
}

func (r *resolver) warn(kind WarningKind, msg string) {
	r.warnings = append(r.warnings, Warning{StepIndex: r.step, ItemID: r.itemID, Kind: kind, Message: msg})
}
