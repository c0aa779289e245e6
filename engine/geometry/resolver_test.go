package geometry_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/geometry"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

const eps = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestCircleIntersectionsExample(t *testing.T) {
	p0, p1, ok := geometry.CircleIntersections(common.V2(0, 0), 5, common.V2(10, 0), 5)
	if !ok {
		t.Fatalf("expected circles to intersect")
	}
	want := 4.330127018922193
	if !near(p0.X, 5) || !near(p0.Y, want) {
		t.Fatalf("unexpected p0: got %+v want (5, %.6f)", p0, want)
	}
	if !near(p1.X, 5) || !near(p1.Y, -want) {
		t.Fatalf("unexpected p1: got %+v want (5, %.6f)", p1, -want)
	}
}

func TestCircleIntersectionsLieOnBothCircles(t *testing.T) {
	tests := []struct {
		name string
		c1   common.Vec2
		r1   float64
		c2   common.Vec2
		r2   float64
	}{
		{"symmetric", common.V2(0, 0), 5, common.V2(10, 0), 5},
		{"tangent outside", common.V2(0, 0), 3, common.V2(7, 0), 4},
		{"tangent inside", common.V2(0, 0), 10, common.V2(4, 0), 6},
		{"diagonal", common.V2(-3, 2), 7.5, common.V2(4, -6), 9},
		{"unequal", common.V2(100, 100), 40, common.V2(130, 140), 25},
		{"small offset", common.V2(1, 1), 2, common.V2(1.5, 1.2), 2.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p0, p1, ok := geometry.CircleIntersections(tc.c1, tc.r1, tc.c2, tc.r2)
			if !ok {
				t.Fatalf("expected intersection")
			}
			for i, p := range []common.Vec2{p0, p1} {
				if d := p.Dist(tc.c1); math.Abs(d-tc.r1) > 1e-9*math.Max(1, tc.r1) {
					t.Fatalf("p%d: distance to c1 got %v want %v", i, d, tc.r1)
				}
				if d := p.Dist(tc.c2); math.Abs(d-tc.r2) > 1e-9*math.Max(1, tc.r2) {
					t.Fatalf("p%d: distance to c2 got %v want %v", i, d, tc.r2)
				}
			}
		})
	}
}

func TestCircleIntersectionsFallback(t *testing.T) {
	tests := []struct {
		name string
		c1   common.Vec2
		r1   float64
		c2   common.Vec2
		r2   float64
		want common.Vec2
	}{
		{"too far", common.V2(0, 0), 2, common.V2(10, 0), 3, common.V2(2, 0)},
		{"contained", common.V2(0, 0), 10, common.V2(0, 2), 1, common.V2(0, 10)},
		{"concentric", common.V2(3, 3), 4, common.V2(3, 3), 4, common.V2(7, 3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p0, p1, ok := geometry.CircleIntersections(tc.c1, tc.r1, tc.c2, tc.r2)
			if ok {
				t.Fatalf("expected fallback")
			}
			if p0 != p1 {
				t.Fatalf("fallback candidates differ: %+v %+v", p0, p1)
			}
			if !near(p0.X, tc.want.X) || !near(p0.Y, tc.want.Y) {
				t.Fatalf("unexpected fallback: got %+v want %+v", p0, tc.want)
			}
		})
	}
}

func relativePlan() *plan.WhiteboardPlan {
	return &plan.WhiteboardPlan{Steps: []plan.Step{
		{
			Origin: common.V2(100, 50),
			DrawingCommands: []plan.Item{
				&plan.Circle{Base: plan.Base{ID: "a"}, Center: plan.Abs(0, 0), Radius: 5},
				&plan.Circle{Base: plan.Base{ID: "b"}, Center: plan.Abs(10, 0), Radius: 5},
			},
		},
		{
			// new diagram: the result must be expressed relative to this origin
			Origin: common.V2(0, 0),
			DrawingCommands: []plan.Item{
				&plan.Path{Base: plan.Base{ID: "p"}, Points: []plan.PathPoint{
					{At: plan.Rel("a", "b", 0)},
					{At: plan.Rel("a", "b", 1), Control: &plan.Point{X: 1, Y: 2}},
				}},
				&plan.Arrow{Base: plan.Base{ID: "arr"}, From: plan.Rel("a", "zzz", 0), To: plan.Abs(3, 3)},
			},
		},
	}}
}

func TestResolveConvertsToConsumingStepFrame(t *testing.T) {
	in := relativePlan()
	out, warnings := geometry.Resolve(in)

	path := out.Steps[1].DrawingCommands[0].(*plan.Path)
	h := 5 * math.Sqrt(3) / 2
	got0 := path.Points[0].At
	if got0.IsRelative() || !near(got0.X, 105) || !near(got0.Y, 50+h) {
		t.Fatalf("unexpected resolved point 0: %+v", got0)
	}
	got1 := path.Points[1].At
	if !near(got1.X, 105) || !near(got1.Y, 50-h) {
		t.Fatalf("unexpected resolved point 1: %+v", got1)
	}
	if path.Points[1].Control == nil || path.Points[1].Control.X != 1 {
		t.Fatalf("control point should be carried through")
	}

	if len(warnings) != 1 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	w := warnings[0]
	if w.Kind != geometry.WarningMissingCircle || w.StepIndex != 1 || w.ItemID != "arr" {
		t.Fatalf("unexpected warning: %+v", w)
	}
	arrow := out.Steps[1].DrawingCommands[1].(*plan.Arrow)
	if arrow.From.IsRelative() || arrow.From.X != 0 || arrow.From.Y != 0 {
		t.Fatalf("missing circle should fall back to local origin, got %+v", arrow.From)
	}

	// input is untouched
	if !in.Steps[1].DrawingCommands[0].(*plan.Path).Points[0].At.IsRelative() {
		t.Fatalf("Resolve must not mutate its input")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	in := relativePlan()
	a, wa := geometry.Resolve(in)
	b, wb := geometry.Resolve(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("resolving twice produced different plans")
	}
	if !reflect.DeepEqual(wa, wb) {
		t.Fatalf("resolving twice produced different warnings")
	}
	again, _ := geometry.Resolve(a)
	if !reflect.DeepEqual(a, again) {
		t.Fatalf("resolving a resolved plan should be a no-op")
	}
}

func TestResolveOnlyUsesEarlierCircles(t *testing.T) {
	p := &plan.WhiteboardPlan{Steps: []plan.Step{{
		DrawingCommands: []plan.Item{
			&plan.Text{Base: plan.Base{ID: "early"}, Position: plan.Rel("a", "b", 0)},
			&plan.Circle{Base: plan.Base{ID: "a"}, Center: plan.Abs(0, 0), Radius: 5},
			&plan.Circle{Base: plan.Base{ID: "b"}, Center: plan.Abs(10, 0), Radius: 5},
		},
	}}}
	_, warnings := geometry.Resolve(p)
	if len(warnings) != 1 || warnings[0].ItemID != "early" {
		t.Fatalf("expected a single missing-circle warning for the early label, got %v", warnings)
	}
}

func TestResolveNonIntersectingWarns(t *testing.T) {
	p := &plan.WhiteboardPlan{Steps: []plan.Step{{
		Origin: common.V2(10, 10),
		DrawingCommands: []plan.Item{
			&plan.Circle{Base: plan.Base{ID: "a"}, Center: plan.Abs(0, 0), Radius: 1},
			&plan.Circle{Base: plan.Base{ID: "b"}, Center: plan.Abs(0, 20), Radius: 1},
			&plan.Text{Base: plan.Base{ID: "t"}, Position: plan.Rel("a", "b", 1)},
		},
	}}}
	out, warnings := geometry.Resolve(p)
	if len(warnings) != 1 || warnings[0].Kind != geometry.WarningNoIntersection {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	pos := out.Steps[0].DrawingCommands[2].(*plan.Text).Position
	if !near(pos.X, 0) || !near(pos.Y, 1) {
		t.Fatalf("unexpected fallback position: %+v", pos)
	}
}

func TestResolveNil(t *testing.T) {
	if out, w := geometry.Resolve(nil); out != nil || w != nil {
		t.Fatalf("expected nil results for nil plan")
	}
}
