package tween_test

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/tween"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEaseEndpoints(t *testing.T) {
	for _, name := range tween.Names() {
		f, ok := tween.Ease(name)
		if !ok {
			t.Fatalf("registered ease %q not found", name)
		}
		if got := tween.Progress(f, 0); !near(got, 0) {
			t.Fatalf("%s(0): got %v want 0", name, got)
		}
		if got := tween.Progress(f, 1); !near(got, 1) {
			t.Fatalf("%s(1): got %v want 1", name, got)
		}
	}
	if _, ok := tween.Ease("wobble.sideways"); ok {
		t.Fatalf("unknown ease should report false")
	}
	if f, ok := tween.Ease("Sine.InOut"); !ok || math.Abs(tween.Progress(f, 0.5)-0.5) > 1e-6 {
		t.Fatalf("ease names should be case-insensitive")
	}
}

func TestEaseFamilies(t *testing.T) {
	cases := []struct {
		name string
		t    float64
		want float64
	}{
		{"power1.in", 0.5, 0.25},
		{"power2.in", 0.5, 0.125},
		{"power1", 0.5, 0.75},
		{"quad.inout", 0.25, 0.125},
		{"", 0.5, 0.75},
		{"linear", 0.3, 0.3},
	}
	for _, tc := range cases {
		f, _ := tween.Ease(tc.name)
		if got := tween.Progress(f, tc.t); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("unexpected %q at %v: got %v want %v", tc.name, tc.t, got, tc.want)
		}
	}

	back, _ := tween.Ease("back.out")
	if got := tween.Progress(back, 0.7); got <= 1 {
		t.Fatalf("unexpected back.out overshoot: got %v want > 1", got)
	}
}

func TestEvaluateLinear(t *testing.T) {
	spec := &plan.AnimateSpec{
		To:       plan.AnimProps{X: common.Ptr(10.0), Opacity: common.Ptr(0.5)},
		Duration: 2,
		Ease:     "linear",
		Delay:    1,
	}
	if s := tween.Evaluate(spec, 0.5); !s.IsRest() {
		t.Fatalf("expected rest during delay, got %+v", s)
	}
	s := tween.Evaluate(spec, 2)
	if !near(s.Offset.X, 5) || !near(s.Opacity, 0.75) || s.Done {
		t.Fatalf("unexpected midpoint state: %+v", s)
	}
	end := tween.Evaluate(spec, 10)
	if !near(end.Offset.X, 10) || !near(end.Opacity, 0.5) || !end.Done {
		t.Fatalf("unexpected end state: %+v", end)
	}
}

func TestEvaluateRepeatYoyo(t *testing.T) {
	spec := &plan.AnimateSpec{
		From:     plan.AnimProps{Scale: common.Ptr(1.0)},
		To:       plan.AnimProps{Scale: common.Ptr(2.0)},
		Duration: 1,
		Ease:     "none",
		Repeat:   1,
		Yoyo:     true,
	}
	if s := tween.Evaluate(spec, 0.25); !near(s.Scale, 1.25) {
		t.Fatalf("first cycle: got scale %v want 1.25", s.Scale)
	}
	if s := tween.Evaluate(spec, 1.25); !near(s.Scale, 1.75) {
		t.Fatalf("yoyo cycle: got scale %v want 1.75", s.Scale)
	}
	if s := tween.Evaluate(spec, 5); !s.Done || !near(s.Scale, 1) {
		t.Fatalf("yoyo with odd repeat should end at from, got %+v", s)
	}

	spec.Repeat = -1
	if s := tween.Evaluate(spec, 1000.5); s.Done || !near(s.Scale, 1.5) {
		t.Fatalf("infinite repeat should keep cycling, got %+v", s)
	}
}

func TestEvaluateRotationDegrees(t *testing.T) {
	spec := &plan.AnimateSpec{To: plan.AnimProps{Rotation: common.Ptr(90.0)}, Duration: 0}
	if s := tween.Evaluate(spec, 0); !near(s.Rotation, math.Pi/2) || !s.Done {
		t.Fatalf("unexpected rotation: %+v", s)
	}
}

func TestRegistry(t *testing.T) {
	reg := tween.NewRegistry()
	spec := &plan.AnimateSpec{To: plan.AnimProps{Y: common.Ptr(4.0)}, Duration: 1, Ease: "linear"}

	if s := reg.State("a", spec, 3); !s.IsRest() {
		t.Fatalf("unstarted tween should be at rest")
	}
	if got := reg.Start("a", 10); got != 10 {
		t.Fatalf("unexpected start: %v", got)
	}
	if got := reg.Start("a", 11); got != 10 {
		t.Fatalf("start should be recorded once, got %v", got)
	}
	if s := reg.State("a", spec, 10.5); !near(s.Offset.Y, 2) {
		t.Fatalf("unexpected state: %+v", s)
	}
	reg.Clear()
	if reg.Len() != 0 {
		t.Fatalf("Clear should forget start times")
	}
}

func TestApplyPivotsAroundAnchor(t *testing.T) {
	rec := canvas.NewRecorder(10, 10)
	s := tween.State{Rotation: math.Pi, Scale: 2, Opacity: 0.5}
	s.Apply(rec, common.V2(5, 5))
	p := rec.Transform().Apply(common.V2(5, 5))
	if !near(p.X, 5) || !near(p.Y, 5) {
		t.Fatalf("anchor should stay fixed, got %+v", p)
	}
	q := rec.Transform().Apply(common.V2(6, 5))
	if !near(q.X, 3) || !near(q.Y, 5) {
		t.Fatalf("unexpected transformed point: %+v", q)
	}
	if !near(rec.Alpha(), 0.5) {
		t.Fatalf("unexpected alpha: %v", rec.Alpha())
	}
}
