package renderer_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
	"github.com/Carmen-Shannon/whiteboard-go/engine/renderer"
)

func TestScheduleSharesDrawingWindow(t *testing.T) {
	items := []plan.Item{
		&plan.Rectangle{Base: plan.Base{ID: "r"}, Width: 10, Height: 10},
		&plan.Circle{Base: plan.Base{ID: "c"}, Radius: 10},
		&plan.Arrow{Base: plan.Base{ID: "timed", DrawDelay: common.Ptr(5.0), DrawDuration: common.Ptr(2.0)}},
		&plan.Path{Base: plan.Base{ID: "p"}},
		&plan.Text{Base: plan.Base{ID: "t"}, Text: "x"},
	}
	got := renderer.Schedule(items, 10, renderer.DefaultDrawingWindow)
	want := []renderer.Timing{
		{Delay: 0, Duration: 1},
		{Delay: 1, Duration: 1},
		{Delay: 5, Duration: 2},
		{Delay: 2, Duration: 1},
		{Delay: 3, Duration: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected timing count: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i].Delay-want[i].Delay) > 1e-9 || math.Abs(got[i].Duration-want[i].Duration) > 1e-9 {
			t.Fatalf("item %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestScheduleContextualAndPartialTiming(t *testing.T) {
	items := []plan.Item{
		&plan.Text{Base: plan.Base{ID: "ctx"}, Text: "known", IsContextual: true},
		&plan.Circle{Base: plan.Base{ID: "c", DrawDelay: common.Ptr(1.5)}, Radius: 10},
		&plan.Circle{Base: plan.Base{ID: "d"}, Radius: 10},
	}
	got := renderer.Schedule(items, 5, 0.4)
	if got[0] != (renderer.Timing{}) {
		t.Fatalf("contextual label should take no slice, got %+v", got[0])
	}
	if got[1].Delay != 1.5 || math.Abs(got[1].Duration-2) > 1e-9 {
		t.Fatalf("partial timing should keep its delay and take one slice, got %+v", got[1])
	}
	if got[2].Delay != 0 || math.Abs(got[2].Duration-2) > 1e-9 {
		t.Fatalf("unexpected untimed slot: %+v", got[2])
	}
}

func TestItemProgress(t *testing.T) {
	tm := renderer.Timing{Delay: 2, Duration: 4}
	tests := []struct {
		elapsed float64
		want    float64
	}{
		{0, 0}, {2, 0}, {3, 0.25}, {6, 1}, {100, 1},
	}
	for _, tc := range tests {
		if got := renderer.ItemProgress(tc.elapsed, tm); got != tc.want {
			t.Fatalf("ItemProgress(%v): got %v want %v", tc.elapsed, got, tc.want)
		}
	}
	if got := renderer.ItemProgress(1, renderer.Timing{Delay: 1}); got != 1 {
		t.Fatalf("zero duration should complete at its delay, got %v", got)
	}
}

func TestResolveColor(t *testing.T) {
	fg := common.ColorForeground
	tests := []struct {
		in   string
		want common.Color
	}{
		{"", fg},
		{"#000", fg},
		{"#000000", fg},
		{"BLACK", fg},
		{"rgb(0, 0, 0)", fg},
		{"#0a0a0a", fg},
		{"not-a-color", fg},
		{"#ff0000", common.Color{R: 255, A: 255}},
		{"white", common.Color{R: 255, G: 255, B: 255, A: 255}},
	}
	for _, tc := range tests {
		if got := renderer.ResolveColor(tc.in, fg, renderer.DefaultNearBlackLuminance); got != tc.want {
			t.Fatalf("ResolveColor(%q): got %+v want %+v", tc.in, got, tc.want)
		}
	}
}

// everyKind returns one drawable item per kind, none of them contextual.
func everyKind() []plan.Item {
	return []plan.Item{
		&plan.Circle{Base: plan.Base{ID: "circle"}, Center: plan.Abs(0, 0), Radius: 20, IsFilled: true},
		&plan.Circle{Base: plan.Base{ID: "marker"}, Center: plan.Abs(5, 5), Radius: 3},
		&plan.Rectangle{Base: plan.Base{ID: "rect"}, Position: plan.Abs(10, 10), Width: 30, Height: 20, IsFilled: true},
		&plan.Path{Base: plan.Base{ID: "path"}, Points: []plan.PathPoint{
			{At: plan.Abs(0, 0)}, {At: plan.Abs(10, 0), Control: &plan.Point{X: 5, Y: -5}}, {At: plan.Abs(20, 10)},
		}},
		&plan.Arrow{Base: plan.Base{ID: "arrow"}, From: plan.Abs(0, 50), To: plan.Abs(40, 50)},
		&plan.Text{Base: plan.Base{ID: "text"}, Text: "label", Position: plan.Abs(0, 80)},
		&plan.Strikethrough{Base: plan.Base{ID: "strike"}, Points: []plan.PathPoint{{At: plan.Abs(0, 90)}, {At: plan.Abs(60, 90)}}},
		&plan.SoftBody{Base: plan.Base{ID: "soft"}, Origin: plan.Abs(100, 0), Cols: 3, Rows: 3, Spacing: 10, Pinned: []plan.Edge{plan.EdgeTop}},
		&plan.RigidBody{Base: plan.Base{ID: "rigid"}, Shape: plan.ShapeCircle, Center: plan.Abs(150, 0), Radius: 8},
	}
}

func singleStep(items ...plan.Item) *plan.WhiteboardPlan {
	return &plan.WhiteboardPlan{Steps: []plan.Step{{Origin: common.V2(100, 50), Explanation: "one", DrawingCommands: items}}}
}

func TestProgressZeroDrawsNothing(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(singleStep(everyKind()...))
	rec := canvas.NewRecorder(200, 200)
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 0, StepDuration: 10})
	if rec.StrokeCount() != 0 || rec.FillCount() != 0 || len(rec.TextOps()) != 0 {
		t.Fatalf("progress 0 painted: strokes=%d fills=%d text=%d", rec.StrokeCount(), rec.FillCount(), len(rec.TextOps()))
	}
}

func TestProgressOneMatchesComplete(t *testing.T) {
	p := singleStep(everyKind()...)

	a := renderer.NewRenderer()
	a.SetPlan(p)
	recA := canvas.NewRecorder(200, 200)
	a.Draw(recA, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 10, StepDuration: 10, Now: 1})

	b := renderer.NewRenderer()
	b.SetPlan(p)
	recB := canvas.NewRecorder(200, 200)
	b.DrawComplete(recB, common.Identity(), 1)

	if !reflect.DeepEqual(recA.Ops(), recB.Ops()) {
		t.Fatalf("progress 1 differs from the complete rendering")
	}
	if recA.StrokeCount() == 0 || recA.FillCount() == 0 || len(recA.TextOps()) != 1 {
		t.Fatalf("complete rendering is missing content: strokes=%d fills=%d text=%d",
			recA.StrokeCount(), recA.FillCount(), len(recA.TextOps()))
	}
}

func TestPartialCircleAndPenTip(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(singleStep(&plan.Circle{Base: plan.Base{ID: "c"}, Center: plan.Abs(0, 0), Radius: 10, IsFilled: true}))
	rec := canvas.NewRecorder(200, 200)

	// one untimed item owns the first 4s of a 10s step
	tip := r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 1, StepDuration: 10})
	if !tip.Active {
		t.Fatalf("expected active pen tip mid-draw")
	}
	if math.Abs(tip.Point.X-110) > 1e-9 || math.Abs(tip.Point.Y-50) > 1e-9 {
		t.Fatalf("unexpected pen tip: %+v", tip.Point)
	}
	if rec.FillCount() != 0 {
		t.Fatalf("partial circle must not be filled")
	}

	rec.Reset()
	tip = r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 5, StepDuration: 10})
	if tip.Active || tip.Point != common.V2(100, 50) {
		t.Fatalf("idle pen tip should rest on the step origin, got %+v", tip)
	}
	if rec.FillCount() != 1 {
		t.Fatalf("complete filled circle should fill once, got %d", rec.FillCount())
	}
}

func TestNearBlackItemIsRecolored(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(singleStep(&plan.Path{Base: plan.Base{ID: "p", Color: "#000000"}, Points: []plan.PathPoint{{At: plan.Abs(0, 0)}, {At: plan.Abs(5, 5)}}}))
	rec := canvas.NewRecorder(50, 50)
	r.DrawComplete(rec, common.Identity(), 0)
	for _, op := range rec.Ops() {
		if op.Kind == canvas.OpStroke && op.Color != common.ColorForeground {
			t.Fatalf("near-black stroke was not replaced: %+v", op.Color)
		}
	}
}

func TestLayeringSkipsRedefinedItems(t *testing.T) {
	p := &plan.WhiteboardPlan{Steps: []plan.Step{
		{
			Origin: common.V2(0, 0),
			DrawingCommands: []plan.Item{
				&plan.Circle{Base: plan.Base{ID: "c1"}, Center: plan.Abs(0, 0), Radius: 10},
				&plan.Circle{Base: plan.Base{ID: "c2"}, Center: plan.Abs(50, 0), Radius: 10},
			},
			Annotations: []plan.Item{
				&plan.Text{Base: plan.Base{ID: "keep"}, Text: "A"},
				&plan.Text{Base: plan.Base{ID: "drop"}, Text: "B"},
			},
		},
		{
			Origin:           common.V2(0, 0),
			DrawingCommands:  []plan.Item{&plan.Circle{Base: plan.Base{ID: "c1"}, Center: plan.Abs(0, 0), Radius: 30}},
			RetainedLabelIDs: []string{"keep"},
		},
	}}
	r := renderer.NewRenderer()
	r.SetPlan(p)
	rec := canvas.NewRecorder(200, 200)
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 1, Elapsed: 10, StepDuration: 10})

	if rec.StrokeCount() != 2 {
		t.Fatalf("unexpected stroke count: got %d want 2", rec.StrokeCount())
	}
	for _, op := range rec.Ops() {
		if op.Kind != canvas.OpStroke || len(op.Points) == 0 {
			continue
		}
		if p0 := op.Points[0]; math.Abs(p0.X) < 1e-6 && math.Abs(p0.Y+10) < 1e-9 {
			t.Fatalf("the earlier definition of c1 was redrawn")
		}
	}
	texts := rec.TextOps()
	if len(texts) != 1 || texts[0].Text != "A" {
		t.Fatalf("only the retained label should remain, got %+v", texts)
	}
}

func TestPivotKeepsEarlierDiagramAtFullProgress(t *testing.T) {
	p := &plan.WhiteboardPlan{Steps: []plan.Step{
		{Origin: common.V2(0, 0), DrawingCommands: []plan.Item{&plan.Circle{Base: plan.Base{ID: "a"}, Radius: 10}}},
		{Origin: common.V2(500, 0), DrawingCommands: []plan.Item{&plan.Circle{Base: plan.Base{ID: "b"}, Radius: 10}}},
	}}
	r := renderer.NewRenderer()
	r.SetPlan(p)
	rec := canvas.NewRecorder(200, 200)
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 1, Elapsed: 0, StepDuration: 10})
	if rec.StrokeCount() != 1 {
		t.Fatalf("expected only the passed diagram to be drawn, got %d strokes", rec.StrokeCount())
	}
}

func TestHighlightAddsHalo(t *testing.T) {
	step := plan.Step{
		DrawingCommands: []plan.Item{&plan.Rectangle{Base: plan.Base{ID: "r"}, Width: 10, Height: 10}},
		HighlightIDs:    []string{"r"},
	}
	r := renderer.NewRenderer()
	r.SetPlan(&plan.WhiteboardPlan{Steps: []plan.Step{step}})
	rec := canvas.NewRecorder(100, 100)

	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 1, StepDuration: 10})
	if rec.StrokeCount() != 1 {
		t.Fatalf("halo must wait for completion, got %d strokes", rec.StrokeCount())
	}

	rec.Reset()
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 10, StepDuration: 10})
	if rec.StrokeCount() != 2 {
		t.Fatalf("expected halo plus outline, got %d strokes", rec.StrokeCount())
	}
	halo := rec.Ops()[1]
	if halo.Color.R != common.ColorHighlight.R || halo.LineWidth <= 3 {
		t.Fatalf("unexpected halo op: %+v", halo)
	}
}

func TestAnimateStartsAfterDraw(t *testing.T) {
	item := &plan.Rectangle{
		Base: plan.Base{ID: "r", Animate: &plan.AnimateSpec{
			To: plan.AnimProps{X: common.Ptr(100.0)}, Duration: 1, Ease: "linear",
		}},
		Width: 10, Height: 10,
	}
	r := renderer.NewRenderer()
	r.SetPlan(singleStep(item))
	rec := canvas.NewRecorder(400, 400)

	// completion at now=5 starts the tween
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 10, StepDuration: 10, Now: 5})
	first := rec.Ops()[1].Points[0]
	rec.Reset()
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 10, StepDuration: 10, Now: 5.5})
	second := rec.Ops()[1].Points[0]
	if math.Abs(second.X-first.X-50) > 1e-9 {
		t.Fatalf("expected a 50 unit shift halfway through the tween, got %v -> %v", first.X, second.X)
	}

	r.Reset()
	rec.Reset()
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 10, StepDuration: 10, Now: 9})
	if got := rec.Ops()[1].Points[0]; got != first {
		t.Fatalf("Reset should restart motion, got %+v want %+v", got, first)
	}
}

func TestDrawLoading(t *testing.T) {
	r := renderer.NewRenderer()
	rec := canvas.NewRecorder(300, 200)
	r.DrawLoading(rec, 0.3, "Preparing audio")
	if rec.FillCount() != 3 {
		t.Fatalf("expected three dots, got %d fills", rec.FillCount())
	}
	if len(rec.TextOps()) != 1 {
		t.Fatalf("expected loading message")
	}
}

func TestDrawOutOfRangeOnlyClears(t *testing.T) {
	r := renderer.NewRenderer()
	rec := canvas.NewRecorder(10, 10)
	tip := r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 3})
	if tip.Active || len(rec.Ops()) != 1 || rec.Ops()[0].Kind != canvas.OpClear {
		t.Fatalf("unexpected output for empty plan: %+v", rec.Ops())
	}
}

func atOrigin(items ...plan.Item) *plan.WhiteboardPlan {
	return &plan.WhiteboardPlan{Steps: []plan.Step{{Explanation: "one", DrawingCommands: items}}}
}

func timed(id string, duration float64) plan.Base {
	return plan.Base{ID: id, DrawDelay: common.Ptr(0.0), DrawDuration: common.Ptr(duration)}
}

func strokeAt(t *testing.T, r renderer.Renderer, elapsed float64) canvas.Op {
	t.Helper()
	rec := canvas.NewRecorder(200, 200)
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: elapsed, StepDuration: 10})
	for _, op := range rec.Ops() {
		if op.Kind == canvas.OpStroke {
			return op
		}
	}
	t.Fatalf("no stroke at elapsed %v", elapsed)
	return canvas.Op{}
}

func TestRectangleTracesClockwiseFromTopLeft(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(atOrigin(&plan.Rectangle{Base: timed("r", 4), Position: plan.Abs(10, 10), Width: 40, Height: 20}))

	// a quarter of the 120 unit perimeter stays on the top edge
	op := strokeAt(t, r, 1)
	want := []common.Vec2{common.V2(10, 10), common.V2(40, 10)}
	if !reflect.DeepEqual(op.Points, want) {
		t.Fatalf("unexpected points at t=0.25: got %v want %v", op.Points, want)
	}

	op = strokeAt(t, r, 2)
	want = []common.Vec2{common.V2(10, 10), common.V2(50, 10), common.V2(50, 30)}
	if !reflect.DeepEqual(op.Points, want) {
		t.Fatalf("unexpected points at t=0.5: got %v want %v", op.Points, want)
	}
}

func TestArrowHeadOnlyWhenComplete(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(atOrigin(&plan.Arrow{Base: timed("a", 4), From: plan.Abs(0, 0), To: plan.Abs(40, 0)}))

	rec := canvas.NewRecorder(100, 100)
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 3.9, StepDuration: 10})
	if rec.StrokeCount() != 1 {
		t.Fatalf("unexpected strokes before completion: got %d want 1", rec.StrokeCount())
	}

	rec.Reset()
	r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: 4, StepDuration: 10})
	if rec.StrokeCount() != 2 {
		t.Fatalf("unexpected strokes at completion: got %d want 2", rec.StrokeCount())
	}
	head := rec.Ops()[2]
	if len(head.Points) != 3 || head.Points[1] != common.V2(40, 0) {
		t.Fatalf("arrowhead should meet at the arrow tip, got %v", head.Points)
	}
	if head.Points[0].X >= 40 || head.Points[2].X >= 40 || head.Points[0].Y != -head.Points[2].Y {
		t.Fatalf("arrowhead barbs should trail the tip symmetrically, got %v", head.Points)
	}
}

func TestTextFadeAndContextualOpacity(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(atOrigin(
		&plan.Text{Base: timed("label", 6), Text: "fade", Position: plan.Abs(0, 0)},
		&plan.Text{Base: plan.Base{ID: "ctx"}, Text: "known", Position: plan.Abs(0, 40), IsContextual: true},
	))
	alphas := func(elapsed float64) map[string]uint8 {
		rec := canvas.NewRecorder(100, 100)
		r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: elapsed, StepDuration: 10})
		out := make(map[string]uint8)
		for _, op := range rec.TextOps() {
			out[op.Text] = op.Color.A
		}
		return out
	}

	got := alphas(0)
	if _, ok := got["fade"]; ok {
		t.Fatalf("label should not show before its window starts")
	}
	if got["known"] != 115 {
		t.Fatalf("unexpected contextual alpha: got %d want 115", got["known"])
	}

	// one sixth of the window is half of the fade
	if got = alphas(1); got["fade"] != 128 {
		t.Fatalf("unexpected alpha one sixth in: got %d want 128", got["fade"])
	}
	if got = alphas(2.5); got["fade"] != 255 {
		t.Fatalf("label should be opaque after a third of its window, got %d", got["fade"])
	}
}

func TestStrikethroughIsWavy(t *testing.T) {
	r := renderer.NewRenderer()
	r.SetPlan(atOrigin(&plan.Strikethrough{
		Base:       plan.Base{ID: "s"},
		Points:     []plan.PathPoint{{At: plan.Abs(0, 0)}, {At: plan.Abs(64, 0)}},
		Amplitude:  4,
		Wavelength: 16,
	}))
	rec := canvas.NewRecorder(100, 100)
	r.DrawComplete(rec, common.Identity(), 0)
	op := rec.Ops()[1]

	// samples every 2 units; a crest at x=4, back on the line at x=8, a trough at x=12
	if len(op.Points) < 7 {
		t.Fatalf("unexpected sample count: %d", len(op.Points))
	}
	crest, node, trough := op.Points[2], op.Points[4], op.Points[6]
	if math.Abs(crest.X-4) > 1e-9 || math.Abs(math.Abs(crest.Y)-4) > 1e-9 {
		t.Fatalf("unexpected crest: %+v", crest)
	}
	if math.Abs(node.X-8) > 1e-9 || math.Abs(node.Y) > 1e-9 {
		t.Fatalf("unexpected node: %+v", node)
	}
	if math.Abs(trough.X-12) > 1e-9 || math.Abs(trough.Y+crest.Y) > 1e-9 {
		t.Fatalf("trough should mirror the crest, got %+v and %+v", crest, trough)
	}
	end := op.Points[len(op.Points)-1]
	if math.Abs(end.X-64) > 1e-9 || math.Abs(end.Y) > 1e-9 {
		t.Fatalf("unexpected end point: %+v", end)
	}
}

func TestPhysicsStartsWhenBodyIsDrawn(t *testing.T) {
	step := plan.Step{
		DrawingCommands: []plan.Item{&plan.RigidBody{
			Base: timed("ball", 10), Shape: plan.ShapeCircle, Center: plan.Abs(0, 0), Radius: 5,
		}},
		Physics: &plan.PhysicsConfig{Gravity: common.V2(0, 500)},
	}
	r := renderer.NewRenderer()
	r.SetPlan(&plan.WhiteboardPlan{Steps: []plan.Step{step}})
	centerY := func(elapsed, now float64) float64 {
		rec := canvas.NewRecorder(100, 100)
		r.Draw(rec, common.Identity(), renderer.Frame{StepIndex: 0, Elapsed: elapsed, StepDuration: 20, Now: now})
		return rec.Ops()[1].Points[0].Y
	}

	start := centerY(1, 0)
	if got := centerY(1, 1); got != start {
		t.Fatalf("body moved while fading in: got y=%v want %v", got, start)
	}
	if got := centerY(10, 2); got != start {
		t.Fatalf("body should start from its seeded position: got y=%v want %v", got, start)
	}
	if got := centerY(10, 3); got <= start+0.5 {
		t.Fatalf("fully drawn body should fall: got y=%v from %v", got, start)
	}
}
