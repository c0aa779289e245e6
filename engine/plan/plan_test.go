package plan_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

const samplePlan = `{
  "narrationSummary": "bisecting a segment",
  "steps": [
    {
      "origin": {"x": 100, "y": 50},
      "explanation": "Draw two circles of equal radius",
      "drawingCommands": [
        {"type": "circle", "id": "c1", "center": {"x": 0, "y": 0}, "radius": 5, "color": "#000"},
        {"type": "circle", "id": "c2", "center": {"x": 10, "y": 0}, "radius": 5, "drawDelay": 1, "drawDuration": 2}
      ],
      "annotations": [
        {"type": "text", "id": "lbl", "text": "A", "position": {"x": -2, "y": -2}, "isContextual": true}
      ]
    },
    {
      "origin": {"x": 100, "y": 50},
      "explanation": "Join the intersections",
      "drawingCommands": [
        {"type": "path", "id": "p", "points": [
          {"referenceCircleId1": "c1", "referenceCircleId2": "c2", "intersectionIndex": 0},
          {"referenceCircleId1": "c1", "referenceCircleId2": "c2", "intersectionIndex": 1, "control": {"x": 3, "y": 0}}
        ]},
        {"type": "arrow", "id": "a", "from": {"x": 0, "y": 0}, "to": {"x": 5, "y": 5}, "animate": {"to": {"x": 10}, "duration": 1, "ease": "power2.out"}}
      ],
      "highlightIds": ["p"],
      "retainedLabelIds": ["lbl"]
    }
  ]
}`

func TestDecodeDispatchesOnType(t *testing.T) {
	p, err := plan.Decode(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("unexpected step count: got %d want 2", p.Len())
	}
	if p.Summary != "bisecting a segment" {
		t.Fatalf("unexpected summary: got %q", p.Summary)
	}

	first := p.Steps[0]
	c1, ok := first.DrawingCommands[0].(*plan.Circle)
	if !ok {
		t.Fatalf("unexpected item type: got %T want *plan.Circle", first.DrawingCommands[0])
	}
	if c1.ID != "c1" || c1.Radius != 5 || c1.Color != "#000" {
		t.Fatalf("unexpected circle: %+v", c1)
	}
	if c1.HasExplicitTiming() {
		t.Fatalf("c1 should not have explicit timing")
	}
	c2 := first.DrawingCommands[1].(*plan.Circle)
	if !c2.HasExplicitTiming() || *c2.DrawDelay != 1 || *c2.DrawDuration != 2 {
		t.Fatalf("unexpected c2 timing: %+v", c2.Base)
	}
	lbl, ok := first.Annotations[0].(*plan.Text)
	if !ok || !lbl.IsContextual || lbl.Text != "A" {
		t.Fatalf("unexpected annotation: %#v", first.Annotations[0])
	}

	second := p.Steps[1]
	path := second.DrawingCommands[0].(*plan.Path)
	if len(path.Points) != 2 {
		t.Fatalf("unexpected path length: got %d want 2", len(path.Points))
	}
	if !path.Points[0].At.IsRelative() || path.Points[0].At.Rel.Index != 0 {
		t.Fatalf("unexpected first vertex: %+v", path.Points[0])
	}
	if path.Points[1].Control == nil || path.Points[1].Control.X != 3 {
		t.Fatalf("expected control point on second vertex")
	}
	arrow := second.DrawingCommands[1].(*plan.Arrow)
	if arrow.Animate == nil || arrow.Animate.To.X == nil || *arrow.Animate.To.X != 10 {
		t.Fatalf("unexpected animate spec: %+v", arrow.Animate)
	}
	if !second.IsHighlighted("p") || second.IsHighlighted("a") {
		t.Fatalf("unexpected highlight membership")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	src := `{"steps":[{"origin":{"x":0,"y":0},"explanation":"","drawingCommands":[{"type":"hexagon","id":"h"}],"annotations":[]}]}`
	_, err := plan.Decode(strings.NewReader(src))
	if !errors.Is(err, plan.ErrUnknownItemType) {
		t.Fatalf("unexpected error: got %v want ErrUnknownItemType", err)
	}
}

func TestRoundTripKeepsTypeTags(t *testing.T) {
	p, err := plan.Decode(strings.NewReader(samplePlan))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	var buf bytes.Buffer
	if err := plan.Encode(&buf, p); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if !strings.Contains(buf.String(), `"type": "circle"`) {
		t.Fatalf("encoded plan is missing type tags:\n%s", buf.String())
	}
	again, err := plan.Decode(&buf)
	if err != nil {
		t.Fatalf("unexpected re-decode error: %v", err)
	}
	if got := again.Steps[1].DrawingCommands[0].(*plan.Path).Points[1].At.Rel.Circle2; got != "c2" {
		t.Fatalf("unexpected relative ref after round trip: got %q want %q", got, "c2")
	}
}

func TestNewItemCoversAllKinds(t *testing.T) {
	for _, k := range plan.AllKinds {
		it, err := plan.NewItem(k)
		if err != nil {
			t.Fatalf("NewItem(%q): %v", k, err)
		}
		if it.Kind() != k {
			t.Fatalf("unexpected kind: got %q want %q", it.Kind(), k)
		}
		it.Common().ID = "x"
		if it.Common().ID != "x" {
			t.Fatalf("Common should return a pointer into the item")
		}
	}
}

func TestDiagramStartAndFind(t *testing.T) {
	mk := func(x float64, ids ...string) plan.Step {
		s := plan.Step{Origin: common.V2(x, 0)}
		for _, id := range ids {
			s.DrawingCommands = append(s.DrawingCommands, &plan.Circle{Base: plan.Base{ID: id}})
		}
		return s
	}
	p := &plan.WhiteboardPlan{Steps: []plan.Step{mk(0, "a"), mk(0, "b"), mk(50, "c"), mk(50, "d"), mk(0, "e")}}

	tests := []struct {
		step int
		want int
	}{
		{0, 0}, {1, 0}, {2, 2}, {3, 2}, {4, 4}, {5, -1},
	}
	for _, tc := range tests {
		if got := p.DiagramStart(tc.step); got != tc.want {
			t.Fatalf("DiagramStart(%d): got %d want %d", tc.step, got, tc.want)
		}
	}

	it, idx := p.Find("d", 4)
	if it == nil || idx != 3 {
		t.Fatalf("unexpected Find result: %v at %d", it, idx)
	}
	if it, _ := p.Find("d", 2); it != nil {
		t.Fatalf("Find should not look past upTo")
	}
}

func TestWordCountAndPhysics(t *testing.T) {
	s := plan.Step{
		Explanation: "  the quick   brown fox ",
		Annotations: []plan.Item{&plan.SoftBody{Base: plan.Base{ID: "cloth"}, Cols: 3, Rows: 3}},
	}
	if s.WordCount() != 4 {
		t.Fatalf("unexpected word count: got %d want 4", s.WordCount())
	}
	if !s.HasPhysics() {
		t.Fatalf("expected soft body to enable physics")
	}
	if _, ok := s.ItemIDs()["cloth"]; !ok {
		t.Fatalf("expected cloth in item ids")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	p, err := plan.Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("unexpected step count: got %d", p.Len())
	}
	if _, err := plan.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
