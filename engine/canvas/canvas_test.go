package canvas_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
)

func pixel(r canvas.Raster, x, y int) common.Color {
	c := r.Image().RGBAAt(x, y)
	return common.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// sameColor compares channels with a small tolerance for anti-aliasing rounding.
func sameColor(a, b common.Color) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestRasterClearAndFill(t *testing.T) {
	r := canvas.NewRaster(40, 30)
	r.Clear(common.ColorBoard)
	if got := pixel(r, 5, 5); !sameColor(got, common.ColorBoard) {
		t.Fatalf("unexpected clear color: got %+v want %+v", got, common.ColorBoard)
	}

	red := common.Color{R: 255, A: 255}
	r.SetFillColor(red)
	r.BeginPath()
	r.MoveTo(10, 10)
	r.LineTo(30, 10)
	r.LineTo(30, 20)
	r.LineTo(10, 20)
	r.ClosePath()
	r.Fill()

	if got := pixel(r, 20, 15); !sameColor(got, red) {
		t.Fatalf("unexpected fill color inside: got %+v", got)
	}
	if got := pixel(r, 5, 5); !sameColor(got, common.ColorBoard) {
		t.Fatalf("fill leaked outside the path: got %+v", got)
	}
}

func TestRasterFillClockwiseAndOffscreen(t *testing.T) {
	r := canvas.NewRaster(20, 20)
	r.Clear(common.ColorBoard)
	blue := common.Color{B: 255, A: 255}
	r.SetFillColor(blue)
	r.BeginPath()
	// partly off the left and top edges, wound the other way
	r.MoveTo(-10, -10)
	r.LineTo(-10, 10)
	r.LineTo(10, 10)
	r.LineTo(10, -10)
	r.ClosePath()
	r.Fill()
	if got := pixel(r, 4, 4); !sameColor(got, blue) {
		t.Fatalf("unexpected color for off-screen polygon: got %+v", got)
	}
	if got := pixel(r, 15, 15); !sameColor(got, common.ColorBoard) {
		t.Fatalf("unexpected color outside polygon: got %+v", got)
	}
}

func TestRasterStroke(t *testing.T) {
	r := canvas.NewRaster(50, 50)
	r.Clear(common.ColorBoard)
	r.SetStrokeColor(common.ColorForeground)
	r.SetLineWidth(4)
	r.BeginPath()
	r.MoveTo(5, 25)
	r.LineTo(45, 25)
	r.Stroke()

	if got := pixel(r, 25, 25); !sameColor(got, common.ColorForeground) {
		t.Fatalf("expected stroke pixel on the line, got %+v", got)
	}
	if got := pixel(r, 25, 10); !sameColor(got, common.ColorBoard) {
		t.Fatalf("stroke leaked away from the line: got %+v", got)
	}
}

func TestRasterTransformAndRestore(t *testing.T) {
	r := canvas.NewRaster(60, 60)
	r.Clear(common.ColorBoard)
	green := common.Color{G: 255, A: 255}
	r.SetFillColor(green)

	r.Save()
	r.Translate(30, 30)
	r.Scale(2, 2)
	r.BeginPath()
	r.Arc(0, 0, 5, 0, 2*math.Pi)
	r.ClosePath()
	r.Fill()
	r.Restore()

	if got := pixel(r, 30+8, 30); !sameColor(got, green) {
		t.Fatalf("expected scaled circle to cover (38,30), got %+v", got)
	}
	if m := r.Transform(); m != common.Identity() {
		t.Fatalf("transform not restored: %+v", m)
	}
}

func TestRasterAlpha(t *testing.T) {
	r := canvas.NewRaster(10, 10)
	r.Clear(common.Color{A: 255})
	r.SetAlpha(0)
	r.SetFillColor(common.Color{R: 255, G: 255, B: 255, A: 255})
	r.BeginPath()
	r.MoveTo(0, 0)
	r.LineTo(10, 0)
	r.LineTo(10, 10)
	r.LineTo(0, 10)
	r.Fill()
	if got := pixel(r, 5, 5); got != (common.Color{A: 255}) {
		t.Fatalf("zero alpha fill should not paint, got %+v", got)
	}
}

func TestRasterTextAndPNG(t *testing.T) {
	r := canvas.NewRaster(120, 40)
	r.Clear(common.ColorBoard)
	if w := r.MeasureText("hello", 16); w <= 0 {
		t.Fatalf("expected positive text width, got %v", w)
	}
	r.SetFillColor(common.ColorForeground)
	r.FillText("hello", 5, 25, 16)

	changed := false
	img := r.Image()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != common.ColorBoard.R {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatalf("FillText did not paint any pixel")
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("unexpected SavePNG error: %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("expected non-empty png, stat err %v", err)
	}

	px := r.Pixels()
	if px.Width != 120 || px.Height != 40 || len(px.Pixels) != 120*40*4 {
		t.Fatalf("unexpected staging data: %dx%d len %d", px.Width, px.Height, len(px.Pixels))
	}
}

func TestRasterResize(t *testing.T) {
	r := canvas.NewRaster(0, 0)
	if w, h := r.Size(); w != 1 || h != 1 {
		t.Fatalf("unexpected minimum size: %dx%d", w, h)
	}
	r.Resize(64, 32)
	if w, h := r.Size(); w != 64 || h != 32 {
		t.Fatalf("unexpected size after resize: %dx%d", w, h)
	}
}

func TestRecorderCounts(t *testing.T) {
	rec := canvas.NewRecorder(100, 100)
	rec.BeginPath()
	rec.Arc(0, 0, 10, 0, 0)
	rec.Stroke()
	if rec.StrokeCount() != 0 {
		t.Fatalf("zero-sweep arc should not count as a visible stroke")
	}

	rec.BeginPath()
	rec.MoveTo(0, 0)
	rec.QuadTo(5, 5, 10, 0)
	rec.Stroke()
	rec.SetAlpha(0)
	rec.Stroke()
	if rec.StrokeCount() != 1 {
		t.Fatalf("unexpected stroke count: got %d want 1", rec.StrokeCount())
	}

	rec.SetAlpha(1)
	rec.Translate(10, 20)
	rec.FillText("x", 1, 2, 12)
	ops := rec.TextOps()
	if len(ops) != 1 || ops[0].At != common.V2(11, 22) {
		t.Fatalf("unexpected text ops: %+v", ops)
	}

	rec.Reset()
	if len(rec.Ops()) != 0 || rec.Transform() != common.Identity() {
		t.Fatalf("Reset should clear ops and state")
	}
}

func TestRecorderArcJoinsOpenPath(t *testing.T) {
	rec := canvas.NewRecorder(100, 100)
	rec.BeginPath()
	rec.MoveTo(0, 0)
	rec.Arc(20, 0, 10, 0, math.Pi)
	rec.Stroke()

	op := rec.Ops()[0]
	if op.Points[0] != common.V2(0, 0) {
		t.Fatalf("unexpected first point: got %+v want origin", op.Points[0])
	}
	// the line to the arc start plus two quarter-circle cubics
	if op.Segments != 3 {
		t.Fatalf("unexpected segment count: got %d want 3", op.Segments)
	}
	last := op.Points[len(op.Points)-1]
	if math.Abs(last.X-10) > 1e-6 || math.Abs(last.Y) > 1e-6 {
		t.Fatalf("unexpected arc end: got %+v want (10, 0)", last)
	}

	rec.BeginPath()
	rec.Arc(0, 0, 5, 0, 2*math.Pi)
	rec.ClosePath()
	rec.Fill()
	if got := rec.Ops()[1].Points[0]; math.Abs(got.X-5) > 1e-9 || math.Abs(got.Y) > 1e-9 {
		t.Fatalf("arc on an empty path should start a sub-path at its first point, got %+v", got)
	}
}

func TestRecorderTransformsPoints(t *testing.T) {
	rec := canvas.NewRecorder(100, 100)
	rec.Translate(10, 0)
	rec.Scale(2, 2)
	rec.SetLineWidth(3)
	rec.BeginPath()
	rec.MoveTo(1, 1)
	rec.LineTo(2, 1)
	rec.Stroke()

	op := rec.Ops()[0]
	if op.Points[0] != common.V2(12, 2) || op.Points[1] != common.V2(14, 2) {
		t.Fatalf("unexpected device points: %+v", op.Points)
	}
	if op.LineWidth != 6 {
		t.Fatalf("unexpected line width: got %v want 6", op.LineWidth)
	}

	rec.SetTransform(common.Identity())
	rec.Rotate(math.Pi / 2)
	p := rec.Transform().Apply(common.V2(1, 0))
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-1) > 1e-9 {
		t.Fatalf("unexpected rotated point: got %+v want (0, 1)", p)
	}
}

func TestRasterFillThenStrokeKeepsPath(t *testing.T) {
	r := canvas.NewRaster(40, 40)
	r.Clear(common.ColorBoard)
	fill := common.Color{R: 200, A: 255}
	r.SetFillColor(fill)
	r.SetStrokeColor(common.ColorForeground)
	r.SetLineWidth(4)
	r.BeginPath()
	r.MoveTo(10, 10)
	r.LineTo(30, 10)
	r.LineTo(30, 30)
	r.LineTo(10, 30)
	r.ClosePath()
	r.Fill()
	r.Stroke()

	if got := pixel(r, 20, 20); !sameColor(got, fill) {
		t.Fatalf("unexpected interior color: got %+v want %+v", got, fill)
	}
	if got := pixel(r, 20, 10); !sameColor(got, common.ColorForeground) {
		t.Fatalf("outline should be stroked after the fill, got %+v", got)
	}
}
