package canvas

import (
	"github.com/gogpu/gg"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// OpKind names a recorded paint operation.
type OpKind string

const (
	OpClear    OpKind = "clear"
	OpStroke   OpKind = "stroke"
	OpFill     OpKind = "fill"
	OpFillText OpKind = "fillText"
)

// Op is one recorded paint operation together with the state it was issued under.
type Op struct {
	Kind OpKind
	// Color is the paint color with the global alpha already applied.
	Color common.Color
	// Segments is the number of line segments in the path at the time of a stroke or fill.
	Segments int
	// Points are the device-space vertices of every sub-path, in order.
	Points    []common.Vec2
	LineWidth float64
	Text      string
	Size      float64
	At        common.Vec2
}

// Visible reports whether the operation paints anything.
func (o Op) Visible() bool {
	switch o.Kind {
	case OpClear:
		return true
	case OpFillText:
		return o.Color.A > 0 && o.Text != ""
	}
	return o.Color.A > 0 && o.Segments > 0
}

// Recorder is a Canvas that records paint operations instead of rasterizing them.
type Recorder interface {
	Canvas

	// Ops returns every recorded operation in issue order.
	//
	// Returns:
	//   - []Op: the operations
	Ops() []Op

	// StrokeCount returns the number of visible strokes.
	StrokeCount() int

	// FillCount returns the number of visible fills.
	FillCount() int

	// TextOps returns the visible text operations.
	TextOps() []Op

	// Reset discards recorded operations and restores the default state.
	Reset()
}

type frame struct {
	m  gg.Matrix
	st style
}

type recorder struct {
	m             gg.Matrix
	st            style
	saved         []frame
	path          *gg.Path
	open          bool
	width, height int
	ops           []Op
}

var _ Recorder = &recorder{}

// NewRecorder creates a recording canvas that reports the given size.
func NewRecorder(width, height int) Recorder {
	return &recorder{m: gg.Identity(), st: defaultStyle(), path: gg.NewPath(), width: width, height: height}
}

func (r *recorder) Size() (int, int) { return r.width, r.height }

func (r *recorder) Clear(c common.Color) {
	r.ops = append(r.ops, Op{Kind: OpClear, Color: c})
}

func (r *recorder) Save() { r.saved = append(r.saved, frame{m: r.m, st: r.st}) }

func (r *recorder) Restore() {
	if len(r.saved) == 0 {
		return
	}
	f := r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
	r.m, r.st = f.m, f.st
}

func (r *recorder) Translate(x, y float64) { r.m = r.m.Multiply(gg.Translate(x, y)) }

func (r *recorder) Rotate(theta float64) { r.m = r.m.Multiply(gg.Rotate(theta)) }

func (r *recorder) Scale(sx, sy float64) { r.m = r.m.Multiply(gg.Scale(sx, sy)) }

func (r *recorder) SetTransform(m common.Affine) { r.m = toMatrix(m) }

func (r *recorder) Transform() common.Affine { return fromMatrix(r.m) }

func (r *recorder) SetAlpha(a float64) { r.st.alpha = common.Clamp01(a) }

func (r *recorder) Alpha() float64 { return r.st.alpha }

func (r *recorder) SetStrokeColor(c common.Color) { r.st.stroke = c }

func (r *recorder) SetFillColor(c common.Color) { r.st.fill = c }

func (r *recorder) SetLineWidth(w float64) { r.st.lineWidth = w }

func (r *recorder) BeginPath() {
	r.path.Clear()
	r.open = false
}

func (r *recorder) device(x, y float64) gg.Point {
	return r.m.TransformPoint(gg.Pt(x, y))
}

func (r *recorder) MoveTo(x, y float64) {
	p := r.device(x, y)
	r.path.MoveTo(p.X, p.Y)
	r.open = true
}

func (r *recorder) LineTo(x, y float64) {
	if !r.open {
		r.MoveTo(x, y)
		return
	}
	p := r.device(x, y)
	r.path.LineTo(p.X, p.Y)
}

func (r *recorder) QuadTo(cx, cy, x, y float64) {
	if !r.open {
		r.MoveTo(cx, cy)
	}
	c, p := r.device(cx, cy), r.device(x, y)
	r.path.QuadraticTo(c.X, c.Y, p.X, p.Y)
}

func (r *recorder) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c1, c2, p := r.device(c1x, c1y), r.device(c2x, c2y), r.device(x, y)
	r.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (r *recorder) Arc(cx, cy, radius, start, end float64) {
	if appendArc(r, r.open, cx, cy, radius, start, end) {
		r.open = true
	}
}

func (r *recorder) ClosePath() {
	if r.open {
		r.path.Close()
	}
	r.open = false
}

func (r *recorder) Stroke() {
	r.record(OpStroke, r.st.stroke)
}

func (r *recorder) Fill() {
	r.record(OpFill, r.st.fill)
}

// segments counts the drawing verbs of the path; a close adds one when its sub-path has any.
func (r *recorder) segments() int {
	n, sub := 0, 0
	r.path.Iterate(func(verb gg.PathVerb, _ []float64) {
		switch verb {
		case gg.MoveTo:
			sub = 0
		case gg.Close:
			if sub > 0 {
				n++
			}
		default:
			n++
			sub++
		}
	})
	return n
}

func (r *recorder) record(kind OpKind, c common.Color) {
	var pts []common.Vec2
	for _, p := range r.path.Flatten(0.25) {
		pts = append(pts, common.V2(p.X, p.Y))
	}
	r.ops = append(r.ops, Op{
		Kind:      kind,
		Color:     c.WithAlpha(r.st.alpha),
		Segments:  r.segments(),
		Points:    pts,
		LineWidth: r.st.lineWidth * r.Transform().ScaleFactor(),
	})
}

func (r *recorder) FillText(s string, x, y, size float64) {
	r.ops = append(r.ops, Op{
		Kind:  OpFillText,
		Color: r.st.fill.WithAlpha(r.st.alpha),
		Text:  s,
		Size:  size * r.Transform().ScaleFactor(),
		At:    r.Transform().Apply(common.V2(x, y)),
	})
}

// MeasureText approximates a proportional font at 0.55 em per rune.
func (r *recorder) MeasureText(s string, size float64) float64 {
	return float64(len([]rune(s))) * size * 0.55
}

func (r *recorder) Ops() []Op { return r.ops }

func (r *recorder) StrokeCount() int { return r.count(OpStroke) }

func (r *recorder) FillCount() int { return r.count(OpFill) }

func (r *recorder) count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind && op.Visible() {
			n++
		}
	}
	return n
}

func (r *recorder) TextOps() []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == OpFillText && op.Visible() {
			out = append(out, op)
		}
	}
	return out
}

func (r *recorder) Reset() {
	r.ops = nil
	r.path.Clear()
	r.open = false
	r.m, r.st, r.saved = gg.Identity(), defaultStyle(), nil
}
