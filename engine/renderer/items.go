package renderer

import (
	"math"
	"strings"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/physics"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// style is the paint state for one pass over an item.
type style struct {
	stroke    common.Color
	lineWidth float64
	// halo passes only outline the shape: no fills, no text, no markers.
	halo bool
}

// drawItem paints it at progress t in step-local coordinates. The returned point is where the
// pen currently is, valid when t is strictly between 0 and 1.
func (r *renderer) drawItem(c canvas.Canvas, it plan.Item, t float64, st style, world physics.World) common.Vec2 {
	c.SetStrokeColor(st.stroke)
	c.SetLineWidth(st.lineWidth)

	switch v := it.(type) {
	case *plan.Circle:
		return r.drawCircle(c, v, t, st)
	case *plan.Rectangle:
		return r.drawRectangle(c, v, t, st)
	case *plan.Path:
		pts, ctrls := pathVertices(v.Points)
		return drawPolyline(c, pts, ctrls, v.Closed, t)
	case *plan.Arrow:
		return drawArrow(c, v, t)
	case *plan.Text:
		if !st.halo {
			r.drawText(c, v, t)
		}
		return v.Position.Vec()
	case *plan.Strikethrough:
		pts := wavy(v)
		return drawPolyline(c, pts, nil, false, t)
	case *plan.SoftBody:
		return r.drawSoftBody(c, v, t, world)
	case *plan.RigidBody:
		return r.drawRigidBody(c, v, t, st, world)
	default:
		panic("renderer: unhandled item type " + string(it.Kind()))
	}
}

func (r *renderer) fillColor(name string, st style) common.Color {
	return ResolveColor(name, st.stroke.WithAlpha(0.3), r.nearBlack)
}

func (r *renderer) drawCircle(c canvas.Canvas, v *plan.Circle, t float64, st style) common.Vec2 {
	center := v.Center.Vec()
	if v.Radius <= r.markerRadius {
		if st.halo {
			c.BeginPath()
			c.Arc(center.X, center.Y, v.Radius*t+st.lineWidth/2, 0, 2*math.Pi)
			c.ClosePath()
			c.Stroke()
			return center
		}
		// area grows with t squared
		c.SetFillColor(st.stroke)
		c.BeginPath()
		c.Arc(center.X, center.Y, v.Radius*t, 0, 2*math.Pi)
		c.ClosePath()
		c.Fill()
		return center
	}

	start := -math.Pi / 2
	end := start + 2*math.Pi*t
	c.BeginPath()
	c.Arc(center.X, center.Y, v.Radius, start, end)
	if t >= 1 {
		c.ClosePath()
		if v.IsFilled && !st.halo {
			c.SetFillColor(r.fillColor(v.FillColor, st))
			c.Fill()
		}
	}
	c.Stroke()
	s, co := math.Sincos(end)
	return common.V2(center.X+v.Radius*co, center.Y+v.Radius*s)
}

func (r *renderer) drawRectangle(c canvas.Canvas, v *plan.Rectangle, t float64, st style) common.Vec2 {
	x, y := v.Position.X, v.Position.Y
	corners := []common.Vec2{
		common.V2(x, y),
		common.V2(x+v.Width, y),
		common.V2(x+v.Width, y+v.Height),
		common.V2(x, y+v.Height),
		common.V2(x, y),
	}
	remaining := t * 2 * (math.Abs(v.Width) + math.Abs(v.Height))
	c.BeginPath()
	c.MoveTo(corners[0].X, corners[0].Y)
	tip := corners[0]
	for i := 0; i < 4 && remaining > 0; i++ {
		a, b := corners[i], corners[i+1]
		edge := a.Dist(b)
		if edge <= remaining {
			tip = b
			remaining -= edge
		} else {
			tip = a.Lerp(b, remaining/edge)
			remaining = 0
		}
		c.LineTo(tip.X, tip.Y)
	}
	if t >= 1 {
		c.ClosePath()
		if v.IsFilled && !st.halo {
			c.SetFillColor(r.fillColor(v.FillColor, st))
			c.Fill()
		}
	}
	c.Stroke()
	return tip
}

func pathVertices(pp []plan.PathPoint) ([]common.Vec2, []*common.Vec2) {
	pts := make([]common.Vec2, len(pp))
	ctrls := make([]*common.Vec2, len(pp))
	for i, p := range pp {
		pts[i] = p.At.Vec()
		if p.Control != nil {
			cv := p.Control.Vec()
			ctrls[i] = &cv
		}
	}
	return pts, ctrls
}

// drawPolyline strokes the first t of the polyline measured in whole segments: the segments before
// the current one are drawn complete and the current one partially. ctrls[i], when set, bends the
// segment that ends at vertex i into a quadratic curve.
func drawPolyline(c canvas.Canvas, pts []common.Vec2, ctrls []*common.Vec2, closed bool, t float64) common.Vec2 {
	n := len(pts)
	if n == 0 {
		return common.Vec2{}
	}
	if n == 1 {
		return pts[0]
	}
	segs := n - 1
	if closed {
		segs = n
	}
	total := t * float64(segs)
	full := int(math.Floor(total))
	frac := total - float64(full)

	ctrl := func(i int) *common.Vec2 {
		if i >= n || ctrls == nil {
			return nil
		}
		return ctrls[i]
	}

	c.BeginPath()
	c.MoveTo(pts[0].X, pts[0].Y)
	tip := pts[0]
	for i := 0; i < segs && i <= full; i++ {
		a, b := pts[i], pts[(i+1)%n]
		cp := ctrl(i + 1)
		f := 1.0
		if i == full {
			f = frac
			if f <= 0 {
				break
			}
		}
		if cp != nil {
			qc, end := common.SplitQuad(a, *cp, b, f)
			c.QuadTo(qc.X, qc.Y, end.X, end.Y)
			tip = end
		} else {
			tip = a.Lerp(b, f)
			c.LineTo(tip.X, tip.Y)
		}
	}
	if t >= 1 && closed {
		c.ClosePath()
	}
	c.Stroke()
	return tip
}

// wavy resamples the strikethrough polyline and offsets every sample along the normal by a sine
// of its arc length.
func wavy(v *plan.Strikethrough) []common.Vec2 {
	pts, ctrls := pathVertices(v.Points)
	if len(pts) < 2 {
		return pts
	}
	amp := common.Coalesce(v.Amplitude, 4)
	wl := common.Coalesce(v.Wavelength, 16)

	// flatten curves first
	flat := []common.Vec2{pts[0]}
	for i := 1; i < len(pts); i++ {
		if ctrls[i] == nil {
			flat = append(flat, pts[i])
			continue
		}
		for k := 1; k <= 8; k++ {
			flat = append(flat, common.QuadPoint(pts[i-1], *ctrls[i], pts[i], float64(k)/8))
		}
	}

	step := wl / 8
	out := []common.Vec2{flat[0]}
	s := 0.0
	for i := 1; i < len(flat); i++ {
		a, b := flat[i-1], flat[i]
		seg := a.Dist(b)
		if seg == 0 {
			continue
		}
		normal := b.Sub(a).Scale(1 / seg).Perp()
		for d := step; d < seg; d += step {
			p := a.Lerp(b, d/seg)
			out = append(out, p.Add(normal.Scale(amp*math.Sin(2*math.Pi*(s+d)/wl))))
		}
		s += seg
		out = append(out, b.Add(normal.Scale(amp*math.Sin(2*math.Pi*s/wl))))
	}
	return out
}

func drawArrow(c canvas.Canvas, v *plan.Arrow, t float64) common.Vec2 {
	from, to := v.From.Vec(), v.To.Vec()
	c.BeginPath()
	c.MoveTo(from.X, from.Y)
	var tip common.Vec2
	tail := from
	if v.Control != nil {
		cp := v.Control.Vec()
		qc, end := common.SplitQuad(from, cp, to, t)
		c.QuadTo(qc.X, qc.Y, end.X, end.Y)
		tip = end
		tail = cp
	} else {
		tip = from.Lerp(to, t)
		c.LineTo(tip.X, tip.Y)
	}
	c.Stroke()

	if t < 1 {
		return tip
	}
	dir := to.Sub(tail).Normalize()
	if dir == (common.Vec2{}) {
		return tip
	}
	size := common.Coalesce(v.HeadSize, 12)
	left := rotate(dir, math.Pi/6).Scale(-size).Add(to)
	right := rotate(dir, -math.Pi/6).Scale(-size).Add(to)
	c.BeginPath()
	c.MoveTo(left.X, left.Y)
	c.LineTo(to.X, to.Y)
	c.LineTo(right.X, right.Y)
	c.Stroke()
	return tip
}

func rotate(v common.Vec2, theta float64) common.Vec2 {
	s, co := math.Sincos(theta)
	return common.V2(v.X*co-v.Y*s, v.X*s+v.Y*co)
}

// drawText paints a label whose Position is the anchor of its first line's vertical middle.
// Non-contextual labels fade in over the first third of their window.
func (r *renderer) drawText(c canvas.Canvas, v *plan.Text, t float64) {
	alpha := r.contextualOpacity
	if !v.IsContextual {
		alpha = common.Clamp01(t * 3)
	}
	if alpha <= 0 || v.Text == "" {
		return
	}
	size := common.Coalesce(v.FontSize, r.fontSize)
	color := ResolveColor(v.Color, r.foreground, r.nearBlack)

	c.Save()
	c.SetAlpha(c.Alpha() * alpha)
	c.SetFillColor(color)
	for i, line := range strings.Split(v.Text, "\n") {
		w := c.MeasureText(line, size)
		x := v.Position.X
		switch strings.ToLower(v.Align) {
		case "center", "middle":
			x -= w / 2
		case "right", "end":
			x -= w
		}
		y := v.Position.Y + size*0.35 + float64(i)*size*1.25
		c.FillText(line, x, y, size)
	}
	c.Restore()
}

func (r *renderer) drawSoftBody(c canvas.Canvas, v *plan.SoftBody, t float64, world physics.World) common.Vec2 {
	var g physics.Grid
	ok := false
	if world != nil {
		g, ok = world.SoftBody(v.ID)
	}
	if !ok {
		g = seedGrid(v)
	}
	if len(g.Points) == 0 {
		return v.Origin.Vec()
	}

	c.Save()
	c.SetAlpha(c.Alpha() * t)
	for row := 0; row < g.Rows; row++ {
		c.BeginPath()
		for col := 0; col < g.Cols; col++ {
			p := g.At(col, row)
			c.LineTo(p.X, p.Y)
		}
		c.Stroke()
	}
	for col := 0; col < g.Cols; col++ {
		c.BeginPath()
		for row := 0; row < g.Rows; row++ {
			p := g.At(col, row)
			c.LineTo(p.X, p.Y)
		}
		c.Stroke()
	}
	c.Restore()
	return g.At(g.Cols/2, g.Rows/2)
}

func seedGrid(v *plan.SoftBody) physics.Grid {
	cols, rows := max(v.Cols, 2), max(v.Rows, 2)
	spacing := common.Coalesce(v.Spacing, 20)
	o := v.Origin.Vec()
	g := physics.Grid{Cols: cols, Rows: rows, Points: make([]common.Vec2, 0, cols*rows)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			g.Points = append(g.Points, o.Add(common.V2(float64(col)*spacing, float64(row)*spacing)))
		}
	}
	return g
}

func (r *renderer) drawRigidBody(c canvas.Canvas, v *plan.RigidBody, t float64, st style, world physics.World) common.Vec2 {
	var b physics.Body
	ok := false
	if world != nil {
		b, ok = world.RigidBody(v.ID)
	}
	if !ok {
		b = physics.Body{Shape: v.Shape, Center: v.Center.Vec(), Radius: common.Coalesce(v.Radius, 10),
			Width: common.Coalesce(v.Width, 20), Height: common.Coalesce(v.Height, 20)}
	}

	c.Save()
	c.SetAlpha(c.Alpha() * t)
	c.BeginPath()
	if b.Shape == plan.ShapeRectangle {
		x, y := b.Center.X-b.Width/2, b.Center.Y-b.Height/2
		c.MoveTo(x, y)
		c.LineTo(x+b.Width, y)
		c.LineTo(x+b.Width, y+b.Height)
		c.LineTo(x, y+b.Height)
	} else {
		c.Arc(b.Center.X, b.Center.Y, b.Radius, 0, 2*math.Pi)
	}
	c.ClosePath()
	if !st.halo {
		c.SetFillColor(st.stroke.WithAlpha(0.3))
		c.Fill()
	}
	c.Stroke()
	c.Restore()
	return b.Center
}

// anchor returns the pivot used for an item's motion.
func anchor(it plan.Item) common.Vec2 {
	switch v := it.(type) {
	case *plan.Circle:
		return v.Center.Vec()
	case *plan.Rectangle:
		return common.V2(v.Position.X+v.Width/2, v.Position.Y+v.Height/2)
	case *plan.Path:
		return centroid(v.Points)
	case *plan.Strikethrough:
		return centroid(v.Points)
	case *plan.Arrow:
		return v.From.Vec().Lerp(v.To.Vec(), 0.5)
	case *plan.Text:
		return v.Position.Vec()
	case *plan.SoftBody:
		g := seedGrid(v)
		return g.At(g.Cols/2, g.Rows/2)
	case *plan.RigidBody:
		return v.Center.Vec()
	default:
		panic("renderer: unhandled item type " + string(it.Kind()))
	}
}

func centroid(pp []plan.PathPoint) common.Vec2 {
	if len(pp) == 0 {
		return common.Vec2{}
	}
	var sum common.Vec2
	for _, p := range pp {
		sum = sum.Add(p.At.Vec())
	}
	return sum.Scale(1 / float64(len(pp)))
}
