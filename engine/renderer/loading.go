package renderer

import (
	"math"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
)

// DrawLoading paints three dots pulsing in sequence at the center of the surface, with message
// centered underneath. It draws in device space and ignores the viewport.
func (r *renderer) DrawLoading(c canvas.Canvas, phase float64, message string) {
	c.Clear(r.background)
	w, h := c.Size()
	cx, cy := float64(w)/2, float64(h)/2

	c.Save()
	defer c.Restore()
	c.SetTransform(common.Identity())
	c.SetFillColor(r.foreground)

	const (
		dots    = 3
		spacing = 22.0
		radius  = 6.0
		period  = 1.2
	)
	for i := 0; i < dots; i++ {
		// each dot lags the previous one by a third of the period
		p := math.Mod(phase/period+float64(i)/dots, 1)
		pulse := 0.5 + 0.5*math.Sin(2*math.Pi*p)
		c.SetAlpha(0.3 + 0.7*pulse)
		x := cx + (float64(i)-1)*spacing
		c.BeginPath()
		c.Arc(x, cy, radius*(0.7+0.3*pulse), 0, 2*math.Pi)
		c.ClosePath()
		c.Fill()
	}

	if message == "" {
		return
	}
	c.SetAlpha(0.8)
	size := r.fontSize * 0.8
	tw := c.MeasureText(message, size)
	c.FillText(message, cx-tw/2, cy+radius+size*1.6, size)
}
