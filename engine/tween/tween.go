package tween

import (
	"math"

	"github.com/tanema/gween"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/canvas"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// State is the evaluated motion of one item at one instant.
type State struct {
	Offset   common.Vec2
	Rotation float64 // radians
	Scale    float64
	Opacity  float64
	// Done is true once a finite tween has played all its cycles.
	Done bool
}

// Rest is the state of an item that has no motion applied.
var Rest = State{Scale: 1, Opacity: 1}

type props struct {
	x, y, scale, rotation, opacity float64
}

var restProps = props{scale: 1, opacity: 1}

func (p props) with(a plan.AnimProps) props {
	p.x = common.Deref(a.X, p.x)
	p.y = common.Deref(a.Y, p.y)
	p.scale = common.Deref(a.Scale, p.scale)
	p.rotation = common.Deref(a.Rotation, p.rotation)
	p.opacity = common.Deref(a.Opacity, p.opacity)
	return p
}

func (p props) lerp(o props, t float64) props {
	return props{
		x:        common.Lerp(p.x, o.x, t),
		y:        common.Lerp(p.y, o.y, t),
		scale:    common.Lerp(p.scale, o.scale, t),
		rotation: common.Lerp(p.rotation, o.rotation, t),
		opacity:  common.Lerp(p.opacity, o.opacity, t),
	}
}

func (p props) state(done bool) State {
	return State{
		Offset:   common.V2(p.x, p.y),
		Rotation: p.rotation * math.Pi / 180,
		Scale:    p.scale,
		Opacity:  common.Clamp01(p.opacity),
		Done:     done,
	}
}

// Evaluate computes the motion state of spec at elapsed seconds after the tween started.
//
// During the delay the "from" values are held. Each cycle lasts Duration seconds and there are
// Repeat+1 cycles, or infinitely many when Repeat is negative. With Yoyo set every odd cycle
// runs backwards. A zero duration jumps straight to the final values.
//
// Parameters:
//   - spec: the animation; nil yields Rest
//   - elapsed: seconds since the item's draw completed
//
// Returns:
//   - State: the evaluated state
func Evaluate(spec *plan.AnimateSpec, elapsed float64) State {
	if spec == nil {
		return Rest
	}
	from := restProps.with(spec.From)
	to := from.with(spec.To)
	fn, _ := Ease(spec.Ease)

	local := elapsed - spec.Delay
	if local < 0 {
		return from.state(false)
	}
	if spec.Duration <= 0 {
		return to.state(true)
	}

	cycle := math.Floor(local / spec.Duration)
	if spec.Repeat >= 0 && cycle > float64(spec.Repeat) {
		last := float64(spec.Repeat)
		if spec.Yoyo && math.Mod(last, 2) == 1 {
			return from.state(true)
		}
		return to.state(true)
	}
	// One gween tween per cycle over normalized progress; yoyo cycles run it backwards.
	t := local - cycle*spec.Duration
	if spec.Yoyo && math.Mod(cycle, 2) == 1 {
		t = spec.Duration - t
	}
	p, _ := gween.New(0, 1, float32(spec.Duration), fn).Set(float32(t))
	return from.lerp(to, float64(p)).state(false)
}

// Apply composes the state into c around anchor: translate, rotate, scale, then opacity.
//
// Parameters:
//   - c: the canvas; callers bracket Apply with Save/Restore
//   - anchor: the pivot in current user coordinates
func (s State) Apply(c canvas.Canvas, anchor common.Vec2) {
	c.Translate(anchor.X+s.Offset.X, anchor.Y+s.Offset.Y)
	if s.Rotation != 0 {
		c.Rotate(s.Rotation)
	}
	if s.Scale != 1 {
		c.Scale(s.Scale, s.Scale)
	}
	c.Translate(-anchor.X, -anchor.Y)
	c.SetAlpha(c.Alpha() * s.Opacity)
}

// IsRest reports whether the state leaves the item untouched.
func (s State) IsRest() bool {
	return s.Offset == (common.Vec2{}) && s.Rotation == 0 && s.Scale == 1 && s.Opacity == 1
}
