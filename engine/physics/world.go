// Package physics runs the soft-body and rigid-body simulations seeded by plan items.
//
// Soft bodies are grids of Verlet particles joined by distance constraints. Rigid bodies are
// circles or axis-aligned rectangles integrated with semi-implicit Euler. The world advances in
// fixed sub-steps so identical inputs always produce identical positions.
package physics

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// World is a 2D simulation in step-local coordinates (y grows downward).
type World interface {
	// AddSoftBody seeds a particle grid from a resolved soft-body item.
	//
	// Parameters:
	//   - sb: the soft-body item; its origin is the grid's top-left particle
	AddSoftBody(sb *plan.SoftBody)

	// AddRigidBody seeds a rigid circle or rectangle from a resolved rigid-body item.
	//
	// Parameters:
	//   - rb: the rigid-body item
	AddRigidBody(rb *plan.RigidBody)

	// Step advances the simulation by dt seconds using fixed sub-steps. Large dt values are
	// capped so a long stall does not explode the simulation.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last call
	Step(dt float64)

	// Time returns the simulated time in seconds.
	Time() float64

	// SoftBody returns the current particle positions of a soft body in row-major order.
	//
	// Parameters:
	//   - id: the item id
	//
	// Returns:
	//   - Grid: the particle grid snapshot
	//   - bool: false if no soft body has this id
	SoftBody(id string) (Grid, bool)

	// RigidBody returns the current state of a rigid body.
	//
	// Parameters:
	//   - id: the item id
	//
	// Returns:
	//   - Body: the body snapshot
	//   - bool: false if no rigid body has this id
	RigidBody(id string) (Body, bool)
}

// Grid is a snapshot of a soft body.
type Grid struct {
	Cols, Rows int
	Points     []common.Vec2
}

// At returns the particle at column c, row r.
func (g Grid) At(c, r int) common.Vec2 {
	return g.Points[r*g.Cols+c]
}

// Body is a snapshot of a rigid body.
type Body struct {
	Shape    string
	Center   common.Vec2
	Velocity common.Vec2
	Radius   float64
	Width    float64
	Height   float64
}

type particle struct {
	pos, prev common.Vec2
	pinned    bool
}

type spring struct {
	a, b      int
	rest      float64
	stiffness float64
}

type softBody struct {
	cols, rows int
	first      int
}

type rigidBody struct {
	id          string
	shape       string
	pos, vel    common.Vec2
	radius      float64
	halfW       float64
	halfH       float64
	invMass     float64
	restitution float64
}

type world struct {
	mu         *sync.Mutex
	gravity    common.Vec2
	iterations int
	damping    float64
	bounds     *plan.Bounds
	substep    float64
	maxSteps   int

	accum     float64
	time      float64
	particles []particle
	springs   []spring
	soft      map[string]softBody
	rigid     []*rigidBody
	rigidByID map[string]*rigidBody
}

var _ World = &world{}

// NewWorld creates an empty simulation.
//
// Parameters:
//   - options: variadic list of WorldBuilderOption functions
//
// Returns:
//   - World: the new simulation
func NewWorld(options ...WorldBuilderOption) World {
	w := &world{
		mu:         &sync.Mutex{},
		gravity:    common.V2(0, DefaultGravity),
		iterations: DefaultIterations,
		damping:    DefaultDamping,
		substep:    1.0 / 120,
		maxSteps:   16,
		soft:       make(map[string]softBody),
		rigidByID:  make(map[string]*rigidBody),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

const (
	DefaultGravity    = 400.0
	DefaultIterations = 8
	DefaultDamping    = 0.01
	DefaultStiffness  = 0.9
)

func (w *world) AddSoftBody(sb *plan.SoftBody) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cols, rows := max(sb.Cols, 2), max(sb.Rows, 2)
	spacing := sb.Spacing
	if spacing <= 0 {
		spacing = 20
	}
	stiff := sb.Stiffness
	if stiff <= 0 || stiff > 1 {
		stiff = DefaultStiffness
	}
	pinned := make(map[plan.Edge]bool, len(sb.Pinned))
	for _, e := range sb.Pinned {
		pinned[e] = true
	}

	origin := sb.Origin.Vec()
	first := len(w.particles)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := origin.Add(common.V2(float64(c)*spacing, float64(r)*spacing))
			w.particles = append(w.particles, particle{
				pos:  p,
				prev: p,
				pinned: (r == 0 && pinned[plan.EdgeTop]) ||
					(r == rows-1 && pinned[plan.EdgeBottom]) ||
					(c == 0 && pinned[plan.EdgeLeft]) ||
					(c == cols-1 && pinned[plan.EdgeRight]),
			})
		}
	}
	idx := func(c, r int) int { return first + r*cols + c }
	diag := spacing * math.Sqrt2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				w.springs = append(w.springs, spring{idx(c, r), idx(c+1, r), spacing, stiff})
			}
			if r+1 < rows {
				w.springs = append(w.springs, spring{idx(c, r), idx(c, r+1), spacing, stiff})
			}
			if c+1 < cols && r+1 < rows {
				w.springs = append(w.springs, spring{idx(c, r), idx(c+1, r+1), diag, stiff * 0.5})
				w.springs = append(w.springs, spring{idx(c+1, r), idx(c, r+1), diag, stiff * 0.5})
			}
		}
	}
	w.soft[sb.ID] = softBody{cols: cols, rows: rows, first: first}
}

func (w *world) AddRigidBody(rb *plan.RigidBody) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := &rigidBody{
		id:          rb.ID,
		shape:       rb.Shape,
		pos:         rb.Center.Vec(),
		vel:         rb.Velocity,
		restitution: common.Clamp01(common.Coalesce(rb.Restitution, 0.5)),
	}
	if b.shape != plan.ShapeRectangle {
		b.shape = plan.ShapeCircle
		b.radius = common.Coalesce(rb.Radius, 10)
		b.halfW, b.halfH = b.radius, b.radius
	} else {
		b.halfW = common.Coalesce(rb.Width, 20) / 2
		b.halfH = common.Coalesce(rb.Height, 20) / 2
	}
	if !rb.IsStatic {
		b.invMass = 1 / common.Coalesce(rb.Mass, 1)
	}
	w.rigid = append(w.rigid, b)
	w.rigidByID[rb.ID] = b
}

func (w *world) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.accum += dt
	steps := 0
	for w.accum >= w.substep && steps < w.maxSteps {
		w.integrate(w.substep)
		w.accum -= w.substep
		w.time += w.substep
		steps++
	}
	if steps == w.maxSteps {
		w.accum = 0
	}
}

func (w *world) integrate(h float64) {
	g := w.gravity.Scale(h * h)
	keep := 1 - common.Clamp01(w.damping)
	for i := range w.particles {
		p := &w.particles[i]
		if p.pinned {
			continue
		}
		vel := p.pos.Sub(p.prev).Scale(keep)
		p.prev = p.pos
		p.pos = p.pos.Add(vel).Add(g)
	}
	for it := 0; it < w.iterations; it++ {
		for _, s := range w.springs {
			w.relax(s)
		}
		w.confineParticles()
	}

	for _, b := range w.rigid {
		if b.invMass == 0 {
			continue
		}
		b.vel = b.vel.Add(w.gravity.Scale(h))
		b.pos = b.pos.Add(b.vel.Scale(h))
	}
	for i := 0; i < len(w.rigid); i++ {
		for j := i + 1; j < len(w.rigid); j++ {
			collide(w.rigid[i], w.rigid[j])
		}
	}
	for _, b := range w.rigid {
		w.confineBody(b)
	}
}

func (w *world) relax(s spring) {
	a, b := &w.particles[s.a], &w.particles[s.b]
	if a.pinned && b.pinned {
		return
	}
	delta := b.pos.Sub(a.pos)
	d := delta.Len()
	if d == 0 {
		return
	}
	corr := delta.Scale((d - s.rest) / d * s.stiffness)
	switch {
	case a.pinned:
		b.pos = b.pos.Sub(corr)
	case b.pinned:
		a.pos = a.pos.Add(corr)
	default:
		half := corr.Scale(0.5)
		a.pos = a.pos.Add(half)
		b.pos = b.pos.Sub(half)
	}
}

func (w *world) confineParticles() {
	if w.bounds == nil {
		return
	}
	for i := range w.particles {
		p := &w.particles[i]
		p.pos.X = common.Clamp(p.pos.X, w.bounds.MinX, w.bounds.MaxX)
		p.pos.Y = common.Clamp(p.pos.Y, w.bounds.MinY, w.bounds.MaxY)
	}
}

func (w *world) confineBody(b *rigidBody) {
	if w.bounds == nil {
		return
	}
	if b.pos.X-b.halfW < w.bounds.MinX {
		b.pos.X = w.bounds.MinX + b.halfW
		b.vel.X = math.Abs(b.vel.X) * b.restitution
	}
	if b.pos.X+b.halfW > w.bounds.MaxX {
		b.pos.X = w.bounds.MaxX - b.halfW
		b.vel.X = -math.Abs(b.vel.X) * b.restitution
	}
	if b.pos.Y-b.halfH < w.bounds.MinY {
		b.pos.Y = w.bounds.MinY + b.halfH
		b.vel.Y = math.Abs(b.vel.Y) * b.restitution
	}
	if b.pos.Y+b.halfH > w.bounds.MaxY {
		b.pos.Y = w.bounds.MaxY - b.halfH
		b.vel.Y = -math.Abs(b.vel.Y) * b.restitution
	}
}

// collide separates two overlapping bodies along the contact normal and exchanges impulse.
// Circles use their radius, rectangles their axis-aligned extents.
func collide(a, b *rigidBody) {
	if a.invMass == 0 && b.invMass == 0 {
		return
	}
	var normal common.Vec2
	var depth float64
	if a.shape == plan.ShapeCircle && b.shape == plan.ShapeCircle {
		delta := b.pos.Sub(a.pos)
		d := delta.Len()
		depth = a.radius + b.radius - d
		if depth <= 0 {
			return
		}
		normal = common.V2(1, 0)
		if d > 0 {
			normal = delta.Scale(1 / d)
		}
	} else {
		delta := b.pos.Sub(a.pos)
		ox := a.halfW + b.halfW - math.Abs(delta.X)
		oy := a.halfH + b.halfH - math.Abs(delta.Y)
		if ox <= 0 || oy <= 0 {
			return
		}
		if ox < oy {
			depth = ox
			normal = common.V2(math.Copysign(1, delta.X), 0)
		} else {
			depth = oy
			normal = common.V2(0, math.Copysign(1, delta.Y))
		}
	}

	total := a.invMass + b.invMass
	a.pos = a.pos.Sub(normal.Scale(depth * a.invMass / total))
	b.pos = b.pos.Add(normal.Scale(depth * b.invMass / total))

	rel := b.vel.Sub(a.vel)
	vn := rel.X*normal.X + rel.Y*normal.Y
	if vn > 0 {
		return
	}
	e := math.Min(a.restitution, b.restitution)
	j := -(1 + e) * vn / total
	a.vel = a.vel.Sub(normal.Scale(j * a.invMass))
	b.vel = b.vel.Add(normal.Scale(j * b.invMass))
}

func (w *world) Time() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.time
}

func (w *world) SoftBody(id string) (Grid, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sb, ok := w.soft[id]
	if !ok {
		return Grid{}, false
	}
	pts := make([]common.Vec2, sb.cols*sb.rows)
	for i := range pts {
		pts[i] = w.particles[sb.first+i].pos
	}
	return Grid{Cols: sb.cols, Rows: sb.rows, Points: pts}, true
}

func (w *world) RigidBody(id string) (Body, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.rigidByID[id]
	if !ok {
		return Body{}, false
	}
	return Body{
		Shape:    b.shape,
		Center:   b.pos,
		Velocity: b.vel,
		Radius:   b.radius,
		Width:    b.halfW * 2,
		Height:   b.halfH * 2,
	}, true
}
