// Package plan holds the typed scene description consumed by the whiteboard engine.
//
// A WhiteboardPlan is an ordered list of Steps. Each Step owns a coordinate
// origin on the unbounded board and a list of drawing items. Steps that share an
// origin are layers of one diagram; a step with a new origin starts a new diagram.
// Plans are produced by an external planner and are treated as immutable and
// pre-validated once decoded.
package plan

import (
	"strings"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// WhiteboardPlan is the full multi-step explanation.
type WhiteboardPlan struct {
	Steps   []Step `json:"steps"`
	Summary string `json:"narrationSummary,omitempty"`
}

// Step is one unit of the plan sharing an explanation and a coordinate origin.
type Step struct {
	Origin           common.Vec2    `json:"origin"`
	Explanation      string         `json:"explanation"`
	DrawingCommands  []Item         `json:"drawingCommands"`
	Annotations      []Item         `json:"annotations"`
	HighlightIDs     []string       `json:"highlightIds,omitempty"`
	RetainedLabelIDs []string       `json:"retainedLabelIds,omitempty"`
	Physics          *PhysicsConfig `json:"physicsConfig,omitempty"`
}

// PhysicsConfig configures the simulation seeded by soft-body and rigid-body items of a step.
type PhysicsConfig struct {
	Gravity    common.Vec2 `json:"gravity"`
	Iterations int         `json:"iterations,omitempty"`
	Damping    float64     `json:"damping,omitempty"`
	Bounds     *Bounds     `json:"bounds,omitempty"`
}

// Bounds is an axis-aligned box in step-local coordinates.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Items returns the step's drawing commands followed by its annotations, in declaration order.
//
// Returns:
//   - []Item: the combined item list (a new slice; items are shared)
func (s *Step) Items() []Item {
	out := make([]Item, 0, len(s.DrawingCommands)+len(s.Annotations))
	out = append(out, s.DrawingCommands...)
	out = append(out, s.Annotations...)
	return out
}

// ItemIDs returns the set of item ids declared by the step.
func (s *Step) ItemIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.DrawingCommands)+len(s.Annotations))
	for _, it := range s.DrawingCommands {
		ids[it.Common().ID] = struct{}{}
	}
	for _, it := range s.Annotations {
		ids[it.Common().ID] = struct{}{}
	}
	return ids
}

// IsHighlighted reports whether id is listed in the step's highlight ids.
func (s *Step) IsHighlighted(id string) bool {
	for _, h := range s.HighlightIDs {
		if h == id {
			return true
		}
	}
	return false
}

// WordCount returns the number of whitespace-separated words in the explanation.
func (s *Step) WordCount() int {
	return len(strings.Fields(s.Explanation))
}

// HasPhysics reports whether any item in the step seeds the physics simulation.
func (s *Step) HasPhysics() bool {
	for _, it := range s.Items() {
		switch it.Kind() {
		case KindSoftBody, KindRigidBody:
			return true
		}
	}
	return false
}

// SameOrigin reports whether two steps draw into the same diagram.
func SameOrigin(a, b *Step) bool {
	return a.Origin == b.Origin
}

// DiagramStart returns the index of the first step of the diagram that step i belongs to,
// i.e. the earliest index j <= i such that every step in [j, i] shares step i's origin.
//
// Parameters:
//   - i: the step index
//
// Returns:
//   - int: the first step index of the diagram, or -1 if i is out of range
func (p *WhiteboardPlan) DiagramStart(i int) int {
	if i < 0 || i >= len(p.Steps) {
		return -1
	}
	j := i
	for j > 0 && SameOrigin(&p.Steps[j-1], &p.Steps[i]) {
		j--
	}
	return j
}

// Find returns the first item with the given id at or before step index upTo,
// along with the index of the step that declares it.
//
// Parameters:
//   - id: the item id
//   - upTo: the last step index to search (inclusive)
//
// Returns:
//   - Item: the item, or nil if not found
//   - int: the declaring step index, or -1 if not found
func (p *WhiteboardPlan) Find(id string, upTo int) (Item, int) {
	for i := 0; i <= upTo && i < len(p.Steps); i++ {
		for _, it := range p.Steps[i].Items() {
			if it.Common().ID == id {
				return it, i
			}
		}
	}
	return nil, -1
}

// Len returns the number of steps, treating a nil plan as empty.
func (p *WhiteboardPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}
