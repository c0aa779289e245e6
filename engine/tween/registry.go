package tween

import (
	"sync"

	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// Registry tracks when each item's tween started. A tween starts the first time the item's draw
// progress reaches 1 and keeps its start time until Clear.
type Registry interface {
	// Start records now as the start time for id unless one is already recorded.
	//
	// Parameters:
	//   - id: the item id
	//   - now: the current time in seconds on the caller's clock
	//
	// Returns:
	//   - float64: the recorded start time
	Start(id string, now float64) float64

	// Started returns the start time for id.
	//
	// Parameters:
	//   - id: the item id
	//
	// Returns:
	//   - float64: the start time
	//   - bool: false if the tween has not started
	Started(id string) (float64, bool)

	// State evaluates the tween for id at now. Items whose tween has not started are at rest.
	//
	// Parameters:
	//   - id: the item id
	//   - spec: the item's animation
	//   - now: the current time in seconds
	//
	// Returns:
	//   - State: the evaluated state
	State(id string, spec *plan.AnimateSpec, now float64) State

	// Len returns the number of started tweens.
	Len() int

	// Clear forgets every start time.
	Clear()
}

type registry struct {
	mu     *sync.Mutex
	starts map[string]float64
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
func NewRegistry() Registry {
	return &registry{
		mu:     &sync.Mutex{},
		starts: make(map[string]float64),
	}
}

func (r *registry) Start(id string, now float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.starts[id]; ok {
		return t
	}
	r.starts[id] = now
	return now
}

func (r *registry) Started(id string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.starts[id]
	return t, ok
}

func (r *registry) State(id string, spec *plan.AnimateSpec, now float64) State {
	if spec == nil {
		return Rest
	}
	start, ok := r.Started(id)
	if !ok {
		return Rest
	}
	return Evaluate(spec, now-start)
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts)
}

func (r *registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.starts)
}
