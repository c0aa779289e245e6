package playback

import (
	"sync"
	"time"
)

const (
	// DefaultFullRate is the frame rate while a step is being drawn or loading is shown.
	DefaultFullRate = 60
	// DefaultReducedRate is the frame rate once playback is idle or done, enough for post-draw
	// motion and physics.
	DefaultReducedRate = 20
)

// Scheduler owns the frame loop state for a controller: whether the loop runs, whether the
// window is visible, and the frame rate that follows from playback.
type Scheduler interface {
	// Start lets Tick advance the controller.
	Start()

	// Stop halts the loop; Tick returns the last state without advancing.
	Stop()

	// Running reports whether the loop is started.
	Running() bool

	// SetVisible records whether the output is visible. A hidden loop does not run.
	SetVisible(visible bool)

	// Tick advances the controller when the loop should run.
	//
	// Parameters:
	//   - now: the frame time
	//
	// Returns:
	//   - State: the state to render
	//   - bool: false when the loop is stopped or hidden and nothing was advanced
	Tick(now time.Time) (State, bool)

	// FrameRate returns the frames per second the loop should run at; zero means the loop should
	// sleep until woken.
	FrameRate() int
}

type scheduler struct {
	mu      *sync.Mutex
	c       Controller
	running bool
	visible bool
	full    int
	reduced int
	last    State
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a stopped, visible Scheduler for c.
//
// Parameters:
//   - c: the controller to drive
//   - options: variadic list of SchedulerBuilderOption functions
//
// Returns:
//   - Scheduler: the scheduler
func NewScheduler(c Controller, options ...SchedulerBuilderOption) Scheduler {
	if c == nil {
		panic("playback: nil controller")
	}
	s := &scheduler{
		mu:      &sync.Mutex{},
		c:       c,
		visible: true,
		full:    DefaultFullRate,
		reduced: DefaultReducedRate,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *scheduler) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

func (s *scheduler) Tick(now time.Time) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || !s.visible {
		return s.last, false
	}
	s.last = s.c.Tick(now)
	return s.last, true
}

func (s *scheduler) FrameRate() int {
	s.mu.Lock()
	running, visible := s.running, s.visible
	s.mu.Unlock()
	if !running || !visible {
		return 0
	}
	st := s.c.State()
	switch st.Status {
	case StatusDrawing, StatusPreparing, StatusThinking:
		if st.IsPaused {
			return 0
		}
		return s.full
	default:
		return s.reduced
	}
}

// SchedulerBuilderOption is a functional option applied to a scheduler during construction via NewScheduler.
type SchedulerBuilderOption func(*scheduler)

// WithFrameRates sets the full and reduced frame rates. Non-positive values keep the defaults.
//
// Parameters:
//   - full: frames per second while drawing or loading
//   - reduced: frames per second when idle or done
//
// Returns:
//   - SchedulerBuilderOption: a function that applies the frame rate option to a scheduler
func WithFrameRates(full, reduced int) SchedulerBuilderOption {
	return func(s *scheduler) {
		if full > 0 {
			s.full = full
		}
		if reduced > 0 {
			s.reduced = reduced
		}
	}
}
