// Package playback drives a whiteboard plan through its steps in time with its narration.
package playback

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

const (
	// DefaultBreathing is the hold between a step finishing and the next one starting.
	DefaultBreathing = 375 * time.Millisecond
	// DefaultStepDuration is used for steps with neither narration nor explanation text.
	DefaultStepDuration = 6 * time.Second
	// DefaultWordsPerSecond is the speaking rate assumed when a step has no narration.
	DefaultWordsPerSecond = 2.5
	// MinHeuristicDuration is the shortest duration estimated from explanation text.
	MinHeuristicDuration = 3 * time.Second
)

var (
	// ErrNoPlan is returned by commands that need a loaded plan.
	ErrNoPlan = errors.New("no plan loaded")
	// ErrNoPlanner is returned by Submit when the controller has no planner.
	ErrNoPlanner = errors.New("no planner configured")
)

// Status is the playback state machine's state.
type Status int

const (
	StatusIdle Status = iota
	StatusThinking
	StatusPreparing
	StatusDrawing
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusThinking:
		return "THINKING"
	case StatusPreparing:
		return "PREPARING"
	case StatusDrawing:
		return "DRAWING"
	case StatusDone:
		return "DONE"
	case StatusError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Title returns the status for display, e.g. "Drawing".
func (s Status) Title() string {
	return cases.Title(language.Und).String(strings.ToLower(s.String()))
}

// Loading reports whether the board should show the loading indicator.
func (s Status) Loading() bool {
	return s == StatusThinking || s == StatusPreparing
}

// State is a snapshot of the controller.
type State struct {
	Status           Status
	CurrentStepIndex int
	StepCount        int
	// StepProgress is the current step's progress in [0, 1].
	StepProgress float64
	// StepDuration is the current step's duration.
	StepDuration time.Duration
	// PausedProgress is the progress captured by the last pause.
	PausedProgress float64
	IsPaused       bool
	IsMuted        bool
	// Epoch changes whenever a plan is loaded or playback is repeated; renderers reset their
	// motion state when it changes.
	Epoch int
	// FocusRequested is true on the first snapshot after RequestFocus.
	FocusRequested bool
	Message        string
}

// Elapsed returns the time into the current step implied by progress.
func (s State) Elapsed() time.Duration {
	return time.Duration(s.StepProgress * float64(s.StepDuration))
}

// OverallProgress returns the progress through the whole plan in [0, 1].
func (s State) OverallProgress() float64 {
	if s.Status == StatusDone {
		return 1
	}
	if s.StepCount == 0 {
		return 0
	}
	return (float64(s.CurrentStepIndex) + s.StepProgress) / float64(s.StepCount)
}

// Telemetry is what the host UI shows about playback.
type Telemetry struct {
	SubmissionID    string
	Status          string
	Explanation     string
	StepIndex       int
	StepCount       int
	StepProgress    float64
	OverallProgress float64
	Message         string
	Paused          bool
	Muted           bool
}

// HeuristicDuration estimates how long a step without narration should last from its
// explanation's word count.
//
// Parameters:
//   - step: the step
//
// Returns:
//   - time.Duration: the estimate, at least MinHeuristicDuration, or DefaultStepDuration when the
//     step has no explanation
func HeuristicDuration(step *plan.Step) time.Duration {
	words := step.WordCount()
	if words == 0 {
		return DefaultStepDuration
	}
	d := time.Duration(float64(words) / DefaultWordsPerSecond * float64(time.Second))
	return max(d, MinHeuristicDuration)
}
