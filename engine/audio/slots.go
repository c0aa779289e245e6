package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultAwaitTimeout bounds how long a step waits for its narration before starting silently.
const DefaultAwaitTimeout = 8 * time.Second

var (
	// ErrAudioTimeout is returned by Await when the step's narration is not ready in time.
	ErrAudioTimeout = errors.New("audio not ready before timeout")
	// ErrSlotAbsent is returned when a step has no narration, either because none was requested
	// or because its decode failed.
	ErrSlotAbsent = errors.New("no audio for step")
)

// Slots holds one narration asset per step. Each slot is filled at most once, by Publish or Fail,
// and readers may wait for it.
type Slots interface {
	// Len returns the number of steps.
	Len() int

	// Publish stores the decoded asset for step and wakes its waiters. Later calls for the same
	// step are ignored.
	//
	// Parameters:
	//   - step: the step index
	//   - a: the asset
	Publish(step int, a *Asset)

	// Fail marks step as permanently absent and wakes its waiters.
	//
	// Parameters:
	//   - step: the step index
	//   - err: the reason, reported by Await
	Fail(step int, err error)

	// Get returns the asset for step without waiting.
	//
	// Returns:
	//   - *Asset: the asset, nil when not yet available or absent
	//   - bool: true when the asset is available
	Get(step int) (*Asset, bool)

	// Ready returns a channel closed once step is published or failed. Out of range steps get an
	// already closed channel.
	Ready(step int) <-chan struct{}

	// Await waits for step's asset.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//   - step: the step index
	//   - timeout: the longest wait; zero or less waits only for ctx
	//
	// Returns:
	//   - *Asset: the asset
	//   - error: ErrAudioTimeout, an error wrapping ErrSlotAbsent, or ctx.Err()
	Await(ctx context.Context, step int, timeout time.Duration) (*Asset, error)
}

type slot struct {
	asset atomic.Pointer[Asset]
	err   atomic.Pointer[error]
	ready chan struct{}
	once  sync.Once
}

type slots struct {
	s      []*slot
	closed chan struct{}
}

var _ Slots = &slots{}

// NewSlots creates n empty slots.
func NewSlots(n int) Slots {
	out := &slots{s: make([]*slot, max(n, 0)), closed: make(chan struct{})}
	for i := range out.s {
		out.s[i] = &slot{ready: make(chan struct{})}
	}
	close(out.closed)
	return out
}

func (s *slots) Len() int { return len(s.s) }

func (s *slots) at(step int) *slot {
	if step < 0 || step >= len(s.s) {
		return nil
	}
	return s.s[step]
}

func (s *slots) Publish(step int, a *Asset) {
	sl := s.at(step)
	if sl == nil || a == nil {
		return
	}
	sl.once.Do(func() {
		sl.asset.Store(a)
		close(sl.ready)
	})
}

func (s *slots) Fail(step int, err error) {
	sl := s.at(step)
	if sl == nil {
		return
	}
	if err == nil {
		err = ErrSlotAbsent
	}
	sl.once.Do(func() {
		sl.err.Store(&err)
		close(sl.ready)
	})
}

func (s *slots) Get(step int) (*Asset, bool) {
	sl := s.at(step)
	if sl == nil {
		return nil, false
	}
	a := sl.asset.Load()
	return a, a != nil
}

func (s *slots) Ready(step int) <-chan struct{} {
	sl := s.at(step)
	if sl == nil {
		return s.closed
	}
	return sl.ready
}

func (s *slots) Await(ctx context.Context, step int, timeout time.Duration) (*Asset, error) {
	sl := s.at(step)
	if sl == nil {
		return nil, fmt.Errorf("step %d: %w", step, ErrSlotAbsent)
	}

	select {
	case <-sl.ready:
	default:
		if err := waitReady(ctx, sl.ready, timeout); err != nil {
			return nil, err
		}
	}

	if a := sl.asset.Load(); a != nil {
		return a, nil
	}
	reason := ErrSlotAbsent
	if e := sl.err.Load(); e != nil {
		reason = *e
	}
	if errors.Is(reason, ErrSlotAbsent) {
		return nil, fmt.Errorf("step %d: %w", step, reason)
	}
	return nil, fmt.Errorf("step %d: %w: %w", step, ErrSlotAbsent, reason)
}

func waitReady(ctx context.Context, ready <-chan struct{}, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-ready:
		return nil
	case <-expired:
		return ErrAudioTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
