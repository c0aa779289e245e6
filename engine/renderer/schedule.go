package renderer

import (
	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// DefaultDrawingWindow is the fraction of a step's duration shared by items without explicit timing.
const DefaultDrawingWindow = 0.4

// Timing is when an item starts to appear within its step and how long its draw takes, in seconds.
type Timing struct {
	Delay    float64
	Duration float64
}

// Schedule assigns a Timing to every item, in order.
//
// An item that sets drawDelay or drawDuration keeps what it sets; a missing delay is 0 and a
// missing duration is one untimed slice. Items that set neither share the first window fraction
// of stepDuration in equal consecutive slices, in declaration order. Contextual text labels are
// shown immediately and take no slice.
//
// Parameters:
//   - items: the step's items in declaration order
//   - stepDuration: the step duration in seconds
//   - window: the fraction of the step used for untimed items
//
// Returns:
//   - []Timing: one timing per item
func Schedule(items []plan.Item, stepDuration, window float64) []Timing {
	window = common.Clamp01(window)
	untimed := 0
	for _, it := range items {
		if needsSlice(it) {
			untimed++
		}
	}
	slice := stepDuration * window
	if untimed > 0 {
		slice /= float64(untimed)
	}

	out := make([]Timing, len(items))
	k := 0
	for i, it := range items {
		b := it.Common()
		switch {
		case b.DrawDelay != nil || b.DrawDuration != nil:
			out[i] = Timing{
				Delay:    common.Deref(b.DrawDelay, 0),
				Duration: common.Deref(b.DrawDuration, slice),
			}
		case needsSlice(it):
			out[i] = Timing{Delay: float64(k) * slice, Duration: slice}
			k++
		default:
			out[i] = Timing{}
		}
	}
	return out
}

func needsSlice(it plan.Item) bool {
	b := it.Common()
	if b.DrawDelay != nil || b.DrawDuration != nil {
		return false
	}
	if t, ok := it.(*plan.Text); ok && t.IsContextual {
		return false
	}
	return true
}

// ItemProgress returns the draw progress of an item at elapsed seconds into its step, clamped to
// [0, 1]. An item with a non-positive duration is complete as soon as its delay has passed.
func ItemProgress(elapsed float64, t Timing) float64 {
	if elapsed < t.Delay {
		return 0
	}
	if t.Duration <= 0 {
		return 1
	}
	return common.Clamp01((elapsed - t.Delay) / t.Duration)
}
