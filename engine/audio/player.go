package audio

import (
	"sync"
	"time"
)

// Player plays one asset at a time and exposes the position of what has actually been heard,
// which the playback controller uses as its clock.
type Player interface {
	// Play starts a from offset seconds, replacing anything already playing.
	//
	// Parameters:
	//   - a: the asset
	//   - offset: the start position in seconds
	//
	// Returns:
	//   - error: an error if the output could not start
	Play(a *Asset, offset float64) error

	// Pause stops output and returns the position reached, in seconds.
	Pause() float64

	// Stop stops output and forgets the asset.
	Stop()

	// Position returns the current playback position in seconds, clamped to the asset duration.
	Position() float64

	// Playing reports whether an asset is playing and has not reached its end.
	Playing() bool

	// SetMuted silences output without affecting the clock.
	SetMuted(muted bool)

	// Muted reports whether output is silenced.
	Muted() bool
}

// ClockPlayer is a Player that produces no sound and advances its position with a clock. It is
// used when no audio device is available and in tests.
type ClockPlayer struct {
	mu      *sync.Mutex
	now     func() time.Time
	asset   *Asset
	offset  float64
	started time.Time
	playing bool
	muted   bool
}

var _ Player = &ClockPlayer{}

// NewClockPlayer creates a ClockPlayer driven by now; nil uses time.Now.
func NewClockPlayer(now func() time.Time) *ClockPlayer {
	if now == nil {
		now = time.Now
	}
	return &ClockPlayer{mu: &sync.Mutex{}, now: now}
}

func (p *ClockPlayer) Play(a *Asset, offset float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = a
	p.offset = max(offset, 0)
	p.started = p.now()
	p.playing = true
	return nil
}

func (p *ClockPlayer) positionLocked() float64 {
	if p.asset == nil {
		return 0
	}
	pos := p.offset
	if p.playing {
		pos += p.now().Sub(p.started).Seconds()
	}
	return min(pos, p.asset.Duration())
}

func (p *ClockPlayer) Pause() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.positionLocked()
	p.offset = pos
	p.playing = false
	return pos
}

func (p *ClockPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = nil
	p.offset = 0
	p.playing = false
}

func (p *ClockPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *ClockPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.asset != nil && p.positionLocked() < p.asset.Duration()
}

func (p *ClockPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *ClockPlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}
