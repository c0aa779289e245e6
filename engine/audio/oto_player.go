package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// countingReader counts bytes handed to the output so the clock can be derived from them.
type countingReader struct {
	r    io.Reader
	read atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read.Add(int64(n))
	return n, err
}

type otoPlayer struct {
	mu       *sync.Mutex
	logger   *slog.Logger
	ctx      *oto.Context
	rate     int
	channels int

	asset  *Asset
	offset float64
	src    *countingReader
	player *oto.Player
	muted  bool
}

var _ Player = &otoPlayer{}

// NewOtoPlayer opens the system audio output. Only one output may exist per process.
//
// Parameters:
//   - sampleRate: the output rate; assets at other rates are resampled
//   - channels: the output channel count
//   - logger: the logger; nil uses slog.Default()
//
// Returns:
//   - Player: the player
//   - error: an error if the audio device could not be opened
func NewOtoPlayer(sampleRate, channels int, logger *slog.Logger) (Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannelCount
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	<-ready
	return &otoPlayer{
		mu:       &sync.Mutex{},
		logger:   logger.With("component", "audio-out"),
		ctx:      ctx,
		rate:     sampleRate,
		channels: channels,
	}, nil
}

func (p *otoPlayer) bytesPerSecond() float64 {
	return float64(p.rate * p.channels * 4)
}

func (p *otoPlayer) Play(a *Asset, offset float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	if a == nil {
		return nil
	}
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("audio output failed: %w", err)
	}
	p.asset = a
	p.offset = max(offset, 0)
	p.src = &countingReader{r: bytes.NewReader(a.PCM(p.offset, p.rate, p.channels))}
	p.player = p.ctx.NewPlayer(p.src)
	if p.muted {
		p.player.SetVolume(0)
	}
	p.player.Play()
	p.logger.Debug("playing narration", "offset", p.offset, "duration", a.Duration())
	return nil
}

// positionLocked is the start offset plus what the device has consumed, excluding what is still
// queued in the output buffer.
func (p *otoPlayer) positionLocked() float64 {
	if p.asset == nil {
		return 0
	}
	if p.player == nil || p.src == nil {
		return min(p.offset, p.asset.Duration())
	}
	heard := p.src.read.Load() - int64(p.player.BufferedSize())
	pos := p.offset + float64(max(heard, 0))/p.bytesPerSecond()
	return min(pos, p.asset.Duration())
}

func (p *otoPlayer) stopLocked() {
	if p.player != nil {
		p.player.Pause()
	}
	p.player = nil
	p.src = nil
}

func (p *otoPlayer) Pause() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.positionLocked()
	p.stopLocked()
	p.offset = pos
	return pos
}

func (p *otoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.asset = nil
	p.offset = 0
}

func (p *otoPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *otoPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

func (p *otoPlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if p.player == nil {
		return
	}
	if muted {
		p.player.SetVolume(0)
	} else {
		p.player.SetVolume(1)
	}
}

func (p *otoPlayer) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}
