package audio

import (
	"encoding/binary"
	"math"
)

// Asset is decoded narration ready for playback. Assets are immutable once published.
type Asset struct {
	Channels   [][]float32
	FrameCount int
	SampleRate int
}

// NewAsset wraps a successful decode result.
func NewAsset(res DecodeResult) *Asset {
	return &Asset{Channels: res.Channels, FrameCount: res.FrameCount, SampleRate: res.SampleRate}
}

// Duration returns the playback length in seconds.
func (a *Asset) Duration() float64 {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return float64(a.FrameCount) / float64(a.SampleRate)
}

// FrameAt converts a time offset to a frame index clamped to the asset.
func (a *Asset) FrameAt(offset float64) int {
	if a == nil || offset <= 0 {
		return 0
	}
	f := int(math.Round(offset * float64(a.SampleRate)))
	return min(f, a.FrameCount)
}

// sample returns channel ch at fractional frame pos with linear interpolation. Missing channels
// fall back to the first one so mono narration fills every output channel.
func (a *Asset) sample(ch int, pos float64) float32 {
	if len(a.Channels) == 0 {
		return 0
	}
	if ch >= len(a.Channels) {
		ch = 0
	}
	s := a.Channels[ch]
	i := int(pos)
	if i >= len(s)-1 {
		if len(s) == 0 {
			return 0
		}
		return s[len(s)-1]
	}
	frac := float32(pos - float64(i))
	return s[i] + (s[i+1]-s[i])*frac
}

// PCM renders the asset from offset seconds to the end as interleaved float32 little-endian
// samples at the output rate and channel count, resampling linearly when the rates differ.
//
// Parameters:
//   - offset: start time in seconds
//   - rate: the output sample rate
//   - channels: the output channel count
//
// Returns:
//   - []byte: the sample data
func (a *Asset) PCM(offset float64, rate, channels int) []byte {
	if a == nil || a.FrameCount == 0 || rate <= 0 || channels <= 0 {
		return nil
	}
	start := a.FrameAt(offset)
	step := float64(a.SampleRate) / float64(rate)
	n := int(float64(a.FrameCount-start) / step)
	out := make([]byte, 0, n*channels*4)
	var buf [4]byte
	for k := 0; k < n; k++ {
		pos := float64(start) + float64(k)*step
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(a.sample(ch, pos)))
			out = append(out, buf[:]...)
		}
	}
	return out
}

// Slice returns the frames in [from, to) seconds as a new asset sharing no memory with a.
func (a *Asset) Slice(from, to float64) *Asset {
	lo, hi := a.FrameAt(from), a.FrameAt(to)
	if hi < lo {
		hi = lo
	}
	out := &Asset{FrameCount: hi - lo, SampleRate: a.SampleRate, Channels: make([][]float32, len(a.Channels))}
	for i, ch := range a.Channels {
		out.Channels[i] = append([]float32(nil), ch[lo:hi]...)
	}
	return out
}

// SplitClip cuts one narration clip covering the whole plan into per-step assets. splits are the
// boundaries in seconds between consecutive steps, ascending; n splits give n+1 assets. Boundaries
// past the end of the clip give empty assets.
//
// Parameters:
//   - a: the concatenated narration
//   - splits: step boundaries in seconds
//
// Returns:
//   - []*Asset: one asset per step
func SplitClip(a *Asset, splits []float64) []*Asset {
	if a == nil {
		return nil
	}
	out := make([]*Asset, 0, len(splits)+1)
	prev := 0.0
	for _, s := range splits {
		s = max(s, prev)
		out = append(out, a.Slice(prev, s))
		prev = s
	}
	return append(out, a.Slice(prev, a.Duration()))
}
