// Package audio turns base64 narration into playable PCM and plays it back with a clock the
// playback controller can drive progress from.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultSampleRate is the sample rate of narration when the narrator does not say otherwise.
	DefaultSampleRate = 24000
	// DefaultChannelCount is the channel count of narration when the narrator does not say otherwise.
	DefaultChannelCount = 1
)

// ErrEmptyAudio is returned when a request carries no audio payload.
var ErrEmptyAudio = errors.New("empty audio payload")

// DecodeRequest is one step's narration as delivered by a narrator: base64 of 16-bit signed
// little-endian PCM, channels interleaved.
type DecodeRequest struct {
	EncodedAudio string `json:"audio"`
	SampleRate   int    `json:"sampleRate,omitempty"`
	ChannelCount int    `json:"channelCount,omitempty"`
	StepIndex    int    `json:"stepIndex"`
}

// DecodeResult is the outcome of decoding one DecodeRequest.
type DecodeResult struct {
	// Channels holds one slice of samples in [-1, 1] per channel.
	Channels   [][]float32
	FrameCount int
	SampleRate int
	StepIndex  int
	Err        error
}

// Decode converts a request into per-channel float samples. A trailing partial frame is dropped.
//
// Parameters:
//   - req: the request; zero SampleRate and ChannelCount take the package defaults
//
// Returns:
//   - DecodeResult: the samples, or Err set when the payload is empty or not valid base64
func Decode(req DecodeRequest) DecodeResult {
	res := DecodeResult{
		StepIndex:  req.StepIndex,
		SampleRate: req.SampleRate,
	}
	if res.SampleRate <= 0 {
		res.SampleRate = DefaultSampleRate
	}
	channels := req.ChannelCount
	if channels <= 0 {
		channels = DefaultChannelCount
	}

	payload := strings.TrimSpace(req.EncodedAudio)
	// tolerate data URLs
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	if payload == "" {
		res.Err = ErrEmptyAudio
		return res
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		res.Err = fmt.Errorf("failed to decode base64 audio for step %d: %w", req.StepIndex, err)
		return res
	}

	frameBytes := 2 * channels
	frames := len(raw) / frameBytes
	res.FrameCount = frames
	res.Channels = make([][]float32, channels)
	for ch := range res.Channels {
		res.Channels[ch] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			off := f*frameBytes + ch*2
			s := int16(binary.LittleEndian.Uint16(raw[off:]))
			res.Channels[ch][f] = float32(s) / 32768
		}
	}
	return res
}

// EncodePCM16 is the inverse of Decode: it interleaves channels as 16-bit little-endian PCM and
// returns the base64 text. Samples outside [-1, 1] are clipped.
func EncodePCM16(channels [][]float32) string {
	if len(channels) == 0 {
		return ""
	}
	frames := len(channels[0])
	raw := make([]byte, frames*len(channels)*2)
	for f := 0; f < frames; f++ {
		for ch, samples := range channels {
			v := samples[f]
			v = max(-1, min(v, 1))
			s := int16(v * 32767)
			binary.LittleEndian.PutUint16(raw[(f*len(channels)+ch)*2:], uint16(s))
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}
