package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/Carmen-Shannon/whiteboard-go/engine/audio"
	"github.com/Carmen-Shannon/whiteboard-go/engine/plan"
)

// NarrationSuffix is appended to a plan file's stem to find its narration sidecar.
const NarrationSuffix = ".narration.json"

// Library serves plans and their narration from a directory of JSON files. A prompt matches a
// plan file by path, by file name, or by its slug, so "Law of Sines?" finds law-of-sines.json.
type Library interface {
	Planner
	Narrator

	// PathOf returns the file a plan was loaded from.
	//
	// Parameters:
	//   - p: a plan returned by Plan
	//
	// Returns:
	//   - string: the plan file path
	//   - bool: true if p came from this library
	PathOf(p *plan.WhiteboardPlan) (string, bool)
}

type library struct {
	mu     *sync.Mutex
	logger *slog.Logger
	dir    string
	paths  map[*plan.WhiteboardPlan]string
}

var _ Library = &library{}

// NewLibrary creates a Library rooted at dir.
//
// Parameters:
//   - dir: the directory holding plan files; empty means the working directory
//   - logger: the logger; nil uses slog.Default()
//
// Returns:
//   - Library: the library
func NewLibrary(dir string, logger *slog.Logger) Library {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	return &library{
		mu:     &sync.Mutex{},
		logger: logger.With("component", "library"),
		dir:    dir,
		paths:  make(map[*plan.WhiteboardPlan]string),
	}
}

// Slug folds case and collapses everything but letters and digits into single dashes.
func Slug(prompt string) string {
	folded := cases.Fold().String(strings.TrimSpace(prompt))
	var b strings.Builder
	dash := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (l *library) candidates(prompt string) []string {
	prompt = strings.TrimSpace(prompt)
	out := []string{prompt}
	if !filepath.IsAbs(prompt) {
		out = append(out, filepath.Join(l.dir, prompt))
	}
	if !strings.HasSuffix(prompt, ".json") {
		out = append(out, filepath.Join(l.dir, prompt+".json"))
	}
	if s := Slug(prompt); s != "" {
		out = append(out, filepath.Join(l.dir, s+".json"))
	}
	return out
}

func (l *library) Plan(ctx context.Context, prompt string) (*plan.WhiteboardPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("empty prompt: %w", ErrPlanNotFound)
	}
	for _, path := range l.candidates(prompt) {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		p, err := plan.Load(path)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.paths[p] = path
		l.mu.Unlock()
		l.logger.Info("plan loaded", "path", path, "steps", p.Len())
		return p, nil
	}
	return nil, fmt.Errorf("%q in %s: %w", prompt, l.dir, ErrPlanNotFound)
}

func (l *library) PathOf(p *plan.WhiteboardPlan) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	path, ok := l.paths[p]
	return path, ok
}

func (l *library) Narrate(ctx context.Context, p *plan.WhiteboardPlan) (audio.Narration, error) {
	if err := ctx.Err(); err != nil {
		return audio.Narration{}, err
	}
	path, ok := l.PathOf(p)
	if !ok {
		return audio.Narration{}, ErrNoNarration
	}
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + NarrationSuffix
	n, err := LoadNarration(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return audio.Narration{}, fmt.Errorf("%s: %w", sidecar, ErrNoNarration)
	}
	return n, err
}

// narrationFile is the on-disk narration format: either "clips", one per step, or "audio" with
// "splits" between steps.
type narrationFile struct {
	SampleRate   int       `json:"sampleRate"`
	ChannelCount int       `json:"channelCount"`
	Clips        []string  `json:"clips"`
	Audio        string    `json:"audio"`
	Splits       []float64 `json:"splits"`
}

// ParseNarration decodes a narration document.
//
// Parameters:
//   - data: the JSON document
//
// Returns:
//   - audio.Narration: the narration, not yet decoded to PCM
//   - error: an error if the document is malformed or empty
func ParseNarration(data []byte) (audio.Narration, error) {
	var f narrationFile
	if err := json.Unmarshal(data, &f); err != nil {
		return audio.Narration{}, fmt.Errorf("failed to parse narration: %w", err)
	}
	if f.Audio != "" {
		return audio.Narration{
			Clip: &audio.DecodeRequest{
				EncodedAudio: f.Audio,
				SampleRate:   f.SampleRate,
				ChannelCount: f.ChannelCount,
			},
			Splits: f.Splits,
		}, nil
	}
	if len(f.Clips) == 0 {
		return audio.Narration{}, ErrNoNarration
	}
	n := audio.Narration{Clips: make([]audio.DecodeRequest, 0, len(f.Clips))}
	for i, clip := range f.Clips {
		if clip == "" {
			continue
		}
		n.Clips = append(n.Clips, audio.DecodeRequest{
			EncodedAudio: clip,
			SampleRate:   f.SampleRate,
			ChannelCount: f.ChannelCount,
			StepIndex:    i,
		})
	}
	return n, nil
}

// LoadNarration reads and parses a narration file.
func LoadNarration(path string) (audio.Narration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return audio.Narration{}, fmt.Errorf("failed to read narration: %w", err)
	}
	return ParseNarration(data)
}
