package provider_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/engine/provider"
)

const planJSON = `{"steps":[{"origin":{"x":0,"y":0},"explanation":"a circle","drawingCommands":[{"type":"circle","id":"c","center":{"x":0,"y":0},"radius":5}]}]}`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Law of Sines?", "law-of-sines"},
		{"  What is   a Vector ", "what-is-a-vector"},
		{"E=mc^2", "e-mc-2"},
		{"???", ""},
	}
	for _, tc := range tests {
		if got := provider.Slug(tc.in); got != tc.want {
			t.Fatalf("Slug(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestLibraryFindsPlanBySlug(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "law-of-sines.json"), planJSON)
	writeFile(t, filepath.Join(dir, "law-of-sines"+provider.NarrationSuffix), `{"sampleRate":16000,"clips":["AAA="]}`)

	lib := provider.NewLibrary(dir, nil)
	p, err := lib.Plan(context.Background(), "Law of Sines?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 || p.Steps[0].Explanation != "a circle" {
		t.Fatalf("unexpected plan: %+v", p)
	}
	path, ok := lib.PathOf(p)
	if !ok || filepath.Base(path) != "law-of-sines.json" {
		t.Fatalf("unexpected plan path: %q", path)
	}

	n, err := lib.Narrate(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected narration error: %v", err)
	}
	if len(n.Clips) != 1 || n.Clips[0].SampleRate != 16000 || n.Clips[0].StepIndex != 0 {
		t.Fatalf("unexpected narration: %+v", n)
	}
}

func TestLibraryMisses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "silent.json"), planJSON)
	lib := provider.NewLibrary(dir, nil)

	if _, err := lib.Plan(context.Background(), "unknown topic"); !errors.Is(err, provider.ErrPlanNotFound) {
		t.Fatalf("unexpected error: got %v want %v", err, provider.ErrPlanNotFound)
	}
	p, err := lib.Plan(context.Background(), "silent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lib.Narrate(context.Background(), p); !errors.Is(err, provider.ErrNoNarration) {
		t.Fatalf("missing sidecar should report no narration, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lib.Plan(ctx, "silent"); !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected error for canceled context: %v", err)
	}
}

func TestParseNarrationClip(t *testing.T) {
	n, err := provider.ParseNarration([]byte(`{"audio":"AAAA","splits":[1.5,3]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Clip == nil || n.Clip.EncodedAudio != "AAAA" || len(n.Splits) != 2 {
		t.Fatalf("unexpected narration: %+v", n)
	}
	if _, err := provider.ParseNarration([]byte(`{}`)); !errors.Is(err, provider.ErrNoNarration) {
		t.Fatalf("unexpected error for empty document: %v", err)
	}
	if _, err := provider.ParseNarration([]byte(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
