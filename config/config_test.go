package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/Carmen-Shannon/whiteboard-go/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "whiteboard", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "whiteboard", "plans"); cfg.Library.Dir != want {
		t.Fatalf("unexpected library dir: got %q want %q", cfg.Library.Dir, want)
	}
	if cfg.Breathing() != 375*time.Millisecond {
		t.Fatalf("unexpected breathing: got %v want %v", cfg.Breathing(), 375*time.Millisecond)
	}
	if cfg.AudioTimeout() != 8*time.Second {
		t.Fatalf("unexpected audio timeout: got %v want %v", cfg.AudioTimeout(), 8*time.Second)
	}
	bg, fg, hl := cfg.Colors()
	if bg != common.ColorBoard || fg != common.ColorForeground || hl != common.ColorHighlight {
		t.Fatalf("unexpected default colors: %v %v %v", bg, fg, hl)
	}
}

func TestLoadFileOverridesAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(t.TempDir(), "whiteboard.toml")
	data := `
[window]
title = "  "
width = 800
height = 600

[playback]
breathing_ms = 0

[library]
dir = "~/plans"

[logging]
format = "JSON"
level = "Warning"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Window.Title != "Whiteboard" {
		t.Fatalf("blank title should fall back to the default, got %q", cfg.Window.Title)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Fatalf("unexpected window size: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Breathing() != 0 {
		t.Fatalf("unexpected breathing: got %v want 0", cfg.Breathing())
	}
	if cfg.Library.Dir != filepath.Join(tempHome, "plans") {
		t.Fatalf("unexpected library dir: %q", cfg.Library.Dir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Engine.FullFrameRate != config.Default().Engine.FullFrameRate {
		t.Fatalf("unset values should keep defaults, got %d", cfg.Engine.FullFrameRate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name string
		data string
		want string
	}{
		{"zoom", "[viewport]\nmin_zoom = 4\nmax_zoom = 2\n", "viewport.min_zoom"},
		{"color", "[render]\nbackground = \"chartreuse-ish\"\n", "render.background"},
		{"channels", "[audio]\nchannels = 6\n", "audio.channels"},
		{"rates", "[engine]\nreduced_frame_rate = 120\n", "engine.reduced_frame_rate"},
		{"window", "[render]\ndrawing_window = 0\n", "render.drawing_window"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"unknown", "[render]\nline_colour = \"red\"\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("unexpected error: got %v want containing %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	fromSample, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("sample should load: exists=%v err=%v", exists, err)
	}
	fromDefaults, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("defaults should load: %v", err)
	}
	if *fromSample != *fromDefaults {
		t.Fatalf("sample config drifted from defaults:\n%+v\n%+v", *fromSample, *fromDefaults)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Title = "Lecture"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	var back config.Config
	if err := toml.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("unmarshal encoded config: %v", err)
	}
	if back != cfg {
		t.Fatalf("unexpected round trip:\n%+v\n%+v", back, cfg)
	}
}
