package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/whiteboard-go/common"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Window contains configuration for the desktop window.
type Window struct {
	Title                string `toml:"title"`
	Width                int    `toml:"width"`
	Height               int    `toml:"height"`
	MinWidth             int    `toml:"min_width"`
	MinHeight            int    `toml:"min_height"`
	VSync                bool   `toml:"vsync"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
}

// Engine contains configuration for the tick and render loops.
type Engine struct {
	TickRate         float64 `toml:"tick_rate"`
	FullFrameRate    int     `toml:"full_frame_rate"`
	ReducedFrameRate int     `toml:"reduced_frame_rate"`
	Profiling        bool    `toml:"profiling"`
}

// Playback contains configuration for step pacing.
type Playback struct {
	// BreathingMS is the hold after a step completes before the next one starts.
	BreathingMS int `toml:"breathing_ms"`
	// AudioTimeoutSeconds bounds how long a step waits for its narration to decode.
	AudioTimeoutSeconds float64 `toml:"audio_timeout_seconds"`
}

// Audio contains configuration for narration decoding and output.
type Audio struct {
	// Enabled selects the speaker output; when false the audio clock runs silently.
	Enabled       bool `toml:"enabled"`
	Muted         bool `toml:"muted"`
	SampleRate    int  `toml:"sample_rate"`
	Channels      int  `toml:"channels"`
	DecodeWorkers int  `toml:"decode_workers"`
	DecodeQueue   int  `toml:"decode_queue"`
}

// Viewport contains configuration for the camera.
type Viewport struct {
	MinZoom        float64 `toml:"min_zoom"`
	MaxZoom        float64 `toml:"max_zoom"`
	ZoomSpeed      float64 `toml:"zoom_speed"`
	Smoothing      float64 `toml:"smoothing"`
	TouchSmoothing float64 `toml:"touch_smoothing"`
	SmallScreenPx  int     `toml:"small_screen_px"`
	Touch          bool    `toml:"touch"`
}

// Render contains configuration for the progressive renderer.
type Render struct {
	DrawingWindow      float64 `toml:"drawing_window"`
	LineWidth          float64 `toml:"line_width"`
	FontSize           float64 `toml:"font_size"`
	MarkerRadius       float64 `toml:"marker_radius"`
	ContextualOpacity  float64 `toml:"contextual_opacity"`
	NearBlackLuminance float64 `toml:"near_black_luminance"`
	Background         string  `toml:"background"`
	Foreground         string  `toml:"foreground"`
	Highlight          string  `toml:"highlight"`
}

// Library contains configuration for the file-backed plan library.
type Library struct {
	Dir string `toml:"dir"`
}

// Export contains configuration for PNG frame export.
type Export struct {
	Dir    string `toml:"dir"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the whiteboard.
//
// Configuration sections by subsystem:
//   - Window: desktop window and presenter
//   - Engine: tick rate and adaptive frame rates
//   - Playback: breathing hold and audio wait
//   - Audio: narration decoding and speaker output
//   - Viewport: zoom limits and camera smoothing
//   - Render: stroke styling and colors
//   - Library: where plans and narration files are looked up
//   - Export: PNG export directory and size
//   - Logging: log format and level
type Config struct {
	Window   Window   `toml:"window"`
	Engine   Engine   `toml:"engine"`
	Playback Playback `toml:"playback"`
	Audio    Audio    `toml:"audio"`
	Viewport Viewport `toml:"viewport"`
	Render   Render   `toml:"render"`
	Library  Library  `toml:"library"`
	Export   Export   `toml:"export"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/whiteboard/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("whiteboard.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	enc := toml.NewEncoder(&b)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

// Breathing returns the hold between steps.
func (c *Config) Breathing() time.Duration {
	return time.Duration(c.Playback.BreathingMS) * time.Millisecond
}

// AudioTimeout returns how long a step waits for its narration.
func (c *Config) AudioTimeout() time.Duration {
	return time.Duration(c.Playback.AudioTimeoutSeconds * float64(time.Second))
}

// Colors returns the parsed board colors. Validate guarantees they parse.
func (c *Config) Colors() (background, foreground, highlight common.Color) {
	background, _ = common.ParseColor(c.Render.Background)
	foreground, _ = common.ParseColor(c.Render.Foreground)
	highlight, _ = common.ParseColor(c.Render.Highlight)
	return background, foreground, highlight
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
