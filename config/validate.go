package config

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/whiteboard-go/common"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWindow(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateViewport(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWindow() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.New("window.width and window.height must be positive")
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return errors.New("window.min_width and window.min_height must not be negative")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.TickRate <= 0 {
		return errors.New("engine.tick_rate must be positive")
	}
	if c.Engine.FullFrameRate <= 0 {
		return errors.New("engine.full_frame_rate must be positive")
	}
	if c.Engine.ReducedFrameRate <= 0 || c.Engine.ReducedFrameRate > c.Engine.FullFrameRate {
		return errors.New("engine.reduced_frame_rate must be positive and at most engine.full_frame_rate")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.BreathingMS < 0 {
		return errors.New("playback.breathing_ms must not be negative")
	}
	if c.Playback.AudioTimeoutSeconds <= 0 {
		return errors.New("playback.audio_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate %d is out of range (8000-192000)", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return errors.New("audio.channels must be 1 or 2")
	}
	if c.Audio.DecodeWorkers <= 0 {
		return errors.New("audio.decode_workers must be positive")
	}
	if c.Audio.DecodeQueue <= 0 {
		return errors.New("audio.decode_queue must be positive")
	}
	return nil
}

func (c *Config) validateViewport() error {
	if c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return errors.New("viewport.min_zoom must be positive and at most viewport.max_zoom")
	}
	if c.Viewport.ZoomSpeed <= 0 {
		return errors.New("viewport.zoom_speed must be positive")
	}
	if c.Viewport.Smoothing <= 0 || c.Viewport.TouchSmoothing <= 0 {
		return errors.New("viewport.smoothing and viewport.touch_smoothing must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.DrawingWindow <= 0 || c.Render.DrawingWindow > 1 {
		return errors.New("render.drawing_window must be in (0, 1]")
	}
	if c.Render.LineWidth <= 0 {
		return errors.New("render.line_width must be positive")
	}
	if c.Render.FontSize <= 0 {
		return errors.New("render.font_size must be positive")
	}
	if c.Render.ContextualOpacity < 0 || c.Render.ContextualOpacity > 1 {
		return errors.New("render.contextual_opacity must be between 0 and 1")
	}
	if c.Render.NearBlackLuminance < 0 || c.Render.NearBlackLuminance > 1 {
		return errors.New("render.near_black_luminance must be between 0 and 1")
	}
	for name, value := range map[string]string{
		"render.background": c.Render.Background,
		"render.foreground": c.Render.Foreground,
		"render.highlight":  c.Render.Highlight,
	} {
		if _, err := common.ParseColor(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return errors.New("export.width and export.height must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
