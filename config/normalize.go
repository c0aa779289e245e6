package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeWindow()
	c.normalizeRender()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeWindow() {
	c.Window.Title = strings.TrimSpace(c.Window.Title)
	if c.Window.Title == "" {
		c.Window.Title = defaultWindowTitle
	}
}

func (c *Config) normalizeRender() {
	c.Render.Background = strings.TrimSpace(c.Render.Background)
	if c.Render.Background == "" {
		c.Render.Background = defaultBackground
	}
	c.Render.Foreground = strings.TrimSpace(c.Render.Foreground)
	if c.Render.Foreground == "" {
		c.Render.Foreground = defaultForeground
	}
	c.Render.Highlight = strings.TrimSpace(c.Render.Highlight)
	if c.Render.Highlight == "" {
		c.Render.Highlight = defaultHighlight
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Library.Dir) == "" {
		c.Library.Dir = defaultLibraryDir
	}
	if c.Library.Dir, err = expandPath(strings.TrimSpace(c.Library.Dir)); err != nil {
		return fmt.Errorf("library.dir: %w", err)
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		c.Export.Dir = defaultExportDir
	}
	if c.Export.Dir, err = expandPath(strings.TrimSpace(c.Export.Dir)); err != nil {
		return fmt.Errorf("export.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text":
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "":
		level = defaultLogLevel
	case "warning":
		level = "warn"
	}
	c.Logging.Level = level
}
