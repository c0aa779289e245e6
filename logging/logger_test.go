package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/whiteboard-go/config"
	"github.com/Carmen-Shannon/whiteboard-go/logging"
)

func TestConsoleLoggerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With("component", "playback").Info("step started", "step", 2, "title", "Free body diagram")

	line := buf.String()
	if !strings.Contains(line, "INFO  [playback] step started") {
		t.Fatalf("unexpected header: %q", line)
	}
	if !strings.Contains(line, "step=2") || !strings.Contains(line, `title="Free body diagram"`) {
		t.Fatalf("unexpected attributes: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not be repeated as an attribute: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("buffers should not be colorized: %q", line)
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "err", errors.New("decode failed"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, `err="decode failed"`) {
		t.Fatalf("unexpected warn line: %q", out)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.WithGroup("audio").Debug("clip decoded", "samples", 480)

	out := buf.String()
	if !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected source location in debug output: %q", out)
	}
	if !strings.Contains(out, "audio.samples=480") {
		t.Fatalf("expected grouped attribute: %q", out)
	}
}

func TestConsoleLoggerForcedColor(t *testing.T) {
	var buf bytes.Buffer
	color := true
	logger, err := logging.New(logging.Options{Writer: &buf, Color: &color})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Error("boom")

	if !strings.Contains(buf.String(), "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected colorized level: %q", buf.String())
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "JSON", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With("component", "engine").Info("frame", "fps", 60)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "info" || record["msg"] != "frame" || record["component"] != "engine" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts field: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}
