package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/webshim/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_AutoIsJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "info", Format: "auto"}, &buf)
	logger.Info("hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("auto format off-terminal is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Fatalf("record = %v", rec)
	}
}

func TestNewLogger_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info logged at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=kept") {
		t.Fatalf("text output = %q", out)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug enabled at warn level")
	}
}

func TestOpenWindow_HeadlessScalesToPhysical(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendHeadless
	cfg.Window.Width, cfg.Window.Height = 800, 600
	cfg.Window.HiDPIScale = 2

	win, err := openWindow(cfg, slog.Default())
	if err != nil {
		t.Fatalf("openWindow: %v", err)
	}
	defer win.Close()

	if got := win.Size(); got.X != 1600 || got.Y != 1200 {
		t.Fatalf("Size() = %v, want 1600x1200", got)
	}
	if win.ScaleFactor() != 2 {
		t.Fatalf("ScaleFactor() = %v, want 2", win.ScaleFactor())
	}
}
