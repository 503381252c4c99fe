package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/webshim/internal/lifecycle"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Backend != BackendX11 {
		t.Fatalf("expected x11 backend, got %q", cfg.Backend)
	}
	if _, ok := cfg.Navigation.Policy().(lifecycle.AllowAll); !ok {
		t.Fatalf("expected default navigation policy to allow all, got %T", cfg.Navigation.Policy())
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Window.Width != 1024 || res.Config.Window.Height != 768 {
		t.Fatalf("expected default window size, got %dx%d", res.Config.Window.Width, res.Config.Window.Height)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected one loaded file, got %v", res.Files)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Engine.FrameIntervalMS != 16 {
		t.Fatalf("expected default frame interval, got %d", res.Config.Engine.FrameIntervalMS)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_OverridesAndExplainSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"backend: headless",
		"window:",
		"  title: demo",
		"  hidpi_scale: 2",
		"engine:",
		"  frame_interval_ms: 33",
		"  animate: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Backend != BackendHeadless {
		t.Fatalf("expected headless, got %q", cfg.Backend)
	}
	if cfg.Window.Title != "demo" || cfg.Window.HiDPIScale != 2 {
		t.Fatalf("unexpected window config: %+v", cfg.Window)
	}
	// Unset keys in a set section keep their defaults.
	if cfg.Window.Width != 1024 {
		t.Fatalf("expected default width, got %d", cfg.Window.Width)
	}
	if cfg.Engine.FrameInterval().Milliseconds() != 33 || !cfg.Engine.Animate {
		t.Fatalf("unexpected engine config: %+v", cfg.Engine)
	}

	val, src, err := Explain(res, "window.title")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "demo" {
		t.Fatalf("expected demo, got %v", val)
	}
	if src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("expected file source at line 3, got %+v", src)
	}

	_, src, err = Explain(res, "window.width")
	if err != nil {
		t.Fatalf("explain width: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v", src)
	}

	if _, _, err := Explain(res, "window.depth"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorNamesKey(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		path string
	}{
		{"backend", "backend: wayland\n", "backend"},
		{"width", "window:\n  width: 0\n", "window.width"},
		{"scale", "window:\n  hidpi_scale: -1\n", "window.hidpi_scale"},
		{"interval", "engine:\n  frame_interval_ms: 0\n", "engine.frame_interval_ms"},
		{"nav default", "navigation:\n  default: maybe\n", "navigation.default"},
		{"nav pattern", "navigation:\n  deny:\n    - \"https://[\"\n", "navigation.deny"},
		{"level", "logging:\n  level: loud\n", "logging.level"},
		{"format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			writeFile(t, path, tt.yaml)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if verr.Source.File == "" {
				t.Fatalf("expected source context, got %+v", verr.Source)
			}
			if !strings.Contains(err.Error(), path+":") {
				t.Fatalf("expected file:line:col prefix, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "window:\n  width: 640\n  height: 480\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "window:\n  width: 800\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"window:",
		"  title: main",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w := res.Config.Window
	if w.Width != 800 || w.Height != 480 || w.Title != "main" {
		t.Fatalf("unexpected merged window: %+v", w)
	}
	if len(res.Files) != 3 || res.Files[2] != path {
		t.Fatalf("expected includes before main, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeGlob(t *testing.T) {
	dir := t.TempDir()
	profiles := filepath.Join(dir, "profiles", "dev")
	if err := os.MkdirAll(profiles, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "profiles", "base.yaml"), "window:\n  width: 640\n")
	writeFile(t, filepath.Join(profiles, "wide.yaml"), "window:\n  width: 1280\n")
	writeFile(t, filepath.Join(profiles, "notes.txt"), "not yaml\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: \"profiles/**/*\"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Lexical order: profiles/base.yaml before profiles/dev/wide.yaml.
	if res.Config.Window.Width != 1280 {
		t.Fatalf("width = %d, want 1280", res.Config.Window.Width)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %v, want two includes and main", res.Files)
	}
	src := res.Sources["window.width"]
	if !strings.HasSuffix(src.File, "wide.yaml") || src.Line != 2 {
		t.Fatalf("window.width source = %+v, want wide.yaml:2", src)
	}

	writeFile(t, path, "include: \"none/*.yaml\"\n")
	if _, err := LoadFromPath(path); err == nil || !strings.Contains(err.Error(), "matches no files") {
		t.Fatalf("empty glob error = %v", err)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestNavigationConfig_Policy(t *testing.T) {
	nav := NavigationConfig{
		Default: "deny",
		Allow:   []string{"https://example.com/**"},
	}
	p := nav.Policy()
	if !p.AllowNavigation(1, "https://example.com/a/b") {
		t.Fatalf("expected allowed url")
	}
	if p.AllowNavigation(1, "https://evil.test/") {
		t.Fatalf("expected default deny")
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/tmp/custom.yaml" {
		t.Fatalf("expected env override, got %q", path)
	}
}

func TestSave_RoundTripsThroughLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend = BackendHeadless
	cfg.Navigation.Deny = []string{"file://**"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Backend != BackendHeadless {
		t.Fatalf("expected headless after reload, got %q", res.Config.Backend)
	}
	if len(res.Config.Navigation.Deny) != 1 || res.Config.Navigation.Deny[0] != "file://**" {
		t.Fatalf("unexpected deny list: %v", res.Config.Navigation.Deny)
	}
}
