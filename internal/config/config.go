package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1broseidon/webshim/internal/lifecycle"
	"gopkg.in/yaml.v3"
)

// Backend names a window backend.
type Backend string

const (
	BackendX11      Backend = "x11"
	BackendHeadless Backend = "headless"
)

// WindowConfig sizes and labels the native window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// HiDPIScale overrides the display's scale factor when > 0.
	HiDPIScale float32 `yaml:"hidpi_scale,omitempty"`
}

// EngineConfig is passed through to the engine.
type EngineConfig struct {
	URL             string   `yaml:"url"`
	Args            []string `yaml:"args,omitempty"`
	FrameIntervalMS int      `yaml:"frame_interval_ms"`
	Animate         bool     `yaml:"animate"`
}

// FrameInterval returns the frame pacing as a duration.
func (e EngineConfig) FrameInterval() time.Duration {
	return time.Duration(e.FrameIntervalMS) * time.Millisecond
}

// NavigationConfig is the URL policy answered on navigation requests.
type NavigationConfig struct {
	// Default is "allow" or "deny" for URLs matching no pattern.
	Default string   `yaml:"default"`
	Allow   []string `yaml:"allow,omitempty"`
	Deny    []string `yaml:"deny,omitempty"`
}

// Policy builds the navigation policy.
func (n NavigationConfig) Policy() lifecycle.NavigationPolicy {
	if n.Default == "allow" && len(n.Allow) == 0 && len(n.Deny) == 0 {
		return lifecycle.AllowAll{}
	}
	return lifecycle.PatternPolicy{Default: n.Default != "deny", Allow: n.Allow, Deny: n.Deny}
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text, json, or auto (text on a terminal, json otherwise).
	Format string `yaml:"format"`
}

// IPCConfig controls the control socket.
type IPCConfig struct {
	Enabled bool `yaml:"enabled"`
	// Socket overrides the default socket path.
	Socket string `yaml:"socket,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	Backend              Backend          `yaml:"backend"`
	Display              string           `yaml:"display,omitempty"`
	Window               WindowConfig     `yaml:"window"`
	Engine               EngineConfig     `yaml:"engine"`
	Navigation           NavigationConfig `yaml:"navigation"`
	ExitOnLastViewClosed bool             `yaml:"exit_on_last_view_closed"`
	Logging              LoggingConfig    `yaml:"logging"`
	IPC                  IPCConfig        `yaml:"ipc"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendX11,
		Window: WindowConfig{
			Title:  "webshim",
			Width:  1024,
			Height: 768,
		},
		Engine: EngineConfig{
			URL:             "about:demo",
			FrameIntervalMS: 16,
		},
		Navigation:           NavigationConfig{Default: "allow"},
		ExitOnLastViewClosed: true,
		Logging:              LoggingConfig{Level: "info", Format: "auto"},
		IPC:                  IPCConfig{Enabled: true},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendX11, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: x11, headless")}
	}
	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	if c.Window.HiDPIScale < 0 || c.Window.HiDPIScale > 8 {
		return &ValidationError{Path: "window.hidpi_scale", Err: fmt.Errorf("hidpi_scale must be between 0 and 8")}
	}
	if c.Engine.FrameIntervalMS <= 0 {
		return &ValidationError{Path: "engine.frame_interval_ms", Err: fmt.Errorf("frame_interval_ms must be > 0")}
	}
	switch c.Navigation.Default {
	case "allow", "deny":
	default:
		return &ValidationError{Path: "navigation.default", Err: fmt.Errorf("default must be one of: allow, deny")}
	}
	if err := lifecycle.ValidatePatterns(c.Navigation.Allow); err != nil {
		return &ValidationError{Path: "navigation.allow", Err: err}
	}
	if err := lifecycle.ValidatePatterns(c.Navigation.Deny); err != nil {
		return &ValidationError{Path: "navigation.deny", Err: err}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: auto, text, json")}
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, or the default location when path
// is empty.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
