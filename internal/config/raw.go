package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw* mirror the effective types with every field optional, so that a later
// file only overrides the keys it sets.

type RawWindowConfig struct {
	Title      *string  `yaml:"title"`
	Width      *int     `yaml:"width"`
	Height     *int     `yaml:"height"`
	HiDPIScale *float32 `yaml:"hidpi_scale"`
}

type RawEngineConfig struct {
	URL             *string  `yaml:"url"`
	Args            []string `yaml:"args"`
	FrameIntervalMS *int     `yaml:"frame_interval_ms"`
	Animate         *bool    `yaml:"animate"`
}

type RawNavigationConfig struct {
	Default *string  `yaml:"default"`
	Allow   []string `yaml:"allow"`
	Deny    []string `yaml:"deny"`
}

type RawLoggingConfig struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type RawIPCConfig struct {
	Enabled *bool   `yaml:"enabled"`
	Socket  *string `yaml:"socket"`
}

type RawConfig struct {
	Include              IncludeList          `yaml:"include"`
	Backend              *Backend             `yaml:"backend"`
	Display              *string              `yaml:"display"`
	Window               *RawWindowConfig     `yaml:"window"`
	Engine               *RawEngineConfig     `yaml:"engine"`
	Navigation           *RawNavigationConfig `yaml:"navigation"`
	ExitOnLastViewClosed *bool                `yaml:"exit_on_last_view_closed"`
	Logging              *RawLoggingConfig    `yaml:"logging"`
	IPC                  *RawIPCConfig        `yaml:"ipc"`
}

func set[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	set(&out.Backend, overlay.Backend)
	set(&out.Display, overlay.Display)
	set(&out.ExitOnLastViewClosed, overlay.ExitOnLastViewClosed)

	if w := overlay.Window; w != nil {
		base := RawWindowConfig{}
		if out.Window != nil {
			base = *out.Window
		}
		set(&base.Title, w.Title)
		set(&base.Width, w.Width)
		set(&base.Height, w.Height)
		set(&base.HiDPIScale, w.HiDPIScale)
		out.Window = &base
	}
	if e := overlay.Engine; e != nil {
		base := RawEngineConfig{}
		if out.Engine != nil {
			base = *out.Engine
		}
		set(&base.URL, e.URL)
		set(&base.FrameIntervalMS, e.FrameIntervalMS)
		set(&base.Animate, e.Animate)
		if e.Args != nil {
			base.Args = e.Args
		}
		out.Engine = &base
	}
	if n := overlay.Navigation; n != nil {
		base := RawNavigationConfig{}
		if out.Navigation != nil {
			base = *out.Navigation
		}
		set(&base.Default, n.Default)
		// Pattern lists replace rather than append.
		if n.Allow != nil {
			base.Allow = n.Allow
		}
		if n.Deny != nil {
			base.Deny = n.Deny
		}
		out.Navigation = &base
	}
	if l := overlay.Logging; l != nil {
		base := RawLoggingConfig{}
		if out.Logging != nil {
			base = *out.Logging
		}
		set(&base.Level, l.Level)
		set(&base.Format, l.Format)
		out.Logging = &base
	}
	if i := overlay.IPC; i != nil {
		base := RawIPCConfig{}
		if out.IPC != nil {
			base = *out.IPC
		}
		set(&base.Enabled, i.Enabled)
		set(&base.Socket, i.Socket)
		out.IPC = &base
	}
	return out
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	if raw.Backend != nil {
		cfg.Backend = *raw.Backend
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.ExitOnLastViewClosed != nil {
		cfg.ExitOnLastViewClosed = *raw.ExitOnLastViewClosed
	}
	if w := raw.Window; w != nil {
		apply(&cfg.Window.Title, w.Title)
		apply(&cfg.Window.Width, w.Width)
		apply(&cfg.Window.Height, w.Height)
		apply(&cfg.Window.HiDPIScale, w.HiDPIScale)
	}
	if e := raw.Engine; e != nil {
		apply(&cfg.Engine.URL, e.URL)
		apply(&cfg.Engine.FrameIntervalMS, e.FrameIntervalMS)
		apply(&cfg.Engine.Animate, e.Animate)
		if e.Args != nil {
			cfg.Engine.Args = append([]string(nil), e.Args...)
		}
	}
	if n := raw.Navigation; n != nil {
		apply(&cfg.Navigation.Default, n.Default)
		if n.Allow != nil {
			cfg.Navigation.Allow = append([]string(nil), n.Allow...)
		}
		if n.Deny != nil {
			cfg.Navigation.Deny = append([]string(nil), n.Deny...)
		}
	}
	if l := raw.Logging; l != nil {
		apply(&cfg.Logging.Level, l.Level)
		apply(&cfg.Logging.Format, l.Format)
	}
	if i := raw.IPC; i != nil {
		apply(&cfg.IPC.Enabled, i.Enabled)
		apply(&cfg.IPC.Socket, i.Socket)
	}
	return cfg
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
