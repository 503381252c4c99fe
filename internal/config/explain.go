package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	backend
//	display
//	window.title
//	window.width
//	window.height
//	window.hidpi_scale
//	engine.url
//	engine.args
//	engine.frame_interval_ms
//	engine.animate
//	navigation.default
//	navigation.allow
//	navigation.deny
//	exit_on_last_view_closed
//	logging.level
//	logging.format
//	ipc.enabled
//	ipc.socket
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	section, key, nested := strings.Cut(path, ".")
	unknown := fmt.Errorf("unknown path: %s", path)

	if !nested {
		switch section {
		case "backend":
			return cfg.Backend, nil
		case "display":
			return cfg.Display, nil
		case "exit_on_last_view_closed":
			return cfg.ExitOnLastViewClosed, nil
		case "window":
			return cfg.Window, nil
		case "engine":
			return cfg.Engine, nil
		case "navigation":
			return cfg.Navigation, nil
		case "logging":
			return cfg.Logging, nil
		case "ipc":
			return cfg.IPC, nil
		}
		return nil, unknown
	}

	switch section {
	case "window":
		switch key {
		case "title":
			return cfg.Window.Title, nil
		case "width":
			return cfg.Window.Width, nil
		case "height":
			return cfg.Window.Height, nil
		case "hidpi_scale":
			return cfg.Window.HiDPIScale, nil
		}
	case "engine":
		switch key {
		case "url":
			return cfg.Engine.URL, nil
		case "args":
			return cfg.Engine.Args, nil
		case "frame_interval_ms":
			return cfg.Engine.FrameIntervalMS, nil
		case "animate":
			return cfg.Engine.Animate, nil
		}
	case "navigation":
		switch key {
		case "default":
			return cfg.Navigation.Default, nil
		case "allow":
			return cfg.Navigation.Allow, nil
		case "deny":
			return cfg.Navigation.Deny, nil
		}
	case "logging":
		switch key {
		case "level":
			return cfg.Logging.Level, nil
		case "format":
			return cfg.Logging.Format, nil
		}
	case "ipc":
		switch key {
		case "enabled":
			return cfg.IPC.Enabled, nil
		case "socket":
			return cfg.IPC.Socket, nil
		}
	}
	return nil, unknown
}
