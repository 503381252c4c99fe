package mcp

import "github.com/1broseidon/webshim/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	State         string  `json:"state"`
	Mode          string  `json:"mode"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	HiDPIScale    float32 `json:"hidpi_scale"`
	Top           uint64  `json:"top"`
	Title         string  `json:"title,omitempty"`
	URL           string  `json:"url,omitempty"`
	Animating     bool    `json:"animating"`
	Frames        uint64  `json:"frames"`
	Dropped       uint64  `json:"dropped"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// ListViewsInput is the input for the list_views tool.
type ListViewsInput struct{}

// ListViewsOutput is the output for the list_views tool.
type ListViewsOutput struct {
	Views []ipc.ViewInfo `json:"views"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct{}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Requested bool `json:"requested"`
}

// NavigateInput is the input for the navigate tool.
type NavigateInput struct {
	URL string `json:"url" jsonschema:"required,URL for the top view to load. Subject to the configured navigation policy."`
}

// NavigateOutput is the output for the navigate tool.
type NavigateOutput struct {
	Requested bool   `json:"requested"`
	URL       string `json:"url"`
}
