package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/loop"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandListViews CommandType = "LIST_VIEWS"
	CommandClose     CommandType = "CLOSE"
	CommandNavigate  CommandType = "NAVIGATE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	loop.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// ViewInfo describes one live view.
type ViewInfo struct {
	ID    engine.ViewHandle `json:"id"`
	Top   bool              `json:"top"`
	Title string            `json:"title,omitempty"`
	URL   string            `json:"url,omitempty"`
}

// ViewsData is returned by LIST_VIEWS.
type ViewsData struct {
	Views []ViewInfo `json:"views"`
}

// NavigatePayload is the payload for NAVIGATE.
type NavigatePayload struct {
	URL string `json:"url"`
}

// viewsFromStatus lists views in open order. Title and URL are only tracked
// for the top view.
func viewsFromStatus(s loop.Status) ViewsData {
	out := ViewsData{Views: make([]ViewInfo, 0, len(s.Views))}
	for _, v := range s.Views {
		info := ViewInfo{ID: v}
		if v == s.Top {
			info.Top = true
			info.Title = s.Title
			info.URL = s.URL
		}
		out.Views = append(out.Views, info)
	}
	return out
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
