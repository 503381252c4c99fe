package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.backend.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("get status: %w", err)
	}
	return nil, GetStatusOutput{
		State:         st.State,
		Mode:          st.Mode,
		Width:         st.Viewport.Size.X,
		Height:        st.Viewport.Size.Y,
		HiDPIScale:    st.Viewport.HiDPIScale,
		Top:           uint64(st.Top),
		Title:         st.Title,
		URL:           st.URL,
		Animating:     st.Animating,
		Frames:        st.Frames,
		Dropped:       st.Dropped,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleListViews(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListViewsInput) (*mcpsdk.CallToolResult, ListViewsOutput, error) {
	data, err := s.backend.ListViews()
	if err != nil {
		return nil, ListViewsOutput{}, fmt.Errorf("list views: %w", err)
	}
	return nil, ListViewsOutput{Views: data.Views}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.backend.Close(); err != nil {
		return nil, CloseWindowOutput{}, fmt.Errorf("close window: %w", err)
	}
	s.logger.Info("mcp: close requested")
	return nil, CloseWindowOutput{Requested: true}, nil
}

func (s *Server) handleNavigate(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateInput) (*mcpsdk.CallToolResult, NavigateOutput, error) {
	url := strings.TrimSpace(args.URL)
	if url == "" {
		return nil, NavigateOutput{}, fmt.Errorf("url is required")
	}
	if err := s.backend.Navigate(url); err != nil {
		return nil, NavigateOutput{}, fmt.Errorf("navigate: %w", err)
	}
	s.logger.Info("mcp: navigate requested", "url", url)
	return nil, NavigateOutput{Requested: true, URL: url}, nil
}
