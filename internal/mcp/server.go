package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/webshim/internal/ipc"
)

const (
	ServerName    = "webshim"
	ServerVersion = "0.1.0"
)

// Backend is the control surface the tools drive. *ipc.Client satisfies it.
type Backend interface {
	GetStatus() (*ipc.StatusData, error)
	ListViews() (*ipc.ViewsData, error)
	Close() error
	Navigate(url string) error
}

// Server exposes a running embedder to MCP clients.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to backend.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		backend: backend,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the embedder's lifecycle state, viewport, scheduling mode, top view and frame counters.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_views",
		Description: "List the live views in open order. Title and URL are reported for the top view.",
	}, s.handleListViews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Ask the embedder to close its window and shut the engine down.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate",
		Description: "Ask the top view to load a URL. The navigation policy may still refuse it.",
	}, s.handleNavigate)
}
