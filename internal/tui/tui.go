// Package tui renders a live monitor for a running embedder.
package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/webshim/internal/ipc"
)

// Source is what the monitor polls. *ipc.Client satisfies it.
type Source interface {
	GetStatus() (*ipc.StatusData, error)
	ListViews() (*ipc.ViewsData, error)
	Close() error
}

// DefaultRefresh is the status polling interval.
const DefaultRefresh = time.Second

// Run starts the monitor and blocks until the user quits.
func Run(src Source, refresh time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("monitor requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	p := tea.NewProgram(newModel(src, refresh), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
