package loop

import (
	"time"

	"github.com/1broseidon/webshim/internal/engine"
	"github.com/1broseidon/webshim/internal/viewport"
)

// Status is an immutable snapshot of the driver, published after every
// iteration.
type Status struct {
	State     string              `json:"state"`
	Mode      string              `json:"mode"`
	Viewport  viewport.Viewport   `json:"viewport"`
	Views     []engine.ViewHandle `json:"views"`
	Top       engine.ViewHandle   `json:"top"`
	Title     string              `json:"title,omitempty"`
	URL       string              `json:"url,omitempty"`
	Animating bool                `json:"animating"`
	Frames    uint64              `json:"frames"`
	Dropped   uint64              `json:"dropped"`
	Submits   uint64              `json:"submits"`
	Wakes     uint64              `json:"wakes"`
	StartedAt time.Time           `json:"started_at"`
}

// Uptime returns how long the driver has been running.
func (s Status) Uptime() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt).Truncate(time.Second)
}
