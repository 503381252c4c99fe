package wake

// Mode is how the host loop waits for the next native event.
type Mode int

const (
	// Wait blocks until a native event or a wake arrives.
	Wait Mode = iota
	// Poll returns immediately so animation frames keep flowing.
	Poll
)

func (m Mode) String() string {
	if m == Poll {
		return "poll"
	}
	return "wait"
}

// Scheduler derives the Mode from the most recently observed animation
// state. It is owned by the host thread.
type Scheduler struct {
	animating bool
}

// Observe records the engine's latest animation state.
func (s *Scheduler) Observe(animating bool) {
	s.animating = animating
}

// Mode returns Poll iff the last observed state was animating.
func (s *Scheduler) Mode() Mode {
	if s.animating {
		return Poll
	}
	return Wait
}
