package surface

import (
	"fmt"

	"github.com/1broseidon/webshim/internal/engine"
)

// affinity pins the bridge to the OS thread that first called pin. An
// unpinned bridge accepts calls from any thread.
type affinity struct {
	tid    int
	pinned bool
}

func (a *affinity) pin() {
	a.tid = currentThread()
	a.pinned = true
}

func (a *affinity) check(op string) error {
	if !a.pinned {
		return nil
	}
	if tid := currentThread(); tid != a.tid {
		return &engine.OpError{
			Op:  fmt.Sprintf("%s (thread %d, pinned %d)", op, tid, a.tid),
			Err: engine.ErrWrongThread,
		}
	}
	return nil
}
