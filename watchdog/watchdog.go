// Package watchdog runs a periodic check on behalf of a single owner.
//
// The playback loop needs a heartbeat that survives exactly as long as the
// play session it belongs to. A Watchdog holds at most one live heartbeat:
// starting a new one retires the old first, and cancellation can arrive
// from any goroutine any number of times.
package watchdog

import (
	"sync"
	"time"
)

// Watchdog owns at most one periodic check at a time.
type Watchdog struct {
	mu   sync.Mutex
	stop chan struct{}
}

// New creates an inactive watchdog.
func New() *Watchdog {
	return &Watchdog{}
}

// Start begins invoking check every interval until Cancel. A previous
// heartbeat, if any, is cancelled first so checks never double up.
func (w *Watchdog) Start(interval time.Duration, check func()) {
	w.mu.Lock()
	w.retire()
	stop := make(chan struct{})
	w.stop = stop
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}

// Cancel stops the current heartbeat. Safe to call repeatedly and without
// a prior Start.
func (w *Watchdog) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.retire()
}

// Active reports whether a heartbeat is currently running.
func (w *Watchdog) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stop != nil
}

func (w *Watchdog) retire() {
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}
