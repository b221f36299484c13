// Package sdk bootstraps the third-party player runtime exactly once.
//
// Every portal on the page needs the player runtime before it can mount.
// Bootstrap funnels all of them through a single readiness gate: the first
// caller triggers injection, later callers share the same signal, and a
// runtime that never comes up simply never releases anyone. Waiters are
// released independently so one portal's mount cannot stall another's.
package sdk

import (
	"sync"

	"github.com/deferview/deferview/log"
)

// State is the runtime's position in its bootstrap lifecycle.
type State string

const (
	// StateNotRequested means nobody has asked for the runtime yet.
	StateNotRequested State = "not_requested"
	// StateRequesting means injection happened and the ready signal is pending.
	StateRequesting State = "requesting"
	// StateReady means the runtime is available.
	StateReady State = "ready"
)

// Injector is the platform hook that brings the player runtime in.
type Injector interface {
	// Available reports whether the runtime is already present.
	Available() bool

	// Inject starts loading the runtime and arranges for onReady to run
	// once it comes up. Called at most once per bootstrap.
	Inject(onReady func()) error
}

// Bootstrap resolves the runtime's readiness for a single page run.
type Bootstrap struct {
	injector Injector

	mu    sync.Mutex
	state State
	ready chan struct{}
	once  sync.Once
}

// New creates a bootstrap around the given injector.
func New(injector Injector) *Bootstrap {
	return &Bootstrap{
		injector: injector,
		state:    StateNotRequested,
		ready:    make(chan struct{}),
	}
}

// State returns the current bootstrap state.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// EnsureReady returns a channel closed once the runtime is available.
// The first call triggers injection when the runtime is absent; every call
// shares the same channel. If injection fails the channel stays open for
// the life of the run and the failure is only logged.
func (b *Bootstrap) EnsureReady() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateReady, StateRequesting:
		return b.ready
	}

	if b.injector.Available() {
		b.state = StateReady
		b.release()
		return b.ready
	}

	b.state = StateRequesting
	if err := b.injector.Inject(b.markReady); err != nil {
		// Portals stay dormant rather than erroring the whole page.
		log.Debugf("sdk: injection failed: %s", err)
	}
	return b.ready
}

func (b *Bootstrap) markReady() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateReady
	b.release()
}

func (b *Bootstrap) release() {
	b.once.Do(func() {
		close(b.ready)
	})
}
