package page

import "sync"

// Session is the canonical Lifecycle implementation for a single page run.
type Session struct {
	mu       sync.Mutex
	unloaded bool
	hooks    []func()
}

// NewSession creates a live page session.
func NewSession() *Session {
	return &Session{}
}

// OnUnload registers a teardown hook. Hooks registered after the session has
// already unloaded are invoked immediately, so late subscribers still clean up.
func (s *Session) OnUnload(fn func()) {
	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		fn()
		return
	}
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Unload fires every registered hook exactly once. Subsequent calls are no-ops.
func (s *Session) Unload() {
	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		return
	}
	s.unloaded = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
