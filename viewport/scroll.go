package viewport

import (
	"sync"

	"github.com/deferview/deferview/page"
)

// ScrollEngine is an in-process Engine driven by explicit visibility flips.
// The interactive monitor and the scenario runner use it to simulate a
// reader scrolling through the page.
type ScrollEngine struct {
	mu        sync.Mutex
	serial    int
	visible   map[string]bool
	observers map[string]map[int]func(visible bool)
}

// NewScrollEngine creates an engine where every element starts hidden.
func NewScrollEngine() *ScrollEngine {
	return &ScrollEngine{
		visible:   make(map[string]bool),
		observers: make(map[string]map[int]func(visible bool)),
	}
}

// Observe registers a transition callback for the element. The current
// state is reported immediately, mirroring how intersection observers
// deliver an initial entry.
func (s *ScrollEngine) Observe(el page.Element, _ float64, notify func(visible bool)) (cancel func()) {
	s.mu.Lock()
	s.serial++
	token := s.serial
	id := el.ID()
	if s.observers[id] == nil {
		s.observers[id] = make(map[int]func(visible bool))
	}
	s.observers[id][token] = notify
	current := s.visible[id]
	s.mu.Unlock()

	notify(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers[id], token)
			s.mu.Unlock()
		})
	}
}

// SetVisible flips an element's visibility and notifies its observers.
// Setting the current state again is a no-op.
func (s *ScrollEngine) SetVisible(id string, visible bool) {
	s.mu.Lock()
	if s.visible[id] == visible {
		s.mu.Unlock()
		return
	}
	s.visible[id] = visible

	notifies := make([]func(visible bool), 0, len(s.observers[id]))
	for _, fn := range s.observers[id] {
		notifies = append(notifies, fn)
	}
	s.mu.Unlock()

	for _, fn := range notifies {
		fn(visible)
	}
}

// Visible reports an element's current visibility.
func (s *ScrollEngine) Visible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[id]
}
