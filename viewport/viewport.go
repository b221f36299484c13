// Package viewport tracks which page elements are visible to the reader.
//
// An Engine is the platform facility that reports visibility transitions
// (an intersection observer, a scroll simulation, a test double). Watcher
// layers the two usage patterns the runtime needs on top of it: one-shot
// triggers that fire the first time an element becomes visible, and
// continuous monitors that follow every transition.
package viewport

import (
	"sync"

	"github.com/deferview/deferview/log"
	"github.com/deferview/deferview/page"
)

// Engine reports visibility transitions for observed elements.
type Engine interface {
	// Observe starts watching an element with the given visibility threshold.
	// The notify callback receives every transition, starting with the
	// current state. The returned function stops the observation and is
	// safe to call more than once.
	Observe(el page.Element, threshold float64, notify func(visible bool)) (cancel func())
}

// Watcher dispatches visibility work for a single page run.
type Watcher struct {
	engine Engine
}

// NewWatcher creates a watcher backed by the given engine. A nil engine
// degrades gracefully: every one-shot trigger fires immediately, matching
// platforms without visibility reporting.
func NewWatcher(engine Engine) *Watcher {
	return &Watcher{engine: engine}
}

// Watch fires onVisible the first time the element becomes visible, then
// stops observing. Without an engine the callback runs synchronously.
func (w *Watcher) Watch(el page.Element, threshold float64, onVisible func()) {
	if w.engine == nil {
		log.Debugf("viewport: no engine, firing %s immediately", el.ID())
		onVisible()
		return
	}

	var once sync.Once
	var mu sync.Mutex
	var cancel func()
	var canceled bool

	fire := func() {
		once.Do(func() {
			mu.Lock()
			c := cancel
			canceled = true
			mu.Unlock()
			if c != nil {
				c()
			}
			onVisible()
		})
	}

	c := w.engine.Observe(el, threshold, func(visible bool) {
		if visible {
			fire()
		}
	})

	mu.Lock()
	cancel = c
	fireNow := canceled
	mu.Unlock()
	// The engine may have reported visibility during Observe itself,
	// before the cancel function was stored.
	if fireNow {
		c()
	}
}

// Monitor follows every visibility transition of the element. The returned
// cancel function stops the monitoring and is idempotent. Without an engine
// nothing is reported and the cancel is a no-op.
func (w *Watcher) Monitor(el page.Element, threshold float64, onChange func(visible bool)) (cancel func()) {
	if w.engine == nil {
		return func() {}
	}

	stop := w.engine.Observe(el, threshold, onChange)

	var once sync.Once
	return func() {
		once.Do(stop)
	}
}
