// Package media drives deferred image loading.
//
// Images enter the page with their real source stashed in a data attribute.
// The Loader scans them once, waits for each to scroll into view, then swaps
// the real source in and tracks the fetch to a terminal status. A broken
// image never blocks its siblings.
package media

import (
	"sync"

	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/log"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/viewport"
	"github.com/spf13/viper"
)

// Record tracks one deferred image through its load lifecycle.
type Record struct {
	mu     sync.Mutex
	el     page.MediaElement
	target string
	status Status
}

// ID returns the underlying element's identifier.
func (r *Record) ID() string {
	return r.el.ID()
}

// Target returns the real source the image defers.
func (r *Record) Target() string {
	return r.target
}

// Status returns the record's current lifecycle position.
func (r *Record) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// advance moves the record to next only when coming from expected.
func (r *Record) advance(expected, next Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != expected {
		return false
	}
	r.status = next
	return true
}

// Loader owns the deferred images of a single page run.
type Loader struct {
	watcher *viewport.Watcher

	mu      sync.Mutex
	records []*Record

	// OnFinalized, when set before Init, observes every terminal transition.
	OnFinalized func(*Record)
}

// NewLoader creates a loader dispatching through the given watcher.
func NewLoader(watcher *viewport.Watcher) *Loader {
	return &Loader{watcher: watcher}
}

// Init scans the document and arms a visibility trigger for every deferred
// image. Images without a stashed source are skipped; a page with no
// candidates is a no-op. Safe to call once per document.
func (l *Loader) Init(doc page.Document) {
	threshold := viper.GetFloat64(key.ObserverImageThreshold)

	for _, el := range doc.DeferredImages() {
		target, ok := el.Attr(page.AttrDeferredSource)
		if !ok || target == "" {
			log.Debugf("media: skipping %s, no deferred source", el.ID())
			continue
		}

		record := &Record{el: el, target: target, status: StatusPending}
		l.mu.Lock()
		l.records = append(l.records, record)
		l.mu.Unlock()

		l.watcher.Watch(el, threshold, func() {
			l.load(record)
		})
	}
}

// Records returns every tracked image in scan order.
func (l *Loader) Records() []*Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Loader) load(r *Record) {
	defer func() {
		// A misbehaving element must not take down the rest of the page.
		if p := recover(); p != nil {
			log.Debugf("media: load of %s panicked: %v", r.ID(), p)
		}
	}()

	if !r.advance(StatusPending, StatusLoading) {
		return
	}
	log.Debugf("media: loading %s from %s", r.ID(), r.target)

	// Subscriptions go in before the source swap so a fetch that completes
	// instantly is still observed.
	r.el.OnLoad(func() {
		l.finalize(r, StatusLoaded, page.MarkerLoaded)
	})
	r.el.OnError(func() {
		l.finalize(r, StatusFailed, page.MarkerError)
	})
	r.el.SetSource(r.target)
}

func (l *Loader) finalize(r *Record, status Status, marker string) {
	defer func() {
		if p := recover(); p != nil {
			log.Debugf("media: finalize of %s panicked: %v", r.ID(), p)
		}
	}()

	if !r.advance(StatusLoading, status) {
		return
	}
	log.Debugf("media: %s is %s", r.ID(), status)

	r.el.AddClass(marker)
	if container, ok := r.el.Container().Get(); ok {
		container.AddClass(marker)
	}
	r.el.ReleaseHandlers()

	if l.OnFinalized != nil {
		l.OnFinalized(r)
	}
}
