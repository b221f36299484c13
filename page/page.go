// Package page defines the document surface the deferred media runtime operates on.
//
// The runtime never talks to a rendering engine directly; it sees a scanned
// Document of Elements, marks visual state through classification markers,
// and receives completion signals through MediaElement subscriptions. Any
// backend satisfying these interfaces can host the runtime.
package page

import "github.com/samber/mo"

// Classification markers applied by the runtime; the rendering layer interprets them.
const (
	MarkerLoaded  = "loaded"
	MarkerError   = "error"
	MarkerPlaying = "playing"
)

// Data attributes recognized during the document scan.
const (
	AttrDeferredSource = "data-src"
	AttrVideoID        = "data-video-id"
	AttrRangeStart     = "data-start"
	AttrRangeEnd       = "data-end"
	AttrReducedMotion  = "data-reduced-motion"
)

// Element is a single addressable node of the scanned document.
type Element interface {
	// ID returns a stable identifier for the element within its document.
	ID() string

	// Attr retrieves the value of a named attribute.
	Attr(name string) (string, bool)

	// SetAttr assigns the value of a named attribute.
	SetAttr(name, value string)

	// AddClass applies a classification marker.
	AddClass(name string)

	// RemoveClass clears a classification marker.
	RemoveClass(name string)

	// HasClass reports whether a classification marker is applied.
	HasClass(name string) bool
}

// MediaElement is an Element whose resource completes asynchronously.
// Load and error signals fire at most once each and are mutually exclusive.
type MediaElement interface {
	Element

	// Container returns the owning visual wrapper, if any.
	Container() mo.Option[Element]

	// SetSource assigns the real source, initiating the underlying fetch.
	SetSource(src string)

	// OnLoad subscribes to the successful completion signal.
	OnLoad(fn func())

	// OnError subscribes to the failed completion signal.
	OnError(fn func())

	// ReleaseHandlers drops both completion subscriptions.
	ReleaseHandlers()
}

// Document is the result of a one-time page scan.
type Document interface {
	// DeferredImages returns every lazy image candidate found during the scan.
	DeferredImages() []MediaElement

	// Portals returns every embedded-video placeholder found during the scan.
	Portals() []Element
}

// Lifecycle carries the page-level teardown hook.
// The unload notification is delivered at most once.
type Lifecycle interface {
	OnUnload(fn func())
}
