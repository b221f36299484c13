package page

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/network"
	"github.com/samber/mo"
	"golang.org/x/net/html"
)

// FetchFunc retrieves the bytes behind a media source. The default fetches
// over the shared network client; tests and simulations substitute their own.
type FetchFunc func(src string) error

// Option customizes document parsing.
type Option func(*HTMLDocument)

// WithFetch overrides the fetch function used by every media element of the document.
func WithFetch(fetch FetchFunc) Option {
	return func(d *HTMLDocument) {
		d.fetch = fetch
	}
}

// HTMLDocument is the x/net/html-backed Document implementation.
// The scan happens once at parse time; the node tree is not retained.
type HTMLDocument struct {
	fetch   FetchFunc
	images  []MediaElement
	portals []Element
}

// ParseFile scans an HTML page from the virtualized filesystem.
func ParseFile(path string, opts ...Option) (*HTMLDocument, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Parse scans an HTML page for deferred media candidates and video portals.
func Parse(r io.Reader, opts ...Option) (*HTMLDocument, error) {
	doc := &HTMLDocument{
		fetch: func(src string) error {
			_, err := network.Fetch(src)
			return err
		},
	}
	for _, opt := range opts {
		opt(doc)
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var serial int
	var walk func(n, parent *html.Node)
	walk = func(n, parent *html.Node) {
		if n.Type == html.ElementNode {
			serial++
			switch {
			case n.Data == "img" && hasAttr(n, AttrDeferredSource):
				var container mo.Option[Element]
				if parent != nil && parent.Type == html.ElementNode {
					container = mo.Some[Element](newHTMLElement(parent, serial))
				}
				media := &HTMLMedia{
					HTMLElement: newHTMLElement(n, serial),
					container:   container,
					fetch:       doc.fetch,
				}
				doc.images = append(doc.images, media)
			case hasAttr(n, AttrVideoID):
				doc.portals = append(doc.portals, newHTMLElement(n, serial))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, n)
		}
	}
	walk(root, nil)

	return doc, nil
}

// DeferredImages returns every lazy image candidate found during the scan.
func (d *HTMLDocument) DeferredImages() []MediaElement {
	return d.images
}

// Portals returns every embedded-video placeholder found during the scan.
func (d *HTMLDocument) Portals() []Element {
	return d.portals
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// HTMLElement is a detached, mutation-safe snapshot of a scanned node.
type HTMLElement struct {
	mu      sync.Mutex
	id      string
	tag     string
	attrs   map[string]string
	classes map[string]struct{}
}

func newHTMLElement(n *html.Node, serial int) *HTMLElement {
	el := &HTMLElement{
		tag:     n.Data,
		attrs:   make(map[string]string, len(n.Attr)),
		classes: make(map[string]struct{}),
	}
	for _, a := range n.Attr {
		el.attrs[a.Key] = a.Val
	}
	for _, c := range strings.Fields(el.attrs["class"]) {
		el.classes[c] = struct{}{}
	}

	// Stable addressing even for anonymous nodes.
	if id, ok := el.attrs["id"]; ok && id != "" {
		el.id = id
	} else {
		el.id = fmt.Sprintf("%s-%d", el.tag, serial)
	}
	return el
}

// ID returns a stable identifier for the element within its document.
func (e *HTMLElement) ID() string {
	return e.id
}

// Tag returns the element's tag name.
func (e *HTMLElement) Tag() string {
	return e.tag
}

// Attr retrieves the value of a named attribute.
func (e *HTMLElement) Attr(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr assigns the value of a named attribute.
func (e *HTMLElement) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
}

// AddClass applies a classification marker.
func (e *HTMLElement) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes[name] = struct{}{}
}

// RemoveClass clears a classification marker.
func (e *HTMLElement) RemoveClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.classes, name)
}

// HasClass reports whether a classification marker is applied.
func (e *HTMLElement) HasClass(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.classes[name]
	return ok
}

// HTMLMedia is an HTMLElement whose source is fetched asynchronously.
type HTMLMedia struct {
	*HTMLElement
	container mo.Option[Element]
	fetch     FetchFunc

	signalMu sync.Mutex
	onLoad   func()
	onError  func()
	outcome  *bool // nil until the fetch completes; then true on load, false on error
	released bool
}

// NewMedia constructs a standalone media element bound to a fetch function.
// Used by simulations and fixtures that do not originate from a parsed page.
func NewMedia(id string, container Element, fetch FetchFunc) *HTMLMedia {
	el := &HTMLElement{
		id:      id,
		tag:     "img",
		attrs:   make(map[string]string),
		classes: make(map[string]struct{}),
	}
	var c mo.Option[Element]
	if container != nil {
		c = mo.Some(container)
	}
	return &HTMLMedia{HTMLElement: el, container: c, fetch: fetch}
}

// Container returns the owning visual wrapper, if any.
func (m *HTMLMedia) Container() mo.Option[Element] {
	return m.container
}

// SetSource assigns the real source and initiates the underlying fetch.
// Exactly one of the load/error signals fires when the fetch completes;
// a media element with no fetch function never completes.
func (m *HTMLMedia) SetSource(src string) {
	m.SetAttr("src", src)
	if m.fetch == nil {
		return
	}
	go func() {
		err := m.fetch(src)
		m.dispatch(err == nil)
	}()
}

// OnLoad subscribes to the successful completion signal.
// A completion that arrived before subscription is delivered immediately.
func (m *HTMLMedia) OnLoad(fn func()) {
	m.subscribe(fn, true)
}

// OnError subscribes to the failed completion signal.
func (m *HTMLMedia) OnError(fn func()) {
	m.subscribe(fn, false)
}

func (m *HTMLMedia) subscribe(fn func(), loaded bool) {
	m.signalMu.Lock()
	if m.released {
		m.signalMu.Unlock()
		return
	}
	if m.outcome != nil {
		fire := *m.outcome == loaded
		m.signalMu.Unlock()
		if fire {
			fn()
		}
		return
	}
	if loaded {
		m.onLoad = fn
	} else {
		m.onError = fn
	}
	m.signalMu.Unlock()
}

// ReleaseHandlers drops both completion subscriptions.
func (m *HTMLMedia) ReleaseHandlers() {
	m.signalMu.Lock()
	m.released = true
	m.onLoad = nil
	m.onError = nil
	m.signalMu.Unlock()
}

func (m *HTMLMedia) dispatch(loaded bool) {
	m.signalMu.Lock()
	if m.outcome != nil {
		m.signalMu.Unlock()
		return
	}
	m.outcome = &loaded

	var fn func()
	if loaded {
		fn = m.onLoad
	} else {
		fn = m.onError
	}
	m.onLoad = nil
	m.onError = nil
	m.signalMu.Unlock()

	if fn != nil {
		fn()
	}
}
