// Package portal activates embedded video placeholders.
//
// A portal is a bare element carrying a video id and an optional playback
// window. Activation waits for the shared player runtime, mounts a player
// onto the element, then supervises it: muted ambient playback, a loop
// heartbeat that keeps the playhead inside the window, and a pause whenever
// the portal scrolls out of view. Player calls are treated as best effort;
// a portal whose player misbehaves goes quiet instead of failing the page.
package portal

import (
	"strconv"
	"sync"
	"time"

	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/log"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/player"
	"github.com/deferview/deferview/sdk"
	"github.com/deferview/deferview/viewport"
	"github.com/deferview/deferview/watchdog"
	"github.com/spf13/viper"
)

// Controller supervises one portal for the life of a page run.
type Controller struct {
	el      page.Element
	videoID string
	mountID string

	// rangeStart and rangeEnd bound the playback window in seconds.
	rangeStart float64
	rangeEnd   float64

	reducedMotion bool

	mu     sync.Mutex
	status Status
	handle player.Handle

	loop       *watchdog.Watchdog
	stopWatch  func()
	closeOnce  sync.Once
	onActivity func(*Controller)
}

// VideoID returns the video the portal embeds.
func (c *Controller) VideoID() string {
	return c.videoID
}

// MountID returns the element the player mounts onto.
func (c *Controller) MountID() string {
	return c.mountID
}

// Status returns the controller's current lifecycle position.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	notify := c.onActivity
	c.mu.Unlock()

	log.Debugf("portal: %s is %s", c.mountID, s)
	if notify != nil {
		notify(c)
	}
}

// Supervisor activates and supervises every portal of a document.
type Supervisor struct {
	factory   player.Factory
	bootstrap *sdk.Bootstrap
	watcher   *viewport.Watcher

	mu          sync.Mutex
	controllers []*Controller

	// OnActivity, when set before Init, observes every status change.
	OnActivity func(*Controller)
}

// NewSupervisor wires the collaborators a portal needs to come alive.
func NewSupervisor(factory player.Factory, bootstrap *sdk.Bootstrap, watcher *viewport.Watcher) *Supervisor {
	return &Supervisor{
		factory:   factory,
		bootstrap: bootstrap,
		watcher:   watcher,
	}
}

// Init scans the document's portals and starts activating each in its own
// goroutine. Malformed portals are skipped. A single teardown hook on the
// lifecycle closes every controller when the page unloads.
func (s *Supervisor) Init(doc page.Document, lifecycle page.Lifecycle) []*Controller {
	for _, el := range doc.Portals() {
		ctrl, ok := s.scan(el)
		if !ok {
			continue
		}
		s.mu.Lock()
		s.controllers = append(s.controllers, ctrl)
		s.mu.Unlock()

		go s.activate(ctrl)
	}

	lifecycle.OnUnload(func() {
		for _, ctrl := range s.Controllers() {
			ctrl.Close()
		}
	})

	return s.Controllers()
}

// Controllers returns every tracked portal in scan order.
func (s *Supervisor) Controllers() []*Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Controller, len(s.controllers))
	copy(out, s.controllers)
	return out
}

func (s *Supervisor) scan(el page.Element) (*Controller, bool) {
	videoID, ok := el.Attr(page.AttrVideoID)
	if !ok || videoID == "" {
		log.Debugf("portal: skipping %s, no video id", el.ID())
		return nil, false
	}
	if el.ID() == "" {
		log.Debugf("portal: skipping, no mount point for video %s", videoID)
		return nil, false
	}

	ctrl := &Controller{
		el:         el,
		videoID:    videoID,
		mountID:    el.ID(),
		rangeStart: floatAttr(el, page.AttrRangeStart),
		rangeEnd:   floatAttr(el, page.AttrRangeEnd),
		status:     StatusIdle,
		loop:       watchdog.New(),
		onActivity: s.OnActivity,
	}

	if v, ok := el.Attr(page.AttrReducedMotion); ok {
		ctrl.reducedMotion = v == "true"
	} else {
		ctrl.reducedMotion = viper.GetBool(key.PlayerReducedMotion)
	}
	return ctrl, true
}

func floatAttr(el page.Element, name string) float64 {
	raw, ok := el.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Debugf("portal: bad %s on %s: %s", name, el.ID(), err)
		return 0
	}
	return v
}

// activate blocks on the runtime gate, then mounts and wires the player.
func (s *Supervisor) activate(c *Controller) {
	c.setStatus(StatusAwaitingSdk)
	<-s.bootstrap.EnsureReady()

	handle, err := s.factory.New(c.mountID, player.Config{
		VideoID:         c.videoID,
		Autoplay:        !c.reducedMotion,
		Muted:           true,
		Controls:        false,
		DisableKeyboard: true,
		Loop:            false,
		Start:           c.rangeStart,
		End:             c.rangeEnd,
	})
	if err != nil {
		log.Debugf("portal: mount of %s failed: %s", c.mountID, err)
		c.setStatus(StatusIdle)
		return
	}

	c.mu.Lock()
	c.handle = handle
	c.mu.Unlock()

	handle.OnReady(func() { c.onReady() })
	handle.OnStateChange(func(state player.State) { c.onPlayerState(state) })

	threshold := viper.GetFloat64(key.ObserverPortalThreshold)
	stop := s.watcher.Monitor(c.el, threshold, func(visible bool) {
		c.onVisibility(visible)
	})
	c.mu.Lock()
	c.stopWatch = stop
	c.mu.Unlock()
}

func (c *Controller) onReady() {
	c.setStatus(StatusReady)
	c.safeCall("mute", func() error { return c.handle.Mute() })
	if c.reducedMotion {
		return
	}
	c.safeCall("play", func() error { return c.handle.Play() })
}

func (c *Controller) onPlayerState(state player.State) {
	switch state {
	case player.StatePlaying:
		c.setStatus(StatusPlaying)
		c.el.AddClass(page.MarkerPlaying)
		c.armLoop()
	case player.StatePaused:
		c.setStatus(StatusPaused)
		c.el.RemoveClass(page.MarkerPlaying)
		c.loop.Cancel()
	case player.StateEnded:
		c.setStatus(StatusEnded)
		c.el.RemoveClass(page.MarkerPlaying)
		c.loop.Cancel()
		c.restart()
	}
}

// armLoop starts the window heartbeat, but only for a sane window.
func (c *Controller) armLoop() {
	if !(c.rangeEnd > c.rangeStart && c.rangeStart > 0) {
		return
	}

	interval := time.Duration(viper.GetInt(key.LoopIntervalMs)) * time.Millisecond
	tolerance := viper.GetFloat64(key.LoopTolerance)

	c.loop.Start(interval, func() {
		pos, err := c.handle.Position()
		if err != nil {
			log.Debugf("portal: position probe on %s failed: %s", c.mountID, err)
			return
		}
		if pos >= c.rangeEnd-tolerance {
			c.safeCall("seek", func() error { return c.handle.Seek(c.rangeStart, true) })
		}
	})
}

// restart rewinds an ended windowed portal back to its window start.
func (c *Controller) restart() {
	if c.rangeStart <= 0 {
		return
	}
	c.safeCall("seek", func() error { return c.handle.Seek(c.rangeStart, true) })
	c.safeCall("play", func() error { return c.handle.Play() })
}

func (c *Controller) onVisibility(visible bool) {
	if visible {
		return
	}
	if c.Status() != StatusPlaying {
		return
	}
	log.Debugf("portal: %s left the viewport, pausing", c.mountID)
	c.safeCall("pause", func() error { return c.handle.Pause() })
}

// ManualStart re-attempts muted playback, for portals that stayed quiet
// under reduced motion or after a swallowed failure.
func (c *Controller) ManualStart() {
	c.mu.Lock()
	handle := c.handle
	c.mu.Unlock()
	if handle == nil {
		return
	}
	c.safeCall("mute", func() error { return handle.Mute() })
	c.safeCall("play", func() error { return handle.Play() })
}

// Close tears the portal down. Idempotent; runs at page unload.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.loop.Cancel()
		c.mu.Lock()
		stop := c.stopWatch
		c.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
}

// safeCall shields the page from a misbehaving player. Errors and panics
// are logged at debug and otherwise swallowed.
func (c *Controller) safeCall(name string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			log.Debugf("portal: %s on %s panicked: %v", name, c.mountID, p)
		}
	}()
	if err := fn(); err != nil {
		log.Debugf("portal: %s on %s failed: %s", name, c.mountID, err)
	}
}
