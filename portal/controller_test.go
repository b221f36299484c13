package portal

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deferview/deferview/config"
	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/player"
	"github.com/deferview/deferview/sdk"
	"github.com/deferview/deferview/viewport"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
}

// readyInjector resolves the runtime instantly.
type readyInjector struct{}

func (readyInjector) Available() bool     { return true }
func (readyInjector) Inject(func()) error { return nil }

// heldInjector resolves only when released.
type heldInjector struct {
	mu      sync.Mutex
	onReady func()
}

func (h *heldInjector) Available() bool { return false }

func (h *heldInjector) Inject(onReady func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReady = onReady
	return nil
}

func (h *heldInjector) injected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onReady != nil
}

func (h *heldInjector) release() {
	h.mu.Lock()
	fn := h.onReady
	h.mu.Unlock()
	fn()
}

type fixture struct {
	doc       *page.HTMLDocument
	session   *page.Session
	engine    *viewport.ScrollEngine
	factory   *player.ProbeFactory
	bootstrap *sdk.Bootstrap
	sup       *Supervisor
}

func newFixture(markup string, injector sdk.Injector, factory *player.ProbeFactory) *fixture {
	f := &fixture{
		doc:       lo.Must(page.Parse(strings.NewReader(markup))),
		session:   page.NewSession(),
		engine:    viewport.NewScrollEngine(),
		factory:   factory,
		bootstrap: sdk.New(injector),
	}
	f.sup = NewSupervisor(f.factory, f.bootstrap, viewport.NewWatcher(f.engine))
	return f
}

func eventually(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSupervisor(t *testing.T) {
	Convey("Supervisor", t, func() {
		viper.Set(key.LoopIntervalMs, 5)
		Reset(func() {
			viper.Set(key.LoopIntervalMs, 250)
		})

		Convey("Activation waits for the runtime gate", func() {
			injector := &heldInjector{}
			f := newFixture(`<div id="p1" data-video-id="v1"></div>`, injector, player.NewProbeFactory(1, 0))

			ctrls := f.sup.Init(f.doc, f.session)
			So(ctrls, ShouldHaveLength, 1)
			ctrl := ctrls[0]

			eventually(t, "injection", func() bool {
				return ctrl.Status() == StatusAwaitingSdk && injector.injected()
			})
			_, mounted := f.factory.Created("p1")
			So(mounted, ShouldBeFalse)

			injector.release()
			eventually(t, "playback", func() bool { return ctrl.Status() == StatusPlaying })

			probe, _ := f.factory.Created("p1")
			So(probe.Config().Muted, ShouldBeTrue)
			So(probe.Config().Autoplay, ShouldBeTrue)
			So(probe.Config().Controls, ShouldBeFalse)
			So(probe.Config().DisableKeyboard, ShouldBeTrue)
			eventually(t, "playing marker", func() bool { return ctrl.el.HasClass(page.MarkerPlaying) })
		})

		Convey("Reduced motion mounts muted without autoplay", func() {
			f := newFixture(
				`<div id="p1" data-video-id="v1" data-reduced-motion="true"></div>`,
				readyInjector{}, player.NewProbeFactory(1, 0),
			)
			ctrl := f.sup.Init(f.doc, f.session)[0]

			eventually(t, "ready state", func() bool { return ctrl.Status() == StatusReady })
			probe, _ := f.factory.Created("p1")
			So(probe.Config().Autoplay, ShouldBeFalse)
			So(probe.State(), ShouldEqual, player.StateUnstarted)

			Convey("Until playback is started by hand", func() {
				ctrl.ManualStart()
				eventually(t, "manual playback", func() bool { return ctrl.Status() == StatusPlaying })
			})
		})

		Convey("The loop heartbeat keeps the playhead inside the window", func() {
			f := newFixture(
				`<div id="p1" data-video-id="v1" data-start="10" data-end="12"></div>`,
				readyInjector{}, player.NewProbeFactory(20, 0),
			)
			ctrl := f.sup.Init(f.doc, f.session)[0]
			eventually(t, "playback", func() bool { return ctrl.Status() == StatusPlaying })

			probe, _ := f.factory.Created("p1")
			// Enough wall time for several window traversals at 20x.
			time.Sleep(400 * time.Millisecond)

			pos := lo.Must(probe.Position())
			So(pos, ShouldBeGreaterThanOrEqualTo, 10)
			So(pos, ShouldBeLessThan, 13)
		})

		Convey("A naturally ended windowed portal restarts at its window start", func() {
			f := newFixture(
				`<div id="p1" data-video-id="v1" data-start="10"></div>`,
				readyInjector{}, player.NewProbeFactory(20, 11),
			)

			statuses := make(chan Status, 64)
			f.sup.OnActivity = func(c *Controller) { statuses <- c.Status() }
			f.sup.Init(f.doc, f.session)

			var seen []Status
			deadline := time.After(2 * time.Second)
			for !strings.Contains(join(seen), "ended,playing") {
				select {
				case s := <-statuses:
					seen = append(seen, s)
				case <-deadline:
					t.Fatalf("no restart after natural end, saw %v", seen)
				}
			}
		})

		Convey("A portal without a range end never arms the heartbeat", func() {
			f := newFixture(
				`<div id="p1" data-video-id="v1" data-start="10"></div>`,
				readyInjector{}, player.NewProbeFactory(1, 0),
			)
			ctrl := f.sup.Init(f.doc, f.session)[0]
			eventually(t, "playback", func() bool { return ctrl.Status() == StatusPlaying })
			So(ctrl.loop.Active(), ShouldBeFalse)
		})

		Convey("Leaving the viewport pauses playback for good", func() {
			f := newFixture(`<div id="p1" data-video-id="v1"></div>`, readyInjector{}, player.NewProbeFactory(1, 0))
			f.engine.SetVisible("p1", true)

			ctrl := f.sup.Init(f.doc, f.session)[0]
			eventually(t, "playback", func() bool { return ctrl.Status() == StatusPlaying })

			f.engine.SetVisible("p1", false)
			eventually(t, "pause", func() bool { return ctrl.Status() == StatusPaused })
			So(ctrl.el.HasClass(page.MarkerPlaying), ShouldBeFalse)

			// Scrolling back never resumes by itself.
			f.engine.SetVisible("p1", true)
			time.Sleep(50 * time.Millisecond)
			So(ctrl.Status(), ShouldEqual, StatusPaused)
		})

		Convey("Player failures are swallowed", func() {
			factory := player.NewProbeFactory(1, 0)
			factory.AutoReady = false
			f := newFixture(`<div id="p1" data-video-id="v1"></div>`, readyInjector{}, factory)

			ctrl := f.sup.Init(f.doc, f.session)[0]
			eventually(t, "mount", func() bool {
				_, ok := factory.Created("p1")
				return ok
			})

			probe, _ := factory.Created("p1")
			probe.FailNext("play", errors.New("embed gone"))
			probe.FireReady()

			eventually(t, "ready state", func() bool { return ctrl.Status() == StatusReady })
			So(probe.State(), ShouldEqual, player.StateUnstarted)

			probe.FailNext("play", nil)
			ctrl.ManualStart()
			eventually(t, "recovered playback", func() bool { return ctrl.Status() == StatusPlaying })
		})

		Convey("A failed mount leaves the portal idle and the page alive", func() {
			factory := player.NewProbeFactory(1, 0)
			factory.FailMounts = map[string]struct{}{"p1": {}}
			f := newFixture(
				`<div id="p1" data-video-id="v1"></div><div id="p2" data-video-id="v2"></div>`,
				readyInjector{}, factory,
			)

			ctrls := f.sup.Init(f.doc, f.session)
			eventually(t, "second portal playback", func() bool { return ctrls[1].Status() == StatusPlaying })
			eventually(t, "first portal idle", func() bool { return ctrls[0].Status() == StatusIdle })
		})

		Convey("Malformed portals are skipped", func() {
			f := newFixture(
				`<div id="p1" data-video-id=""></div><div id="p2" data-video-id="v2"></div>`,
				readyInjector{}, player.NewProbeFactory(1, 0),
			)
			ctrls := f.sup.Init(f.doc, f.session)
			So(ctrls, ShouldHaveLength, 1)
			So(ctrls[0].MountID(), ShouldEqual, "p2")
		})

		Convey("Unload retires the supervision of every portal", func() {
			f := newFixture(
				`<div id="p1" data-video-id="v1" data-start="10" data-end="12"></div>`,
				readyInjector{}, player.NewProbeFactory(20, 0),
			)
			ctrl := f.sup.Init(f.doc, f.session)[0]
			eventually(t, "playback", func() bool { return ctrl.Status() == StatusPlaying })

			f.session.Unload()
			f.session.Unload()

			// Without the heartbeat the playhead escapes the window.
			probe, _ := f.factory.Created("p1")
			eventually(t, "unsupervised playhead", func() bool {
				return lo.Must(probe.Position()) > 13
			})

			// And visibility changes no longer reach the player.
			f.engine.SetVisible("p1", false)
			time.Sleep(50 * time.Millisecond)
			So(ctrl.Status(), ShouldEqual, StatusPlaying)
		})
	})
}

func join(statuses []Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
