package sdk

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/deferview/deferview/config"
	"github.com/deferview/deferview/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
}

// fakeInjector records injection attempts and lets tests fire readiness.
type fakeInjector struct {
	mu        sync.Mutex
	available bool
	failWith  error
	injects   int
	onReady   func()
}

func (f *fakeInjector) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeInjector) Inject(onReady func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.injects++
	if f.failWith != nil {
		return f.failWith
	}
	f.onReady = onReady
	return nil
}

func (f *fakeInjector) fireReady() {
	f.mu.Lock()
	fn := f.onReady
	f.mu.Unlock()
	fn()
}

func open(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return false
	default:
		return true
	}
}

func TestBootstrap(t *testing.T) {
	Convey("Bootstrap", t, func() {
		Convey("Resolves immediately when the runtime is present", func() {
			b := New(&fakeInjector{available: true})
			So(open(b.EnsureReady()), ShouldBeFalse)
			So(b.State(), ShouldEqual, StateReady)
		})

		Convey("Injects once and releases every waiter", func() {
			injector := &fakeInjector{}
			b := New(injector)

			first := b.EnsureReady()
			second := b.EnsureReady()
			So(injector.injects, ShouldEqual, 1)
			So(b.State(), ShouldEqual, StateRequesting)
			So(open(first), ShouldBeTrue)

			injector.fireReady()
			So(open(first), ShouldBeFalse)
			So(open(second), ShouldBeFalse)
			So(b.State(), ShouldEqual, StateReady)

			// Late callers get the already closed channel.
			So(open(b.EnsureReady()), ShouldBeFalse)
			So(injector.injects, ShouldEqual, 1)
		})

		Convey("A failed injection stays silent and unresolved", func() {
			injector := &fakeInjector{failWith: errors.New("blocked")}
			b := New(injector)

			ready := b.EnsureReady()
			time.Sleep(50 * time.Millisecond)
			So(open(ready), ShouldBeTrue)
			So(b.State(), ShouldEqual, StateRequesting)
		})

		Convey("Duplicate ready signals are harmless", func() {
			injector := &fakeInjector{}
			b := New(injector)
			ready := b.EnsureReady()

			injector.fireReady()
			injector.fireReady()
			So(open(ready), ShouldBeFalse)
		})
	})
}

func TestScriptInjector(t *testing.T) {
	Convey("ScriptInjector", t, func() {
		Convey("Chains behind a pre-existing ready hook", func() {
			host := NewHost()

			var order []string
			host.SetReadyHook(func() { order = append(order, "page") })

			injector := NewScriptInjector(host)
			injector.fetch = func(string) error { return nil }

			done := make(chan struct{})
			So(injector.Inject(func() {
				order = append(order, "ours")
				close(done)
			}), ShouldBeNil)

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("ready hook never fired")
			}
			So(order, ShouldResemble, []string{"page", "ours"})
		})

		Convey("Reports availability from the host", func() {
			host := NewHost()
			injector := NewScriptInjector(host)
			So(injector.Available(), ShouldBeFalse)

			host.RuntimeArrived()
			So(injector.Available(), ShouldBeTrue)
		})

		Convey("A failed script fetch never fires the hook", func() {
			host := NewHost()
			injector := NewScriptInjector(host)
			injector.fetch = func(string) error { return errors.New("403") }

			fired := make(chan struct{}, 1)
			So(injector.Inject(func() { fired <- struct{}{} }), ShouldBeNil)

			select {
			case <-fired:
				t.Fatal("hook fired despite the fetch failing")
			case <-time.After(100 * time.Millisecond):
			}
		})
	})
}
