package player

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("State names", t, func() {
		So(StatePlaying.String(), ShouldEqual, "playing")
		So(StateEnded.String(), ShouldEqual, "ended")
		So(State(42).String(), ShouldEqual, "unknown")
	})
}

func TestProbe(t *testing.T) {
	Convey("Probe", t, func() {
		Convey("Readiness reaches late subscribers", func() {
			p := NewProbe("m1", Config{VideoID: "v1"}, 1, 0)
			p.FireReady()

			fired := false
			p.OnReady(func() { fired = true })
			So(fired, ShouldBeTrue)
		})

		Convey("Play advances the playhead and pause freezes it", func() {
			// 100 media seconds per wall second keeps the test fast.
			p := NewProbe("m1", Config{VideoID: "v1"}, 100, 0)

			So(p.Play(), ShouldBeNil)
			time.Sleep(50 * time.Millisecond)
			So(p.Pause(), ShouldBeNil)

			pos, err := p.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldBeGreaterThan, 0)

			time.Sleep(30 * time.Millisecond)
			frozen, err := p.Position()
			So(err, ShouldBeNil)
			So(frozen, ShouldEqual, pos)
		})

		Convey("Seek repositions the playhead", func() {
			p := NewProbe("m1", Config{VideoID: "v1"}, 1, 0)
			So(p.Seek(12.5, true), ShouldBeNil)

			pos, err := p.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 12.5)
		})

		Convey("Playback ends at the media duration", func() {
			p := NewProbe("m1", Config{VideoID: "v1"}, 100, 2)

			states := make(chan State, 8)
			p.OnStateChange(func(s State) { states <- s })
			So(p.Play(), ShouldBeNil)

			So(<-states, ShouldEqual, StatePlaying)
			select {
			case s := <-states:
				So(s, ShouldEqual, StateEnded)
			case <-time.After(time.Second):
				t.Fatal("probe never ended")
			}

			pos, err := p.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 2)
		})

		Convey("Scripted faults surface as errors", func() {
			p := NewProbe("m1", Config{VideoID: "v1"}, 1, 0)
			p.FailNext("play", errors.New("embed gone"))

			So(p.Play(), ShouldNotBeNil)
			So(p.State(), ShouldEqual, StateUnstarted)

			p.FailNext("play", nil)
			So(p.Play(), ShouldBeNil)
			So(p.State(), ShouldEqual, StatePlaying)
		})
	})
}

func TestProbeFactory(t *testing.T) {
	Convey("ProbeFactory", t, func() {
		Convey("Creates inspectable probes", func() {
			f := NewProbeFactory(1, 0)
			h, err := f.New("m1", Config{VideoID: "v1", Muted: true})
			So(err, ShouldBeNil)
			So(h, ShouldNotBeNil)

			probe, ok := f.Created("m1")
			So(ok, ShouldBeTrue)
			So(probe.Config().VideoID, ShouldEqual, "v1")
		})

		Convey("Rejects listed mounts", func() {
			f := NewProbeFactory(1, 0)
			f.FailMounts = map[string]struct{}{"m1": {}}

			_, err := f.New("m1", Config{VideoID: "v1"})
			So(err, ShouldNotBeNil)
		})
	})
}
