package page

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <figure class="hero">
    <img data-src="https://cdn.example.com/hero.jpg" alt="">
  </figure>
  <img src="eager.png">
  <div id="promo" class="portal" data-video-id="dQw4w9WgXcQ" data-start="10" data-end="20"></div>
  <div data-video-id="abc123"></div>
</body></html>`

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		doc, err := Parse(strings.NewReader(samplePage), WithFetch(func(string) error { return nil }))
		So(err, ShouldBeNil)

		Convey("Finds deferred images only", func() {
			So(len(doc.DeferredImages()), ShouldEqual, 1)

			img := doc.DeferredImages()[0]
			target, ok := img.Attr(AttrDeferredSource)
			So(ok, ShouldBeTrue)
			So(target, ShouldEqual, "https://cdn.example.com/hero.jpg")
		})

		Convey("Deferred image knows its container", func() {
			img := doc.DeferredImages()[0]
			So(img.Container().IsPresent(), ShouldBeTrue)

			container := img.Container().MustGet()
			So(container.HasClass("hero"), ShouldBeTrue)
		})

		Convey("Finds portals and keeps explicit ids", func() {
			So(len(doc.Portals()), ShouldEqual, 2)
			So(doc.Portals()[0].ID(), ShouldEqual, "promo")
			// Anonymous portals get a synthesized stable id.
			So(doc.Portals()[1].ID(), ShouldNotBeEmpty)
		})

		Convey("Class markers are mutable", func() {
			portal := doc.Portals()[0]
			So(portal.HasClass("portal"), ShouldBeTrue)
			So(portal.HasClass(MarkerPlaying), ShouldBeFalse)

			portal.AddClass(MarkerPlaying)
			So(portal.HasClass(MarkerPlaying), ShouldBeTrue)

			portal.RemoveClass(MarkerPlaying)
			So(portal.HasClass(MarkerPlaying), ShouldBeFalse)
		})
	})
}

func TestHTMLMediaSignals(t *testing.T) {
	Convey("HTMLMedia completion signals", t, func() {
		Convey("Load fires once and excludes error", func() {
			media := NewMedia("img-1", nil, func(string) error { return nil })

			loads := make(chan struct{}, 2)
			errs := make(chan struct{}, 2)
			media.OnLoad(func() { loads <- struct{}{} })
			media.OnError(func() { errs <- struct{}{} })

			media.SetSource("a.jpg")

			select {
			case <-loads:
			case <-time.After(time.Second):
				t.Fatal("load signal never fired")
			}
			So(len(errs), ShouldEqual, 0)
		})

		Convey("Error fires on fetch failure", func() {
			media := NewMedia("img-1", nil, func(string) error { return errors.New("404") })

			errs := make(chan struct{}, 1)
			media.OnError(func() { errs <- struct{}{} })
			media.SetSource("missing.jpg")

			select {
			case <-errs:
			case <-time.After(time.Second):
				t.Fatal("error signal never fired")
			}
		})

		Convey("A completion arriving before subscription is delivered on subscribe", func() {
			media := NewMedia("img-1", nil, func(string) error { return nil })
			media.SetSource("a.jpg")

			// Let the fetch goroutine finish first.
			time.Sleep(50 * time.Millisecond)

			fired := make(chan struct{}, 1)
			media.OnLoad(func() { fired <- struct{}{} })

			select {
			case <-fired:
			case <-time.After(time.Second):
				t.Fatal("buffered completion was not delivered")
			}
		})

		Convey("Released handlers never fire", func() {
			block := make(chan struct{})
			media := NewMedia("img-1", nil, func(string) error { <-block; return nil })

			fired := make(chan struct{}, 1)
			media.OnLoad(func() { fired <- struct{}{} })
			media.SetSource("a.jpg")
			media.ReleaseHandlers()
			close(block)

			select {
			case <-fired:
				t.Fatal("released handler fired")
			case <-time.After(100 * time.Millisecond):
			}
		})

		Convey("No fetch function means no completion", func() {
			media := NewMedia("img-1", nil, nil)
			fired := make(chan struct{}, 1)
			media.OnLoad(func() { fired <- struct{}{} })
			media.SetSource("a.jpg")

			select {
			case <-fired:
				t.Fatal("completion fired without a fetch")
			case <-time.After(100 * time.Millisecond):
			}
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Session", t, func() {
		Convey("Unload fires hooks exactly once", func() {
			s := NewSession()
			count := 0
			s.OnUnload(func() { count++ })

			s.Unload()
			s.Unload()
			So(count, ShouldEqual, 1)
		})

		Convey("Late hooks run immediately after unload", func() {
			s := NewSession()
			s.Unload()

			ran := false
			s.OnUnload(func() { ran = true })
			So(ran, ShouldBeTrue)
		})
	})
}
