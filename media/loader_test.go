package media

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/deferview/deferview/config"
	"github.com/deferview/deferview/filesystem"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/viewport"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
}

// harness wires a loader to a scroll engine over a fixed set of images.
type harness struct {
	engine *viewport.ScrollEngine
	loader *Loader
	done   chan *Record
}

func newHarness(fetch page.FetchFunc, ids ...string) (*harness, *page.HTMLDocument) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		b.WriteString(`<figure><img id="` + id + `" data-src="https://cdn.example.com/` + id + `.jpg"></figure>`)
	}
	b.WriteString("</body></html>")

	doc := lo.Must(page.Parse(strings.NewReader(b.String()), page.WithFetch(fetch)))

	h := &harness{
		engine: viewport.NewScrollEngine(),
		done:   make(chan *Record, len(ids)),
	}
	h.loader = NewLoader(viewport.NewWatcher(h.engine))
	h.loader.OnFinalized = func(r *Record) { h.done <- r }
	return h, doc
}

func (h *harness) waitFinal(t *testing.T) *Record {
	select {
	case r := <-h.done:
		return r
	case <-time.After(time.Second):
		t.Fatal("no terminal transition observed")
		return nil
	}
}

func TestLoader(t *testing.T) {
	Convey("Loader", t, func() {
		Convey("A visible image loads and is marked", func() {
			h, doc := newHarness(func(string) error { return nil }, "hero")
			h.loader.Init(doc)

			record := h.loader.Records()[0]
			So(record.Status(), ShouldEqual, StatusPending)

			h.engine.SetVisible("hero", true)
			So(h.waitFinal(t).Status(), ShouldEqual, StatusLoaded)

			img := doc.DeferredImages()[0]
			So(img.HasClass(page.MarkerLoaded), ShouldBeTrue)
			So(img.Container().MustGet().HasClass(page.MarkerLoaded), ShouldBeTrue)
		})

		Convey("A broken image fails without touching its siblings", func() {
			fetch := func(src string) error {
				if strings.Contains(src, "broken") {
					return errors.New("404")
				}
				return nil
			}
			h, doc := newHarness(fetch, "broken", "fine")
			h.loader.Init(doc)

			h.engine.SetVisible("broken", true)
			h.engine.SetVisible("fine", true)
			first, second := h.waitFinal(t), h.waitFinal(t)

			byID := map[string]Status{first.ID(): first.Status(), second.ID(): second.Status()}
			So(byID["broken"], ShouldEqual, StatusFailed)
			So(byID["fine"], ShouldEqual, StatusLoaded)

			So(doc.DeferredImages()[0].HasClass(page.MarkerError), ShouldBeTrue)
			So(doc.DeferredImages()[1].HasClass(page.MarkerLoaded), ShouldBeTrue)
		})

		Convey("A hidden image stays pending", func() {
			h, doc := newHarness(func(string) error { return nil }, "below-fold")
			h.loader.Init(doc)

			time.Sleep(50 * time.Millisecond)
			So(h.loader.Records()[0].Status(), ShouldEqual, StatusPending)
		})

		Convey("A fetch that never completes leaves the image loading", func() {
			block := make(chan struct{})
			defer close(block)

			h, doc := newHarness(func(string) error { <-block; return nil }, "stalled")
			h.loader.Init(doc)
			h.engine.SetVisible("stalled", true)

			time.Sleep(50 * time.Millisecond)
			So(h.loader.Records()[0].Status(), ShouldEqual, StatusLoading)
			So(doc.DeferredImages()[0].HasClass(page.MarkerLoaded), ShouldBeFalse)
			So(doc.DeferredImages()[0].HasClass(page.MarkerError), ShouldBeFalse)
		})

		Convey("Visibility flapping never restarts a load", func() {
			fetches := make(chan string, 4)
			h, doc := newHarness(func(src string) error { fetches <- src; return nil }, "hero")
			h.loader.Init(doc)

			h.engine.SetVisible("hero", true)
			h.waitFinal(t)
			h.engine.SetVisible("hero", false)
			h.engine.SetVisible("hero", true)

			time.Sleep(50 * time.Millisecond)
			So(len(fetches), ShouldEqual, 1)
		})

		Convey("Without a viewport engine every image loads immediately", func() {
			doc := lo.Must(page.Parse(strings.NewReader(
				`<html><body><img id="a" data-src="a.jpg"><img id="b" data-src="b.jpg"></body></html>`,
			), page.WithFetch(func(string) error { return nil })))

			done := make(chan *Record, 2)
			loader := NewLoader(viewport.NewWatcher(nil))
			loader.OnFinalized = func(r *Record) { done <- r }
			loader.Init(doc)

			for i := 0; i < 2; i++ {
				select {
				case r := <-done:
					So(r.Status(), ShouldEqual, StatusLoaded)
				case <-time.After(time.Second):
					t.Fatal("image never loaded without an engine")
				}
			}
		})

		Convey("Images without a deferred source are skipped", func() {
			doc := lo.Must(page.Parse(strings.NewReader(
				`<html><body><img id="empty" data-src=""></body></html>`,
			)))
			loader := NewLoader(viewport.NewWatcher(viewport.NewScrollEngine()))
			loader.Init(doc)
			So(loader.Records(), ShouldBeEmpty)
		})

		Convey("An empty page is a no-op", func() {
			doc := lo.Must(page.Parse(strings.NewReader(`<html><body><p>text</p></body></html>`)))
			loader := NewLoader(viewport.NewWatcher(viewport.NewScrollEngine()))
			loader.Init(doc)
			So(loader.Records(), ShouldBeEmpty)
		})
	})
}
