package history

import (
	"testing"

	"github.com/deferview/deferview/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a run record", t, func() {
		run := NewSavedRun("pages/landing.html", nil, nil)
		run.ImagesTotal = 3
		run.ImagesLoaded = 2
		run.ImagesFailed = 1

		Convey("When it is saved", func() {
			So(Save(run), ShouldBeNil)

			Convey("It can be read back", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldContainKey, "pages/landing.html")
				So(saved["pages/landing.html"].ImagesLoaded, ShouldEqual, 2)
			})

			Convey("Saving again overwrites the record", func() {
				run.ImagesLoaded = 3
				run.ImagesFailed = 0
				So(Save(run), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved["pages/landing.html"].ImagesLoaded, ShouldEqual, 3)
			})

			Convey("It can be removed", func() {
				So(Remove(run), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldNotContainKey, "pages/landing.html")
			})
		})
	})
}
