package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "image", "images"), ShouldEqual, "1 image")
		So(Quantify(3, "image", "images"), ShouldEqual, "3 images")
		So(Quantify(0, "portal", "portals"), ShouldEqual, "0 portals")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("loaded"), ShouldEqual, "Loaded")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<start>\d+)-(?P<end>\d+)`)
		groups := ReGroups(re, "10-20")
		So(groups["start"], ShouldEqual, "10")
		So(groups["end"], ShouldEqual, "20")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("pages/landing.html"), ShouldEqual, "landing")
		So(FileStem("landing"), ShouldEqual, "landing")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]
		So(s.Len(), ShouldEqual, 0)
		So(s.Pop(), ShouldEqual, 0)

		s.Push(1)
		s.Push(2)
		So(s.Peek(), ShouldEqual, 2)
		So(s.Pop(), ShouldEqual, 2)
		So(s.Len(), ShouldEqual, 1)

		s.Clear()
		So(s.Len(), ShouldEqual, 0)
	})
}
