package report

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	Convey("Write", t, func() {
		Convey("Should produce valid JSON for an empty run", func() {
			var buf bytes.Buffer
			out := New("pages/landing.html", nil, nil)
			So(out.Write(&buf), ShouldBeNil)

			var parsed Output
			So(json.Unmarshal(buf.Bytes(), &parsed), ShouldBeNil)
			So(parsed.Page, ShouldEqual, "pages/landing.html")
			So(parsed.Images, ShouldHaveLength, 0)
			So(parsed.Portals, ShouldHaveLength, 0)
		})
	})
}
