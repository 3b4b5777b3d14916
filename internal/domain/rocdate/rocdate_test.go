package rocdate_test

import (
	"testing"
	"time"

	"github.com/okian/vigil/internal/domain/rocdate"
	"github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	convey.Convey("Given the minguo date parser", t, func() {
		convey.Convey("When parsing the compact form", func() {
			got := rocdate.Parse("1130120")

			convey.Convey("Then the year is offset by 1911", func() {
				convey.So(got, convey.ShouldEqual, time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When parsing the slash form", func() {
			got := rocdate.Parse("115/01/20")

			convey.Convey("Then the year is offset by 1911", func() {
				convey.So(got, convey.ShouldEqual, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When parsing with surrounding whitespace", func() {
			got := rocdate.Parse(" 115/02/02 ")
			convey.So(got, convey.ShouldEqual, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC))
		})

		convey.Convey("When parsing malformed input", func() {
			cases := []string{
				"",            // empty
				"113012",      // too short
				"11301201",    // too long
				"113a120",     // non-digit
				"1131320",     // month 13
				"1130132",     // day 32
				"1130231",     // February 31st
				"113/01",      // missing day
				"113/01/20/5", // too many parts
				"abc/de/fg",   // non-digit slash form
				"-130120",     // negative year
			}

			convey.Convey("Then each yields the sentinel without panicking", func() {
				for _, c := range cases {
					got := rocdate.Parse(c)
					convey.So(rocdate.IsUndefined(got), convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When parsing a leap day", func() {
			convey.Convey("Then a valid leap year passes", func() {
				got := rocdate.Parse("1130229") // 2024-02-29
				convey.So(got, convey.ShouldEqual, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))
			})

			convey.Convey("Then a non-leap year yields the sentinel", func() {
				got := rocdate.Parse("1140229") // 2025-02-29 does not exist
				convey.So(rocdate.IsUndefined(got), convey.ShouldBeTrue)
			})
		})
	})
}

func TestParseRange(t *testing.T) {
	convey.Convey("Given the period range parser", t, func() {
		convey.Convey("When parsing a full range", func() {
			start, end := rocdate.ParseRange("115/01/20～115/02/02")

			convey.Convey("Then both sides normalize independently", func() {
				convey.So(start, convey.ShouldEqual, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC))
				convey.So(end, convey.ShouldEqual, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When the separator is missing", func() {
			start, end := rocdate.ParseRange("115/01/20")

			convey.Convey("Then the end side is the sentinel", func() {
				convey.So(rocdate.IsUndefined(start), convey.ShouldBeFalse)
				convey.So(rocdate.IsUndefined(end), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When one side is malformed", func() {
			start, end := rocdate.ParseRange("garbage～115/02/02")

			convey.Convey("Then only that side is the sentinel", func() {
				convey.So(rocdate.IsUndefined(start), convey.ShouldBeTrue)
				convey.So(end, convey.ShouldEqual, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When the input is empty", func() {
			start, end := rocdate.ParseRange("")
			convey.So(rocdate.IsUndefined(start), convey.ShouldBeTrue)
			convey.So(rocdate.IsUndefined(end), convey.ShouldBeTrue)
		})
	})
}
