package model_test

import (
	"testing"

	model "github.com/okian/rallyboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	convey.Convey("Given an Entry", t, func() {
		e := model.Entry{Name: "Bluey", Score: 279.7, Partner: "Ultimate Bluey"}

		convey.Convey("When rendering the display text", func() {
			convey.Convey("Then it should use the unit suffix and partner", func() {
				convey.So(e.DisplayText(), convey.ShouldEqual, "279.7m with Ultimate Bluey")
			})
		})

		convey.Convey("When formatting the round-trip line", func() {
			convey.Convey("Then it should use the given rank", func() {
				convey.So(model.FormatLine(1, e), convey.ShouldEqual, "1. Bluey (279.7m with Ultimate Bluey)")
				convey.So(model.FormatLine(42, e), convey.ShouldEqual, "42. Bluey (279.7m with Ultimate Bluey)")
			})
		})

		convey.Convey("When the entry is ranked", func() {
			r := model.Ranked{Entry: e, Rank: 3, Tier: 1}

			convey.Convey("Then Line should use the computed rank", func() {
				convey.So(r.Line(), convey.ShouldEqual, "3. Bluey (279.7m with Ultimate Bluey)")
			})
		})
	})
}

func TestFormatScore(t *testing.T) {
	convey.Convey("Given scores written in different shapes", t, func() {
		convey.Convey("Then whole numbers should not carry a fraction", func() {
			convey.So(model.FormatScore(199), convey.ShouldEqual, "199")
			convey.So(model.FormatScore(0), convey.ShouldEqual, "0")
		})

		convey.Convey("And fractions should keep their shortest form", func() {
			convey.So(model.FormatScore(190.2), convey.ShouldEqual, "190.2")
			convey.So(model.FormatScore(3.8), convey.ShouldEqual, "3.8")
			convey.So(model.FormatScore(0.05), convey.ShouldEqual, "0.05")
		})
	})
}
