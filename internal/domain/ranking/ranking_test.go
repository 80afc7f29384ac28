package ranking_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/rallyboard/internal/domain/dedupe"
	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func setOf(entries ...model.Entry) *dedupe.Set {
	s := dedupe.New()
	for _, e := range entries {
		s.Put(e)
	}
	return s
}

func filled(n int) *dedupe.Set {
	s := dedupe.New()
	for i := 0; i < n; i++ {
		s.Put(model.Entry{Name: fmt.Sprintf("p%02d", i), Score: float64(1000 - i), Partner: "x"})
	}
	return s
}

func TestRank(t *testing.T) {
	Convey("Given the documented example", t, func() {
		set := parser.Parse([]string{"1. A (10m with X)", "2. B (20m with Y)", "3. A (5m with Z)"})

		Convey("When ranking", func() {
			ranked := ranking.Rank(set, ranking.DefaultLayout)

			Convey("Then B should lead A", func() {
				So(ranked, ShouldHaveLength, 2)
				So(ranked[0].Name, ShouldEqual, "B")
				So(ranked[0].Score, ShouldEqual, 20)
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[1].Name, ShouldEqual, "A")
				So(ranked[1].Score, ShouldEqual, 5)
				So(ranked[1].Partner, ShouldEqual, "Z")
				So(ranked[1].Rank, ShouldEqual, 2)
			})

			Convey("And both should be in Tier 1", func() {
				tiers := ranking.Partition(ranked, ranking.DefaultLayout)
				So(tiers, ShouldHaveLength, 3)
				So(tiers[0].Entries, ShouldHaveLength, 2)
				So(tiers[1].Entries, ShouldBeEmpty)
				So(tiers[2].Entries, ShouldBeEmpty)
			})
		})
	})

	Convey("Given entries with equal scores", t, func() {
		set := setOf(
			model.Entry{Name: "first", Score: 50},
			model.Entry{Name: "top", Score: 90},
			model.Entry{Name: "second", Score: 50},
			model.Entry{Name: "third", Score: 50},
		)

		Convey("When ranking", func() {
			ranked := ranking.Rank(set, ranking.DefaultLayout)

			Convey("Then ties should keep insertion order with distinct ranks", func() {
				So(ranked[0].Name, ShouldEqual, "top")
				So(ranked[1].Name, ShouldEqual, "first")
				So(ranked[2].Name, ShouldEqual, "second")
				So(ranked[3].Name, ShouldEqual, "third")
				So([]int{ranked[1].Rank, ranked[2].Rank, ranked[3].Rank}, ShouldResemble, []int{2, 3, 4})
			})
		})

		Convey("When a tied entry is re-inserted", func() {
			set.Put(model.Entry{Name: "first", Score: 50, Partner: "again"})
			ranked := ranking.Rank(set, ranking.DefaultLayout)

			Convey("Then it should drop behind the other ties", func() {
				So(ranked[1].Name, ShouldEqual, "second")
				So(ranked[2].Name, ShouldEqual, "third")
				So(ranked[3].Name, ShouldEqual, "first")
				So(ranked[3].Partner, ShouldEqual, "again")
			})
		})
	})

	Convey("Given a large shuffled board", t, func() {
		set := dedupe.New()
		for i := 0; i < 100; i++ {
			set.Put(model.Entry{Name: fmt.Sprintf("n%d", i), Score: float64((i * 37) % 23)})
		}

		Convey("When ranking", func() {
			ranked := ranking.Rank(set, ranking.DefaultLayout)

			Convey("Then scores should never increase", func() {
				for i := 0; i+1 < len(ranked); i++ {
					So(ranked[i].Score, ShouldBeGreaterThanOrEqualTo, ranked[i+1].Score)
					So(ranked[i].Rank, ShouldEqual, i+1)
				}
			})

			Convey("And tier numbers should follow the layout", func() {
				So(ranked[0].Tier, ShouldEqual, 1)
				So(ranked[11].Tier, ShouldEqual, 1)
				So(ranked[12].Tier, ShouldEqual, 2)
				So(ranked[31].Tier, ShouldEqual, 2)
				So(ranked[32].Tier, ShouldEqual, 3)
				So(ranked[99].Tier, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an empty set", t, func() {
		Convey("When ranking and partitioning", func() {
			ranked := ranking.Rank(dedupe.New(), ranking.DefaultLayout)
			tiers := ranking.Partition(ranked, ranking.DefaultLayout)

			Convey("Then everything should be empty", func() {
				So(ranked, ShouldBeEmpty)
				So(tiers, ShouldHaveLength, 3)
				for _, tier := range tiers {
					So(tier.Entries, ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPartition(t *testing.T) {
	sizes := []struct {
		total               int
		tier1, tier2, tier3 int
	}{
		{0, 0, 0, 0},
		{1, 1, 0, 0},
		{11, 11, 0, 0},
		{12, 12, 0, 0},
		{13, 12, 1, 0},
		{31, 12, 19, 0},
		{32, 12, 20, 0},
		{33, 12, 20, 1},
		{79, 12, 20, 47},
	}

	Convey("Given boards of different sizes", t, func() {
		for _, tc := range sizes {
			Convey(fmt.Sprintf("When partitioning %d entries", tc.total), func() {
				ranked := ranking.Rank(filled(tc.total), ranking.DefaultLayout)
				tiers := ranking.Partition(ranked, ranking.DefaultLayout)

				Convey("Then tier sizes should clamp to what is available", func() {
					So(tiers[0].Entries, ShouldHaveLength, tc.tier1)
					So(tiers[1].Entries, ShouldHaveLength, tc.tier2)
					So(tiers[2].Entries, ShouldHaveLength, tc.tier3)
				})

				Convey("And tiers should be numbered and named", func() {
					for i, tier := range tiers {
						So(tier.Number, ShouldEqual, i+1)
						So(tier.Name, ShouldEqual, fmt.Sprintf("Tier %d", i+1))
					}
				})
			})
		}
	})

	Convey("Given 40 entries", t, func() {
		ranked := ranking.Rank(filled(40), ranking.DefaultLayout)
		tiers := ranking.Partition(ranked, ranking.DefaultLayout)

		Convey("Then tier boundaries should sit at ranks 12/13 and 32/33", func() {
			So(tiers[0].Entries[11].Rank, ShouldEqual, 12)
			So(tiers[1].Entries[0].Rank, ShouldEqual, 13)
			So(tiers[1].Entries[19].Rank, ShouldEqual, 32)
			So(tiers[2].Entries[0].Rank, ShouldEqual, 33)
		})

		Convey("And appending to a tier should not overwrite the next one", func() {
			_ = append(tiers[0].Entries, model.Ranked{Entry: model.Entry{Name: "intruder"}})
			So(tiers[1].Entries[0].Name, ShouldNotEqual, "intruder")
		})
	})
}

func TestLayout(t *testing.T) {
	Convey("Given custom tier sizes", t, func() {
		Convey("When the sizes are positive", func() {
			l, err := ranking.NewLayout(3, 2)

			Convey("Then the layout should have one extra tier", func() {
				So(err, ShouldBeNil)
				So(l.Count(), ShouldEqual, 3)
				So(l.TierOf(1), ShouldEqual, 1)
				So(l.TierOf(3), ShouldEqual, 1)
				So(l.TierOf(4), ShouldEqual, 2)
				So(l.TierOf(5), ShouldEqual, 2)
				So(l.TierOf(6), ShouldEqual, 3)
			})
		})

		Convey("When a size is not positive", func() {
			_, err := ranking.NewLayout(12, 0)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ranking.ErrInvalidLayout), ShouldBeTrue)
			})
		})

		Convey("When no sizes are given", func() {
			l, err := ranking.NewLayout()

			Convey("Then everything should land in a single tier", func() {
				So(err, ShouldBeNil)
				tiers := ranking.Partition(ranking.Rank(filled(5), l), l)
				So(tiers, ShouldHaveLength, 1)
				So(tiers[0].Entries, ShouldHaveLength, 5)
			})
		})
	})
}
