package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/rallyboard/internal/adapters/http/api"
	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/ranking"
	"github.com/okian/rallyboard/internal/domain/types"
)

var testLayout = ranking.Layout{Sizes: []int{2, 2}}

var testLines = []string{
	"Tier 1",
	"1. Bluey (279.7m with Ultimate Bluey)",
	"2. Bingo (201.5m with Chilli)",
	"3. Muffin (199m with Socks)",
	"4. Cookie Monster 無 (177.9m with Tama)",
	"5. AC/DC (100m with Bon)",
	"6. Bob <b> (50m with Eve)",
	"not an entry",
}

// fakeDeps serves a fixed board through the real snapshot store.
type fakeDeps struct {
	store   *repository.SnapshotStore
	topNErr error
}

func newFakeDeps(lines ...string) *fakeDeps {
	set, report := parser.ParseReport(lines)
	board := repository.NewBoard(set, testLayout, repository.WithReport(report), repository.WithSource("test"))
	return &fakeDeps{
		store: repository.NewSnapshotStore(context.Background(),
			repository.WithLayout(testLayout), repository.WithInitialBoard(board)),
	}
}

func (f *fakeDeps) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if f.topNErr != nil {
		return nil, f.topNErr
	}
	rows, err := f.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.FromRankedSlice(rows), nil
}

func (f *fakeDeps) Rank(ctx context.Context, name string) (types.Entry, error) {
	r, err := f.store.Rank(ctx, name)
	if err != nil {
		return types.Entry{}, err
	}
	return types.FromRanked(r), nil
}

func (f *fakeDeps) Tiers(ctx context.Context) []types.Tier {
	return types.FromTiers(f.store.Current(ctx).Tiers)
}

func (f *fakeDeps) Tier(ctx context.Context, n int) (types.Tier, error) {
	t, err := f.store.Tier(ctx, n)
	if err != nil {
		return types.Tier{}, err
	}
	return types.FromTier(t), nil
}

func (f *fakeDeps) Board(ctx context.Context) *repository.Board {
	return f.store.Current(ctx)
}

func (f *fakeDeps) Evaluate(_ context.Context, lines []string) *repository.Board {
	set, report := parser.ParseReport(lines)
	return repository.NewBoard(set, testLayout, repository.WithReport(report))
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newRouter(deps *fakeDeps, opts ...api.ServerOption) http.Handler {
	stats := &mockStatsProvider{stats: map[string]interface{}{"entries": 6, "started": true}}
	server := api.NewServer(deps, stats, opts...)
	r := chi.NewRouter()
	server.Register(context.Background(), r)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "text/plain")
	}
	req.RemoteAddr = "192.0.2.1:4321"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		h := newRouter(newFakeDeps(testLines...))

		Convey("Then the health endpoint should expose metrics", func() {
			w := do(h, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "rallyboard_leaderboard")
		})

		Convey("Then the stats endpoint should return the provider stats", func() {
			w := do(h, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["entries"], ShouldEqual, float64(6))
		})

		Convey("Then unknown routes should return a JSON 404", func() {
			w := do(h, "GET", "/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("Then a nil router should panic", func() {
			server := api.NewServer(newFakeDeps(), &mockStatsProvider{})
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard with six entries", t, func() {
		deps := newFakeDeps(testLines...)
		h := newRouter(deps, api.WithMaxLeaderboardLimit(5))

		Convey("When no limit is given", func() {
			w := do(h, "GET", "/leaderboard", "")

			Convey("Then every entry should be returned in rank order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 6)
				for i, r := range rows {
					So(r.Rank, ShouldEqual, i+1)
				}
				So(rows[0].Display, ShouldEqual, "279.7m with Ultimate Bluey")
			})
		})

		Convey("When a limit is given", func() {
			w := do(h, "GET", "/leaderboard?limit=2", "")
			var rows []types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[1].Name, ShouldEqual, "Bingo")
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "-1", "abc"} {
				w := do(h, "GET", "/leaderboard?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the maximum", func() {
			w := do(h, "GET", "/leaderboard?limit=6", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When the store fails", func() {
			deps.topNErr = errors.New("boom")
			w := do(h, "GET", "/leaderboard?limit=1", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["message"], ShouldContainSubstring, "api.get_leaderboard: boom")
		})
	})
}

func TestTiersHandler(t *testing.T) {
	Convey("Given a leaderboard split into tiers of 2, 2 and the rest", t, func() {
		h := newRouter(newFakeDeps(testLines...))

		Convey("When listing tiers", func() {
			w := do(h, "GET", "/tiers", "")
			var tiers []types.Tier
			So(json.Unmarshal(w.Body.Bytes(), &tiers), ShouldBeNil)

			Convey("Then three tiers should be returned", func() {
				So(tiers, ShouldHaveLength, 3)
				So(tiers[0].Name, ShouldEqual, "Tier 1")
				So(tiers[0].Entries, ShouldHaveLength, 2)
				So(tiers[2].Entries[1].Name, ShouldEqual, "Bob <b>")
			})
		})

		Convey("When fetching one tier", func() {
			w := do(h, "GET", "/tiers/2", "")
			var tier types.Tier
			So(json.Unmarshal(w.Body.Bytes(), &tier), ShouldBeNil)
			So(tier.Number, ShouldEqual, 2)
			So(tier.Entries[0].Name, ShouldEqual, "Muffin")
		})

		Convey("When the tier does not exist", func() {
			w := do(h, "GET", "/tiers/4", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the tier is not a number", func() {
			w := do(h, "GET", "/tiers/first", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given a leaderboard", t, func() {
		h := newRouter(newFakeDeps(testLines...))

		Convey("When looking up a plain name", func() {
			w := do(h, "GET", "/rank/Muffin", "")
			var e types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(e.Rank, ShouldEqual, 3)
			So(e.Tier, ShouldEqual, 2)
		})

		Convey("When looking up an escaped name", func() {
			w := do(h, "GET", "/rank/Cookie%20Monster%20%E7%84%A1", "")
			var e types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(e.Name, ShouldEqual, "Cookie Monster 無")
		})

		Convey("When the name contains an escaped slash", func() {
			w := do(h, "GET", "/rank/AC%2FDC", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"name":"AC/DC"`)
		})

		Convey("When the name differs only in case", func() {
			w := do(h, "GET", "/rank/bluey", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestRankHandler_PercentNames(t *testing.T) {
	Convey("Given names that contain percent signs and slashes", t, func() {
		h := newRouter(newFakeDeps(
			"1. A%41 (5m with X)",
			"2. AA (4m with Y)",
			"3. A/B%41 (3m with Z)",
			"4. 100%25 (2m with W)",
		))

		Convey("When a literal percent sign is escaped once", func() {
			w := do(h, "GET", "/rank/A%2541", "")
			var e types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(e.Name, ShouldEqual, "A%41")
			So(e.Rank, ShouldEqual, 1)
		})

		Convey("When the escaped percent looks like another escape", func() {
			w := do(h, "GET", "/rank/100%2525", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"name":"100%25"`)
		})

		Convey("When a slash and a percent sign are both escaped", func() {
			w := do(h, "GET", "/rank/A%2FB%2541", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"name":"A/B%41"`)
		})

		Convey("When the name is the decoded form of the escape", func() {
			w := do(h, "GET", "/rank/AA", "")
			var e types.Entry
			So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
			So(e.Rank, ShouldEqual, 2)
		})
	})
}

func TestExportHandler(t *testing.T) {
	Convey("Given a leaderboard", t, func() {
		h := newRouter(newFakeDeps(testLines...), api.WithChart(3, 400, 300))

		Convey("When exporting lines", func() {
			w := do(h, "GET", "/export/lines", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/plain")
			So(w.Body.String(), ShouldStartWith, "1. Bluey (279.7m with Ultimate Bluey)\n2. Bingo (201.5m with Chilli)\n")
		})

		Convey("When exporting a spreadsheet", func() {
			w := do(h, "GET", "/export/xlsx", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "leaderboard.xlsx")
			So(w.Body.String(), ShouldStartWith, "PK")
		})

		Convey("When exporting a chart", func() {
			w := do(h, "GET", "/export/chart.png", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Body.String(), ShouldStartWith, "\x89PNG")
		})

		Convey("When exporting an empty board", func() {
			empty := newRouter(newFakeDeps())
			So(do(empty, "GET", "/export/lines", "").Body.Len(), ShouldEqual, 0)
			So(do(empty, "GET", "/export/chart.png", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestParseHandler(t *testing.T) {
	Convey("Given a parse endpoint", t, func() {
		deps := newFakeDeps(testLines...)
		h := newRouter(deps)
		body := "1. A (10m with X)\n2. B (20m with Y)\n3. A (5m with Z)\n"

		Convey("When posting lines", func() {
			w := do(h, "POST", "/parse", body)

			Convey("Then the ranked result should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Entries []types.Entry `json:"entries"`
					Tiers   []types.Tier  `json:"tiers"`
					Report  parser.Report `json:"report"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Entries, ShouldHaveLength, 2)
				So(resp.Entries[0].Name, ShouldEqual, "B")
				So(resp.Entries[1].Name, ShouldEqual, "A")
				So(resp.Entries[1].Score, ShouldEqual, 5.0)
				So(resp.Tiers[0].Entries, ShouldHaveLength, 2)
				So(resp.Report.Replaced, ShouldEqual, 1)
			})

			Convey("Then the published board should be untouched", func() {
				So(deps.Board(context.Background()).Len(), ShouldEqual, 6)
			})
		})

		Convey("When asking for lines", func() {
			w := do(h, "POST", "/parse?format=lines", body)
			So(w.Body.String(), ShouldEqual, "1. B (20m with Y)\n2. A (5m with Z)\n")
		})

		Convey("When asking for YAML", func() {
			w := do(h, "POST", "/parse?format=yaml", "weird garbage Bluey stuff")
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/yaml")
			So(w.Body.String(), ShouldContainSubstring, "partner: Ultimate Bluey")
		})

		Convey("When asking for an unknown format", func() {
			w := do(h, "POST", "/parse?format=table", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is too large", func() {
			small := newRouter(deps, api.WithMaxParseBytes(8))
			w := do(small, "POST", "/parse", body)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(decodeError(w)["code"], ShouldEqual, "payload_too_large")
		})

		Convey("When the client exceeds the rate limit", func() {
			limited := newRouter(deps, api.WithParseRateLimit(0.001, 1))
			So(do(limited, "POST", "/parse", body).Code, ShouldEqual, http.StatusOK)
			w := do(limited, "POST", "/parse", body)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decodeError(w)["code"], ShouldEqual, "rate_limited")
		})
	})
}

func TestDashboardHandler(t *testing.T) {
	Convey("Given a leaderboard", t, func() {
		h := newRouter(newFakeDeps(testLines...))

		Convey("When the dashboard is requested", func() {
			w := do(h, "GET", "/", "")
			html := w.Body.String()

			Convey("Then every tier should be rendered with escaped names", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
				So(html, ShouldContainSubstring, "Rally Creator")
				So(html, ShouldContainSubstring, "Highest Damage (with Person)")
				So(html, ShouldContainSubstring, "Tier 3")
				So(html, ShouldContainSubstring, "Bob &lt;b&gt;")
				So(html, ShouldNotContainSubstring, "Bob <b>")
				So(html, ShouldContainSubstring, "6 entries from 8 lines, 1 skipped")
			})
		})

		Convey("When the board is empty", func() {
			w := do(newRouter(newFakeDeps()), "GET", "/", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "No entries.")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given the error helpers", t, func() {
		cause := errors.New("cause")

		Convey("Then kinds and causes should both match", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		})

		Convey("Then NewKind and Wrap should format the op", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: cause")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
