package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/vigil/internal/adapters/fetch"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeFetcher serves canned feed batches and can simulate upstream failure
// or a slow feed.
type fakeFetcher struct {
	attention    []fetch.AttentionRecord
	attentionErr error

	disposition    []fetch.DispositionRecord
	dispositionErr error

	block chan struct{}
}

func (f *fakeFetcher) FetchAttention(ctx context.Context) ([]fetch.AttentionRecord, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.attentionErr != nil {
		return nil, f.attentionErr
	}
	return f.attention, nil
}

func (f *fakeFetcher) FetchDisposition(ctx context.Context) ([]fetch.DispositionRecord, error) {
	if f.dispositionErr != nil {
		return nil, f.dispositionErr
	}
	return f.disposition, nil
}

func openStore(t *testing.T) *repository.GormStore {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "vigil.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestRunPassMerge(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given canned attention and disposition batches", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{
			attention: []fetch.AttentionRecord{
				{Code: "2330", Name: "台積電", Date: "1130120", Reason: "成交量異常"},
				{Code: "2330", Name: "台積電", Date: "1130121", Reason: "週轉率過高"},
				{Code: "1101", Name: "台泥", Date: "1130120", Reason: "價格波動"},
			},
			disposition: []fetch.DispositionRecord{
				{
					AnnouncedRaw: "113/01/19",
					Code:         "6488",
					Name:         "環球晶",
					PeriodRaw:    "113/01/20～113/02/02",
					Measures:     "人工管制撮合",
				},
			},
		}
		svc := New(store, ff)

		convey.Convey("When one pass runs", func() {
			err := svc.RunPass(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then all rows land with normalized Gregorian dates", func() {
				counts, err := store.Counts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.Securities, convey.ShouldEqual, 3)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 3)
				convey.So(counts.DispositionIntervals, convey.ShouldEqual, 1)

				events, err := store.AttentionOn(ctx, day(2024, 1, 20))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 2)

				intervals, err := store.DispositionsCovering(ctx, day(2024, 1, 25))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(intervals), convey.ShouldEqual, 1)
				convey.So(intervals[0].Measures, convey.ShouldEqual, "人工管制撮合")
			})
		})

		convey.Convey("When the same pass runs twice", func() {
			convey.So(svc.RunPass(ctx), convey.ShouldBeNil)
			convey.So(svc.RunPass(ctx), convey.ShouldBeNil)

			convey.Convey("Then the store is unchanged by the second run", func() {
				counts, err := store.Counts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.Securities, convey.ShouldEqual, 3)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 3)
				convey.So(counts.DispositionIntervals, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a batch repeats the same row", func() {
			ff.attention = append(ff.attention, ff.attention[0])
			convey.So(svc.RunPass(ctx), convey.ShouldBeNil)

			convey.Convey("Then the repeat inserts nothing", func() {
				counts, err := store.Counts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 3)
			})
		})
	})
}

func TestRunPassDegradedFeeds(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an attention feed that is down", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{
			attentionErr: errors.New("upstream 500"),
			disposition: []fetch.DispositionRecord{
				{Code: "6488", Name: "環球晶", PeriodRaw: "113/01/20～113/02/02", Measures: "管制"},
			},
		}
		svc := New(store, ff)

		convey.Convey("When a pass runs", func() {
			err := svc.RunPass(ctx)

			convey.Convey("Then the disposition batch still lands", func() {
				convey.So(err, convey.ShouldBeNil)
				counts, err := store.Counts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 0)
				convey.So(counts.DispositionIntervals, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given an attention record with a malformed date", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{
			attention: []fetch.AttentionRecord{
				{Code: "2330", Name: "台積電", Date: "not-a-date", Reason: "x"},
				{Code: "1101", Name: "台泥", Date: "1130120", Reason: "y"},
			},
		}
		svc := New(store, ff)

		convey.Convey("When a pass runs", func() {
			convey.So(svc.RunPass(ctx), convey.ShouldBeNil)

			convey.Convey("Then only the well-formed record lands, both securities register", func() {
				counts, err := store.Counts(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 1)
				convey.So(counts.Securities, convey.ShouldEqual, 2)
			})
		})
	})
}

func TestDispositionFirstWriteWins(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given two passes where the second changes the measures text", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{
			disposition: []fetch.DispositionRecord{
				{Code: "6488", Name: "環球晶", PeriodRaw: "113/01/20～113/02/02", Measures: "原始處置"},
			},
		}
		svc := New(store, ff)
		convey.So(svc.RunPass(ctx), convey.ShouldBeNil)

		ff.disposition = []fetch.DispositionRecord{
			{Code: "6488", Name: "環球晶", PeriodRaw: "113/01/20～113/02/09", Measures: "改寫處置"},
		}
		convey.So(svc.RunPass(ctx), convey.ShouldBeNil)

		convey.Convey("Then the original interval and measures survive", func() {
			intervals, err := store.DispositionsCovering(ctx, day(2024, 1, 25))
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(intervals), convey.ShouldEqual, 1)
			convey.So(intervals[0].Measures, convey.ShouldEqual, "原始處置")
			convey.So(intervals[0].EndDate.Equal(day(2024, 2, 2)), convey.ShouldBeTrue)
		})
	})
}

func TestRunPassOverlap(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a pass stuck on a slow feed", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{block: make(chan struct{})}
		svc := New(store, ff)

		started := make(chan error, 1)
		go func() { started <- svc.RunPass(ctx) }()

		// Wait for the first pass to take the in-flight flag.
		convey.So(waitRunning(svc), convey.ShouldBeTrue)

		convey.Convey("When a second pass is requested", func() {
			err := svc.RunPass(ctx)

			convey.Convey("Then it is skipped, not queued", func() {
				convey.So(errors.Is(err, ErrPassInProgress), convey.ShouldBeTrue)

				close(ff.block)
				convey.So(<-started, convey.ShouldBeNil)
			})
		})
	})
}

func waitRunning(svc *Service) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		svc.passMu.Lock()
		running := svc.running
		svc.passMu.Unlock()
		if running {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestRiskReport(t *testing.T) {
	ctx := context.Background()
	ref := day(2024, 3, 1)

	convey.Convey("Given flagged histories of different severity", t, func() {
		store := openStore(t)
		for _, code := range []string{"1101", "2330", "9999"} {
			_, err := store.EnsureSecurity(ctx, code, code)
			convey.So(err, convey.ShouldBeNil)
		}

		// 2330: three-day run ending at ref.
		convey.So(store.InsertAttention(ctx, []model.AttentionEvent{
			{Code: "2330", Date: ref},
			{Code: "2330", Date: ref.AddDate(0, 0, -1)},
			{Code: "2330", Date: ref.AddDate(0, 0, -2)},
		}), convey.ShouldBeNil)

		// 1101: two-day run ending at ref.
		convey.So(store.InsertAttention(ctx, []model.AttentionEvent{
			{Code: "1101", Date: ref},
			{Code: "1101", Date: ref.AddDate(0, 0, -1)},
		}), convey.ShouldBeNil)

		// 9999: single stale event outside the candidate window.
		convey.So(store.InsertAttention(ctx, []model.AttentionEvent{
			{Code: "9999", Date: ref.AddDate(0, 0, -20)},
		}), convey.ShouldBeNil)

		svc := New(store, &fakeFetcher{})

		convey.Convey("When the report is built", func() {
			report, err := svc.RiskReport(ctx, ref)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then only recent non-safe securities appear, worst first", func() {
				convey.So(len(report), convey.ShouldEqual, 2)
				convey.So(report[0].Code, convey.ShouldEqual, "2330")
				convey.So(report[0].Tier, convey.ShouldEqual, model.TierDanger)
				convey.So(report[1].Code, convey.ShouldEqual, "1101")
				convey.So(report[1].Tier, convey.ShouldEqual, model.TierWarning)
			})
		})
	})
}

func TestSchedulerRunOnStart(t *testing.T) {
	convey.Convey("Given a scheduler with run-on-start and a long interval", t, func() {
		store := openStore(t)
		ff := &fakeFetcher{
			attention: []fetch.AttentionRecord{
				{Code: "2330", Name: "台積電", Date: "1130120", Reason: "z"},
			},
		}
		svc := New(store, ff)
		sched := NewScheduler(svc,
			WithInterval(time.Hour),
			WithRunOnStart(true),
		)

		convey.Convey("When started and stopped", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched.Start(ctx)
			sched.Stop()

			convey.Convey("Then exactly the initial pass has run", func() {
				counts, err := store.Counts(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts.AttentionEvents, convey.ShouldEqual, 1)
			})
		})
	})
}
