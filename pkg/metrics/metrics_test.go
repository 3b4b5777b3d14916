package metrics_test

import (
	"testing"

	"github.com/okian/vigil/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	convey.Convey("Given a metrics manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		convey.Convey("When constructed with options", func() {
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithNamespace("testns"),
				metrics.WithSubsystem("testsub"),
				metrics.WithHistogramBuckets([]float64{0.1, 1, 10}),
			)

			convey.Convey("Then it should register without panicking", func() {
				convey.So(m, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	convey.Convey("Given the global metrics manager", t, func() {
		convey.Convey("When recording every metric kind", func() {
			convey.So(func() {
				metrics.RecordFetch("attention", "success")
				metrics.RecordFetchRecords("attention", 12)
				metrics.RecordRowSkipped("disposition", "short_row")
				metrics.RecordPass("completed")
				metrics.RecordPassDuration(1.25)
				metrics.UpdateLastPassUnix(1700000000)
				metrics.RecordRowsInserted("attention", 3)
				metrics.RecordRowsDuplicate("disposition", 1)
				metrics.RecordSecurityCreated()
				metrics.RecordSentinelDate()
				metrics.RecordRiskAssessment("danger")
				metrics.UpdateSecuritiesTotal(10)
				metrics.UpdateAttentionTotal(100)
				metrics.UpdateDispositionsTotal(5)
				metrics.RecordHTTPRequest("attention", "GET", "200")
				metrics.RecordHTTPRequestDuration("attention", "GET", "200", 4.2)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When fetching the registry", func() {
			convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
		})
	})
}
