package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{1, 10}),
			WithConstLabels(map[string]string{"env": "ci"}),
		)

		Convey("Then options are applied", func() {
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")
			So(m.histogramBuckets, ShouldResemble, []float64{1, 10})
			So(m.constLabels["env"], ShouldEqual, "ci")
		})

		Convey("Then metrics are registered under the namespace", func() {
			m.rankingRequests.Inc()
			families, err := reg.Gather()
			So(err, ShouldBeNil)

			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["test_unit_ranking_requests_total"], ShouldBeTrue)
			So(testutil.ToFloat64(m.rankingRequests), ShouldEqual, 1)
		})
	})

	Convey("Given empty option values", t, func() {
		m := NewManager(
			WithPrometheusRegistry(prometheus.NewRegistry()),
			WithNamespace(""),
			WithSubsystem(""),
			WithHistogramBuckets(nil),
		)

		Convey("Then defaults are kept", func() {
			So(m.namespace, ShouldEqual, "mentormatch")
			So(m.subsystem, ShouldEqual, "matching")
			So(len(m.histogramBuckets), ShouldBeGreaterThan, 0)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a ranking run is recorded", func() {
			before := testutil.ToFloat64(globalManager.candidatesScored)
			RecordRanking(10, 2, 5, 1.5)

			Convey("Then the counters advance", func() {
				So(testutil.ToFloat64(globalManager.candidatesScored), ShouldEqual, before+10)
			})
		})

		Convey("When events are recorded", func() {
			RecordEvent("feedback", "duplicate")
			RecordEvent("feedback", "duplicate")

			Convey("Then they are split by label", func() {
				c := globalManager.events.WithLabelValues("feedback", "duplicate")
				So(testutil.ToFloat64(c), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When gauges are set", func() {
			UpdateQueueSize(7)
			UpdateMatchRecordsTotal(42)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.matchRecordsTotal), ShouldEqual, 42)
			})
		})

		Convey("Then every recorder is safe to call", func() {
			So(func() {
				RecordPairScored()
				RecordRescore("ok", 2)
				RecordRepositoryLatency("top_n", 0.2)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.07)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(1)
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordHTTPRequest("/suggestions", "GET", "200")
				RecordHTTPRequestDuration("/suggestions", "GET", "200", 4)
				RecordErrorByComponent("api", "bad_request")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
