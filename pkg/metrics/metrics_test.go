package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every series of a counter family in reg.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"run_id": "abc"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
			})
		})

		Convey("When using the global manager", func() {
			Convey("Then gauges refresh on the default interval", func() {
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording cut-flow counters", func() {
			m.RecordEventRead()
			m.RecordEventRead()
			m.RecordEventDuplicate()
			m.RecordVerdict("accepted")
			m.RecordVerdict("low_mass")
			m.RecordCategories([]string{"mm", "mmZ", "mmBB"})

			Convey("Then the counters reflect the calls", func() {
				So(counterValue(registry, "topskim_selection_events_read_total"), ShouldEqual, 2)
				So(counterValue(registry, "topskim_selection_events_duplicate_total"), ShouldEqual, 1)
				So(counterValue(registry, "topskim_selection_events_by_verdict_total"), ShouldEqual, 2)
				So(counterValue(registry, "topskim_selection_events_by_category_total"), ShouldEqual, 3)
			})
		})

		Convey("When recording lepton counts", func() {
			m.RecordLeptons("mu", "tight", 2)
			m.RecordLeptons("e", "loose", 0)

			Convey("Then zero counts create no series", func() {
				So(counterValue(registry, "topskim_selection_leptons_selected_total"), ShouldEqual, 2)
			})
		})

		Convey("When recording observations", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					m.ObserveJets(3, 1)
					m.ObserveRho(2.5)
					m.ObserveEventLatency(150 * time.Microsecond)
					m.UpdateWeightSum(12.5)
					m.UpdateHistogramsWritten(40)
				}, ShouldNotPanic)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		Convey("When recording events", func() {
			m.RecordEventRead()

			Convey("Then nothing is counted", func() {
				So(counterValue(registry, "topskim_selection_events_read_total"), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package-level recorders should not panic", func() {
			So(func() {
				RecordEventRead()
				RecordVerdict("accepted")
				RecordCategories([]string{"ee"})
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerError()
				RecordHTTPRequest("/stats", "GET", "200")
				RecordHTTPRequestDuration("/stats", "GET", "200", 1.5)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
