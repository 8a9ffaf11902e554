package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	service "github.com/okian/topskim/internal/app"
	"github.com/okian/topskim/internal/adapters/sink"
	"github.com/okian/topskim/internal/adapters/source"
	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// testCuts coarsens the ghost grid so rho costs milliseconds per event.
func testCuts() cuts.Cuts {
	c := cuts.Default()
	c.GhostArea = 0.05
	return c
}

func tightMuon(pt, eta, phi float64, charge int) model.MuonRecord {
	return model.MuonRecord{
		Pt: pt, Eta: eta, Phi: phi, Charge: charge,
		Type: 1<<1 | 1<<5, Chi2NDF: 1.1, MuonHits: 20, Stations: 4,
		TrkLayers: 10, PixelHits: 4, InnerD0: 0.005, InnerDz: 0.01,
	}
}

func pion(pt, eta, phi float64) model.PFCandidate {
	return model.PFCandidate{ID: 211, Pt: pt, Eta: eta, Phi: phi, Mass: 0.1396}
}

// mmEvent builds an opposite-sign dimuon event whose kinematics vary with i.
func mmEvent(i int) model.Event {
	shift := float64(i%7) * 0.1
	return model.Event{
		Global:  model.GlobalInfo{EventID: model.EventID{Run: 1, Lumi: 1, Event: uint64(i + 1)}, Weight: 0.5},
		Trigger: model.TriggerBits{Muon: true},
		Muons: []model.MuonRecord{
			tightMuon(30+float64(i), 0.4-shift, 0.2, 1),
			tightMuon(25+float64(i%5), -0.8, 2.9-shift, -1),
		},
		Candidates: []model.PFCandidate{
			pion(12, 0.1+shift, -1.5),
			pion(6, 0.2+shift, -1.4),
			pion(2, -1.5, 1.0),
		},
		CaloJets: []model.CaloJet{
			{Pt: 45 + float64(i), Eta: 0.1 + shift, Phi: -1.5, Tracks: 3, Discriminant: 0.9, SVTracks: 2, SVMass: 1.2},
		},
	}
}

func noTriggerEvent(i int) model.Event {
	ev := mmEvent(i)
	ev.Trigger = model.TriggerBits{}
	return ev
}

func mixedEvents(n int) []model.Event {
	events := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		if i%3 == 2 {
			events = append(events, noTriggerEvent(i))
			continue
		}
		events = append(events, mmEvent(i))
	}
	return events
}

func newService(events []model.Event, opts ...service.Option) *service.Service {
	a := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithPP(true), analysis.WithMC(true))
	base := []service.Option{
		service.WithSource(source.NewSliceSource(events)),
		service.WithAnalyzer(a),
		service.WithSink(sink.New()),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it gets a run id and an empty sink", func() {
			So(svc, ShouldNotBeNil)
			So(svc.RunID(), ShouldNotBeEmpty)
			So(svc.Sink().Len(), ShouldEqual, 0)
		})

		Convey("When running without a source", func() {
			_, err := svc.Run(context.Background())

			Convey("Then it fails with ErrNoSource", func() {
				So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
			})
		})
	})

	Convey("Given a custom run id", t, func() {
		svc := service.New(service.WithRunID("fixed"))

		Convey("Then it is kept", func() {
			So(svc.RunID(), ShouldEqual, "fixed")
			So(svc.GetStats()["run_id"], ShouldEqual, "fixed")
		})
	})
}

func TestService_RunSequential(t *testing.T) {
	ctx := context.Background()

	Convey("Given an accepted event, a triggerless event and a duplicate", t, func() {
		events := []model.Event{mmEvent(0), noTriggerEvent(1), mmEvent(0)}

		Convey("When dedupe is enabled", func() {
			svc := newService(events, service.WithDedupe(true, 0))
			sum, err := svc.Run(ctx)

			Convey("Then the duplicate is dropped but still weighs in", func() {
				So(err, ShouldBeNil)
				So(sum.Read, ShouldEqual, 3)
				So(sum.Duplicates, ShouldEqual, 1)
				So(sum.Accepted, ShouldEqual, 1)
				So(sum.Verdicts["accepted"], ShouldEqual, 1)
				So(sum.Verdicts["no_trigger"], ShouldEqual, 1)
				So(sum.TotalWeight, ShouldAlmostEqual, 1.5, 1e-12)
				So(svc.GetStats()["dedupe_ids"], ShouldEqual, int64(2))
			})

			Convey("Then the histograms are normalized to the total weight", func() {
				h, ok := svc.Sink().Get("mm_mll")
				So(ok, ShouldBeTrue)
				So(h.SumW(), ShouldAlmostEqual, 0.5/1.5, 1e-12)
			})
		})

		Convey("When dedupe is disabled", func() {
			svc := newService(events)
			sum, err := svc.Run(ctx)

			Convey("Then both copies are analysed", func() {
				So(err, ShouldBeNil)
				So(sum.Duplicates, ShouldEqual, 0)
				So(sum.Accepted, ShouldEqual, 2)
				So(svc.GetStats(), ShouldNotContainKey, "dedupe_ids")
			})
		})
	})

	Convey("Given a canceled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then the run stops with the context error", func() {
			_, err := newService(mixedEvents(5)).Run(cctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given an output path", t, func() {
		path := filepath.Join(t.TempDir(), "histos.root")
		svc := newService(mixedEvents(6), service.WithOutput(path))

		Convey("Then the histograms are written to it", func() {
			sum, err := svc.Run(ctx)
			So(err, ShouldBeNil)
			So(sum.Histograms, ShouldEqual, svc.Sink().Len())
			So(sum.Histograms, ShouldBeGreaterThan, 0)
			_, err = os.Stat(path)
			So(err, ShouldBeNil)
		})
	})
}

func TestService_RunParallel(t *testing.T) {
	ctx := context.Background()

	Convey("Given the same events run sequentially and on four workers", t, func() {
		events := mixedEvents(30)

		seq := newService(events)
		seqSum, err := seq.Run(ctx)
		So(err, ShouldBeNil)

		par := newService(events, service.WithWorkerCount(4), service.WithQueueSize(3))
		parSum, err := par.Run(ctx)
		So(err, ShouldBeNil)

		Convey("Then the summaries agree", func() {
			So(parSum.Read, ShouldEqual, seqSum.Read)
			So(parSum.Accepted, ShouldEqual, seqSum.Accepted)
			So(parSum.Verdicts, ShouldResemble, seqSum.Verdicts)
			So(parSum.TotalWeight, ShouldAlmostEqual, seqSum.TotalWeight, 1e-12)
		})

		Convey("Then every histogram is filled identically", func() {
			keys := seq.Sink().Keys()
			So(par.Sink().Keys(), ShouldResemble, keys)
			for _, k := range keys {
				hs, _ := seq.Sink().Get(k)
				hp, _ := par.Sink().Get(k)
				So(hp.SumW(), ShouldEqual, hs.SumW())
				So(hp.SumWX(), ShouldEqual, hs.SumWX())
				So(hp.Entries(), ShouldEqual, hs.Entries())
			}
		})
	})

	Convey("Given accepted events with the default ghost grid on two workers", t, func() {
		events := make([]model.Event, 6)
		for i := range events {
			events[i] = mmEvent(i)
		}
		a := analysis.NewAnalyzer(analysis.WithCuts(cuts.Default()), analysis.WithPP(true), analysis.WithMC(true))
		out := filepath.Join(t.TempDir(), "hists.root")
		svc := service.New(
			service.WithSource(source.NewSliceSource(events)),
			service.WithAnalyzer(a),
			service.WithSink(sink.New()),
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithOutput(out),
		)

		sum, err := svc.Run(ctx)

		Convey("Then the backlog is drained and the output is written", func() {
			So(err, ShouldBeNil)
			So(sum.Read, ShouldEqual, 6)
			So(sum.Accepted, ShouldEqual, 6)
			So(sum.Histograms, ShouldBeGreaterThan, 0)
			_, statErr := os.Stat(out)
			So(statErr, ShouldBeNil)
		})
	})

	Convey("Given misaligned input tables", t, func() {
		dir := t.TempDir()
		w, err := source.Create(dir, true)
		So(err, ShouldBeNil)
		for _, ev := range mixedEvents(4) {
			So(w.Write(ev), ShouldBeNil)
		}
		So(w.Close(), ShouldBeNil)

		f, err := os.OpenFile(filepath.Join(dir, source.GlobalTable), os.O_APPEND|os.O_WRONLY, 0o644)
		So(err, ShouldBeNil)
		_, err = f.WriteString(`{"run":1,"lumi":1,"evt":99,"vz":0,"weight":1}` + "\n")
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		r, err := source.Open(dir, source.WithPP(true))
		So(err, ShouldBeNil)
		svc := newService(nil, service.WithSource(r), service.WithWorkerCount(2))

		Convey("Then the run fails with ErrMisaligned", func() {
			_, err := svc.Run(ctx)
			So(errors.Is(err, source.ErrMisaligned), ShouldBeTrue)
		})
	})
}
