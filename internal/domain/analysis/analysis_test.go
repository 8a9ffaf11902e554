package analysis_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/category"
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

func tightElectron(pt, eta, phi float64, charge int) model.ElectronRecord {
	return model.ElectronRecord{
		Pt: pt, Eta: eta, Phi: phi, Charge: charge,
		EoverPInv: 0.02, HoverE: 0.03, DEtaAtVtx: 0.003, DPhiAtVtx: 0.02,
		SigmaIEtaIEta: 0.01, D0: 0.005, Dz: 0.01,
	}
}

func pion(pt, eta, phi float64) model.PFCandidate {
	return model.PFCandidate{ID: 211, Pt: pt, Eta: eta, Phi: phi, Mass: 0.1396}
}

// emEvent has one muon and one electron of opposite charge, a three-track
// jet away from both, and a tagged calorimeter jet on top of it.
func emEvent() model.Event {
	return model.Event{
		Seq:     3,
		Global:  model.GlobalInfo{EventID: model.EventID{Run: 327500, Lumi: 10, Event: 42}, VertexZ: 2, Weight: 0.5},
		Trigger: model.TriggerBits{Muon: true},
		Muons:   []model.MuonRecord{tightMuon(40, 0.5, 0, -1)},
		Electrons: []model.ElectronRecord{
			tightElectron(35, -1.0, 2.5, 1),
		},
		Candidates: []model.PFCandidate{
			pion(15, 0.2, -1.5),
			pion(8, 0.3, -1.4),
			pion(4, 0.1, -1.6),
			{ID: 22, Pt: 10, Eta: 0.2, Phi: -1.5},
			pion(3, -2.0, 1.0),
		},
		CaloJets: []model.CaloJet{
			{Pt: 50, Eta: 0.2, Phi: -1.5, Tracks: 4, Discriminant: 0.9, SVTracks: 2, SVMass: 1.8},
		},
	}
}

func TestProcessAccepted(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pp analyzer", t, func() {
		a := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithPP(true))

		Convey("When an opposite-sign muon-electron event fired the muon trigger", func() {
			r := a.Process(ctx, emEvent())

			Convey("Then an em pair is built from the muon and the electron", func() {
				So(r.Verdict, ShouldEqual, model.VerdictAccepted)
				So(r.Accepted(), ShouldBeTrue)
				So(r.Dilepton.Flavor, ShouldEqual, model.FlavorEM)
				So(r.Dilepton.Leptons[0].IsMuon(), ShouldBeTrue)
				So(r.Dilepton.Mass, ShouldBeGreaterThanOrEqualTo, 20)
				So(r.Dilepton.OppositeSign(), ShouldBeTrue)
			})

			Convey("Then the track jet and calorimeter jet are reconstructed and matched", func() {
				So(r.TrackJets, ShouldHaveLength, 1)
				So(r.TrackJets[0].Constituents, ShouldEqual, 3)
				So(r.Tagging.Matched, ShouldHaveLength, 1)
				So(r.Tagging.Matched[0].JetIndex, ShouldEqual, 0)
				So(r.Tagging.NJets, ShouldEqual, 1)
				So(r.Tagging.NTagged, ShouldEqual, 1)
				So(r.TaggedTrackJets(a.Cuts().BTagWorkingPoint), ShouldEqual, 1)
				So(r.Rho, ShouldBeGreaterThanOrEqualTo, 0)
			})

			Convey("Then the categories carry no run-period variants", func() {
				So(r.Categories, ShouldResemble, category.Set{"em", "emBB"})
			})

			Convey("Then data events weigh one", func() {
				So(r.Weight, ShouldEqual, 1)
				So(r.Seq, ShouldEqual, 3)
				So(r.ID.Key(), ShouldEqual, "327500:10:42")
			})
		})

		Convey("When the same event is processed twice", func() {
			r1 := a.Process(ctx, emEvent())
			r2 := a.Process(ctx, emEvent())

			Convey("Then the results are identical", func() {
				So(r2, ShouldResemble, r1)
			})
		})
	})

	Convey("Given a heavy-ion simulation analyzer", t, func() {
		a := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithMC(true))

		Convey("When an accepted event is processed", func() {
			r := a.Process(ctx, emEvent())
			pp := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithPP(true)).Process(ctx, emEvent())

			Convey("Then the event weight is used", func() {
				So(a.IsMC(), ShouldBeTrue)
				So(r.Weight, ShouldEqual, 0.5)
			})

			Convey("Then the category set is twice the pp one", func() {
				So(len(r.Categories), ShouldEqual, 2*len(pp.Categories))
				So(r.Categories.Contains("emafter"), ShouldBeTrue)
			})
		})

		Convey("When the run precedes the electron scale change", func() {
			ev := emEvent()
			ev.Global.Run = 326500
			r := a.Process(ctx, ev)

			Convey("Then the electron is scaled before the cuts", func() {
				el := r.Selection.TightElectrons[0]
				So(el.P4.Pt(), ShouldAlmostEqual, 35*a.Cuts().ElectronScale, 1e-6)
				So(r.Categories.Contains("embefore"), ShouldBeTrue)
			})
		})
	})
}

func TestProcessRejected(t *testing.T) {
	ctx := context.Background()

	Convey("Given events failing a single stage", t, func() {
		hi := analysis.NewAnalyzer(analysis.WithCuts(testCuts()))

		Convey("When no trigger fired", func() {
			ev := emEvent()
			ev.Trigger = model.TriggerBits{}

			Convey("Then the event has no trigger", func() {
				So(hi.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictNoTrigger)
			})
		})

		Convey("When the vertex is displaced in heavy-ion running", func() {
			ev := emEvent()
			ev.Global.VertexZ = -15.5
			pp := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithPP(true))

			Convey("Then only heavy-ion running rejects it", func() {
				So(hi.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictVertex)
				So(pp.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictAccepted)
			})
		})

		Convey("When the leptons have the same charge", func() {
			ev := emEvent()
			ev.Electrons[0].Charge = -1
			ss := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithSameSign(true))

			Convey("Then only same-sign mode accepts it", func() {
				So(hi.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictChargeMismatch)
				r := ss.Process(ctx, ev)
				So(r.Verdict, ShouldEqual, model.VerdictAccepted)
				So(r.Dilepton.ChargeProduct, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When one lepton fails identification", func() {
			ev := emEvent()
			ev.Muons[0].PixelHits = 0
			r := hi.Process(ctx, ev)

			Convey("Then there are too few leptons", func() {
				So(r.Verdict, ShouldEqual, model.VerdictTooFewLeptons)
				So(r.Selection.LooseMuons, ShouldHaveLength, 1)
			})
		})

		Convey("When the rejected event is a muon-dataset event without the muon trigger", func() {
			ev := emEvent()
			ev.Trigger = model.TriggerBits{Electron: true}
			mu := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithDataset(analysis.DatasetSingleMuon))
			mc := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithMC(true), analysis.WithDataset(analysis.DatasetSingleMuon))

			Convey("Then data is vetoed and simulation is not", func() {
				So(mu.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictDatasetVeto)
				So(mc.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictAccepted)
			})
		})

		Convey("When an electron-dataset event fired both triggers", func() {
			ev := emEvent()
			ev.Trigger = model.TriggerBits{Muon: true, Electron: true}
			el := analysis.NewAnalyzer(analysis.WithCuts(testCuts()), analysis.WithDataset(analysis.DatasetSingleElectron))

			Convey("Then it is left to the muon dataset", func() {
				So(el.Process(ctx, ev).Verdict, ShouldEqual, model.VerdictDatasetVeto)
			})
		})
	})
}

func TestDataset(t *testing.T) {
	Convey("Given dataset names and paths", t, func() {
		Convey("Then names parse", func() {
			d, err := analysis.ParseDataset("Muon")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, analysis.DatasetSingleMuon)

			d, err = analysis.ParseDataset("")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, analysis.DatasetAny)

			_, err = analysis.ParseDataset("photon")
			So(errors.Is(err, analysis.ErrUnknownDataset), ShouldBeTrue)
		})

		Convey("Then skim markers in paths are recognised", func() {
			So(analysis.DatasetFromPath("/data/SkimElectrons/run1"), ShouldEqual, analysis.DatasetSingleElectron)
			So(analysis.DatasetFromPath("/data/SkimMuons_2018"), ShouldEqual, analysis.DatasetSingleMuon)
			So(analysis.DatasetFromPath("/data/mc/ttbar"), ShouldEqual, analysis.DatasetAny)
			So(analysis.DatasetSingleElectron.String(), ShouldEqual, "electron")
		})
	})
}
