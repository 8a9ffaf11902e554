package trackjets_test

import (
	"math"
	"testing"

	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/kinematics"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/internal/domain/trackjets"
	. "github.com/smartystreets/goconvey/convey"
)

func pion(pt, eta, phi float64) model.PFCandidate {
	return model.PFCandidate{ID: 211, Pt: pt, Eta: eta, Phi: phi, Mass: 0.1396}
}

func farLeptons() [2]model.Lepton {
	return [2]model.Lepton{
		{PDG: model.MuonPDG, P4: kinematics.PtEtaPhiM(40, -1.5, -2.5, 0.1057)},
		{PDG: model.MuonPDG, P4: kinematics.PtEtaPhiM(30, 1.8, -2.0, 0.1057)},
	}
}

func build(b *trackjets.Builder, cands []model.PFCandidate, leps [2]model.Lepton) []model.TrackJet {
	jets, err := b.Build(b.FilterCandidates(cands), leps)
	So(err, ShouldBeNil)
	return jets
}

func TestFilterCandidates(t *testing.T) {
	Convey("Given a builder with default cuts", t, func() {
		b := trackjets.NewBuilder(cuts.Default())

		Convey("When candidates include neutrals, soft and forward particles", func() {
			cands := []model.PFCandidate{
				pion(5, 0.1, 0),
				{ID: 22, Pt: 5, Eta: 0.1, Phi: 0},
				{ID: -2112, Pt: 5, Eta: 0.1, Phi: 0},
				{ID: 1, Pt: 5, Eta: 0.1, Phi: 0},
				pion(0.4, 0.1, 0),
				pion(5, 2.6, 0),
				{ID: -211, Pt: 3, Eta: -2.4, Phi: 1},
			}
			particles := b.FilterCandidates(cands)

			Convey("Then only central charged candidates survive with their index", func() {
				So(particles, ShouldHaveLength, 2)
				So(particles[0].Index, ShouldEqual, 0)
				So(particles[1].Index, ShouldEqual, 6)
			})
		})

		Convey("Then neutral codes ignore the sign", func() {
			So(trackjets.IsNeutral(-130), ShouldBeTrue)
			So(trackjets.IsNeutral(2), ShouldBeTrue)
			So(trackjets.IsNeutral(211), ShouldBeFalse)
			So(trackjets.IsNeutral(-11), ShouldBeFalse)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a builder with default cuts", t, func() {
		b := trackjets.NewBuilder(cuts.Default())

		Convey("When two collimated sprays and a lone particle are clustered", func() {
			cands := []model.PFCandidate{
				pion(20, 0.5, 1.0), pion(10, 0.6, 1.1), pion(5, 0.45, 0.9),
				pion(8, -0.8, 2.8), pion(4, -0.7, 2.9),
				pion(6, 1.0, -0.5),
			}
			jets := build(b, cands, farLeptons())

			Convey("Then single-constituent jets are dropped and order is by pt", func() {
				So(jets, ShouldHaveLength, 2)
				So(jets[0].Constituents, ShouldEqual, 3)
				So(jets[1].Constituents, ShouldEqual, 2)
				So(jets[0].P4.Pt(), ShouldBeGreaterThan, jets[1].P4.Pt())
			})
		})

		Convey("When a jet overlaps a lepton", func() {
			leps := farLeptons()
			leps[0].P4 = kinematics.PtEtaPhiM(40, 0.5, 1.0, 0.1057)
			cands := []model.PFCandidate{pion(20, 0.5, 1.0), pion(10, 0.6, 1.1)}
			jets := build(b, cands, leps)

			Convey("Then it is removed", func() {
				So(jets, ShouldBeEmpty)
			})
		})

		Convey("When a jet is outside the jet acceptance", func() {
			cands := []model.PFCandidate{pion(20, 2.45, 1.0), pion(10, 2.48, 1.05)}
			jets := build(b, cands, farLeptons())

			Convey("Then it is removed", func() {
				So(jets, ShouldBeEmpty)
			})
		})
	})
}

func TestLeptonCleaningBoundary(t *testing.T) {
	Convey("Given a two-track jet and a lepton about 0.4 away from it", t, func() {
		cands := []model.PFCandidate{pion(20, 0.3, 1.0), pion(10, 0.35, 1.05)}
		jets := build(trackjets.NewBuilder(cuts.Default()), cands, farLeptons())
		So(jets, ShouldHaveLength, 1)

		leps := farLeptons()
		leps[0].P4 = kinematics.PtEtaPhiM(40, 0.3, 1.45, 0.1057)
		dr := jets[0].P4.DeltaR(leps[0].P4)
		So(dr, ShouldAlmostEqual, 0.4, 0.05)

		Convey("When the cleaning radius equals the distance", func() {
			c := cuts.Default()
			c.LeptonCleanDR = dr

			Convey("Then the jet is dropped", func() {
				So(build(trackjets.NewBuilder(c), cands, leps), ShouldBeEmpty)
			})
		})

		Convey("When the cleaning radius is just below the distance", func() {
			c := cuts.Default()
			c.LeptonCleanDR = math.Nextafter(dr, 0)

			Convey("Then the jet is kept", func() {
				So(build(trackjets.NewBuilder(c), cands, leps), ShouldHaveLength, 1)
			})
		})
	})
}

func TestRho(t *testing.T) {
	Convey("Given a builder with a coarse ghost grid", t, func() {
		c := cuts.Default()
		c.GhostArea = 0.05
		b := trackjets.NewBuilder(c)

		Convey("When there are no particles", func() {
			Convey("Then rho is zero", func() {
				So(b.Rho(nil), ShouldEqual, 0)
			})
		})

		Convey("When a uniform soft background fills the acceptance", func() {
			var cands []model.PFCandidate
			for i := 0; i < 24; i++ {
				for j := 0; j < 24; j++ {
					eta := -2.3 + float64(i)*0.2
					phi := -3.1 + float64(j)*0.26
					cands = append(cands, pion(1, eta, phi))
				}
			}
			rho := b.Rho(b.FilterCandidates(cands))

			Convey("Then rho is positive", func() {
				So(rho, ShouldBeGreaterThan, 0)
			})
		})
	})
}
