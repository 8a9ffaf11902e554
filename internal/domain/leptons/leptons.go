// Package leptons selects muons and electrons passing kinematic and
// identification requirements.
package leptons

import (
	"math"

	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/kinematics"
	"github.com/okian/topskim/internal/domain/model"
)

// Muon identification thresholds of the tight working point.
const (
	muonGlobalBit    = 1
	muonPFBit        = 5
	muonChi2NDFMax   = 10
	muonStationsMin  = 1
	muonTrkLayersMin = 5
	muonD0Max        = 0.2
	muonDzMax        = 0.5
)

// Electron identification thresholds.
const (
	electronMissHitsMax  = 1
	electronEoverPInvMax = 0.3
	electronHoverEMax    = 0.2
	electronDEtaMax      = 0.1
	electronDPhiMax      = 0.2
	electronSieieMax     = 0.05
	electronD0Max        = 0.1
	electronDzMax        = 0.5
)

// Selection holds the lepton pools of one event. Every slice keeps input order.
type Selection struct {
	LooseMuons     []model.Lepton
	TightMuons     []model.Lepton
	LooseElectrons []model.Lepton
	TightElectrons []model.Lepton
}

// Tight returns the number of identified leptons of both flavours.
func (s Selection) Tight() int { return len(s.TightMuons) + len(s.TightElectrons) }

// Selector applies the lepton requirements.
type Selector struct {
	cuts cuts.Cuts
}

// NewSelector creates a selector for the given thresholds.
func NewSelector(c cuts.Cuts) *Selector {
	return &Selector{cuts: c}
}

// Select builds the loose and tight pools for both flavours.
// Electrons of heavy-ion runs before the energy-scale change are rescaled
// before any kinematic requirement.
func (s *Selector) Select(muons []model.MuonRecord, electrons []model.ElectronRecord, run int, isPP bool) Selection {
	var sel Selection

	for i, mu := range muons {
		p4 := kinematics.PtEtaPhiM(mu.Pt, mu.Eta, mu.Phi, s.cuts.MuonMass)
		if math.Abs(p4.Eta()) > s.cuts.LeptonEtaMax || p4.Pt() < s.cuts.LeptonPtMin {
			continue
		}
		l := model.Lepton{Index: i, PDG: model.MuonPDG, P4: p4, Charge: mu.Charge}
		sel.LooseMuons = append(sel.LooseMuons, l)

		if !TightMuon(mu) {
			continue
		}
		l.PassesID = true
		sel.TightMuons = append(sel.TightMuons, l)
	}

	rescale := !isPP && run < s.cuts.ElectronScaleRun
	for i, el := range electrons {
		p4 := kinematics.PtEtaPhiM(el.Pt, el.Eta, el.Phi, s.cuts.ElectronMass)
		if rescale {
			p4 = p4.Scale(s.cuts.ElectronScale)
		}
		absEta := math.Abs(p4.Eta())
		if absEta > s.cuts.LeptonEtaMax {
			continue
		}
		if absEta > s.cuts.BarrelEtaMax && absEta < s.cuts.EndcapEtaMin {
			continue
		}
		if p4.Pt() < s.cuts.LeptonPtMin {
			continue
		}
		l := model.Lepton{Index: i, PDG: model.ElectronPDG, P4: p4, Charge: el.Charge}
		sel.LooseElectrons = append(sel.LooseElectrons, l)

		if !TightElectron(el) {
			continue
		}
		l.PassesID = true
		sel.TightElectrons = append(sel.TightElectrons, l)
	}

	return sel
}

// TightMuon reports whether a muon passes the tight identification.
func TightMuon(mu model.MuonRecord) bool {
	if (mu.Type>>muonGlobalBit)&1 == 0 || (mu.Type>>muonPFBit)&1 == 0 {
		return false
	}
	if mu.Chi2NDF >= muonChi2NDFMax || mu.MuonHits <= 0 {
		return false
	}
	if mu.Stations <= muonStationsMin || mu.TrkLayers <= muonTrkLayersMin || mu.PixelHits == 0 {
		return false
	}
	return math.Abs(mu.InnerD0) < muonD0Max && math.Abs(mu.InnerDz) < muonDzMax
}

// TightElectron reports whether an electron passes the identification.
func TightElectron(el model.ElectronRecord) bool {
	switch {
	case el.MissHits > electronMissHitsMax:
		return false
	case math.Abs(el.EoverPInv) >= electronEoverPInvMax:
		return false
	case el.HoverE >= electronHoverEMax:
		return false
	case math.Abs(el.DEtaAtVtx) >= electronDEtaMax:
		return false
	case math.Abs(el.DPhiAtVtx) >= electronDPhiMax:
		return false
	case el.SigmaIEtaIEta >= electronSieieMax:
		return false
	case math.Abs(el.D0) >= electronD0Max:
		return false
	}
	return math.Abs(el.Dz) < electronDzMax
}
