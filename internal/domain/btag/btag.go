// Package btag matches calorimeter jets to track jets and ranks jets by their
// heavy-flavour tagging information.
package btag

import (
	"math"
	"sort"

	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/model"
)

// JetTagInfo is the tagging record of one jet. JetIndex points into the
// track-jet list for matched jets and into the calorimeter-jet list for
// selected jets.
type JetTagInfo struct {
	JetIndex     int
	SVTracks     int
	SVMass       float64
	Discriminant float64
}

// Tagging is the outcome of matching one event.
type Tagging struct {
	// Matched holds one entry per calorimeter jet with a nearby track jet.
	Matched []JetTagInfo
	// Selected holds calorimeter jets passing the kinematic and lepton
	// isolation requirements.
	Selected []JetTagInfo
	NJets    int
	NTagged  int
}

// Matcher performs the jet matching.
type Matcher struct {
	cuts cuts.Cuts
}

// NewMatcher creates a matcher for the given thresholds.
func NewMatcher(c cuts.Cuts) *Matcher {
	return &Matcher{cuts: c}
}

// Match associates every calorimeter jet with enough tracks to the first
// track jet within the matching radius, and independently collects the
// calorimeter jets used for counting. Both lists come back ranked.
func (m *Matcher) Match(caloJets []model.CaloJet, trackJets []model.TrackJet, leptons [2]model.Lepton) Tagging {
	var t Tagging
	for i, cj := range caloJets {
		if cj.Tracks < m.cuts.CaloJetMinTracks {
			continue
		}
		p4 := cj.P4()

		for k, tj := range trackJets {
			if p4.DeltaR(tj.P4) > m.cuts.MatchDR {
				continue
			}
			t.Matched = append(t.Matched, tagInfo(k, cj))
			break
		}

		if cj.Pt < m.cuts.CaloJetPtMin || math.Abs(cj.Eta) > m.cuts.CaloJetEtaMax {
			continue
		}
		if p4.DeltaR(leptons[0].P4) < m.cuts.MatchDR || p4.DeltaR(leptons[1].P4) < m.cuts.MatchDR {
			continue
		}
		t.Selected = append(t.Selected, tagInfo(i, cj))
		t.NJets++
		if cj.Discriminant > m.cuts.BTagWorkingPoint {
			t.NTagged++
		}
	}

	Rank(t.Matched)
	Rank(t.Selected)
	return t
}

func tagInfo(idx int, cj model.CaloJet) JetTagInfo {
	return JetTagInfo{
		JetIndex:     idx,
		SVTracks:     cj.SVTracks,
		SVMass:       cj.SVMass,
		Discriminant: cj.Discriminant,
	}
}

// Rank orders tag records by secondary-vertex track count, then by
// discriminant, both descending. Full ties keep their input order.
func Rank(infos []JetTagInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.SVTracks != b.SVTracks {
			return a.SVTracks > b.SVTracks
		}
		return a.Discriminant > b.Discriminant
	})
}
