// Package cluster groups particles into jets with sequential recombination
// (kt, Cambridge/Aachen and anti-kt, E-scheme). Plain inclusive clustering
// runs on go-hep fastjet. Active jet areas come from a grid of ghost
// particles clustered by the recombination loop in this package, since
// fastjet's area sequence is not implemented.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/topskim/internal/domain/kinematics"
	"go-hep.org/x/hep/fastjet"
)

// Algorithm selects the transverse-momentum exponent of the distance measure.
type Algorithm int

// Supported algorithms.
const (
	Kt Algorithm = iota
	CambridgeAachen
	AntiKt
)

func (a Algorithm) String() string {
	switch a {
	case Kt:
		return "kt"
	case CambridgeAachen:
		return "cambridge-aachen"
	case AntiKt:
		return "anti-kt"
	default:
		return "unknown"
	}
}

func (a Algorithm) jetAlgorithm() fastjet.JetAlgorithm {
	switch a {
	case Kt:
		return fastjet.KtAlgorithm
	case CambridgeAachen:
		return fastjet.CambridgeAlgorithm
	default:
		return fastjet.AntiKtAlgorithm
	}
}

// exponent returns p in d_iB = pt^(2p).
func (a Algorithm) exponent() float64 {
	switch a {
	case Kt:
		return 1
	case AntiKt:
		return -1
	default:
		return 0
	}
}

// Definition is a clustering algorithm with its radius parameter.
type Definition struct {
	Algorithm Algorithm
	R         float64
}

// Particle is a clustering input. Index is the caller's index and is
// reported back in Jet.Constituents.
type Particle struct {
	P4    kinematics.FourVector
	Index int
}

// Jet is an inclusive jet.
type Jet struct {
	P4 kinematics.FourVector
	// Constituents holds the indices of the real particles in the jet.
	Constituents []int
	// Ghosts counts clustered ghost particles; zero without an area definition.
	Ghosts int
	// Area is Ghosts times the ghost area.
	Area float64
}

// Pt returns the jet transverse momentum.
func (j Jet) Pt() float64 { return j.P4.Pt() }

// pseudoJet is the working state of one cluster during recombination.
type pseudoJet struct {
	p4     kinematics.FourVector
	rap    float64
	phi    float64
	diB    float64
	nn     int
	nnDist float64
	parts  []int
	ghosts int
	active bool
}

func newPseudoJet(p4 kinematics.FourVector, exp float64) pseudoJet {
	pj := pseudoJet{p4: p4, active: true, nn: -1}
	pj.refresh(exp)
	return pj
}

func (pj *pseudoJet) refresh(exp float64) {
	pj.rap = pj.p4.Rapidity()
	pj.phi = pj.p4.Phi()
	pt2 := pj.p4.Px*pj.p4.Px + pj.p4.Py*pj.p4.Py
	switch {
	case exp == 0:
		pj.diB = 1
	case pt2 == 0 && exp > 0:
		pj.diB = 0
	case pt2 == 0:
		pj.diB = math.Inf(1)
	default:
		pj.diB = math.Pow(pt2, exp)
	}
}

func deltaR2(a, b *pseudoJet) float64 {
	dy := a.rap - b.rap
	dphi := kinematics.WrapPhi(a.phi - b.phi)
	return dy*dy + dphi*dphi
}

// Cluster runs the inclusive clustering of particles with fastjet and
// returns the jets sorted by descending transverse momentum. A non-positive
// radius makes every particle its own jet.
func Cluster(particles []Particle, def Definition) ([]Jet, error) {
	if len(particles) == 0 {
		return nil, nil
	}
	if def.R <= 0 {
		return run(particles, 0, 0, def), nil
	}

	in := make([]fastjet.Jet, len(particles))
	for i, p := range particles {
		in[i] = fastjet.NewJet(p.P4.Px, p.P4.Py, p.P4.Pz, p.P4.E)
		in[i].UserInfo = p.Index
	}

	jetDef := fastjet.NewJetDefinition(def.Algorithm.jetAlgorithm(), def.R, fastjet.EScheme, fastjet.BestStrategy)
	cs, err := fastjet.NewClusterSequence(in, jetDef)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", def.Algorithm, err)
	}
	inclusive, err := cs.InclusiveJets(0)
	if err != nil {
		return nil, fmt.Errorf("inclusive %s jets: %w", def.Algorithm, err)
	}

	jets := make([]Jet, 0, len(inclusive))
	for i := range inclusive {
		fj := &inclusive[i]
		parts, err := cs.Constituents(fj)
		if err != nil {
			return nil, fmt.Errorf("constituents of %s jet: %w", def.Algorithm, err)
		}
		idx := make([]int, 0, len(parts))
		for _, c := range parts {
			if k, ok := c.UserInfo.(int); ok {
				idx = append(idx, k)
			}
		}
		sort.Ints(idx)
		jets = append(jets, Jet{
			P4:           kinematics.FromCartesian(fj.Px(), fj.Py(), fj.Pz(), fj.E()),
			Constituents: idx,
		})
	}

	sortByPt(jets)
	return jets, nil
}

// run clusters the real particles followed by nGhosts ghosts appended by the
// caller. Entries at or past len(particles)-nGhosts are ghosts. The nearest
// neighbour of every cluster is cached, so a step costs a linear scan.
func run(particles []Particle, nGhosts int, ghostArea float64, def Definition) []Jet {
	exp := def.Algorithm.exponent()
	nReal := len(particles) - nGhosts

	pjs := make([]pseudoJet, len(particles))
	for i, p := range particles {
		pjs[i] = newPseudoJet(p.P4, exp)
		if i < nReal {
			pjs[i].parts = []int{p.Index}
		} else {
			pjs[i].ghosts = 1
		}
	}

	var jets []Jet
	emit := func(pj *pseudoJet) {
		jets = append(jets, Jet{
			P4:           pj.p4,
			Constituents: pj.parts,
			Ghosts:       pj.ghosts,
			Area:         float64(pj.ghosts) * ghostArea,
		})
		pj.active = false
	}

	if def.R <= 0 {
		for i := range pjs {
			emit(&pjs[i])
		}
		sortByPt(jets)
		return jets
	}
	r2 := def.R * def.R

	for i := range pjs {
		findNeighbour(pjs, i)
	}

	// Each step either emits a jet or merges two clusters.
	for n := len(pjs); n > 0; n-- {
		best, bestDist := -1, math.Inf(1)
		for i := range pjs {
			if !pjs[i].active {
				continue
			}
			d := pjs[i].diB * math.Min(pjs[i].nnDist, r2) / r2
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}

		a := &pjs[best]
		if a.nn < 0 || a.nnDist >= r2 {
			emit(a)
			refreshNeighbours(pjs, best, -1)
			continue
		}

		other := a.nn
		b := &pjs[other]
		a.p4 = a.p4.Add(b.p4)
		a.parts = append(a.parts, b.parts...)
		a.ghosts += b.ghosts
		a.refresh(exp)
		b.active = false
		b.parts = nil

		refreshNeighbours(pjs, best, other)
		// The merged cluster lives in slot best. It may be the new nearest
		// neighbour of any surviving cluster.
		findNeighbour(pjs, best)
		for k := range pjs {
			if k == best || !pjs[k].active {
				continue
			}
			if d := deltaR2(&pjs[k], a); d < pjs[k].nnDist {
				pjs[k].nn, pjs[k].nnDist = best, d
			}
		}
	}

	sortByPt(jets)
	return jets
}

// findNeighbour sets the geometric nearest neighbour of slot i.
func findNeighbour(pjs []pseudoJet, i int) {
	pj := &pjs[i]
	pj.nn, pj.nnDist = -1, math.Inf(1)
	for k := range pjs {
		if k == i || !pjs[k].active {
			continue
		}
		if d := deltaR2(pj, &pjs[k]); d < pj.nnDist {
			pj.nn, pj.nnDist = k, d
		}
	}
}

// refreshNeighbours recomputes the neighbour of every active cluster that
// pointed at slot a or b. Pass b < 0 when only a changed.
func refreshNeighbours(pjs []pseudoJet, a, b int) {
	for k := range pjs {
		if !pjs[k].active || k == a {
			continue
		}
		if pjs[k].nn == a || (b >= 0 && pjs[k].nn == b) {
			findNeighbour(pjs, k)
		}
	}
}

func sortByPt(jets []Jet) {
	sort.SliceStable(jets, func(i, j int) bool {
		return jets[i].Pt() > jets[j].Pt()
	})
}
