package cluster

import (
	"math"
	"sort"

	"github.com/okian/topskim/internal/domain/kinematics"
	"gonum.org/v1/gonum/stat"
)

// ghostPt is the transverse momentum of a ghost. It is small enough to leave
// every real jet unchanged.
const ghostPt = 1e-100

// AreaDefinition describes the ghost grid used for active areas.
type AreaDefinition struct {
	// RapMax bounds the ghosts to |y| <= RapMax.
	RapMax float64
	// GhostArea is the requested area of one ghost cell.
	GhostArea float64
}

// Ghosts lays a regular grid of ghosts over the rapidity range and returns
// them with the exact cell area. The grid is fixed so repeated runs agree.
func (a AreaDefinition) Ghosts() ([]kinematics.FourVector, float64) {
	if a.GhostArea <= 0 || a.RapMax <= 0 {
		return nil, 0
	}
	step := math.Sqrt(a.GhostArea)
	nRap := int(math.Ceil(2 * a.RapMax / step))
	nPhi := int(math.Ceil(2 * math.Pi / step))
	dRap := 2 * a.RapMax / float64(nRap)
	dPhi := 2 * math.Pi / float64(nPhi)

	ghosts := make([]kinematics.FourVector, 0, nRap*nPhi)
	for i := 0; i < nRap; i++ {
		y := -a.RapMax + (float64(i)+0.5)*dRap
		for j := 0; j < nPhi; j++ {
			phi := -math.Pi + (float64(j)+0.5)*dPhi
			ghosts = append(ghosts, kinematics.FromCartesian(
				ghostPt*math.Cos(phi),
				ghostPt*math.Sin(phi),
				ghostPt*math.Sinh(y),
				ghostPt*math.Cosh(y),
			))
		}
	}
	return ghosts, dRap * dPhi
}

// ClusterWithArea clusters the particles together with the ghosts of area
// and reports the area of every jet, pure-ghost jets included.
func ClusterWithArea(particles []Particle, def Definition, area AreaDefinition) []Jet {
	ghosts, cell := area.Ghosts()
	all := make([]Particle, 0, len(particles)+len(ghosts))
	all = append(all, particles...)
	for _, g := range ghosts {
		all = append(all, Particle{P4: g, Index: -1})
	}
	return run(all, len(ghosts), cell, def)
}

// MedianDensity returns the median of pt/area over jets with positive area
// and |y| <= rapMax. Ghost momentum is ignored, so pure-ghost jets count as
// zero density. The result is zero when no jet qualifies.
func MedianDensity(jets []Jet, rapMax float64) float64 {
	densities := make([]float64, 0, len(jets))
	for _, j := range jets {
		if j.Area <= 0 || math.Abs(j.P4.Rapidity()) > rapMax {
			continue
		}
		var pt float64
		if len(j.Constituents) > 0 {
			pt = j.Pt()
		}
		densities = append(densities, pt/j.Area)
	}
	n := len(densities)
	if n == 0 {
		return 0
	}

	sort.Float64s(densities)
	// Empirical gives the lower middle element; even counts average it
	// with the upper one.
	lower := stat.Quantile(0.5, stat.Empirical, densities, nil)
	if n%2 == 1 {
		return lower
	}
	return (lower + densities[n/2]) / 2
}
