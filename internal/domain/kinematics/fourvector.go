// Package kinematics provides Lorentz four-vectors and the angular distances
// used by every selection stage.
package kinematics

import "math"

// etaLimit is returned for vectors lying on the beam axis.
const etaLimit = 1e10

// FourVector is a Lorentz vector in Cartesian components (Px, Py, Pz, E).
type FourVector struct {
	Px float64
	Py float64
	Pz float64
	E  float64
}

// FromCartesian builds a vector from momentum components and energy.
func FromCartesian(px, py, pz, e float64) FourVector {
	return FourVector{Px: px, Py: py, Pz: pz, E: e}
}

// PtEtaPhiM builds a vector from transverse momentum, pseudorapidity,
// azimuth and mass.
func PtEtaPhiM(pt, eta, phi, m float64) FourVector {
	pt = math.Abs(pt)
	px := pt * math.Cos(phi)
	py := pt * math.Sin(phi)
	pz := pt * math.Sinh(eta)
	e := math.Sqrt(px*px + py*py + pz*pz + m*m)
	return FourVector{Px: px, Py: py, Pz: pz, E: e}
}

// Pt returns the transverse momentum.
func (v FourVector) Pt() float64 { return math.Hypot(v.Px, v.Py) }

// P returns the magnitude of the three-momentum.
func (v FourVector) P() float64 { return math.Sqrt(v.Px*v.Px + v.Py*v.Py + v.Pz*v.Pz) }

// Phi returns the azimuth in (-pi, pi].
func (v FourVector) Phi() float64 {
	if v.Px == 0 && v.Py == 0 {
		return 0
	}
	return math.Atan2(v.Py, v.Px)
}

// Eta returns the pseudorapidity. Vectors along the beam axis get +-1e10.
func (v FourVector) Eta() float64 {
	pt := v.Pt()
	if pt == 0 {
		switch {
		case v.Pz > 0:
			return etaLimit
		case v.Pz < 0:
			return -etaLimit
		default:
			return 0
		}
	}
	return math.Asinh(v.Pz / pt)
}

// Rapidity returns the true rapidity 0.5*ln((E+pz)/(E-pz)).
func (v FourVector) Rapidity() float64 {
	num := v.E + v.Pz
	den := v.E - v.Pz
	if num <= 0 || den <= 0 {
		return v.Eta()
	}
	return 0.5 * math.Log(num/den)
}

// M2 returns the squared invariant mass.
func (v FourVector) M2() float64 {
	return v.E*v.E - v.Px*v.Px - v.Py*v.Py - v.Pz*v.Pz
}

// M returns the invariant mass; space-like vectors return a negative value.
func (v FourVector) M() float64 {
	m2 := v.M2()
	if m2 < 0 {
		return -math.Sqrt(-m2)
	}
	return math.Sqrt(m2)
}

// Add returns the component-wise sum.
func (v FourVector) Add(o FourVector) FourVector {
	return FourVector{Px: v.Px + o.Px, Py: v.Py + o.Py, Pz: v.Pz + o.Pz, E: v.E + o.E}
}

// Scale multiplies every component by f.
func (v FourVector) Scale(f float64) FourVector {
	return FourVector{Px: v.Px * f, Py: v.Py * f, Pz: v.Pz * f, E: v.E * f}
}

// DeltaPhi returns the azimuthal difference v-o wrapped into [-pi, pi).
func (v FourVector) DeltaPhi(o FourVector) float64 {
	return WrapPhi(v.Phi() - o.Phi())
}

// DeltaR returns the angular separation in the (eta, phi) plane.
func (v FourVector) DeltaR(o FourVector) float64 {
	return DeltaR(v.Eta(), v.Phi(), o.Eta(), o.Phi())
}

// WrapPhi maps an angle into [-pi, pi).
func WrapPhi(x float64) float64 {
	r := math.Mod(x+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// DeltaR computes sqrt(deta^2 + dphi^2) from raw coordinates.
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	deta := eta1 - eta2
	dphi := WrapPhi(phi1 - phi2)
	return math.Hypot(deta, dphi)
}
