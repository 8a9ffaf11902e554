// Package category derives the named categories an accepted event is
// accumulated under.
package category

import (
	"math"
	"slices"

	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/model"
)

// Detector regions of the lepton pair.
const (
	RegionBB = "BB"
	RegionEB = "EB"
	RegionEE = "EE"
)

// Run-period suffixes used outside pp running.
const (
	SuffixBefore = "before"
	SuffixAfter  = "after"
	suffixZ      = "Z"
)

// Set is an ordered list of category labels.
type Set []string

// Contains reports whether label is in the set.
func (s Set) Contains(label string) bool { return slices.Contains(s, label) }

// Input carries what the categorizer needs from an event.
type Input struct {
	Dilepton model.Dilepton
	Run      int
	IsPP     bool
}

// Categorizer builds category sets.
type Categorizer struct {
	cuts cuts.Cuts
}

// NewCategorizer creates a categorizer for the given thresholds.
func NewCategorizer(c cuts.Cuts) *Categorizer {
	return &Categorizer{cuts: c}
}

// ZTagged reports whether the pair counts as a Z candidate. Only same-flavour
// pairs qualify.
func ZTagged(d model.Dilepton) bool {
	return d.Flavor.SameFlavor() && d.InZWindow
}

// Region returns the detector region label of the pair.
func (c *Categorizer) Region(d model.Dilepton) string {
	e1 := math.Abs(d.Leptons[0].P4.Eta()) > c.cuts.EndcapEtaMin
	e2 := math.Abs(d.Leptons[1].P4.Eta()) > c.cuts.EndcapEtaMin
	switch {
	case e1 && e2:
		return RegionEE
	case e1 || e2:
		return RegionEB
	default:
		return RegionBB
	}
}

// Categorize returns the labels of the event in a fixed order: flavour,
// Z, region, region Z. Outside pp running every label is followed by its
// run-period variant.
func (c *Categorizer) Categorize(in Input) Set {
	flavor := in.Dilepton.Flavor.String()
	region := flavor + c.Region(in.Dilepton)
	z := ZTagged(in.Dilepton)

	base := Set{flavor}
	if z {
		base = append(base, flavor+suffixZ)
	}
	base = append(base, region)
	if z {
		base = append(base, region+suffixZ)
	}

	if in.IsPP {
		return base
	}

	period := SuffixBefore
	if in.Run >= c.cuts.ElectronScaleRun {
		period = SuffixAfter
	}
	out := make(Set, 0, 2*len(base))
	for _, label := range base {
		out = append(out, label, label+period)
	}
	return out
}
