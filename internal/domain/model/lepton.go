package model

import "github.com/okian/topskim/internal/domain/kinematics"

// PDG codes of the charged leptons.
const (
	ElectronPDG = 11
	MuonPDG     = 13
)

// Lepton is a selected muon or electron.
type Lepton struct {
	// Index points into the raw muon or electron list of the event.
	Index    int
	PDG      int
	P4       kinematics.FourVector
	Charge   int
	PassesID bool
}

// IsMuon reports whether the lepton is a muon.
func (l Lepton) IsMuon() bool { return l.PDG == MuonPDG }

// Flavor is the dilepton channel, encoded as the product of PDG codes.
type Flavor int

// Dilepton channels.
const (
	FlavorNone Flavor = 0
	FlavorEE   Flavor = ElectronPDG * ElectronPDG
	FlavorEM   Flavor = ElectronPDG * MuonPDG
	FlavorMM   Flavor = MuonPDG * MuonPDG
)

func (f Flavor) String() string {
	switch f {
	case FlavorEE:
		return "ee"
	case FlavorEM:
		return "em"
	case FlavorMM:
		return "mm"
	default:
		return "none"
	}
}

// SameFlavor reports whether both leptons share a flavour.
func (f Flavor) SameFlavor() bool { return f == FlavorEE || f == FlavorMM }

// Dilepton is the lepton pair chosen for an event. Leptons keep
// construction order, not momentum order.
type Dilepton struct {
	Leptons       [2]Lepton
	Flavor        Flavor
	P4            kinematics.FourVector
	ChargeProduct int
	Mass          float64
	InZWindow     bool
}

// OppositeSign reports whether the charges have opposite sign.
func (d Dilepton) OppositeSign() bool { return d.ChargeProduct < 0 }

// TrackJet is a jet clustered from charged particle-flow candidates.
type TrackJet struct {
	P4           kinematics.FourVector
	Constituents int
}
