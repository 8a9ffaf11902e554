// Package dilepton assembles the lepton pair of an event from the tight
// lepton pools and the trigger decisions.
package dilepton

import (
	"math"

	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/leptons"
	"github.com/okian/topskim/internal/domain/model"
)

// Mode selects the required charge configuration.
type Mode int

const (
	// OppositeSign keeps pairs with a negative charge product.
	OppositeSign Mode = iota
	// SameSign keeps pairs with a positive charge product.
	SameSign
)

func (m Mode) String() string {
	if m == SameSign {
		return "same-sign"
	}
	return "opposite-sign"
}

// Builder picks the dilepton of an event.
type Builder struct {
	cuts cuts.Cuts
	mode Mode
}

// NewBuilder creates a builder for the given thresholds and charge mode.
func NewBuilder(c cuts.Cuts, mode Mode) *Builder {
	return &Builder{cuts: c, mode: mode}
}

// Build returns the pair of the event, trying mm, then em, then ee.
// The verdict is VerdictAccepted when the pair passes the mass and charge
// requirements.
func (b *Builder) Build(sel leptons.Selection, trig model.TriggerBits) (model.Dilepton, model.Verdict) {
	if sel.Tight() < 2 {
		return model.Dilepton{}, model.VerdictTooFewLeptons
	}

	mu, el := sel.TightMuons, sel.TightElectrons
	var d model.Dilepton
	switch {
	case len(mu) >= 2 && trig.Muon:
		d = b.pair(mu[0], mu[1], model.FlavorMM)
	case len(mu) >= 1 && len(el) >= 1 && trig.Any():
		d = b.pair(mu[0], el[0], model.FlavorEM)
	case len(el) >= 2 && trig.Electron:
		d = b.pair(el[0], el[1], model.FlavorEE)
	default:
		return model.Dilepton{}, model.VerdictNoPair
	}

	if d.Mass < b.cuts.DileptonMassMin {
		return d, model.VerdictLowMass
	}
	if d.OppositeSign() != (b.mode == OppositeSign) {
		return d, model.VerdictChargeMismatch
	}
	return d, model.VerdictAccepted
}

func (b *Builder) pair(l1, l2 model.Lepton, flavor model.Flavor) model.Dilepton {
	p4 := l1.P4.Add(l2.P4)
	mass := p4.M()
	return model.Dilepton{
		Leptons:       [2]model.Lepton{l1, l2},
		Flavor:        flavor,
		P4:            p4,
		ChargeProduct: l1.Charge * l2.Charge,
		Mass:          mass,
		InZWindow:     math.Abs(mass-b.cuts.ZMass) < b.cuts.ZWindow,
	}
}
