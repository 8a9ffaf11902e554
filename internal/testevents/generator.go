package testevents

import (
	"math"
	"math/rand/v2"

	"github.com/okian/topskim/internal/domain/model"
)

// channel picks the lepton content of an event.
type channel int

const (
	channelMM channel = iota
	channelEE
	channelEM
	channelSingle
	channelNone
)

// Generator produces reproducible synthetic collision events.
type Generator struct {
	rng  *rand.Rand
	pp   bool
	mc   bool
	last model.EventID
	next uint64
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64, pp, mc bool) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // fixtures need reproducibility, not secrecy
		pp:   pp,
		mc:   mc,
		next: 1,
	}
}

// Event generates the next event. When duplicate is set it reuses the id of
// the previous event.
func (g *Generator) Event(duplicate bool) model.Event {
	id := g.last
	if !duplicate || g.next == 1 {
		id = g.newID()
	}
	g.last = id

	ev := model.Event{
		Global: model.GlobalInfo{
			EventID: id,
			VertexZ: g.rng.NormFloat64() * vertexSigma,
			Weight:  1,
		},
	}
	if g.mc {
		ev.Global.Weight = 0.5 + g.rng.Float64()
	}

	g.addLeptons(&ev)
	g.addJets(&ev)
	g.addSoftParticles(&ev)
	ev.Trigger = g.trigger(ev)

	return ev
}

func (g *Generator) newID() model.EventID {
	runMin, runMax := hiRunMin, hiRunMax
	if g.pp {
		runMin, runMax = ppRunMin, ppRunMax
	}
	id := model.EventID{
		Run:   runMin + g.rng.IntN(runMax-runMin+1),
		Lumi:  1 + g.rng.IntN(500),
		Event: g.next,
	}
	g.next++
	return id
}

func (g *Generator) addLeptons(ev *model.Event) {
	switch channel(g.rng.IntN(int(channelNone) + 1)) {
	case channelMM:
		q := g.charge()
		ev.Muons = append(ev.Muons, g.muon(q), g.muon(g.pairCharge(q)))
	case channelEE:
		q := g.charge()
		ev.Electrons = append(ev.Electrons, g.electron(q), g.electron(g.pairCharge(q)))
	case channelEM:
		q := g.charge()
		ev.Muons = append(ev.Muons, g.muon(q))
		ev.Electrons = append(ev.Electrons, g.electron(g.pairCharge(q)))
	case channelSingle:
		if g.rng.IntN(2) == 0 {
			ev.Muons = append(ev.Muons, g.muon(g.charge()))
		} else {
			ev.Electrons = append(ev.Electrons, g.electron(g.charge()))
		}
	case channelNone:
	}
}

// charge returns ±1.
func (g *Generator) charge() int {
	if g.rng.IntN(2) == 0 {
		return -1
	}
	return 1
}

// pairCharge returns the partner charge, opposite four times out of five.
func (g *Generator) pairCharge(q int) int {
	if g.rng.IntN(5) == 0 {
		return q
	}
	return -q
}

func (g *Generator) leptonKinematics() (pt, eta, phi float64) {
	pt = leptonPtMin + g.rng.ExpFloat64()*leptonPtRange/3
	eta = (2*g.rng.Float64() - 1) * leptonEtaMax
	phi = (2*g.rng.Float64() - 1) * math.Pi
	return pt, eta, phi
}

// muon returns a muon that passes the tight identification nine times out
// of ten.
func (g *Generator) muon(q int) model.MuonRecord {
	pt, eta, phi := g.leptonKinematics()
	m := model.MuonRecord{
		Pt: pt, Eta: eta, Phi: phi, Charge: q,
		Type: 1<<1 | 1<<5, Chi2NDF: 0.5 + g.rng.Float64()*5, MuonHits: 5 + g.rng.IntN(30),
		Stations: 2 + g.rng.IntN(3), TrkLayers: 6 + g.rng.IntN(8), PixelHits: 1 + g.rng.IntN(4),
		InnerD0: g.rng.Float64() * 0.1, InnerDz: g.rng.Float64() * 0.3,
	}
	if g.rng.IntN(10) == 0 {
		m.Chi2NDF = 15
	}
	return m
}

// electron returns an electron that passes the tight identification nine
// times out of ten.
func (g *Generator) electron(q int) model.ElectronRecord {
	pt, eta, phi := g.leptonKinematics()
	e := model.ElectronRecord{
		Pt: pt, Eta: eta, Phi: phi, Charge: q,
		EoverPInv: g.rng.Float64() * 0.05, HoverE: g.rng.Float64() * 0.05,
		DEtaAtVtx: g.rng.Float64() * 0.004, DPhiAtVtx: g.rng.Float64() * 0.03,
		SigmaIEtaIEta: 0.005 + g.rng.Float64()*0.005,
		D0:            g.rng.Float64() * 0.02, Dz: g.rng.Float64() * 0.05,
	}
	if g.rng.IntN(10) == 0 {
		e.MissHits = 3
	}
	return e
}

// addJets places up to maxJets collimated sprays of charged hadrons, each
// with a calorimeter jet on its axis.
func (g *Generator) addJets(ev *model.Event) {
	n := g.rng.IntN(maxJets + 1)
	for i := 0; i < n; i++ {
		eta := (2*g.rng.Float64() - 1) * 2.2
		phi := (2*g.rng.Float64() - 1) * math.Pi

		tracks := 2 + g.rng.IntN(5)
		sumPt := 0.0
		for t := 0; t < tracks; t++ {
			pt := jetTrackPtMin + g.rng.Float64()*jetTrackPtRange
			sumPt += pt
			ev.Candidates = append(ev.Candidates, model.PFCandidate{
				ID:   211 * g.charge(),
				Pt:   pt,
				Eta:  eta + (2*g.rng.Float64()-1)*jetConeDR,
				Phi:  phi + (2*g.rng.Float64()-1)*jetConeDR,
				Mass: 0.1396,
			})
		}
		ev.Candidates = append(ev.Candidates, model.PFCandidate{ID: 22, Pt: 0.3 * sumPt, Eta: eta, Phi: phi})

		svTracks := g.rng.IntN(5)
		svMass := 0.0
		if svTracks > 0 {
			svMass = g.rng.Float64() * 5
		}
		ev.CaloJets = append(ev.CaloJets, model.CaloJet{
			Pt:           1.5 * sumPt,
			Eta:          eta,
			Phi:          phi,
			Mass:         0.1 * sumPt,
			Tracks:       tracks,
			Discriminant: g.rng.Float64(),
			SVTracks:     svTracks,
			SVMass:       svMass,
		})
	}
}

func (g *Generator) addSoftParticles(ev *model.Event) {
	n := softCountMin + g.rng.IntN(softCountRange)
	for i := 0; i < n; i++ {
		id := 211 * g.charge()
		if g.rng.IntN(4) == 0 {
			id = 130
		}
		ev.Candidates = append(ev.Candidates, model.PFCandidate{
			ID:   id,
			Pt:   softPtMin + g.rng.Float64()*softPtRange,
			Eta:  (2*g.rng.Float64() - 1) * 2.6,
			Phi:  (2*g.rng.Float64() - 1) * math.Pi,
			Mass: 0.1396,
		})
	}
}

// trigger emulates the single-lepton paths from the generated leptons.
func (g *Generator) trigger(ev model.Event) model.TriggerBits { //nolint:gocritic // hugeParam: read-only view
	var bits model.TriggerBits
	for _, m := range ev.Muons {
		if m.Pt > muonTriggerPt {
			bits.Muon = true
		}
	}
	for _, e := range ev.Electrons {
		if e.Pt > electronTriggerPt {
			bits.Electron = true
		}
	}
	return bits
}
