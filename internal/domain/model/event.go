// Package model contains domain models passed between layers.
package model

import (
	"fmt"

	"github.com/okian/topskim/internal/domain/kinematics"
)

// EventID identifies a collision event across input files.
type EventID struct {
	Run   int    `json:"run"`
	Lumi  int    `json:"lumi"`
	Event uint64 `json:"evt"`
}

// Key renders the id for deduplication.
func (id EventID) Key() string {
	return fmt.Sprintf("%d:%d:%d", id.Run, id.Lumi, id.Event)
}

// GlobalInfo carries event-level quantities.
type GlobalInfo struct {
	EventID
	VertexZ float64 `json:"vz"`
	Weight  float64 `json:"weight"`
}

// TriggerBits holds the decisions of the muon and electron paths.
type TriggerBits struct {
	Muon     bool
	Electron bool
}

// Any reports whether at least one path fired.
func (t TriggerBits) Any() bool { return t.Muon || t.Electron }

// MuonRecord holds the raw reconstruction fields of one muon.
type MuonRecord struct {
	Pt        float64 `json:"pt"`
	Eta       float64 `json:"eta"`
	Phi       float64 `json:"phi"`
	Charge    int     `json:"charge"`
	Type      int     `json:"type"`
	Chi2NDF   float64 `json:"chi2ndf"`
	MuonHits  int     `json:"muon_hits"`
	Stations  int     `json:"stations"`
	TrkLayers int     `json:"trk_layers"`
	PixelHits int     `json:"pixel_hits"`
	InnerD0   float64 `json:"inner_d0"`
	InnerDz   float64 `json:"inner_dz"`
}

// ElectronRecord holds the raw reconstruction fields of one electron.
type ElectronRecord struct {
	Pt            float64 `json:"pt"`
	Eta           float64 `json:"eta"`
	Phi           float64 `json:"phi"`
	Charge        int     `json:"charge"`
	MissHits      int     `json:"miss_hits"`
	EoverPInv     float64 `json:"eoverp_inv"`
	HoverE        float64 `json:"hovere"`
	DEtaAtVtx     float64 `json:"deta_at_vtx"`
	DPhiAtVtx     float64 `json:"dphi_at_vtx"`
	SigmaIEtaIEta float64 `json:"sigma_ietaieta"`
	D0            float64 `json:"d0"`
	Dz            float64 `json:"dz"`
}

// PFCandidate is a particle-flow candidate. ID is the signed PDG code.
type PFCandidate struct {
	ID   int     `json:"id"`
	Pt   float64 `json:"pt"`
	Eta  float64 `json:"eta"`
	Phi  float64 `json:"phi"`
	Mass float64 `json:"m"`
}

// CaloJet is a pre-reconstructed jet with heavy-flavour tagging inputs.
type CaloJet struct {
	Pt           float64 `json:"pt"`
	Eta          float64 `json:"eta"`
	Phi          float64 `json:"phi"`
	Mass         float64 `json:"m"`
	Tracks       int     `json:"ntrk"`
	Discriminant float64 `json:"csv"`
	SVTracks     int     `json:"svtx_ntrk"`
	SVMass       float64 `json:"svtx_m"`
}

// P4 returns the jet four-momentum.
func (j CaloJet) P4() kinematics.FourVector {
	return kinematics.PtEtaPhiM(j.Pt, j.Eta, j.Phi, j.Mass)
}

// Event is one synchronized record across all input tables.
type Event struct {
	Seq        int
	Global     GlobalInfo
	Trigger    TriggerBits
	Muons      []MuonRecord
	Electrons  []ElectronRecord
	Candidates []PFCandidate
	CaloJets   []CaloJet
}
