// Package cuts holds the selection thresholds shared by every analysis stage.
//
// A Cuts value is passed by value into each component constructor so a run
// can override thresholds without touching package state.
package cuts

// Cuts groups every threshold of the dilepton selection.
type Cuts struct {
	// Leptons.
	LeptonPtMin   float64 `koanf:"lepton_pt_min"`
	LeptonEtaMax  float64 `koanf:"lepton_eta_max"`
	BarrelEtaMax  float64 `koanf:"barrel_eta_max"`
	EndcapEtaMin  float64 `koanf:"endcap_eta_min"`
	MuonMass      float64 `koanf:"muon_mass"`
	ElectronMass  float64 `koanf:"electron_mass"`
	ElectronScale float64 `koanf:"electron_scale_factor"`
	// ElectronScaleRun is the first run with the corrected electron energy scale.
	ElectronScaleRun int `koanf:"electron_scale_run"`

	// Dilepton.
	DileptonMassMin float64 `koanf:"dilepton_mass_min"`
	ZMass           float64 `koanf:"z_mass"`
	ZWindow         float64 `koanf:"z_window"`

	// Track jets and background density.
	CandidatePtMin  float64 `koanf:"candidate_pt_min"`
	CandidateEtaMax float64 `koanf:"candidate_eta_max"`
	TrackJetRadius  float64 `koanf:"track_jet_radius"`
	TrackJetEtaMax  float64 `koanf:"track_jet_eta_max"`
	MinConstituents int     `koanf:"min_constituents"`
	LeptonCleanDR   float64 `koanf:"lepton_clean_dr"`
	RhoRadius       float64 `koanf:"rho_radius"`
	RhoRapMax       float64 `koanf:"rho_rap_max"`

	// GhostArea sets the rho ghost grid. Cost per accepted event grows
	// roughly with the square of the ghost count, about a second at 0.01.
	GhostArea float64 `koanf:"ghost_area"`

	// Calorimeter jets and b tagging.
	CaloJetPtMin     float64 `koanf:"calo_jet_pt_min"`
	CaloJetEtaMax    float64 `koanf:"calo_jet_eta_max"`
	CaloJetMinTracks int     `koanf:"calo_jet_min_tracks"`
	MatchDR          float64 `koanf:"match_dr"`
	BTagWorkingPoint float64 `koanf:"btag_working_point"`

	// Event filters.
	VertexZMax float64 `koanf:"vertex_z_max"`
}

// Default returns the thresholds of the 2018 heavy-ion dilepton selection.
func Default() Cuts {
	return Cuts{
		LeptonPtMin:      20,
		LeptonEtaMax:     2.1,
		BarrelEtaMax:     1.4442,
		EndcapEtaMin:     1.5660,
		MuonMass:         0.1057,
		ElectronMass:     0.000511,
		ElectronScale:    6.8182e-2 / 5.9097e-2,
		ElectronScaleRun: 327402,

		DileptonMassMin: 20,
		ZMass:           91,
		ZWindow:         15,

		CandidatePtMin:  0.5,
		CandidateEtaMax: 2.5,
		TrackJetRadius:  0.4,
		TrackJetEtaMax:  2.4,
		MinConstituents: 2,
		LeptonCleanDR:   0.4,
		RhoRadius:       0.5,
		RhoRapMax:       2.4,
		GhostArea:       0.01,

		CaloJetPtMin:     30,
		CaloJetEtaMax:    2.4,
		CaloJetMinTracks: 2,
		MatchDR:          0.4,
		BTagWorkingPoint: 0.8838,

		VertexZMax: 15,
	}
}
