package source

import "github.com/okian/topskim/internal/domain/model"

// Table file names inside an input directory.
const (
	LeptonTable    = "leptons.jsonl"
	CandidateTable = "pfcands.jsonl"
	JetTable       = "jets.jsonl"
	GlobalTable    = "global.jsonl"
	TriggerTable   = "trigger.jsonl"
)

// Tables lists every table in read order.
var Tables = []string{LeptonTable, CandidateTable, JetTable, GlobalTable, TriggerTable} //nolint:gochecknoglobals // fixed layout

// Trigger path names per running mode.
const (
	ppMuonPath     = "HLT_HIL3Mu20_v1"
	ppElectronPath = "HLT_HIEle20_WPLoose_Gsf_v1"
	hiMuonPath     = "HLT_HIL3Mu15_v1"
	hiElectronPath = "HLT_HIEle20Gsf_v1"
)

// TriggerPaths returns the muon and electron path names of a running mode.
func TriggerPaths(isPP bool) (muon, electron string) {
	if isPP {
		return ppMuonPath, ppElectronPath
	}
	return hiMuonPath, hiElectronPath
}

// leptonRow is one line of the lepton table.
type leptonRow struct {
	Muons     []model.MuonRecord     `json:"muons"`
	Electrons []model.ElectronRecord `json:"electrons"`
}

// candidateRow is one line of the particle-flow table.
type candidateRow struct {
	Candidates []model.PFCandidate `json:"pfcands"`
}

// jetRow is one line of the jet table.
type jetRow struct {
	Jets []model.CaloJet `json:"jets"`
}

// triggerRow maps path names to their decision.
type triggerRow map[string]int
