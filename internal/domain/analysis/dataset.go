package analysis

import (
	"fmt"
	"strings"
)

// Dataset is the primary dataset the input was skimmed from. It decides which
// trigger a data event must carry so that no event is counted twice.
type Dataset int

// Primary datasets.
const (
	DatasetAny Dataset = iota
	DatasetSingleMuon
	DatasetSingleElectron
)

// Path markers of the skimmed primary datasets.
const (
	muonSkimMarker     = "SkimMuons"
	electronSkimMarker = "SkimElectrons"
)

func (d Dataset) String() string {
	switch d {
	case DatasetSingleMuon:
		return "muon"
	case DatasetSingleElectron:
		return "electron"
	default:
		return "any"
	}
}

// ParseDataset maps "muon", "electron" and "" (or "any") to a Dataset.
func ParseDataset(s string) (Dataset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return DatasetAny, nil
	case "muon", "mu":
		return DatasetSingleMuon, nil
	case "electron", "ele", "e":
		return DatasetSingleElectron, nil
	default:
		return DatasetAny, fmt.Errorf("%w: %q", ErrUnknownDataset, s)
	}
}

// DatasetFromPath infers the dataset from skim markers in an input path.
func DatasetFromPath(path string) Dataset {
	switch {
	case strings.Contains(path, muonSkimMarker):
		return DatasetSingleMuon
	case strings.Contains(path, electronSkimMarker):
		return DatasetSingleElectron
	default:
		return DatasetAny
	}
}

// vetoes reports whether a data event with the given trigger decisions
// belongs to another dataset. Events firing both paths are kept only in
// the muon dataset.
func (d Dataset) vetoes(muon, electron bool) bool {
	switch d {
	case DatasetSingleMuon:
		return !muon
	case DatasetSingleElectron:
		return !electron || muon
	default:
		return false
	}
}
