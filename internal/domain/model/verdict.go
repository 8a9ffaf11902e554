package model

// Verdict names the outcome of the selection for one event: either
// VerdictAccepted or the first stage the event failed.
type Verdict int

// Selection verdicts, in stage order.
const (
	VerdictAccepted Verdict = iota
	VerdictNoTrigger
	VerdictDatasetVeto
	VerdictVertex
	VerdictTooFewLeptons
	VerdictNoPair
	VerdictLowMass
	VerdictChargeMismatch
)

// Verdicts lists every verdict in stage order.
var Verdicts = []Verdict{ //nolint:gochecknoglobals // fixed enumeration
	VerdictAccepted,
	VerdictNoTrigger,
	VerdictDatasetVeto,
	VerdictVertex,
	VerdictTooFewLeptons,
	VerdictNoPair,
	VerdictLowMass,
	VerdictChargeMismatch,
}

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictNoTrigger:
		return "no_trigger"
	case VerdictDatasetVeto:
		return "dataset_veto"
	case VerdictVertex:
		return "vertex"
	case VerdictTooFewLeptons:
		return "too_few_leptons"
	case VerdictNoPair:
		return "no_pair"
	case VerdictLowMass:
		return "low_mass"
	case VerdictChargeMismatch:
		return "charge_mismatch"
	default:
		return "unknown"
	}
}

// MarshalText renders the verdict name, so verdict-keyed maps encode as JSON objects.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
