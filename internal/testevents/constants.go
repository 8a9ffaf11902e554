package testevents

// Run ranges of the generated events.
const (
	ppRunMin = 262081
	ppRunMax = 262328
	hiRunMin = 326381
	hiRunMax = 327564
)

// Kinematic ranges.
const (
	leptonPtMin     = 8.0
	leptonPtRange   = 90.0
	leptonEtaMax    = 2.4
	softPtMin       = 0.3
	softPtRange     = 2.5
	softCountMin    = 5
	softCountRange  = 25
	jetTrackPtMin   = 1.0
	jetTrackPtRange = 18.0
	jetConeDR       = 0.25
	maxJets         = 3
	vertexSigma     = 7.0
)

// Trigger thresholds of the emulated paths.
const (
	muonTriggerPt     = 15.0
	electronTriggerPt = 20.0
)

// File permission constants.
const (
	directoryPermission = 0o750
	manifestName        = "fixture.json"
)
