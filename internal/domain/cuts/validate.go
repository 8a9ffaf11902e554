package cuts

import (
	"errors"
	"fmt"
)

// ErrInvalidCuts marks a threshold set that cannot drive a selection.
var ErrInvalidCuts = errors.New("invalid cuts")

// Validate checks the thresholds that would make a stage ill-defined.
func (c Cuts) Validate() error {
	switch {
	case c.LeptonEtaMax <= 0:
		return fmt.Errorf("%w: lepton_eta_max must be positive", ErrInvalidCuts)
	case c.BarrelEtaMax >= c.EndcapEtaMin:
		return fmt.Errorf("%w: barrel_eta_max must be below endcap_eta_min", ErrInvalidCuts)
	case c.TrackJetRadius <= 0 || c.RhoRadius <= 0:
		return fmt.Errorf("%w: jet radii must be positive", ErrInvalidCuts)
	case c.GhostArea <= 0:
		return fmt.Errorf("%w: ghost_area must be positive", ErrInvalidCuts)
	case c.MinConstituents < 1:
		return fmt.Errorf("%w: min_constituents must be at least 1", ErrInvalidCuts)
	case c.ElectronScale <= 0:
		return fmt.Errorf("%w: electron_scale_factor must be positive", ErrInvalidCuts)
	}
	return nil
}
