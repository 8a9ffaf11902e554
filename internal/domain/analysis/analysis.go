// Package analysis runs the per-event selection: trigger and dataset
// requirements, lepton and dilepton selection, track jets, jet matching and
// categorization.
package analysis

import (
	"context"
	"math"

	"github.com/okian/topskim/internal/domain/btag"
	"github.com/okian/topskim/internal/domain/category"
	"github.com/okian/topskim/internal/domain/cuts"
	"github.com/okian/topskim/internal/domain/dilepton"
	"github.com/okian/topskim/internal/domain/leptons"
	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/internal/domain/trackjets"
	"github.com/okian/topskim/pkg/logger"
)

// Result is everything derived from one event. Fields past Verdict are
// filled up to the stage the event reached.
type Result struct {
	Seq     int
	ID      model.EventID
	Verdict model.Verdict
	// Weight is the event weight in simulation and 1 for data.
	Weight float64

	Selection  leptons.Selection
	Dilepton   model.Dilepton
	TrackJets  []model.TrackJet
	Rho        float64
	Tagging    btag.Tagging
	Categories category.Set
	// CaloJets are the calorimeter jets of the event, indexed by
	// Tagging.Selected.
	CaloJets []model.CaloJet
}

// Accepted reports whether the event passed the selection.
func (r Result) Accepted() bool { return r.Verdict == model.VerdictAccepted }

// TaggedTrackJets counts matched track jets above the tagging working point.
func (r Result) TaggedTrackJets(workingPoint float64) int {
	n := 0
	for _, m := range r.Tagging.Matched {
		if m.Discriminant > workingPoint {
			n++
		}
	}
	return n
}

// Analyzer processes events one at a time. It holds no per-event state and
// is safe for concurrent use.
type Analyzer struct {
	cuts     cuts.Cuts
	isMC     bool
	isPP     bool
	sameSign bool
	dataset  Dataset
	logger   logger.Logger

	leptons  *leptons.Selector
	pairs    *dilepton.Builder
	jets     *trackjets.Builder
	matcher  *btag.Matcher
	category *category.Categorizer
}

// NewAnalyzer creates an analyzer with configuration options.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{cuts: cuts.Default()}

	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("analysis")
	}

	mode := dilepton.OppositeSign
	if a.sameSign {
		mode = dilepton.SameSign
	}
	a.leptons = leptons.NewSelector(a.cuts)
	a.pairs = dilepton.NewBuilder(a.cuts, mode)
	a.jets = trackjets.NewBuilder(a.cuts)
	a.matcher = btag.NewMatcher(a.cuts)
	a.category = category.NewCategorizer(a.cuts)

	return a
}

// Cuts returns the thresholds in use.
func (a *Analyzer) Cuts() cuts.Cuts { return a.cuts }

// IsMC reports whether the analyzer treats input as simulation.
func (a *Analyzer) IsMC() bool { return a.isMC }

// Process runs the selection on one event. Events failing a stage come back
// with the verdict of that stage.
func (a *Analyzer) Process(ctx context.Context, ev model.Event) Result {
	r := Result{Seq: ev.Seq, ID: ev.Global.EventID, Weight: 1}
	if a.isMC {
		r.Weight = ev.Global.Weight
	}

	if !ev.Trigger.Any() {
		return a.reject(ctx, r, model.VerdictNoTrigger)
	}
	if !a.isMC && a.dataset.vetoes(ev.Trigger.Muon, ev.Trigger.Electron) {
		return a.reject(ctx, r, model.VerdictDatasetVeto)
	}
	if !a.isPP && math.Abs(ev.Global.VertexZ) > a.cuts.VertexZMax {
		return a.reject(ctx, r, model.VerdictVertex)
	}

	r.Selection = a.leptons.Select(ev.Muons, ev.Electrons, ev.Global.Run, a.isPP)
	d, verdict := a.pairs.Build(r.Selection, ev.Trigger)
	r.Dilepton = d
	if verdict != model.VerdictAccepted {
		return a.reject(ctx, r, verdict)
	}

	particles := a.jets.FilterCandidates(ev.Candidates)
	jets, err := a.jets.Build(particles, d.Leptons)
	if err != nil {
		a.logger.Error(ctx, "track jet clustering failed",
			logger.Int("seq", r.Seq),
			logger.String("event", r.ID.Key()),
			logger.Error(err),
		)
	}
	r.TrackJets = jets
	r.Rho = a.jets.Rho(particles)
	r.Tagging = a.matcher.Match(ev.CaloJets, r.TrackJets, d.Leptons)
	r.CaloJets = ev.CaloJets
	r.Categories = a.category.Categorize(category.Input{Dilepton: d, Run: ev.Global.Run, IsPP: a.isPP})
	r.Verdict = model.VerdictAccepted

	return r
}

func (a *Analyzer) reject(ctx context.Context, r Result, v model.Verdict) Result {
	r.Verdict = v
	a.logger.Debug(ctx, "event rejected",
		logger.Int("seq", r.Seq),
		logger.String("event", r.ID.Key()),
		logger.String("verdict", v.String()),
	)
	return r
}
