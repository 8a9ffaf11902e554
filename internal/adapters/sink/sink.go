// Package sink accumulates weighted histograms per category and writes them
// to a ROOT file.
package sink

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/internal/domain/btag"
	"github.com/okian/topskim/internal/domain/kinematics"
	"github.com/okian/topskim/pkg/logger"
	"go-hep.org/x/hep/hbook"
)

const defaultWorkingPoint = 0.8838

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkingPoint sets the discriminant threshold used to count tagged
// track jets.
func WithWorkingPoint(wp float64) Option {
	return func(s *Sink) {
		s.workingPoint = wp
	}
}

// Sink books a histogram per category and observable on first fill.
type Sink struct {
	mu           sync.Mutex
	templates    map[string]template
	hists        map[string]*hbook.H1D
	workingPoint float64
	normalized   bool
	logger       logger.Logger
}

// New creates an empty sink.
func New(opts ...Option) *Sink {
	s := &Sink{
		templates:    templates(),
		hists:        make(map[string]*hbook.H1D),
		workingPoint: defaultWorkingPoint,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sink")
	}
	return s
}

// Fill adds x with weight w to the histogram of name in every category.
func (s *Sink) Fill(name string, x, w float64, categories []string) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHistogram, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		key := Key(c, name)
		h, ok := s.hists[key]
		if !ok {
			h = hbook.NewH1D(tmpl.bins, tmpl.min, tmpl.max)
			if h.Ann == nil {
				h.Ann = make(hbook.Annotation)
			}
			h.Ann["name"] = key
			h.Ann["title"] = tmpl.title
			s.hists[key] = h
		}
		h.Fill(x, w)
	}
	return nil
}

// Record fills every observable of an accepted result. Rejected results are
// ignored.
func (s *Sink) Record(ctx context.Context, r analysis.Result) error { //nolint:gocritic // hugeParam: results are passed by value
	if !r.Accepted() {
		return nil
	}
	w, cats := r.Weight, []string(r.Categories)
	l1, l2 := r.Dilepton.Leptons[0].P4, r.Dilepton.Leptons[1].P4

	fills := []struct {
		name string
		x    float64
	}{
		{"l1pt", l1.Pt()},
		{"l2pt", l2.Pt()},
		{"l1eta", math.Abs(l1.Eta())},
		{"l2eta", math.Abs(l2.Eta())},
		{"dphill", math.Abs(l1.DeltaPhi(l2))},
		{"mll", r.Dilepton.Mass},
		{"ptll", r.Dilepton.P4.Pt()},
		{"chrho", r.Rho},
		{"ntkjets", float64(len(r.TrackJets))},
		{"ntkbjets", float64(r.TaggedTrackJets(s.workingPoint))},
		{"ntksvtx", float64(withVertex(r.Tagging.Matched))},
		{"npfjets", float64(r.Tagging.NJets)},
		{"npfbjets", float64(r.Tagging.NTagged)},
		{"npfsvtx", float64(withVertex(r.Tagging.Selected))},
	}
	for _, f := range fills {
		if err := s.Fill(f.name, f.x, w, cats); err != nil {
			return err
		}
	}

	for i, m := range leading(r.Tagging.Matched) {
		if err := s.fillJet("tk", i+1, r.TrackJets[m.JetIndex].P4, m, w, cats); err != nil {
			return err
		}
	}
	for i, m := range leading(r.Tagging.Selected) {
		if err := s.fillJet("pf", i+1, r.CaloJets[m.JetIndex].P4(), m, w, cats); err != nil {
			return err
		}
	}

	s.logger.Debug(ctx, "event recorded",
		logger.Int("seq", r.Seq),
		logger.Int("categories", len(cats)),
	)
	return nil
}

func (s *Sink) fillJet(prefix string, slot int, p4 kinematics.FourVector, info btag.JetTagInfo, w float64, cats []string) error {
	p := fmt.Sprintf("%s%dj", prefix, slot)
	fills := []struct {
		name string
		x    float64
	}{
		{p + "pt", p4.Pt()},
		{p + "eta", math.Abs(p4.Eta())},
		{p + "svtxm", info.SVMass},
		{p + "svtxntk", float64(info.SVTracks)},
		{p + "csv", info.Discriminant},
	}
	for _, f := range fills {
		if err := s.Fill(f.name, f.x, w, cats); err != nil {
			return err
		}
	}
	return nil
}

// leading returns at most the two highest-ranked records.
func leading(infos []btag.JetTagInfo) []btag.JetTagInfo {
	if len(infos) > 2 {
		return infos[:2]
	}
	return infos
}

func withVertex(infos []btag.JetTagInfo) int {
	n := 0
	for _, info := range infos {
		if info.SVTracks > 0 {
			n++
		}
	}
	return n
}

// Get returns the histogram stored under key.
func (s *Sink) Get(key string) (*hbook.H1D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hists[key]
	return h, ok
}

// Len returns the number of booked histograms.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hists)
}

// Keys returns the booked histogram keys in sorted order.
func (s *Sink) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedKeys()
}

func (s *Sink) sortedKeys() []string {
	keys := make([]string, 0, len(s.hists))
	for k := range s.hists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
