// Package source reads synchronized per-event tables and yields one
// composite event per step.
//
// An input directory holds five JSON-lines tables (leptons, particle-flow
// candidates, calorimeter jets, global event fields, trigger decisions).
// Line i of every table describes event i.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/topskim/internal/domain/model"
	"github.com/okian/topskim/pkg/logger"
)

// Source yields events in input order until io.EOF.
type Source interface {
	Next(ctx context.Context) (model.Event, error)
	Close() error
}

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithPP selects the proton-proton trigger path names.
func WithPP(isPP bool) Option {
	return func(r *Reader) {
		r.isPP = isPP
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reader advances the five tables of an input directory in lockstep.
type Reader struct {
	dir      string
	isPP     bool
	files    []*os.File
	decoders []*json.Decoder
	seq      int
	logger   logger.Logger
}

// Open opens every table in dir.
func Open(dir string, opts ...Option) (*Reader, error) {
	r := &Reader{dir: dir}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("source")
	}

	for _, name := range Tables {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("%w: %w", ErrOpen, err)
		}
		r.files = append(r.files, f)
		r.decoders = append(r.decoders, json.NewDecoder(f))
	}

	muon, electron := TriggerPaths(r.isPP)
	r.logger.Info(context.Background(), "input opened",
		logger.String("dir", dir),
		logger.String("muon_path", muon),
		logger.String("electron_path", electron),
	)
	return r, nil
}

// Next reads one line from every table. It returns io.EOF when all tables
// end together and ErrMisaligned when only some of them do.
func (r *Reader) Next(ctx context.Context) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}

	var (
		leps   leptonRow
		cands  candidateRow
		jets   jetRow
		global model.GlobalInfo
		trig   triggerRow
	)
	targets := []any{&leps, &cands, &jets, &global, &trig}

	var ended, read []string
	for i, dec := range r.decoders {
		err := dec.Decode(targets[i])
		switch {
		case errors.Is(err, io.EOF):
			ended = append(ended, Tables[i])
		case err != nil:
			return model.Event{}, fmt.Errorf("%w: %s event %d: %w", ErrDecode, Tables[i], r.seq, err)
		default:
			read = append(read, Tables[i])
		}
	}

	switch {
	case len(read) == 0:
		return model.Event{}, io.EOF
	case len(ended) > 0:
		return model.Event{}, fmt.Errorf("%w: %v ended at event %d while %v continue", ErrMisaligned, ended, r.seq, read)
	}

	muon, electron := TriggerPaths(r.isPP)
	ev := model.Event{
		Seq:        r.seq,
		Global:     global,
		Trigger:    model.TriggerBits{Muon: trig[muon] > 0, Electron: trig[electron] > 0},
		Muons:      leps.Muons,
		Electrons:  leps.Electrons,
		Candidates: cands.Candidates,
		CaloJets:   jets.Jets,
	}
	r.seq++
	return ev, nil
}

// Close closes every open table.
func (r *Reader) Close() error {
	var errs []error
	for _, f := range r.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.files = nil
	return errors.Join(errs...)
}

// SliceSource serves events from memory, numbering them in order.
type SliceSource struct {
	events []model.Event
	next   int
}

// NewSliceSource creates a source over events.
func NewSliceSource(events []model.Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next returns the next event or io.EOF.
func (s *SliceSource) Next(ctx context.Context) (model.Event, error) {
	if err := ctx.Err(); err != nil {
		return model.Event{}, err
	}
	if s.next >= len(s.events) {
		return model.Event{}, io.EOF
	}
	ev := s.events[s.next]
	ev.Seq = s.next
	s.next++
	return ev, nil
}

// Close is a no-op.
func (s *SliceSource) Close() error { return nil }
