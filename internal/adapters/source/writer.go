package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/topskim/internal/domain/model"
)

// Writer writes events as a table directory readable by Open. Tables are
// written to temp files and renamed into place by Close, so a directory
// never holds a partly written table set.
type Writer struct {
	dir      string
	isPP     bool
	files    []*os.File
	buffers  []*bufio.Writer
	encoders []*json.Encoder
}

// Create makes dir if needed and starts a new set of tables in it. Trigger
// decisions are written under the path names of the given running mode.
func Create(dir string, isPP bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	w := &Writer{dir: dir, isPP: isPP}
	for _, name := range Tables {
		f, err := os.CreateTemp(dir, name+".tmp-*")
		if err != nil {
			w.abort()
			return nil, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		if err := f.Chmod(0o644); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			w.abort()
			return nil, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		buf := bufio.NewWriter(f)
		w.files = append(w.files, f)
		w.buffers = append(w.buffers, buf)
		w.encoders = append(w.encoders, json.NewEncoder(buf))
	}
	return w, nil
}

// Write appends one line per table for ev.
func (w *Writer) Write(ev model.Event) error { //nolint:gocritic // hugeParam: events are written by value
	muon, electron := TriggerPaths(w.isPP)
	rows := []any{
		leptonRow{Muons: ev.Muons, Electrons: ev.Electrons},
		candidateRow{Candidates: ev.Candidates},
		jetRow{Jets: ev.CaloJets},
		ev.Global,
		triggerRow{muon: boolToInt(ev.Trigger.Muon), electron: boolToInt(ev.Trigger.Electron)},
	}
	for i, row := range rows {
		if err := w.encoders[i].Encode(row); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWrite, Tables[i], err)
		}
	}
	return nil
}

// Close flushes every table and renames it into place. On failure no
// table is replaced and the temp files are removed.
func (w *Writer) Close() error {
	if w.files == nil {
		return nil
	}
	var errs []error
	for i, f := range w.files {
		if err := w.buffers[i].Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		for i, f := range w.files {
			if err := os.Rename(f.Name(), filepath.Join(w.dir, Tables[i])); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	if len(errs) > 0 {
		w.abort()
		return fmt.Errorf("%w: %w", ErrWrite, errors.Join(errs...))
	}
	w.files = nil
	return nil
}

// abort closes and removes every temp file still around.
func (w *Writer) abort() {
	for _, f := range w.files {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}
	w.files = nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
