package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/topskim/pkg/logger"
	"github.com/okian/topskim/pkg/metrics"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
)

// Normalize scales every non-empty histogram by 1/total. It is applied at
// most once and is skipped for a zero total.
func (s *Sink) Normalize(total float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.normalized || total == 0 {
		return
	}
	for _, h := range s.hists {
		if h.Entries() == 0 {
			continue
		}
		h.Scale(1 / total)
	}
	s.normalized = true
}

// Write stores every non-empty histogram in a ROOT file at path and returns
// how many were written. The file is built under a temporary name and
// renamed into place.
func (s *Sink) Write(ctx context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, base := filepath.Dir(path), filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmpName) }()

	f, err := groot.Create(tmpName)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	keys, hists := s.nonEmpty()
	for i, key := range keys {
		if err := f.Put(key, rhist.NewH1DFrom(hists[i])); err != nil {
			_ = f.Close()
			return 0, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
		}
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	metrics.UpdateHistogramsWritten(len(keys))
	s.logger.Info(ctx, "histograms written",
		logger.String("path", path),
		logger.Int("histograms", len(keys)),
		logger.Int("booked", len(s.hists)),
	)
	return len(keys), nil
}

// nonEmpty returns the non-empty histograms in key order. Must be called
// with s.mu held.
func (s *Sink) nonEmpty() ([]string, []*hbook.H1D) {
	var (
		keys  []string
		hists []*hbook.H1D
	)
	for _, key := range s.sortedKeys() {
		if h := s.hists[key]; h.Entries() > 0 {
			keys = append(keys, key)
			hists = append(hists, h)
		}
	}
	return keys, hists
}
