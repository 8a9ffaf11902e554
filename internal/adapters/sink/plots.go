package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/topskim/pkg/logger"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
)

// Plot canvas size.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// WritePlots renders every non-empty histogram as a PNG control plot in dir
// and returns how many were drawn.
func (s *Sink) WritePlots(ctx context.Context, dir string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	keys, hists := s.nonEmpty()
	for i, key := range keys {
		p := hplot.New()
		p.Title.Text = key
		if title, ok := hists[i].Ann["title"].(string); ok {
			p.X.Label.Text = title
		}
		p.Y.Label.Text = "Events"

		h := hplot.NewH1D(hists[i])
		h.Infos.Style = hplot.HInfoSummary
		p.Add(h)

		if err := p.Save(plotWidth, plotHeight, filepath.Join(dir, key+".png")); err != nil {
			return i, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
		}
	}

	s.logger.Info(ctx, "control plots written",
		logger.String("dir", dir),
		logger.Int("plots", len(keys)),
	)
	return len(keys), nil
}
