package main

import (
	"encoding/json"
	"fmt"

	service "github.com/okian/topskim/internal/app"
	"github.com/okian/topskim/internal/adapters/sink"
	"github.com/okian/topskim/internal/adapters/source"
	"github.com/okian/topskim/internal/config"
	"github.com/okian/topskim/internal/domain/analysis"
	"github.com/okian/topskim/pkg/logger"
	"github.com/spf13/cobra"
)

// runFlags holds the options of the run command.
type runFlags struct {
	in          string
	out         string
	plotDir     string
	pd          string
	configFile  string
	monitorAddr string
	workers     int
	mc          bool
	pp          bool
	ss          bool
	dedupe      bool
}

func newRunCmd(logLevel *string) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Select dilepton events and fill category histograms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			if *logLevel == "" {
				if err := logger.SetLevelString(cfg.LogLevel); err != nil {
					return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
				}
			}

			opts, err := f.serviceOptions(cfg)
			if err != nil {
				return err
			}
			sum, err := service.New(opts...).Run(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.in, "in", "", "directory holding the input tables")
	fl.StringVar(&f.out, "out", "", "ROOT file receiving the histograms")
	fl.StringVar(&f.plotDir, "plots", "", "directory receiving PNG control plots")
	fl.StringVar(&f.pd, "pd", "", "primary dataset of data input: muon or electron (default inferred from --in)")
	fl.StringVar(&f.configFile, "config", "", "YAML config file (default $TOPSKIM_CONFIG)")
	fl.StringVar(&f.monitorAddr, "monitor-addr", "", "serve /healthz, /metrics and /stats on this address")
	fl.IntVar(&f.workers, "workers", 0, "analysis workers; 1 runs sequentially (default from config)")
	fl.BoolVar(&f.mc, "mc", false, "input is simulation: use event weights and normalize")
	fl.BoolVar(&f.pp, "pp", false, "proton-proton running instead of heavy-ion")
	fl.BoolVar(&f.ss, "ss", false, "select same-sign instead of opposite-sign pairs")
	fl.BoolVar(&f.dedupe, "dedupe", false, "drop repeated (run, lumi, event) ids")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

// config loads the layered configuration and applies explicit flags on top.
func (f *runFlags) config(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configFile != "" {
		cfg, err = config.LoadFile(cmd.Context(), f.configFile)
	} else {
		cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("workers") {
		cfg.WorkerCount = f.workers
	}
	if fl.Changed("monitor-addr") {
		cfg.MonitorAddr = f.monitorAddr
	}
	if fl.Changed("dedupe") {
		cfg.DedupeEvents = f.dedupe
	}
	return cfg, nil
}

// dataset picks the primary dataset from --pd or, failing that, the input path.
func (f *runFlags) dataset() (analysis.Dataset, error) {
	if f.pd != "" {
		d, err := analysis.ParseDataset(f.pd)
		if err != nil {
			return d, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		return d, nil
	}
	return analysis.DatasetFromPath(f.in), nil
}

// serviceOptions opens the input and assembles the run.
func (f *runFlags) serviceOptions(cfg *config.Config) ([]service.Option, error) {
	pd, err := f.dataset()
	if err != nil {
		return nil, err
	}

	src, err := source.Open(f.in, source.WithPP(f.pp))
	if err != nil {
		return nil, err
	}

	a := analysis.NewAnalyzer(
		analysis.WithCuts(cfg.Cuts),
		analysis.WithMC(f.mc),
		analysis.WithPP(f.pp),
		analysis.WithSameSign(f.ss),
		analysis.WithDataset(pd),
	)

	return []service.Option{
		service.WithSource(src),
		service.WithAnalyzer(a),
		service.WithSink(sink.New(sink.WithWorkingPoint(cfg.Cuts.BTagWorkingPoint))),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupe(cfg.DedupeEvents, cfg.DedupeSize),
		service.WithOutput(f.out),
		service.WithPlotDir(f.plotDir),
		service.WithMonitorAddr(cfg.MonitorAddr),
	}, nil
}
