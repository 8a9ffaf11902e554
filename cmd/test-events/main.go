package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/topskim/internal/testevents"
	"github.com/spf13/cobra"
)

// Default configuration constants.
const (
	defaultNumEvents = 1000
	defaultSeed      = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
}

func newCmd() *cobra.Command {
	var (
		cfg      testevents.Config
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "test-events",
		Short:        "Write a synthetic input fixture for topskim",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return testevents.SetupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := testevents.Run(cmd.Context(), &cfg)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&cfg.OutDir, "out", "", "directory receiving the tables")
	fl.IntVar(&cfg.NumEvents, "events", defaultNumEvents, "number of events to generate")
	fl.Uint64Var(&cfg.Seed, "seed", defaultSeed, "generator seed")
	fl.BoolVar(&cfg.PP, "pp", false, "write pp trigger columns and run numbers")
	fl.BoolVar(&cfg.MC, "mc", false, "attach simulation weights")
	fl.IntVar(&cfg.DuplicateEvery, "duplicate-every", 0, "repeat the previous event id every N events")
	fl.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
