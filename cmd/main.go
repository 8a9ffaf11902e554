package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/topskim/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
}

// newRootCmd builds the topskim command tree.
func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "topskim",
		Short:         "Dilepton event selection for top-quark skims",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				logger.Get().Warn(cmd.Context(), "invalid log level; falling back to info",
					logger.String("log_level", logLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(newRunCmd(&logLevel))
	return root
}
