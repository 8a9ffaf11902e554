package testevents

import (
	"fmt"
	"os"

	"github.com/okian/topskim/pkg/logger"
)

// SetupLogging initializes the global logger at level, writing to stderr.
func SetupLogging(level string) error {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	return nil
}
