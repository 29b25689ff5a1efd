// Package cli holds the plumbing shared by the command line tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleksaelezovic/ntfilters/internal/config"
	"github.com/aleksaelezovic/ntfilters/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddLogFlags registers --verbose and --quiet
func AddLogFlags(flags *pflag.FlagSet) {
	flags.BoolP(config.KeyVerbose, "v", false, "Log debug output.")
	flags.BoolP(config.KeyQuiet, "q", false, "Only log errors.")
}

// BindFlags makes every flag readable through v, with the environment as fallback
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// NewLogger creates the diagnostic logger writing to w
func NewLogger(v *viper.Viper, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case v.GetBool(config.KeyQuiet):
		level = slog.LevelError
	case v.GetBool(config.KeyVerbose):
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// StatusWriter returns the stream for progress output. It moves to stderr
// when the triples themselves are written to stdout.
func StatusWriter(cmd *cobra.Command, output string) io.Writer {
	if output == source.StdioPath {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// Execute runs cmd until it finishes or the process is interrupted and
// returns the exit status.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
