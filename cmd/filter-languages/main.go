package main

import (
	"fmt"
	"os"

	"github.com/aleksaelezovic/ntfilters/internal/cli"
	"github.com/aleksaelezovic/ntfilters/internal/config"
	"github.com/aleksaelezovic/ntfilters/internal/langfilter"
	"github.com/aleksaelezovic/ntfilters/internal/progress"
	"github.com/aleksaelezovic/ntfilters/internal/source"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	os.Exit(cli.Execute(newRootCommand()))
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "filter-languages [options] <infile> <outfile>",
		Short: "Reads the nt file and writes a subset of the entries to outfile.",
		Long: `Reads the nt file and writes a subset of the entries to outfile.

Literals tagged with a language that is not on the whitelist are dropped, every
other triple is copied. Use "-" to read from stdin or write to stdout. The
whitelist can also be set through NTFILTERS_LANG, e.g. NTFILTERS_LANG="en de".`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return config.ErrMissingArguments
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadFilter(v, args)
			if err != nil {
				return err
			}
			return run(cmd, v, settings)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayP(config.KeyLang, "l", nil, "Adds another language to the whitelist.")
	cli.AddLogFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, s config.FilterSettings) (err error) {
	logger := cli.NewLogger(v, cmd.ErrOrStderr())

	in, size, err := source.OpenStream(s.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := source.Create(s.Output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", s.Output, closeErr)
		}
	}()

	cmd.SilenceUsage = true

	status := progress.New(cli.StatusWriter(cmd, s.Output))
	f := langfilter.New(s.Languages, logger)
	f.Progress = status

	logger.Debug("filtering languages", "input", s.Input, "languages", s.Languages)
	stats, err := f.Run(cmd.Context(), in, size, out)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}

	status.Done()
	status.Printf("Read %s lines.", humanize.Comma(stats.Lines))
	status.Printf("Parsed %s triples", humanize.Comma(stats.Triples))
	status.Printf("of which %s were written out again", humanize.Comma(stats.Written))
	return nil
}
