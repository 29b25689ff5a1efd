package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aleksaelezovic/ntfilters/internal/cli"
	"github.com/aleksaelezovic/ntfilters/internal/config"
	"github.com/aleksaelezovic/ntfilters/internal/encoding"
	"github.com/aleksaelezovic/ntfilters/internal/extract"
	"github.com/aleksaelezovic/ntfilters/internal/progress"
	"github.com/aleksaelezovic/ntfilters/internal/source"
	"github.com/aleksaelezovic/ntfilters/internal/storage"
	"github.com/aleksaelezovic/ntfilters/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	os.Exit(cli.Execute(newRootCommand()))
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "extract-subset [options] <infile> <outfile>",
		Short: "Reads the nt file and writes a subset of the entries to outfile.",
		Long: `Reads the nt file and writes a subset of the entries to outfile.

The subset holds every triple leaving the source entity whose object is not a
literal, followed by the name triples of every entity and predicate they mention.
Use "-" to read from stdin or write to stdout. Options can also be set through
NTFILTERS_* environment variables, e.g. NTFILTERS_SOURCE.`,
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
			settings, err := config.LoadExtract(v, args)
			if err != nil {
				return err
			}
			return run(cmd, v, settings)
		},
	}

	flags := cmd.Flags()
	flags.IntP(config.KeyDepth, "d", config.DefaultDepth, "How many relations to follow.")
	flags.StringP(config.KeySource, "s", config.DefaultSource, "The name of the source entity.")
	flags.String(config.KeyNamePredicate, config.DefaultNamePredicate, "Predicate of the name triples written after the subset.")
	flags.String(config.KeySpillDir, "", "Keep the known entities and predicates on disk below this directory.")
	cli.AddLogFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, s config.ExtractSettings) (err error) {
	logger := cli.NewLogger(v, cmd.ErrOrStderr())

	src, err := source.Open(s.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	sets, release, err := newSets(s.SpillDir, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, release())
	}()

	x, err := extract.New(extract.Options{
		Source:        s.Source,
		Depth:         s.Depth,
		NamePredicate: s.NamePredicate,
	}, sets)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, x.Close())
	}()

	// the output is only created once everything else is in place
	out, err := source.Create(s.Output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", s.Output, closeErr)
		}
	}()

	// startup is over, failures from here on are not usage errors
	cmd.SilenceUsage = true

	x.Progress = progress.New(cli.StatusWriter(cmd, s.Output))
	x.Logger = logger

	stats, err := x.Run(cmd.Context(), src, out)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	logger.Info("extraction finished",
		"input", s.Input,
		"output", s.Output,
		"triples", stats.Collected,
		"names", stats.Names,
		"entities", stats.Entities,
		"predicates", stats.Predicates)
	return nil
}

// newSets returns the factory for the term sets and a function releasing them.
// With a spill directory the sets live in a temporary badger database below it.
func newSets(spillDir string, logger *slog.Logger) (store.SetFactory, func() error, error) {
	if spillDir == "" {
		return store.MemorySets(), func() error { return nil }, nil
	}

	dir, err := os.MkdirTemp(spillDir, "ntfilters-*")
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create spill directory: %w", err)
	}
	db, err := storage.NewBadgerStorage(dir, logger)
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}
	logger.Debug("keeping term sets on disk", "dir", dir)

	release := func() error {
		return errors.Join(db.Close(), os.RemoveAll(dir))
	}
	return store.StoredSets(db, encoding.NewTermEncoder(), store.DefaultBatchSize), release, nil
}
