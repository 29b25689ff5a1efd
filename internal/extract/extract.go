// Package extract writes the neighbourhood of a source entity: every triple
// leaving the source with a non-literal object, followed by the name triples
// of every entity and predicate those triples mention.
//
// The input is read twice. The first pass (collect) grows the sets of known
// entities and predicates; the second pass (annotate) only reads them.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aleksaelezovic/ntfilters/internal/progress"
	"github.com/aleksaelezovic/ntfilters/pkg/nt"
	"github.com/aleksaelezovic/ntfilters/pkg/store"
)

// Opener returns a reader positioned at the start of the input.
// Every pass opens the input anew.
type Opener interface {
	Open() (io.ReadCloser, error)
}

// Options controls an extraction
type Options struct {
	// Source is the entity to start from
	Source string

	// Depth is the number of hops to follow; 1 collects the direct edges of Source only
	Depth int

	// NamePredicate selects the triples written in the annotate pass
	NamePredicate string
}

// Stats describes a finished extraction
type Stats struct {
	// Lines read per collect pass
	CollectLines []int64

	// Lines read by the annotate pass
	AnnotateLines int64

	// Triples written by the collect passes
	Collected int64

	// Name triples written by the annotate pass
	Names int64

	Entities   int
	Predicates int
}

// Extractor runs an extraction. It is used once and then closed.
type Extractor struct {
	opts    Options
	newSet  store.SetFactory
	entries *nt.Writer

	entities   store.TermSet
	predicates store.TermSet

	Progress *progress.Reporter
	Logger   *slog.Logger
}

// New creates an extractor whose term sets come from newSet.
// The source entity is the first known entity.
func New(opts Options, newSet store.SetFactory) (*Extractor, error) {
	if opts.Source == "" {
		return nil, errors.New("source entity is required")
	}
	if opts.NamePredicate == "" {
		return nil, errors.New("name predicate is required")
	}
	if opts.Depth < 1 {
		opts.Depth = 1
	}
	if opts.Depth-1 > store.MaxFrontierHop {
		return nil, fmt.Errorf("depth %d exceeds the maximum of %d", opts.Depth, store.MaxFrontierHop+1)
	}

	entities, err := newSet(store.TableEntities)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity set: %w", err)
	}
	predicates, err := newSet(store.TablePredicates)
	if err != nil {
		entities.Close()
		return nil, fmt.Errorf("failed to create predicate set: %w", err)
	}
	if _, err := entities.Add(opts.Source); err != nil {
		entities.Close()
		predicates.Close()
		return nil, fmt.Errorf("failed to add source entity: %w", err)
	}

	return &Extractor{
		opts:       opts,
		newSet:     newSet,
		entities:   entities,
		predicates: predicates,
		Logger:     slog.New(slog.DiscardHandler),
	}, nil
}

// Entities returns the set of known entities
func (x *Extractor) Entities() store.TermSet {
	return x.entities
}

// Predicates returns the set of known predicates
func (x *Extractor) Predicates() store.TermSet {
	return x.predicates
}

// Close releases the term sets
func (x *Extractor) Close() error {
	return errors.Join(x.entities.Close(), x.predicates.Close())
}

// Run reads src once per hop and once more for the names, writing all
// selected triples to out in the order they are found.
func (x *Extractor) Run(ctx context.Context, src Opener, out io.Writer) (Stats, error) {
	var stats Stats
	w := nt.NewWriter(out)

	var frontier store.TermSet
	if x.opts.Depth > 1 {
		var err error
		if frontier, err = x.newSet(store.FrontierTable(1)); err != nil {
			return stats, fmt.Errorf("failed to create frontier set: %w", err)
		}
	}

	x.Progress.Stage("Extracting entities and predicates...")
	lines, err := x.pass(ctx, src, func(r io.Reader) (int64, error) {
		return x.collect(ctx, r, w, x.isSource, frontier)
	})
	stats.CollectLines = append(stats.CollectLines, lines)
	if err != nil {
		if frontier != nil {
			frontier.Close()
		}
		return stats, err
	}
	x.Progress.Done()

	if frontier != nil {
		more, err := x.expand(ctx, src, w, frontier)
		stats.CollectLines = append(stats.CollectLines, more...)
		if err != nil {
			return stats, err
		}
	}
	stats.Collected = w.Count()

	x.Logger.Info("collected neighbourhood",
		"source", x.opts.Source,
		"triples", stats.Collected,
		"entities", x.entities.Len(),
		"predicates", x.predicates.Len())

	x.Progress.Stage("Extracting names...")
	lines, err = x.pass(ctx, src, func(r io.Reader) (int64, error) {
		return x.Annotate(ctx, r, w, stats.CollectLines[0])
	})
	if err != nil {
		return stats, err
	}
	stats.AnnotateLines = lines
	stats.Names = w.Count() - stats.Collected
	x.Progress.Done()

	if err := w.Flush(); err != nil {
		return stats, err
	}

	stats.Entities = x.entities.Len()
	stats.Predicates = x.predicates.Len()
	return stats, nil
}

// Collect writes every triple whose subject is the source entity and whose
// object is not a literal. Objects become known entities and predicates
// known predicates. It returns the number of lines read.
func (x *Extractor) Collect(ctx context.Context, r io.Reader, w *nt.Writer) (int64, error) {
	return x.collect(ctx, r, w, x.isSource, nil)
}

func (x *Extractor) isSource(subject string) (bool, error) {
	return subject == x.opts.Source, nil
}

// Annotate writes every name triple whose subject is a known entity or a
// known predicate. expected is the line count of the first pass, used for
// progress only. It returns the number of lines read.
func (x *Extractor) Annotate(ctx context.Context, r io.Reader, w *nt.Writer, expected int64) (int64, error) {
	s := nt.NewScanner(r)
	for s.Scan() {
		if err := checkContext(ctx, s.LineNumber()); err != nil {
			return s.LineNumber(), err
		}
		x.Progress.Lines(s.LineNumber(), expected)

		e := s.Entry()
		if !e.Valid() || e.Predicate() != x.opts.NamePredicate {
			continue
		}

		known, err := x.entities.Contains(e.Subject())
		if err != nil {
			return s.LineNumber(), err
		}
		if !known {
			if known, err = x.predicates.Contains(e.Subject()); err != nil {
				return s.LineNumber(), err
			}
		}
		if known {
			if err := w.Write(e); err != nil {
				return s.LineNumber(), err
			}
		}
	}
	return s.LineNumber(), s.Err()
}

// collect is the shared body of every collect pass. Triples whose subject
// matches are written; their objects join the known entities and, when next
// is set, newly discovered objects join next as well.
func (x *Extractor) collect(ctx context.Context, r io.Reader, w *nt.Writer, matches func(string) (bool, error), next store.TermSet) (int64, error) {
	s := nt.NewScanner(r)
	for s.Scan() {
		if err := checkContext(ctx, s.LineNumber()); err != nil {
			return s.LineNumber(), err
		}
		x.Progress.Lines(s.LineNumber(), 0)

		e := s.Entry()
		if !e.Valid() || e.IsObjectLiteral() {
			continue
		}
		ok, err := matches(e.Subject())
		if err != nil {
			return s.LineNumber(), err
		}
		if !ok {
			continue
		}

		added, err := x.entities.Add(e.Object())
		if err != nil {
			return s.LineNumber(), err
		}
		if added && next != nil {
			if _, err := next.Add(e.Object()); err != nil {
				return s.LineNumber(), err
			}
		}
		if _, err := x.predicates.Add(e.Predicate()); err != nil {
			return s.LineNumber(), err
		}
		if err := w.Write(e); err != nil {
			return s.LineNumber(), err
		}
	}
	return s.LineNumber(), s.Err()
}

func (x *Extractor) pass(ctx context.Context, src Opener, body func(io.Reader) (int64, error)) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r, err := src.Open()
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return body(r)
}

// cancellation is checked every this many lines
const contextCheckInterval = 4096

func checkContext(ctx context.Context, line int64) error {
	if line%contextCheckInterval != 0 {
		return nil
	}
	return ctx.Err()
}
