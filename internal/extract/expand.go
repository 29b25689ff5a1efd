package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aleksaelezovic/ntfilters/pkg/nt"
	"github.com/aleksaelezovic/ntfilters/pkg/store"
)

// expand follows relations beyond the direct edges of the source. Hop n
// re-reads the input and collects the triples of the entities first
// discovered at hop n-1, so every entity is expanded at most once.
// It takes ownership of frontier and returns the lines read per hop.
func (x *Extractor) expand(ctx context.Context, src Opener, w *nt.Writer, frontier store.TermSet) ([]int64, error) {
	var lines []int64
	for hop := 2; hop <= x.opts.Depth; hop++ {
		if frontier.Len() == 0 {
			x.Logger.Debug("nothing left to expand", "hop", hop)
			break
		}

		var next store.TermSet
		if hop < x.opts.Depth {
			var err error
			if next, err = x.newSet(store.FrontierTable(hop)); err != nil {
				frontier.Close()
				return lines, fmt.Errorf("failed to create frontier set: %w", err)
			}
		}

		x.Progress.Stage(fmt.Sprintf("Following relations (hop %d of %d)...", hop, x.opts.Depth))
		x.Logger.Debug("expanding frontier", "hop", hop, "entities", frontier.Len())

		current := frontier
		n, err := x.pass(ctx, src, func(r io.Reader) (int64, error) {
			return x.collect(ctx, r, w, current.Contains, next)
		})
		lines = append(lines, n)

		if closeErr := current.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			if next != nil {
				err = errors.Join(err, next.Close())
			}
			return lines, err
		}
		x.Progress.Done()

		if next == nil {
			return lines, nil
		}
		frontier = next
	}
	return lines, frontier.Close()
}
