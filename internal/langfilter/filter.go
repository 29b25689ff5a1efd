// Package langfilter drops literal triples whose language tag is not allowed.
package langfilter

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/aleksaelezovic/ntfilters/internal/progress"
	"github.com/aleksaelezovic/ntfilters/pkg/nt"
)

// minTaggedLength is the shortest literal that is inspected for a tag
const minTaggedLength = 4

// Stats describes a finished filter run
type Stats struct {
	// Lines read
	Lines int64

	// Valid triples parsed
	Triples int64

	// Triples written
	Written int64

	// Lines that held no valid triple
	Invalid int64
}

// Filter keeps a triple unless its object is a literal tagged with a
// language outside of the allowed set.
type Filter struct {
	languages map[string]struct{}
	logger    *slog.Logger

	Progress *progress.Reporter
}

// New creates a filter allowing the given language tags. A nil logger discards diagnostics.
func New(languages []string, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		set[lang] = struct{}{}
	}
	return &Filter{languages: set, logger: logger}
}

// Allows reports whether the tag is in the allowed set
func (f *Filter) Allows(tag string) bool {
	_, ok := f.languages[tag]
	return ok
}

// Keep decides whether a valid entry is written. Non-literals, short literals
// and literals without a tag are always kept.
func (f *Filter) Keep(e nt.Entry) bool {
	tag, ok := LanguageTag(e)
	if !ok {
		return true
	}
	return f.Allows(tag)
}

// LanguageTag returns the text after the last '@' of a literal object.
// It reports false for non-literals, literals shorter than four bytes and
// objects without a non-empty tag.
func LanguageTag(e nt.Entry) (string, bool) {
	object := e.Object()
	if !e.IsObjectLiteral() || len(object) < minTaggedLength {
		return "", false
	}
	at := strings.LastIndexByte(object, '@')
	if at < 0 || at+1 >= len(object) {
		return "", false
	}
	return object[at+1:], true
}

// Run copies the allowed triples of in to out. size is the input size in
// bytes for progress reporting, or -1 when unknown. Invalid lines are logged
// and skipped.
func (f *Filter) Run(ctx context.Context, in io.Reader, size int64, out io.Writer) (Stats, error) {
	var stats Stats
	s := nt.NewScanner(in)
	w := nt.NewWriter(out)

	for s.Scan() {
		if s.LineNumber()%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		stats.Lines = s.LineNumber()
		if size > 0 {
			f.Progress.Percent(s.BytesRead(), size)
		} else {
			f.Progress.Lines(s.LineNumber(), 0)
		}

		e := s.Entry()
		if !e.Valid() {
			stats.Invalid++
			f.logger.Warn("line does not contain a valid triple",
				"line", s.LineNumber(),
				"content", s.Line())
			continue
		}
		stats.Triples++

		if !f.Keep(e) {
			continue
		}
		if err := w.Write(e); err != nil {
			return stats, err
		}
	}
	if err := s.Err(); err != nil {
		return stats, err
	}

	if err := w.Flush(); err != nil {
		return stats, err
	}
	stats.Written = w.Count()
	return stats, nil
}
