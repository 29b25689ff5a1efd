// Package progress prints scan progress to a status stream.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// DefaultInterval is the number of lines between two line count updates
const DefaultInterval = 10000

// Reporter writes progress of a single run. On a terminal updates redraw the
// current line; otherwise every update is a line of its own.
// A nil Reporter discards everything.
type Reporter struct {
	w        io.Writer
	terminal bool
	interval int64

	lastLines   int64
	lastPercent int64
	dirty       bool
}

// New creates a reporter, detecting whether w is a terminal
func New(w io.Writer) *Reporter {
	terminal := false
	if f, ok := w.(*os.File); ok {
		terminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return NewReporter(w, terminal, DefaultInterval)
}

func NewReporter(w io.Writer, terminal bool, interval int64) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{w: w, terminal: terminal, interval: interval}
}

// Stage starts a new stage of the run and resets the counters
func (r *Reporter) Stage(message string) {
	if r == nil {
		return
	}
	r.endLine()
	fmt.Fprintln(r.w, message)
	r.lastLines = 0
	r.lastPercent = 0
}

// Lines reports the number of lines parsed. When max is positive it is
// printed as the expected total.
func (r *Reporter) Lines(n, max int64) {
	if r == nil || n-r.lastLines <= r.interval {
		return
	}
	r.lastLines = n
	if max > 0 {
		r.update(fmt.Sprintf("Lines parsed: %s / %s", humanize.Comma(n), humanize.Comma(max)))
		return
	}
	r.update(fmt.Sprintf("Lines parsed: %s", humanize.Comma(n)))
}

// Percent reports the share of total bytes read; it prints only when the
// integer percentage grows.
func (r *Reporter) Percent(read, total int64) {
	if r == nil || total <= 0 {
		return
	}
	percent := read * 100 / total
	if percent <= r.lastPercent {
		return
	}
	r.lastPercent = percent
	r.update(fmt.Sprintf("Progress: %d%% of %s", percent, humanize.Bytes(uint64(total))))
}

// Done ends the current stage
func (r *Reporter) Done() {
	if r == nil {
		return
	}
	r.endLine()
	fmt.Fprintln(r.w, "Done")
}

// Printf writes a free-form status line
func (r *Reporter) Printf(format string, args ...interface{}) {
	if r == nil {
		return
	}
	r.endLine()
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Reporter) update(line string) {
	if r.terminal {
		fmt.Fprint(r.w, "\r"+line)
		r.dirty = true
		return
	}
	fmt.Fprintln(r.w, line)
}

func (r *Reporter) endLine() {
	if r.dirty {
		fmt.Fprintln(r.w)
		r.dirty = false
	}
}
