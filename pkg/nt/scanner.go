package nt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Scanner reads an N-Triples-like stream line by line and parses every line.
// Unlike bufio.Scanner it has no maximum line length.
type Scanner struct {
	r         *bufio.Reader
	line      string
	entry     Entry
	lineNum   int64
	bytesRead int64
	err       error
	done      bool
}

// NewScanner creates a scanner reading from r
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 1<<20)}
}

// Scan advances to the next line. It returns false at the end of the input
// or on a read error, which is then available from Err.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}

	line, err := s.r.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("error reading line %d: %w", s.lineNum+1, err)
			return false
		}
		if line == "" {
			return false
		}
	}

	s.bytesRead += int64(len(line))
	s.lineNum++
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	s.line = line
	s.entry = Parse(line)
	return true
}

// Entry returns the parsed form of the current line
func (s *Scanner) Entry() Entry {
	return s.entry
}

// Line returns the current line without its terminator
func (s *Scanner) Line() string {
	return s.line
}

// LineNumber returns the 1-based number of the current line
func (s *Scanner) LineNumber() int64 {
	return s.lineNum
}

// BytesRead returns the number of bytes consumed so far, line terminators included
func (s *Scanner) BytesRead() int64 {
	return s.bytesRead
}

func (s *Scanner) Err() error {
	return s.err
}

// Writer serializes entries to a buffered output stream
type Writer struct {
	w     *bufio.Writer
	count int64
}

// NewWriter creates a writer. Flush must be called once writing is done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 1<<20)}
}

// Write serializes a single entry
func (w *Writer) Write(e Entry) error {
	if _, err := e.WriteTo(w.w); err != nil {
		return fmt.Errorf("failed to write triple: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of entries written
func (w *Writer) Count() int64 {
	return w.count
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
