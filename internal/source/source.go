// Package source opens triple files for reading and writing.
//
// A Source can be read from the start any number of times, which is what the
// two-pass extractor relies on. Standard input cannot be rewound, so it is
// spooled to a temporary file first.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// StdioPath selects standard input or output instead of a file
const StdioPath = "-"

// Compression of an input file, derived from its extension
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// DetectCompression returns the compression implied by the file name
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Source is a re-openable input file
type Source struct {
	path        string
	size        int64
	compression Compression
	spooled     bool
}

// Open checks that path is a readable file and returns a source for it.
// The path "-" spools standard input to a temporary file.
func Open(path string) (*Source, error) {
	if path == StdioPath {
		return Spool(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("unable to open file %s: is a directory", path)
	}

	return &Source{
		path:        path,
		size:        info.Size(),
		compression: DetectCompression(path),
	}, nil
}

// Spool copies r into a temporary file so it can be read more than once.
// The file is removed by Close.
func Spool(r io.Reader) (*Source, error) {
	f, err := os.CreateTemp("", "ntfilters-spool-*.nt")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}

	size, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(f.Name())
		if copyErr != nil {
			return nil, fmt.Errorf("failed to spool input: %w", copyErr)
		}
		return nil, fmt.Errorf("failed to spool input: %w", closeErr)
	}

	return &Source{path: f.Name(), size: size, spooled: true}, nil
}

// Path returns the file the source reads from
func (s *Source) Path() string {
	return s.path
}

// Size returns the size of the uncompressed input in bytes, or -1 when unknown
func (s *Source) Size() int64 {
	if s.compression != CompressionNone {
		return -1
	}
	return s.size
}

// Open returns a reader positioned at the start of the input
func (s *Source) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", s.path, err)
	}

	switch s.compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("unable to read gzip file %s: %w", s.path, err)
		}
		return &decompressor{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("unable to read zstd file %s: %w", s.path, err)
		}
		return &decompressor{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	default:
		return f, nil
	}
}

// Close removes the spool file, if any
func (s *Source) Close() error {
	if !s.spooled {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove spool file: %w", err)
	}
	return nil
}

// OpenStream opens path for a single pass. Standard input is used as is.
// The returned size is -1 when unknown.
func OpenStream(path string) (io.ReadCloser, int64, error) {
	if path == StdioPath {
		return io.NopCloser(os.Stdin), -1, nil
	}
	src, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	r, err := src.Open()
	if err != nil {
		return nil, 0, err
	}
	return r, src.Size(), nil
}

// Create opens path for writing, truncating it. "-" writes to standard output.
func Create(path string) (io.WriteCloser, error) {
	if path == StdioPath {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", path, err)
	}
	return f, nil
}

type decompressor struct {
	io.Reader
	closers []io.Closer
}

func (d *decompressor) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
