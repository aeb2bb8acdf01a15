// Package engine is the core of pakit: it resolves extension chains,
// composes codec and container adapters into pipelines, and executes them
// with staged output and safe extraction. The CLI layer above it only
// parses flags, prompts, and prints.
package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/pakit/pakit/internal/extract"
	"github.com/pakit/pakit/internal/format"
	"github.com/pakit/pakit/internal/walker"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Options tunes one engine invocation.
type Options struct {
	// Logger receives warnings for skipped or failed entries.
	Logger zerolog.Logger
	// MaxChainLength bounds chain validation; zero means the default.
	MaxChainLength int
	// Progress, when set, is invoked with byte deltas as data moves through
	// the pipeline. The engine makes no assumption about its consumer.
	Progress func(delta int64)
}

// ErrorKind classifies a per-entry failure in a Summary.
type ErrorKind int

const (
	KindIoFailure ErrorKind = iota
	KindCorruptStream
	KindUnsupportedFeature
	KindPathTraversal
	KindOverwriteRejected
	KindPathNotFound
	KindPermissionDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindCorruptStream:
		return "corrupt stream"
	case KindUnsupportedFeature:
		return "unsupported feature"
	case KindPathTraversal:
		return "path traversal"
	case KindOverwriteRejected:
		return "overwrite rejected"
	case KindPathNotFound:
		return "path not found"
	case KindPermissionDenied:
		return "permission denied"
	}
	return "io failure"
}

// EntryError records one failed entry.
type EntryError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

// Summary reports what one pipeline execution did.
type Summary struct {
	EntriesProcessed int
	EntriesSkipped   int
	EntriesFailed    []EntryError
	BytesIn          int64
	BytesOut         int64
}

// Ok reports whether every entry made it through.
func (s *Summary) Ok() bool {
	return len(s.EntriesFailed) == 0
}

func (s *Summary) fail(path string, kind ErrorKind, err error) {
	s.EntriesFailed = append(s.EntriesFailed, EntryError{Path: path, Kind: kind, Err: err})
}

// ResolveChain parses and validates the format chain implied by filename.
func ResolveChain(filename string) (string, format.Chain, error) {
	base, chain, err := format.Parse(filename)
	if err != nil {
		return "", nil, err
	}
	if err := chain.Validate(format.DefaultMaxChainLength); err != nil {
		return "", nil, err
	}
	return base, chain, nil
}

// classify maps an error onto the Summary taxonomy.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return KindPathNotFound
	case errors.Is(err, os.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, walker.ErrUnsupportedType):
		return KindUnsupportedFeature
	case errors.Is(err, extract.ErrPathTraversal):
		return KindPathTraversal
	case errors.Is(err, extract.ErrAborted):
		return KindOverwriteRejected
	}
	return KindIoFailure
}

// countingWriter counts bytes toward a Summary and feeds the progress sink.
type countingWriter struct {
	w        io.Writer
	n        *int64
	progress func(delta int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	if c.progress != nil && n > 0 {
		c.progress(int64(n))
	}
	return n, err
}

type countingReader struct {
	r        io.Reader
	n        *int64
	progress func(delta int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	*c.n += int64(n)
	if c.progress != nil && n > 0 {
		c.progress(int64(n))
	}
	return n, err
}
