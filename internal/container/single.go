package container

import (
	"io"

	"github.com/pkg/errors"
)

// Single is the degenerate container used when a chain has no archive
// format: exactly one regular file flows through as an opaque blob.
type Single struct {
	// Name is the entry name: the source file's base name on compress, the
	// output file name on decompress.
	Name string
}

// NewWriter returns a writer accepting exactly one regular entry whose
// bytes pass through unchanged.
func (s Single) NewWriter(w io.Writer) (EntryWriter, error) {
	return &singleWriter{w: w}, nil
}

// OpenReader yields one regular entry named s.Name whose data is the whole
// stream.
func (s Single) OpenReader(r io.Reader) (EntryReader, error) {
	return &singleReader{name: s.Name, r: r}, nil
}

type singleWriter struct {
	w    io.Writer
	done bool
}

func (w *singleWriter) WriteEntry(e Entry, data io.Reader) error {
	if w.done {
		return errors.Errorf("cannot add %q: a chain without an archive format holds a single file", e.Path)
	}
	if e.Kind != KindRegular {
		return errors.Errorf("cannot compress %s %q without an archive format in the chain", e.Kind, e.Path)
	}
	w.done = true
	if data == nil {
		return nil
	}
	_, err := io.Copy(w.w, data)
	return err
}

func (w *singleWriter) Close() error { return nil }

type singleReader struct {
	name string
	r    io.Reader
	done bool
}

func (r *singleReader) Next() (Entry, io.Reader, error) {
	if r.done {
		return Entry{}, nil, io.EOF
	}
	r.done = true
	e := Entry{
		Path: r.name,
		Kind: KindRegular,
		Size: -1, // unknown until the stream is drained
		Mode: 0o644,
	}
	return e, r.r, nil
}

func (r *singleReader) Close() error { return nil }
