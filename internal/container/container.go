// Package container adapts archive formats that hold named entries (tar,
// zip) behind one interface, plus a degenerate single-entry pass-through
// used when a chain has no container format. Adapters only touch the
// readers and writers handed to them, never the filesystem.
package container

import (
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/pakit/pakit/internal/format"
)

// Kind classifies an archive entry.
type Kind int

const (
	KindRegular Kind = iota
	KindDir
	KindSymlink
	// KindUnsupported marks entry types no adapter can represent, such as
	// device files. They are reported and skipped, never written.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	}
	return "unsupported"
}

// Entry is one logical item inside a container: a slash-separated relative
// path plus the metadata needed to recreate it.
type Entry struct {
	Path       string
	Kind       Kind
	Size       int64
	Mode       fs.FileMode
	ModTime    time.Time
	LinkTarget string
}

// TopLevel returns the first segment of the entry path.
func (e Entry) TopLevel() string {
	p := strings.TrimPrefix(e.Path, "./")
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return p
}

// EntryWriter receives entries in order and writes them into a container
// stream. The data reader is nil for anything but regular files.
type EntryWriter interface {
	WriteEntry(e Entry, data io.Reader) error
	// Close finalizes the container framing. It does not close the
	// underlying writer.
	Close() error
}

// EntryReader is a finite, forward-only, non-restartable sequence of
// entries. The data reader returned by Next is only valid until the next
// call; it is nil for anything but regular files.
type EntryReader interface {
	Next() (Entry, io.Reader, error)
	Close() error
}

// Container is an archive format that can stream entries in and out.
type Container interface {
	Format() format.Format
	NewWriter(w io.Writer) (EntryWriter, error)
	// OpenReader consumes r as a container stream. Formats needing random
	// access (zip) upgrade r when it is already a file or spool it to a
	// temporary one, removed on Close.
	OpenReader(r io.Reader) (EntryReader, error)
}

// For returns the container adapter implementing f.
func For(f format.Format) (Container, bool) {
	switch f {
	case format.Tar:
		return tarContainer{}, true
	case format.Zip:
		return zipContainer{}, true
	}
	return nil, false
}
