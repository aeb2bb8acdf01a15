// Package walker turns input paths into the ordered entry stream fed to a
// container writer. Traversal is depth-first in lexical order so identical
// inputs always produce identical archives.
package walker

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pakit/pakit/internal/container"
	"github.com/pkg/errors"
)

// ErrUnsupportedType marks filesystem objects no container can represent
// (devices, sockets, pipes).
var ErrUnsupportedType = errors.New("unsupported file type")

// WalkFunc receives each entry in archive order. open is nil unless the
// entry is a regular file. Returning an error aborts the walk.
type WalkFunc func(e container.Entry, open func() (io.ReadCloser, error)) error

// WarnFunc receives per-entry failures that skip the entry instead of
// aborting the walk.
type WarnFunc func(path string, err error)

// Walk traverses each input path independently, in the order given, and
// concatenates their entries. Directories contribute their whole subtree
// rooted at their own base name; symlinks are recorded with their target,
// never followed. Failures below a top-level input are reported through
// warn and skipped; failures on a top-level input itself are fatal.
func Walk(ctx context.Context, inputs []string, fn WalkFunc, warn WarnFunc) error {
	for _, input := range inputs {
		if err := walkInput(ctx, filepath.Clean(input), fn, warn); err != nil {
			return err
		}
	}
	return nil
}

func walkInput(ctx context.Context, input string, fn WalkFunc, warn WarnFunc) error {
	fi, err := os.Lstat(input)
	if err != nil {
		return errors.Wrapf(err, "cannot access input %q", input)
	}

	if !fi.IsDir() {
		e, err := entryFor(filepath.Base(input), input, fi)
		if err != nil {
			return err
		}
		return fn(e, opener(e, input))
	}

	root := filepath.Dir(input)
	return filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == input {
				return errors.Wrapf(err, "cannot access input %q", input)
			}
			warn(path, err)
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			warn(path, err)
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "resolving %q against %q", path, root)
		}

		e, err := entryFor(filepath.ToSlash(rel), path, fi)
		if err != nil {
			warn(path, err)
			return nil
		}
		return fn(e, opener(e, path))
	})
}

// entryFor maps lstat results onto an archive entry.
func entryFor(rel string, path string, fi fs.FileInfo) (container.Entry, error) {
	e := container.Entry{
		Path:    rel,
		Size:    fi.Size(),
		Mode:    fi.Mode().Perm(),
		ModTime: fi.ModTime(),
	}
	switch {
	case fi.Mode().IsRegular():
		e.Kind = container.KindRegular
	case fi.IsDir():
		e.Kind = container.KindDir
	case fi.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return e, errors.Wrapf(err, "reading symlink %q", path)
		}
		e.Kind = container.KindSymlink
		e.LinkTarget = target
	default:
		return e, errors.Wrapf(ErrUnsupportedType, "%q (%s)", path, fi.Mode())
	}
	return e, nil
}

func opener(e container.Entry, path string) func() (io.ReadCloser, error) {
	if e.Kind != container.KindRegular {
		return nil
	}
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}
