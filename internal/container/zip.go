package container

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pakit/pakit/internal/format"
	"github.com/pkg/errors"
)

// zipContainer wraps archive/zip. Writing streams fine, but reading needs
// random access for the central directory, so OpenReader upgrades or spools
// its input.
type zipContainer struct{}

func (zipContainer) Format() format.Format { return format.Zip }

func (zipContainer) NewWriter(w io.Writer) (EntryWriter, error) {
	return &zipWriter{zw: zip.NewWriter(w)}, nil
}

func (zipContainer) OpenReader(r io.Reader) (EntryReader, error) {
	ra, size, cleanup, err := randomAccess(r)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		_ = cleanup()
		return nil, errors.Wrap(err, "reading zip central directory")
	}
	return &zipReader{zr: zr, cleanup: cleanup}, nil
}

type zipWriter struct {
	zw *zip.Writer
}

func (w *zipWriter) WriteEntry(e Entry, data io.Reader) error {
	fh := &zip.FileHeader{
		Name:     e.Path,
		Method:   zip.Deflate,
		Modified: e.ModTime,
	}

	switch e.Kind {
	case KindRegular:
		fh.SetMode(e.Mode.Perm())
		fw, err := w.zw.CreateHeader(fh)
		if err != nil {
			return errors.Wrapf(err, "creating zip entry %q", e.Path)
		}
		if data != nil {
			if _, err := io.Copy(fw, data); err != nil {
				return errors.Wrapf(err, "writing zip data for %q", e.Path)
			}
		}
		return nil
	case KindDir:
		fh.Name = e.Path + "/"
		fh.Method = zip.Store
		fh.SetMode(e.Mode.Perm() | fs.ModeDir)
		_, err := w.zw.CreateHeader(fh)
		return errors.Wrapf(err, "creating zip directory %q", e.Path)
	case KindSymlink:
		// Symlinks are stored as entries whose body is the target path.
		fh.Method = zip.Store
		fh.SetMode(e.Mode.Perm() | fs.ModeSymlink)
		fw, err := w.zw.CreateHeader(fh)
		if err != nil {
			return errors.Wrapf(err, "creating zip symlink %q", e.Path)
		}
		_, err = fw.Write([]byte(e.LinkTarget))
		return errors.Wrapf(err, "writing zip symlink target for %q", e.Path)
	}
	return errors.Errorf("cannot represent %s entry %q in zip", e.Kind, e.Path)
}

func (w *zipWriter) Close() error {
	return w.zw.Close()
}

type zipReader struct {
	zr      *zip.Reader
	idx     int
	cur     io.ReadCloser
	cleanup func() error
}

func (r *zipReader) Next() (Entry, io.Reader, error) {
	if r.cur != nil {
		_ = r.cur.Close()
		r.cur = nil
	}
	if r.idx >= len(r.zr.File) {
		return Entry{}, nil, io.EOF
	}
	f := r.zr.File[r.idx]
	r.idx++

	mode := f.Mode()
	e := Entry{
		Path:    strings.TrimSuffix(f.Name, "/"),
		Size:    int64(f.UncompressedSize64),
		Mode:    mode.Perm(),
		ModTime: f.Modified,
	}

	switch {
	case f.FileInfo().IsDir():
		e.Kind = KindDir
	case mode&fs.ModeSymlink != 0:
		rc, err := f.Open()
		if err != nil {
			return e, nil, errors.Wrapf(err, "opening zip symlink %q", e.Path)
		}
		target, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return e, nil, errors.Wrapf(err, "reading zip symlink target %q", e.Path)
		}
		e.Kind = KindSymlink
		e.LinkTarget = string(target)
	case mode.IsRegular():
		rc, err := f.Open()
		if err != nil {
			return e, nil, errors.Wrapf(err, "opening zip entry %q", e.Path)
		}
		e.Kind = KindRegular
		r.cur = rc
		return e, rc, nil
	default:
		e.Kind = KindUnsupported
	}
	return e, nil, nil
}

func (r *zipReader) Close() error {
	if r.cur != nil {
		_ = r.cur.Close()
		r.cur = nil
	}
	return r.cleanup()
}

// randomAccess upgrades r to an io.ReaderAt with a known size. Plain
// streams (a zip nested under compression transforms) are spooled to a
// temporary file removed by the returned cleanup.
func randomAccess(r io.Reader) (io.ReaderAt, int64, func() error, error) {
	noop := func() error { return nil }

	if f, ok := r.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return nil, 0, noop, err
		}
		return f, fi.Size(), noop, nil
	}
	if ra, ok := r.(io.ReaderAt); ok {
		if sized, ok := r.(interface{ Size() int64 }); ok {
			return ra, sized.Size(), noop, nil
		}
	}

	tmp, err := os.CreateTemp("", "pakit-zip-*")
	if err != nil {
		return nil, 0, noop, errors.Wrap(err, "spooling zip stream")
	}
	cleanup := func() error {
		_ = tmp.Close()
		return os.Remove(tmp.Name())
	}
	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = cleanup()
		return nil, 0, noop, errors.Wrap(err, "spooling zip stream")
	}
	return tmp, size, cleanup, nil
}
