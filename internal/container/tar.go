package container

import (
	"archive/tar"
	"io"
	"strings"

	"github.com/pakit/pakit/internal/format"
	"github.com/pkg/errors"
)

// tarContainer streams entries through archive/tar in both directions.
type tarContainer struct{}

func (tarContainer) Format() format.Format { return format.Tar }

func (tarContainer) NewWriter(w io.Writer) (EntryWriter, error) {
	return &tarWriter{tw: tar.NewWriter(w)}, nil
}

func (tarContainer) OpenReader(r io.Reader) (EntryReader, error) {
	return &tarReader{tr: tar.NewReader(r)}, nil
}

type tarWriter struct {
	tw *tar.Writer
}

func (w *tarWriter) WriteEntry(e Entry, data io.Reader) error {
	hdr := &tar.Header{
		Name:    e.Path,
		Mode:    int64(e.Mode.Perm()),
		ModTime: e.ModTime,
		Format:  tar.FormatPAX,
	}

	switch e.Kind {
	case KindRegular:
		hdr.Typeflag = tar.TypeReg
		hdr.Size = e.Size
	case KindDir:
		hdr.Typeflag = tar.TypeDir
		hdr.Name = e.Path + "/"
	case KindSymlink:
		hdr.Typeflag = tar.TypeSymlink
		hdr.Linkname = e.LinkTarget
	default:
		return errors.Errorf("cannot represent %s entry %q in tar", e.Kind, e.Path)
	}

	if err := w.tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "writing tar header for %q", e.Path)
	}
	if e.Kind == KindRegular && data != nil {
		if _, err := io.Copy(w.tw, data); err != nil {
			return errors.Wrapf(err, "writing tar data for %q", e.Path)
		}
	}
	return nil
}

func (w *tarWriter) Close() error {
	return w.tw.Close()
}

type tarReader struct {
	tr *tar.Reader
}

func (r *tarReader) Next() (Entry, io.Reader, error) {
	hdr, err := r.tr.Next()
	if err != nil {
		return Entry{}, nil, err
	}

	e := Entry{
		Path:    strings.TrimSuffix(hdr.Name, "/"),
		Size:    hdr.Size,
		Mode:    hdr.FileInfo().Mode().Perm(),
		ModTime: hdr.ModTime,
	}
	switch hdr.Typeflag {
	case tar.TypeReg:
		e.Kind = KindRegular
		return e, r.tr, nil
	case tar.TypeDir:
		e.Kind = KindDir
	case tar.TypeSymlink:
		e.Kind = KindSymlink
		e.LinkTarget = hdr.Linkname
	default:
		e.Kind = KindUnsupported
	}
	return e, nil, nil
}

func (r *tarReader) Close() error { return nil }
