package codec

import (
	"io"

	"github.com/pakit/pakit/internal/format"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

type xzCodec struct{}

func (xzCodec) Format() format.Format { return format.Xz }

func (xzCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

func (xzCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return nopCloser{xr}, nil
}

// lzmaCodec handles the legacy LZMA-alone container (.lzma, .lz).
type lzmaCodec struct{}

func (lzmaCodec) Format() format.Format { return format.Lzma }

func (lzmaCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return lzma.NewWriter(w)
}

func (lzmaCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	lr, err := lzma.NewReader(r)
	if err != nil {
		return nil, err
	}
	return nopCloser{lr}, nil
}
