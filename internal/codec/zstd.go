package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pakit/pakit/internal/format"
)

type zstdCodec struct{}

func (zstdCodec) Format() format.Format { return format.Zstd }

func (zstdCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}
