package codec

import (
	"io"

	"github.com/klauspost/pgzip"
	"github.com/pakit/pakit/internal/format"
)

type gzipCodec struct{}

func (gzipCodec) Format() format.Format { return format.Gzip }

func (gzipCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return pgzip.NewWriter(w), nil
}

func (gzipCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return pgzip.NewReader(r)
}
