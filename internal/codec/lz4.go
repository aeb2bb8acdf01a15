package codec

import (
	"io"

	"github.com/pakit/pakit/internal/format"
	"github.com/pierrec/lz4/v4"
)

type lz4Codec struct{}

func (lz4Codec) Format() format.Format { return format.Lz4 }

func (lz4Codec) Compress(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return nopCloser{lz4.NewReader(r)}, nil
}
