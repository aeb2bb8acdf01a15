package codec

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/pakit/pakit/internal/format"
)

type brotliCodec struct{}

func (brotliCodec) Format() format.Format { return format.Brotli }

func (brotliCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriter(w), nil
}

func (brotliCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return nopCloser{brotli.NewReader(r)}, nil
}
