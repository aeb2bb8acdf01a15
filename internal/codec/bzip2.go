package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/pakit/pakit/internal/format"
)

type bzip2Codec struct{}

func (bzip2Codec) Format() format.Format { return format.Bzip2 }

func (bzip2Codec) Compress(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
}

func (bzip2Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, &bzip2.ReaderConfig{})
}
