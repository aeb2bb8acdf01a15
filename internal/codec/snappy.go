package codec

import (
	"io"

	"github.com/golang/snappy"
	"github.com/pakit/pakit/internal/format"
)

// snappyCodec uses the framed snappy stream format, not raw block encoding.
type snappyCodec struct{}

func (snappyCodec) Format() format.Format { return format.Snappy }

func (snappyCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(w), nil
}

func (snappyCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return nopCloser{snappy.NewReader(r)}, nil
}
