// Package codec adapts the external compression libraries behind one
// streaming interface: writers that compress into an underlying sink and
// readers that decompress from an underlying source. Adapters never touch
// the filesystem and never buffer whole payloads.
package codec

import (
	"io"

	"github.com/pakit/pakit/internal/format"
)

// Transform is a byte-stream compressor/decompressor for one format.
type Transform interface {
	// Format returns the format this transform implements.
	Format() format.Format

	// Compress wraps w so that writes are compressed before being forwarded.
	// The returned writer must be closed to flush the codec trailer.
	Compress(w io.Writer) (io.WriteCloser, error)

	// Decompress wraps r so that reads yield the decompressed stream.
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// For returns the transform implementing f, or false if f has no streaming
// codec (containers have none).
func For(f format.Format) (Transform, bool) {
	switch f {
	case format.Gzip:
		return gzipCodec{}, true
	case format.Bzip2:
		return bzip2Codec{}, true
	case format.Xz:
		return xzCodec{}, true
	case format.Lzma:
		return lzmaCodec{}, true
	case format.Zstd:
		return zstdCodec{}, true
	case format.Lz4:
		return lz4Codec{}, true
	case format.Snappy:
		return snappyCodec{}, true
	case format.Brotli:
		return brotliCodec{}, true
	}
	return nil, false
}

// nopCloser adapts decompressors whose readers hold no resources.
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }
