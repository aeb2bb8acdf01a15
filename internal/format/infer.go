package format

import (
	"context"
	"io"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
)

// Infer sniffs magic bytes to identify the format of a stream whose
// filename carries no recognized extension. It returns the inferred chain
// and a reader that replays the sniffed bytes before the rest of r.
func Infer(ctx context.Context, r io.Reader) (Chain, io.Reader, error) {
	f, rest, err := archives.Identify(ctx, "", r)
	if err != nil {
		return nil, rest, errors.Wrap(ErrUnrecognizedExtension, "content not identified")
	}

	// Identify reports conventional extensions like ".tar.gz"; running them
	// back through the lexer yields the chain.
	_, chain, err := Parse("stream" + f.Extension())
	if err != nil {
		return nil, rest, errors.Wrapf(ErrUnrecognizedExtension, "identified %s but no adapter for it", f.Extension())
	}
	return chain, rest, nil
}
