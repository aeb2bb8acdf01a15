package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/pakit/pakit/internal/codec"
	"github.com/pakit/pakit/internal/container"
	"github.com/pakit/pakit/internal/format"
	"github.com/pkg/errors"
)

// UnsupportedChainError reports a validated chain containing a format with
// no adapter.
type UnsupportedChainError struct {
	Format format.Format
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("no adapter for format %s", e.Format)
}

// pipeline mirrors a validated chain: transform adapters in inner-to-outer
// order plus at most one container adapter at the innermost end. When
// archive is nil the chain carries a single opaque file and the pass-through
// container stands in.
type pipeline struct {
	chain      format.Chain
	transforms []codec.Transform
	archive    container.Container
}

// build resolves adapters for every chain element. The chain must already
// be validated.
func build(chain format.Chain) (*pipeline, error) {
	p := &pipeline{chain: chain}
	for _, f := range chain {
		if f.IsContainer() {
			c, ok := container.For(f)
			if !ok {
				return nil, &UnsupportedChainError{Format: f}
			}
			p.archive = c
			continue
		}
		t, ok := codec.For(f)
		if !ok {
			return nil, &UnsupportedChainError{Format: f}
		}
		p.transforms = append(p.transforms, t)
	}
	return p, nil
}

// openWriteStack wraps w with the compression transforms, outermost chain
// element closest to w. The returned closers must be called in order after
// the container writer is closed: innermost codec first, so each trailer
// lands before the next stage flushes.
func (p *pipeline) openWriteStack(w io.Writer) (io.Writer, []io.Closer, error) {
	var closers []io.Closer
	for i := len(p.transforms) - 1; i >= 0; i-- {
		wc, err := p.transforms[i].Compress(w)
		if err != nil {
			closeAll(closers)
			return nil, nil, errors.Wrapf(err, "opening %s writer", p.transforms[i].Format())
		}
		// Prepend so closers ends up inner-first.
		closers = append([]io.Closer{wc}, closers...)
		w = wc
	}
	return w, closers, nil
}

// openReadStack opens input and unwraps the transforms from the raw file
// inward, handing the fully decoded stream to the container adapter. When
// the chain has no transforms the file itself is passed through so index
// based containers can seek instead of spooling.
func (p *pipeline) openReadStack(input string, baseName string, sum *Summary, opts Options) (container.EntryReader, func() error, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %q", input)
	}
	closers := []io.Closer{f}
	closeStack := func() error {
		closeAll(closers)
		return nil
	}

	var r io.Reader = f
	if len(p.transforms) > 0 {
		r = &countingReader{r: f, n: &sum.BytesIn, progress: opts.Progress}
		for i := len(p.transforms) - 1; i >= 0; i-- {
			rc, err := p.transforms[i].Decompress(r)
			if err != nil {
				_ = closeStack()
				return nil, nil, errors.Wrapf(err, "opening %s reader", p.transforms[i].Format())
			}
			closers = append([]io.Closer{rc}, closers...)
			r = rc
		}
	} else if fi, err := f.Stat(); err == nil {
		sum.BytesIn += fi.Size()
	}

	var er container.EntryReader
	if p.archive != nil {
		er, err = p.archive.OpenReader(r)
	} else {
		er, err = container.Single{Name: baseName}.OpenReader(r)
	}
	if err != nil {
		_ = closeStack()
		return nil, nil, err
	}

	closeEntries := func() error {
		err := er.Close()
		closeAll(closers)
		return err
	}
	return er, closeEntries, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
