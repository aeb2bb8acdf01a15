package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pakit/pakit/internal/container"
	"github.com/pakit/pakit/internal/format"
	"github.com/pakit/pakit/internal/walker"
	"github.com/pkg/errors"
)

// Compress archives and/or compresses inputs into output according to
// chain. The result is staged in a temporary file next to output and
// renamed into place only on full success, so the final path is never left
// partially written.
func Compress(ctx context.Context, inputs []string, output string, chain format.Chain, opts Options) (*Summary, error) {
	if err := chain.Validate(opts.MaxChainLength); err != nil {
		return nil, err
	}
	p, err := build(chain)
	if err != nil {
		return nil, err
	}

	if p.archive == nil {
		// Without a container the chain can only carry one opaque file.
		if len(inputs) != 1 {
			return nil, errors.Errorf("chain %s has no archive format: cannot combine %d inputs into one file (add .tar or .zip)", chain, len(inputs))
		}
		fi, err := os.Stat(inputs[0])
		if err != nil {
			return nil, errors.Wrapf(err, "cannot access input %q", inputs[0])
		}
		if !fi.Mode().IsRegular() {
			return nil, errors.Errorf("chain %s has no archive format: %q is not a regular file (add .tar or .zip)", chain, inputs[0])
		}
	}

	sum := &Summary{}

	tmp, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".tmp-*")
	if err != nil {
		return nil, errors.Wrapf(err, "staging output for %q", output)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	out := &countingWriter{w: tmp, n: &sum.BytesOut, progress: opts.Progress}
	w, closers, err := p.openWriteStack(out)
	if err != nil {
		return nil, err
	}

	var ew container.EntryWriter
	if p.archive != nil {
		ew, err = p.archive.NewWriter(w)
	} else {
		ew, err = container.Single{}.NewWriter(w)
	}
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	walkErr := walker.Walk(ctx, inputs, func(e container.Entry, open func() (io.ReadCloser, error)) error {
		opts.Logger.Debug().Msgf("Adding %s", e.Path)

		var data io.Reader
		var rc io.ReadCloser
		if e.Kind == container.KindRegular {
			var err error
			rc, err = open()
			if err != nil {
				// The entry was never handed to the container, so the
				// archive stays consistent and siblings continue.
				opts.Logger.Warn().Err(err).Msgf("Skipping %s", e.Path)
				sum.fail(e.Path, classify(err), err)
				return nil
			}
			data = &countingReader{r: rc, n: &sum.BytesIn, progress: opts.Progress}
		}

		err := ew.WriteEntry(e, data)
		if rc != nil {
			_ = rc.Close()
		}
		if err != nil {
			// A partial entry corrupts the container stream; abort.
			return errors.Wrapf(err, "archiving %q", e.Path)
		}
		sum.EntriesProcessed++
		return nil
	}, func(path string, err error) {
		opts.Logger.Warn().Err(err).Msgf("Skipping %s", path)
		sum.fail(path, classify(err), err)
	})
	if walkErr != nil {
		closeAll(closers)
		return sum, walkErr
	}

	// Close inside out: container framing, codec trailers, then the staged
	// file is synced and moved into place.
	if err := ew.Close(); err != nil {
		closeAll(closers)
		return sum, errors.Wrap(err, "finalizing archive")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			return sum, errors.Wrap(err, "finalizing compression")
		}
	}
	if err := tmp.Sync(); err != nil {
		return sum, errors.Wrapf(err, "syncing %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return sum, errors.Wrapf(err, "closing %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return sum, errors.Wrapf(err, "moving output into place at %q", output)
	}
	committed = true

	return sum, nil
}
