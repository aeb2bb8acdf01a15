package app

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pakit/pakit/internal/engine"
	"github.com/pakit/pakit/internal/format"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func (c *Pakit) decompress() error {
	dest := c.cli.Decompress.OutputDir
	if dest == "" {
		var err error
		if dest, err = os.Getwd(); err != nil {
			return errors.Wrap(err, "resolving current directory")
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Wrapf(err, "creating destination %q", dest)
	}

	// Jobs share the destination filesystem; archives that would unpack
	// under the same name are rejected before any of them starts.
	seen := make(map[string]string)
	for _, input := range c.cli.Decompress.Files {
		name := filepath.Base(input)
		base := name
		if b, _, err := format.Parse(name); err == nil {
			base = b
		}
		if prev, ok := seen[base]; ok {
			return errors.Errorf("%q and %q both unpack under %q, run them separately", prev, input, filepath.Join(dest, base))
		}
		seen[base] = input
	}

	policy := c.overwritePolicy()

	var mu sync.Mutex
	var failed int

	eg, ctx := errgroup.WithContext(c.ctx)
	eg.SetLimit(c.cli.Workers)
	for _, input := range c.cli.Decompress.Files {
		eg.Go(func() error {
			logger := log.With().Str("archive", input).Logger()
			logger.Info().Msg("Decompressing archive")

			sum, err := engine.Decompress(ctx, input, dest, policy, c.engineOpts(logger))
			if err != nil {
				_ = reportSummary(logger, sum)
				return errors.Wrapf(err, "decompressing %q", input)
			}
			if rerr := reportSummary(logger, sum); rerr != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d archive(s) finished with failed entries", failed)
	}
	return nil
}
