package app

import (
	"path/filepath"

	"github.com/pakit/pakit/internal/engine"
	"github.com/rs/zerolog/log"
)

func (c *Pakit) compress() error {
	output := c.cli.Compress.Output
	logger := log.With().Str("output", output).Logger()

	// The output filename defines the whole pipeline; resolution failures
	// surface here, before any input is touched.
	_, chain, err := engine.ResolveChain(filepath.Base(output))
	if err != nil {
		return err
	}
	logger.Info().Msgf("Compressing %d input(s) as %s", len(c.cli.Compress.Files), chain)

	sum, err := engine.Compress(c.ctx, c.cli.Compress.Files, output, chain, c.engineOpts(logger))
	if err != nil {
		return err
	}
	return reportSummary(logger, sum)
}
