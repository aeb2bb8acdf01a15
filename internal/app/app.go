package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pakit/pakit/internal/engine"
	"github.com/pakit/pakit/internal/extract"
	"github.com/pakit/pakit/pkg/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Pakit represents an active pakit object
type Pakit struct {
	ctx     context.Context
	cancel  context.CancelFunc
	meta    config.Meta
	cli     config.Cli
	command string
}

// New creates new pakit instance. command is the resolved kong command
// path, e.g. "compress <files> <output>".
func New(meta config.Meta, cli config.Cli, command string) (*Pakit, error) {
	if cli.Workers < 1 {
		return nil, errors.Errorf("workers must be at least 1, got %d", cli.Workers)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pakit{
		ctx:     ctx,
		cancel:  cancel,
		meta:    meta,
		cli:     cli,
		command: command,
	}, nil
}

// Start runs the selected subcommand.
func (c *Pakit) Start() error {
	cmd, _, _ := strings.Cut(c.command, " ")
	switch cmd {
	case "compress":
		return c.compress()
	case "decompress":
		return c.decompress()
	case "list":
		return c.list()
	}
	return errors.Errorf("unknown command %q", c.command)
}

// Close cancels any in-flight work. Pipelines remove their staged output on
// the way out.
func (c *Pakit) Close() {
	c.cancel()
}

func (c *Pakit) engineOpts(logger zerolog.Logger) engine.Options {
	return engine.Options{Logger: logger}
}

// overwritePolicy turns the --yes/--no flags or an interactive [y/n/q]
// question on stderr into the decision function the engine consumes. The
// prompt is serialized so concurrent jobs cannot interleave questions.
func (c *Pakit) overwritePolicy() extract.OverwritePolicy {
	if c.cli.Yes {
		return func(string) extract.Decision { return extract.Allow }
	}
	if c.cli.No {
		return func(string) extract.Decision { return extract.Skip }
	}

	var mu sync.Mutex
	in := bufio.NewReader(os.Stdin)
	return func(path string) extract.Decision {
		mu.Lock()
		defer mu.Unlock()
		for {
			fmt.Fprintf(os.Stderr, "%s already exists. Overwrite? [y/n/q] ", path)
			line, err := in.ReadString('\n')
			if err != nil {
				return extract.Abort
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return extract.Allow
			case "n", "no":
				return extract.Skip
			case "q", "quit":
				return extract.Abort
			}
		}
	}
}

// reportSummary logs the outcome and returns an error when any entry
// failed, so the process exits non-zero.
func reportSummary(logger zerolog.Logger, sum *engine.Summary) error {
	if sum == nil {
		return nil
	}
	for _, fe := range sum.EntriesFailed {
		logger.Error().Err(fe.Err).Str("entry", fe.Path).Msgf("Entry failed: %s", fe.Kind)
	}
	logger.Info().
		Int("entries", sum.EntriesProcessed).
		Int("skipped", sum.EntriesSkipped).
		Int64("bytes_in", sum.BytesIn).
		Int64("bytes_out", sum.BytesOut).
		Msg("Done")
	if !sum.Ok() {
		return errors.Errorf("%d entries failed", len(sum.EntriesFailed))
	}
	return nil
}
