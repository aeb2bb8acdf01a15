package app

import (
	"fmt"
	"os"

	"github.com/pakit/pakit/internal/container"
	"github.com/pakit/pakit/internal/engine"
	"github.com/rs/zerolog/log"
)

func (c *Pakit) list() error {
	for _, input := range c.cli.List.Archives {
		logger := log.With().Str("archive", input).Logger()

		entries, err := engine.List(c.ctx, input, c.engineOpts(logger))
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s:\n", input)
		for _, e := range entries {
			fmt.Fprintf(os.Stdout, "  %s\n", entryLine(e))
		}
	}
	return nil
}

func entryLine(e container.Entry) string {
	switch e.Kind {
	case container.KindDir:
		return e.Path + "/"
	case container.KindSymlink:
		return fmt.Sprintf("%s -> %s", e.Path, e.LinkTarget)
	default:
		// Pass-through entries do not know their decoded size up front.
		if e.Size < 0 {
			return e.Path
		}
		return fmt.Sprintf("%s (%d bytes)", e.Path, e.Size)
	}
}
