package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pakit/pakit/internal/container"
	"github.com/pakit/pakit/internal/extract"
	"github.com/pakit/pakit/internal/format"
	"github.com/pkg/errors"
)

// Decompress extracts input under destination. The chain is resolved from
// the input filename, falling back to magic-byte sniffing when no extension
// is recognized. policy is consulted for every conflicting path; the engine
// itself never prompts.
//
// Extraction of a directory tree is not atomic: per-entry failures are
// collected in the Summary and siblings continue, while corrupt streams and
// destination-level failures abort and leave the partial tree in place.
func Decompress(ctx context.Context, input, destination string, policy extract.OverwritePolicy, opts Options) (*Summary, error) {
	base, chain, err := resolveInput(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	if err := chain.Validate(opts.MaxChainLength); err != nil {
		return nil, err
	}
	p, err := build(chain)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}

	root := destination
	if p.archive != nil {
		// Placement needs the top-level entry set before anything is
		// written, so the container is scanned once for metadata and the
		// pipeline reopened for the real pass.
		tops, err := scanTopLevel(ctx, p, input, base, opts)
		if err != nil {
			failDecode(sum, base, err)
			return sum, err
		}
		root = extract.Target(destination, base, tops)
	}

	er, closeEntries, err := p.openReadStack(input, base, sum, opts)
	if err != nil {
		failDecode(sum, base, err)
		return sum, err
	}
	defer func() {
		_ = closeEntries()
	}()

	placer := &extract.Placer{Root: root, Policy: policy, Logger: opts.Logger}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		e, data, err := er.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			err = errors.Wrapf(err, "reading archive %q", input)
			failDecode(sum, base, err)
			return sum, err
		}

		if e.Kind == container.KindUnsupported {
			err := errors.Errorf("entry type cannot be extracted")
			opts.Logger.Warn().Msgf("Skipping %s: unsupported entry type", e.Path)
			sum.fail(e.Path, KindUnsupportedFeature, err)
			continue
		}

		opts.Logger.Debug().Msgf("Extracting %s", e.Path)
		n, skipped, err := placer.Place(e, data)
		sum.BytesOut += n
		switch {
		case errors.Is(err, extract.ErrAborted):
			sum.fail(e.Path, KindOverwriteRejected, err)
			return sum, err
		case errors.Is(err, extract.ErrPathTraversal):
			opts.Logger.Warn().Err(err).Msgf("Rejecting %s", e.Path)
			sum.fail(e.Path, KindPathTraversal, err)
		case err != nil:
			opts.Logger.Warn().Err(err).Msgf("Failed to extract %s", e.Path)
			sum.fail(e.Path, classify(err), err)
		case skipped:
			sum.EntriesSkipped++
		default:
			sum.EntriesProcessed++
		}
	}

	return sum, nil
}

// List streams the archive's entry metadata without extracting anything.
func List(ctx context.Context, input string, opts Options) ([]container.Entry, error) {
	base, chain, err := resolveInput(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	if err := chain.Validate(opts.MaxChainLength); err != nil {
		return nil, err
	}
	p, err := build(chain)
	if err != nil {
		return nil, err
	}

	var throwaway Summary
	er, closeEntries, err := p.openReadStack(input, base, &throwaway, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closeEntries()
	}()

	var entries []container.Entry
	for {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		e, _, err := er.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, errors.Wrapf(err, "reading archive %q", input)
		}
		entries = append(entries, e)
	}
}

// failDecode attributes a job-level read failure to the summary. A stream
// that cannot be opened or decoded counts as corrupt unless the error
// already carries a more specific classification. Context cancellation is
// not an entry failure.
func failDecode(sum *Summary, name string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	kind := classify(err)
	if kind == KindIoFailure {
		kind = KindCorruptStream
	}
	sum.fail(name, kind, err)
}

// resolveInput derives the chain from the filename, sniffing content when
// the name alone is not enough.
func resolveInput(ctx context.Context, input string, opts Options) (string, format.Chain, error) {
	name := filepath.Base(input)
	base, chain, err := format.Parse(name)
	if err == nil {
		return base, chain, nil
	}
	if !errors.Is(err, format.ErrUnrecognizedExtension) {
		return "", nil, err
	}

	f, oerr := os.Open(input)
	if oerr != nil {
		return "", nil, errors.Wrapf(oerr, "cannot access input %q", input)
	}
	defer f.Close()
	chain, _, ierr := format.Infer(ctx, f)
	if ierr != nil {
		return "", nil, errors.Wrapf(format.ErrUnrecognizedExtension, "%q has no recognized extension and its content was not identified", name)
	}
	opts.Logger.Warn().Msgf("%s has no recognized extension, treating content as %s", name, chain)
	return name, chain, nil
}

// scanTopLevel runs the metadata pre-pass backing the placement decision.
// The returned map holds every top-level entry name and whether it denotes
// a directory.
func scanTopLevel(ctx context.Context, p *pipeline, input, base string, opts Options) (map[string]bool, error) {
	// The extraction pass re-reads the same bytes; only it reports progress.
	scanOpts := opts
	scanOpts.Progress = nil

	var throwaway Summary
	er, closeEntries, err := p.openReadStack(input, base, &throwaway, scanOpts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closeEntries()
	}()

	tops := make(map[string]bool)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, _, err := er.Next()
		if err == io.EOF {
			return tops, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading archive %q", input)
		}
		top := e.TopLevel()
		if top == "" || top == "." {
			continue
		}
		isDir := e.Kind == container.KindDir || strings.Contains(strings.TrimPrefix(e.Path, "./"), "/")
		tops[top] = tops[top] || isDir
	}
}
