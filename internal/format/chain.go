package format

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxChainLength bounds chain length when the caller does not
// override it. Anything longer is almost certainly a pathological filename.
const DefaultMaxChainLength = 8

// ErrUnrecognizedExtension is returned by Parse when no trailing segment of
// the filename matches a known extension.
var ErrUnrecognizedExtension = errors.New("no recognized extension")

// InvalidChainError reports a chain that breaks the combination rules.
type InvalidChainError struct {
	Chain  Chain
	Reason string
}

func (e *InvalidChainError) Error() string {
	return fmt.Sprintf("invalid format chain %s: %s", e.Chain, e.Reason)
}

// Chain is an ordered sequence of formats as their extensions appear in the
// filename, left to right. The first element is the innermost stage (applied
// first on compress); a container, if present, must occupy that position.
type Chain []Format

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = f.Ext()
	}
	return "." + strings.Join(parts, ".")
}

// Container returns the chain's container format, if any.
func (c Chain) Container() (Format, bool) {
	for _, f := range c {
		if f.IsContainer() {
			return f, true
		}
	}
	return 0, false
}

// Transforms returns the chain's transform formats in inner-to-outer order.
func (c Chain) Transforms() []Format {
	var out []Format
	for _, f := range c {
		if !f.IsContainer() {
			out = append(out, f)
		}
	}
	return out
}

// Parse splits a filename into its base name and the chain of recognized
// trailing extensions. Matching is greedy from the rightmost dot segment
// inward and case-insensitive; the scan stops at the first unknown segment.
// Composite aliases (tgz, tzst, ...) expand to their component formats so
// validation can reason about them uniformly.
func Parse(filename string) (string, Chain, error) {
	base := filename
	var chain Chain

	for {
		idx := strings.LastIndexByte(base, '.')
		if idx <= 0 || idx == len(base)-1 {
			break
		}
		formats, ok := extensions[strings.ToLower(base[idx+1:])]
		if !ok {
			break
		}
		// Scanning right to left, each matched extension goes in front.
		next := make(Chain, 0, len(formats)+len(chain))
		next = append(next, formats...)
		next = append(next, chain...)
		chain = next
		base = base[:idx]
	}

	if len(chain) == 0 {
		return filename, nil, errors.Wrapf(ErrUnrecognizedExtension, "%q", filename)
	}
	return base, chain, nil
}

// Validate checks the chain against the combination rules: non-empty, at
// most maxLen formats, at most one container, and the container (if any) in
// the innermost position with only transforms after it. Repeated adjacent
// transforms (.xz.xz) are wasteful but legal.
func (c Chain) Validate(maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxChainLength
	}
	if len(c) == 0 {
		return &InvalidChainError{Chain: c, Reason: "empty chain"}
	}
	if len(c) > maxLen {
		return &InvalidChainError{Chain: c, Reason: fmt.Sprintf("chain longer than %d formats", maxLen)}
	}
	for i, f := range c {
		if f.IsContainer() && i != 0 {
			return &InvalidChainError{
				Chain:  c,
				Reason: fmt.Sprintf("%s must be the innermost format", f),
			}
		}
	}
	return nil
}
