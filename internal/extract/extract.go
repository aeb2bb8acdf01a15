// Package extract materializes container entries under a destination root,
// enforcing path safety and restoring metadata. The decision to overwrite
// existing files is injected; this package never prompts.
package extract

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pakit/pakit/internal/container"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Decision is an answer to one overwrite conflict.
type Decision int

const (
	// Allow replaces the existing file.
	Allow Decision = iota
	// Skip leaves the existing file and drops the entry.
	Skip
	// Abort stops the whole job.
	Abort
)

// OverwritePolicy decides what to do when an entry's target already exists.
type OverwritePolicy func(path string) Decision

// ErrPathTraversal marks an entry whose path would escape the destination
// root. Such entries are never written.
var ErrPathTraversal = errors.New("entry path escapes destination")

// ErrAborted is returned when the overwrite policy aborts the job.
var ErrAborted = errors.New("aborted by overwrite policy")

// Placer writes entries under Root.
type Placer struct {
	Root   string
	Policy OverwritePolicy
	Logger zerolog.Logger
}

// Place materializes one entry. It returns the number of content bytes
// written and whether the entry was skipped by the overwrite policy.
func (p *Placer) Place(e container.Entry, data io.Reader) (int64, bool, error) {
	target, err := secureJoin(p.Root, e.Path)
	if err != nil {
		return 0, false, err
	}
	if err := p.verifyParent(target); err != nil {
		return 0, false, err
	}

	if skip, err := p.clearTarget(e, target); err != nil || skip {
		return 0, skip, err
	}

	switch e.Kind {
	case container.KindDir:
		if err := os.MkdirAll(target, dirMode(e)); err != nil {
			return 0, false, errors.Wrapf(err, "creating directory %q", target)
		}
		// MkdirAll keeps existing modes; apply the recorded one regardless.
		if err := os.Chmod(target, dirMode(e)); err != nil {
			return 0, false, errors.Wrapf(err, "restoring mode on %q", target)
		}
		return 0, false, nil
	case container.KindRegular:
		return p.placeFile(e, target, data)
	case container.KindSymlink:
		return 0, false, p.placeSymlink(e, target)
	}
	return 0, false, errors.Errorf("cannot place %s entry %q", e.Kind, e.Path)
}

func (p *Placer) placeFile(e container.Entry, target string, data io.Reader) (int64, bool, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, false, errors.Wrapf(err, "creating parent of %q", target)
	}

	mode := e.Mode.Perm()
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, false, errors.Wrapf(err, "creating %q", target)
	}

	var n int64
	if data != nil {
		n, err = io.Copy(f, data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, false, errors.Wrapf(err, "writing %q", target)
	}

	if !e.ModTime.IsZero() {
		if err := os.Chtimes(target, e.ModTime, e.ModTime); err != nil {
			p.Logger.Warn().Err(err).Msgf("Cannot restore timestamps on %s", target)
		}
	}
	return n, false, nil
}

func (p *Placer) placeSymlink(e container.Entry, target string) error {
	if e.LinkTarget == "" {
		return errors.Errorf("symlink target is empty for %q", e.Path)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %q", target)
	}
	if _, err := os.Lstat(target); err == nil {
		if err := os.Remove(target); err != nil {
			return errors.Wrapf(err, "replacing %q", target)
		}
	}
	return errors.Wrapf(os.Symlink(e.LinkTarget, target), "creating symlink %q", target)
}

// clearTarget consults the overwrite policy when the target already exists.
// An existing directory satisfies a directory entry without a question.
func (p *Placer) clearTarget(e container.Entry, target string) (bool, error) {
	fi, err := os.Lstat(target)
	if err != nil {
		return false, nil
	}
	if e.Kind == container.KindDir && fi.IsDir() {
		return false, nil
	}
	if e.Kind == container.KindSymlink {
		// placeSymlink replaces links in place; no data is lost that the
		// policy could protect.
		return false, nil
	}

	decision := Allow
	if p.Policy != nil {
		decision = p.Policy(target)
	}
	switch decision {
	case Skip:
		p.Logger.Debug().Msgf("Skipping existing %s", target)
		return true, nil
	case Abort:
		return false, errors.Wrapf(ErrAborted, "%q exists", target)
	}
	if fi.IsDir() != (e.Kind == container.KindDir) {
		// Kind changed between archive and disk; clear whatever is there.
		if err := os.RemoveAll(target); err != nil {
			return false, errors.Wrapf(err, "replacing %q", target)
		}
	}
	return false, nil
}

// verifyParent rejects targets reached through a symlinked directory. The
// lexical check in secureJoin cannot see links laid down by earlier entries,
// so every existing component between Root and the target's parent must be a
// real directory.
func (p *Placer) verifyParent(target string) error {
	rel, err := filepath.Rel(p.Root, filepath.Dir(target))
	if err != nil {
		return errors.Wrapf(err, "relativizing %q", target)
	}
	if rel == "." {
		return nil
	}
	current := p.Root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		fi, err := os.Lstat(current)
		if err != nil {
			if os.IsNotExist(err) {
				// Remaining components are created fresh by MkdirAll.
				return nil
			}
			return errors.Wrapf(err, "inspecting %q", current)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return errors.Wrapf(ErrPathTraversal, "%q is reached through symlink %q", target, current)
		}
	}
	return nil
}

func dirMode(e container.Entry) os.FileMode {
	if m := e.Mode.Perm(); m != 0 {
		return m
	}
	return 0o755
}

// secureJoin normalizes an entry path and anchors it under root, rejecting
// absolute paths and anything that climbs out (zip-slip).
func secureJoin(root, name string) (string, error) {
	name = filepath.ToSlash(name)
	if path.IsAbs(name) {
		return "", errors.Wrapf(ErrPathTraversal, "absolute path %q", name)
	}
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Wrapf(ErrPathTraversal, "%q", name)
	}
	return filepath.Join(root, filepath.FromSlash(cleaned)), nil
}
