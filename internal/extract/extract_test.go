package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pakit/pakit/internal/container"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacer(t *testing.T, policy OverwritePolicy) *Placer {
	t.Helper()
	return &Placer{Root: t.TempDir(), Policy: policy, Logger: zerolog.Nop()}
}

func TestPlaceTree(t *testing.T) {
	p := newPlacer(t, nil)
	mtime := time.Unix(1700000000, 0)

	_, _, err := p.Place(container.Entry{Path: "proj", Kind: container.KindDir, Mode: 0o750}, nil)
	require.NoError(t, err)
	n, skipped, err := p.Place(container.Entry{Path: "proj/a.txt", Kind: container.KindRegular, Mode: 0o640, ModTime: mtime}, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, int64(5), n)
	_, _, err = p.Place(container.Entry{Path: "proj/link", Kind: container.KindSymlink, LinkTarget: "a.txt"}, nil)
	require.NoError(t, err)

	fi, err := os.Stat(filepath.Join(p.Root, "proj"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), fi.Mode().Perm())

	fi, err = os.Stat(filepath.Join(p.Root, "proj", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
	assert.True(t, fi.ModTime().Equal(mtime))

	target, err := os.Readlink(filepath.Join(p.Root, "proj", "link"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", target)

	body, err := os.ReadFile(filepath.Join(p.Root, "proj", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestPlaceCreatesMissingParents(t *testing.T) {
	p := newPlacer(t, nil)
	// No explicit dir entry for "deep" precedes the file.
	_, _, err := p.Place(container.Entry{Path: "deep/nested/file.txt", Kind: container.KindRegular}, strings.NewReader("x"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(p.Root, "deep", "nested", "file.txt"))
}

func TestPlaceRejectsTraversal(t *testing.T) {
	testCases := []struct {
		desc string
		path string
	}{
		{desc: "dotdot escape", path: "../../etc/passwd"},
		{desc: "nested dotdot escape", path: "ok/../../../etc/passwd"},
		{desc: "absolute", path: "/etc/passwd"},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			p := newPlacer(t, nil)
			_, _, err := p.Place(container.Entry{Path: tt.path, Kind: container.KindRegular}, strings.NewReader("evil"))
			assert.True(t, errors.Is(err, ErrPathTraversal))
			// Nothing may be written anywhere for a rejected entry.
			entries, rerr := os.ReadDir(p.Root)
			require.NoError(t, rerr)
			assert.Empty(t, entries)
		})
	}
}

func TestPlaceRejectsSymlinkedParent(t *testing.T) {
	outside := t.TempDir()
	p := newPlacer(t, nil)

	// A link pointing out of the root is legal on its own.
	_, _, err := p.Place(container.Entry{Path: "s", Kind: container.KindSymlink, LinkTarget: outside}, nil)
	require.NoError(t, err)

	// Writing beneath it would land outside the root.
	_, _, err = p.Place(container.Entry{Path: "s/evil.txt", Kind: container.KindRegular}, strings.NewReader("evil"))
	assert.True(t, errors.Is(err, ErrPathTraversal))
	assert.NoFileExists(t, filepath.Join(outside, "evil.txt"))

	_, _, err = p.Place(container.Entry{Path: "s/sub", Kind: container.KindDir, Mode: 0o755}, nil)
	assert.True(t, errors.Is(err, ErrPathTraversal))
	assert.NoDirExists(t, filepath.Join(outside, "sub"))
}

func TestPlaceInternalDotDotStaysInside(t *testing.T) {
	p := newPlacer(t, nil)
	// Normalizes to b.txt without leaving the root.
	_, _, err := p.Place(container.Entry{Path: "a/../b.txt", Kind: container.KindRegular}, strings.NewReader("ok"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(p.Root, "b.txt"))
}

func TestPlaceOverwritePolicy(t *testing.T) {
	testCases := []struct {
		desc     string
		decision Decision
		body     string
		skipped  bool
		aborted  bool
	}{
		{desc: "allow replaces", decision: Allow, body: "new"},
		{desc: "skip keeps", decision: Skip, body: "old", skipped: true},
		{desc: "abort stops", decision: Abort, body: "old", aborted: true},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			var asked []string
			p := newPlacer(t, func(path string) Decision {
				asked = append(asked, path)
				return tt.decision
			})
			target := filepath.Join(p.Root, "f.txt")
			require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

			_, skipped, err := p.Place(container.Entry{Path: "f.txt", Kind: container.KindRegular}, strings.NewReader("new"))
			assert.Len(t, asked, 1)
			assert.Equal(t, tt.skipped, skipped)
			if tt.aborted {
				assert.True(t, errors.Is(err, ErrAborted))
			} else {
				require.NoError(t, err)
			}
			body, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestPlaceExistingDirNoQuestion(t *testing.T) {
	p := newPlacer(t, func(string) Decision {
		t.Fatal("an existing directory must not trigger a question")
		return Abort
	})
	require.NoError(t, os.Mkdir(filepath.Join(p.Root, "d"), 0o755))
	_, _, err := p.Place(container.Entry{Path: "d", Kind: container.KindDir, Mode: 0o755}, nil)
	require.NoError(t, err)
}

func TestTarget(t *testing.T) {
	testCases := []struct {
		desc     string
		tops     map[string]bool
		expected string
	}{
		{
			desc:     "single top-level directory collapses",
			tops:     map[string]bool{"a": true},
			expected: "dest",
		},
		{
			desc:     "multiple top-level entries nest under base name",
			tops:     map[string]bool{"a": true, "b": true},
			expected: filepath.Join("dest", "arch"),
		},
		{
			desc:     "single top-level file nests under base name",
			tops:     map[string]bool{"file.txt": false},
			expected: filepath.Join("dest", "arch"),
		},
		{
			desc:     "empty archive nests under base name",
			tops:     map[string]bool{},
			expected: filepath.Join("dest", "arch"),
		},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, Target("dest", "arch", tt.tops))
		})
	}
}
