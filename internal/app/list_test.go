package app

import (
	"testing"

	"github.com/pakit/pakit/internal/container"
	"github.com/stretchr/testify/assert"
)

func TestEntryLine(t *testing.T) {
	testCases := []struct {
		desc     string
		entry    container.Entry
		expected string
	}{
		{
			desc:     "directory",
			entry:    container.Entry{Path: "proj", Kind: container.KindDir},
			expected: "proj/",
		},
		{
			desc:     "symlink",
			entry:    container.Entry{Path: "proj/link", Kind: container.KindSymlink, LinkTarget: "a.txt"},
			expected: "proj/link -> a.txt",
		},
		{
			desc:     "file with known size",
			entry:    container.Entry{Path: "proj/a.txt", Kind: container.KindRegular, Size: 5},
			expected: "proj/a.txt (5 bytes)",
		},
		{
			desc:     "pass-through file with unknown size",
			entry:    container.Entry{Path: "notes", Kind: container.KindRegular, Size: -1},
			expected: "notes",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, entryLine(tt.entry))
		})
	}
}
