package container

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pakit/pakit/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntries = []struct {
	entry Entry
	data  string
}{
	{entry: Entry{Path: "proj", Kind: KindDir, Mode: 0o755, ModTime: time.Unix(1700000000, 0)}},
	{entry: Entry{Path: "proj/README.md", Kind: KindRegular, Mode: 0o644, ModTime: time.Unix(1700000000, 0)}, data: "hello archive"},
	{entry: Entry{Path: "proj/bin", Kind: KindDir, Mode: 0o755, ModTime: time.Unix(1700000000, 0)}},
	{entry: Entry{Path: "proj/bin/run", Kind: KindRegular, Mode: 0o755, ModTime: time.Unix(1700000000, 0)}, data: "#!/bin/sh\n"},
	{entry: Entry{Path: "proj/latest", Kind: KindSymlink, Mode: 0o777, ModTime: time.Unix(1700000000, 0), LinkTarget: "bin/run"}},
}

func writeTestArchive(t *testing.T, c Container) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	require.NoError(t, err)
	for _, te := range testEntries {
		e := te.entry
		var data io.Reader
		if e.Kind == KindRegular {
			e.Size = int64(len(te.data))
			data = strings.NewReader(te.data)
		}
		require.NoError(t, w.WriteEntry(e, data))
	}
	require.NoError(t, w.Close())
	return &buf
}

func readAllEntries(t *testing.T, r EntryReader) map[string]struct {
	entry Entry
	data  string
} {
	t.Helper()
	out := make(map[string]struct {
		entry Entry
		data  string
	})
	for {
		e, data, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		var body []byte
		if data != nil {
			body, err = io.ReadAll(data)
			require.NoError(t, err)
		}
		out[e.Path] = struct {
			entry Entry
			data  string
		}{entry: e, data: string(body)}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	testCases := []struct {
		desc   string
		format format.Format
	}{
		{desc: "tar", format: format.Tar},
		{desc: "zip", format: format.Zip},
	}
	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			c, ok := For(tt.format)
			require.True(t, ok)
			assert.Equal(t, tt.format, c.Format())

			buf := writeTestArchive(t, c)
			r, err := c.OpenReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer r.Close()

			got := readAllEntries(t, r)
			require.Len(t, got, len(testEntries))
			for _, te := range testEntries {
				e, ok := got[te.entry.Path]
				require.True(t, ok, "missing entry %q", te.entry.Path)
				assert.Equal(t, te.entry.Kind, e.entry.Kind, te.entry.Path)
				assert.Equal(t, te.entry.Mode, e.entry.Mode, te.entry.Path)
				assert.Equal(t, te.entry.LinkTarget, e.entry.LinkTarget, te.entry.Path)
				assert.Equal(t, te.data, e.data, te.entry.Path)
			}
		})
	}
}

// A zip nested under compression transforms arrives as a plain stream; the
// adapter has to spool it before it can seek the central directory.
func TestZipReaderFromPlainStream(t *testing.T) {
	c, ok := For(format.Zip)
	require.True(t, ok)

	buf := writeTestArchive(t, c)
	stream := io.MultiReader(buf) // hides ReaderAt

	r, err := c.OpenReader(stream)
	require.NoError(t, err)
	got := readAllEntries(t, r)
	assert.Len(t, got, len(testEntries))
	require.NoError(t, r.Close())
}

func TestUnsupportedEntryRejected(t *testing.T) {
	for _, f := range []format.Format{format.Tar, format.Zip} {
		c, _ := For(f)
		var buf bytes.Buffer
		w, err := c.NewWriter(&buf)
		require.NoError(t, err)
		err = w.WriteEntry(Entry{Path: "dev/null", Kind: KindUnsupported}, nil)
		assert.Error(t, err, f.String())
	}
}

func TestTopLevel(t *testing.T) {
	assert.Equal(t, "a", Entry{Path: "a/x/y"}.TopLevel())
	assert.Equal(t, "a", Entry{Path: "./a/x"}.TopLevel())
	assert.Equal(t, "file.txt", Entry{Path: "file.txt"}.TopLevel())
}

func TestSingle(t *testing.T) {
	var buf bytes.Buffer
	w, err := Single{}.NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.WriteEntry(Entry{Path: "blob", Kind: KindRegular}, strings.NewReader("raw bytes")))
	assert.Error(t, w.WriteEntry(Entry{Path: "extra", Kind: KindRegular}, strings.NewReader("nope")),
		"a second entry needs an archive format")
	require.NoError(t, w.Close())
	assert.Equal(t, "raw bytes", buf.String())

	r, err := Single{Name: "blob"}.OpenReader(strings.NewReader("raw bytes"))
	require.NoError(t, err)
	e, data, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "blob", e.Path)
	assert.Equal(t, KindRegular, e.Kind)
	body, err := io.ReadAll(data)
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(body))
	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
	require.NoError(t, r.Close())
}

func TestSingleRejectsDir(t *testing.T) {
	var buf bytes.Buffer
	w, err := Single{}.NewWriter(&buf)
	require.NoError(t, err)
	assert.Error(t, w.WriteEntry(Entry{Path: "folder", Kind: KindDir}, nil))
}
