package metadata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/bitcache/internal"
	"github.com/ryanmoran/bitcache/internal/metadata"
)

func sampleIndex() metadata.Index {
	idx := metadata.New()
	idx.Put(metadata.Entry{
		MD5:        "5d41402abc4b2a76b9719d911017c592",
		BinaryPath: "artifacts/out.bit",
		SourceFile: "a.bin",
		Timestamp:  "2026-01-02T03:04:05Z",
	})
	idx.Put(metadata.Entry{
		MD5:        "d41d8cd98f00b204e9800998ecf8427e",
		BinaryPath: "empty/top.bit",
		SourceFile: "empty.v",
		Timestamp:  "2026-01-02T03:04:06Z",
	})
	return idx
}

func TestSaveLoad(t *testing.T) {
	t.Run("round-trips every entry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		idx := sampleIndex()

		require.NoError(t, idx.Save(path))

		got, err := metadata.Load(path)
		require.NoError(t, err)
		if diff := cmp.Diff(idx, got); diff != "" {
			t.Errorf("loaded index mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("writes a flat object with sorted keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		require.NoError(t, sampleIndex().Save(path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)

		require.Equal(t, `{
  "5d41402abc4b2a76b9719d911017c592": {
    "md5": "5d41402abc4b2a76b9719d911017c592",
    "binary_path": "artifacts/out.bit",
    "source_file": "a.bin",
    "timestamp": "2026-01-02T03:04:05Z"
  },
  "d41d8cd98f00b204e9800998ecf8427e": {
    "md5": "d41d8cd98f00b204e9800998ecf8427e",
    "binary_path": "empty/top.bit",
    "source_file": "empty.v",
    "timestamp": "2026-01-02T03:04:06Z"
  }
}
`, string(content))
	})

	t.Run("saves the same bytes on repeated writes", func(t *testing.T) {
		dir := t.TempDir()
		first := filepath.Join(dir, "first.json")
		second := filepath.Join(dir, "second.json")

		require.NoError(t, sampleIndex().Save(first))
		require.NoError(t, sampleIndex().Save(second))

		a, err := os.ReadFile(first)
		require.NoError(t, err)
		b, err := os.ReadFile(second)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0644))

		require.NoError(t, metadata.New().Save(path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "{}\n", string(content))
	})

	t.Run("a nil index saves as an empty object", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		var idx metadata.Index
		require.NoError(t, idx.Save(path))

		got, err := metadata.Load(path)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("Save fails when the directory is missing", func(t *testing.T) {
		err := sampleIndex().Save(filepath.Join(t.TempDir(), "missing", internal.MetadataFileName))
		require.ErrorIs(t, err, internal.ErrIO)
	})
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, content string) string {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("reads files written by other tools", func(t *testing.T) {
		path := write(t, `{"abc":{"md5":"abc","binary_path":"x/y.bit","source_file":"y.v","timestamp":"2025-05-05T05:05:05+00:00"}}`)

		idx, err := metadata.Load(path)
		require.NoError(t, err)
		require.Equal(t, metadata.Index{
			"abc": {MD5: "abc", BinaryPath: "x/y.bit", SourceFile: "y.v", Timestamp: "2025-05-05T05:05:05+00:00"},
		}, idx)
	})

	t.Run("treats null as empty", func(t *testing.T) {
		idx, err := metadata.Load(write(t, "null"))
		require.NoError(t, err)
		require.NotNil(t, idx)
		require.Empty(t, idx)
	})

	t.Run("failure cases", func(t *testing.T) {
		t.Run("when the file is missing", func(t *testing.T) {
			_, err := metadata.Load(filepath.Join(t.TempDir(), internal.MetadataFileName))
			require.ErrorIs(t, err, internal.ErrNotFound)
		})

		t.Run("when the JSON is malformed", func(t *testing.T) {
			_, err := metadata.Load(write(t, `{"abc": {`))
			require.ErrorIs(t, err, internal.ErrParse)
		})

		t.Run("when the document is not an object", func(t *testing.T) {
			_, err := metadata.Load(write(t, `["abc"]`))
			require.ErrorIs(t, err, internal.ErrParse)
		})

		t.Run("when a key disagrees with its entry", func(t *testing.T) {
			_, err := metadata.Load(write(t, `{"abc":{"md5":"def","binary_path":"a","source_file":"b","timestamp":"c"}}`))
			require.ErrorIs(t, err, internal.ErrParse)
			require.ErrorContains(t, err, "key abc")
		})

		t.Run("when the path is a directory", func(t *testing.T) {
			_, err := metadata.Load(t.TempDir())
			require.ErrorIs(t, err, internal.ErrIO)
		})
	})
}

func TestLoadOrEmpty(t *testing.T) {
	t.Run("returns an empty index for a missing file", func(t *testing.T) {
		idx, err := metadata.LoadOrEmpty(filepath.Join(t.TempDir(), internal.MetadataFileName))
		require.NoError(t, err)
		require.NotNil(t, idx)
		require.Empty(t, idx)
	})

	t.Run("still reports malformed files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), internal.MetadataFileName)
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

		_, err := metadata.LoadOrEmpty(path)
		require.ErrorIs(t, err, internal.ErrParse)
	})
}

func TestIndex(t *testing.T) {
	t.Run("Put replaces an entry with the same digest", func(t *testing.T) {
		idx := sampleIndex()
		idx.Put(metadata.Entry{
			MD5:        "5d41402abc4b2a76b9719d911017c592",
			BinaryPath: "elsewhere/new.bit",
			SourceFile: "renamed.bin",
			Timestamp:  "2026-02-02T00:00:00Z",
		})

		require.Len(t, idx, 2)
		e, err := idx.Lookup("5d41402abc4b2a76b9719d911017c592")
		require.NoError(t, err)
		require.Equal(t, "elsewhere/new.bit", e.BinaryPath)
		require.Equal(t, "renamed.bin", e.SourceFile)
	})

	t.Run("Lookup reports unknown digests", func(t *testing.T) {
		_, err := sampleIndex().Lookup("00000000000000000000000000000000")
		require.ErrorIs(t, err, internal.ErrNotFound)
		require.EqualError(t, err, "no binary found for MD5: 00000000000000000000000000000000")
	})

	t.Run("Digests and Entries are sorted", func(t *testing.T) {
		idx := sampleIndex()
		idx.Put(metadata.Entry{MD5: "0000", BinaryPath: "z"})

		require.Equal(t, []string{
			"0000",
			"5d41402abc4b2a76b9719d911017c592",
			"d41d8cd98f00b204e9800998ecf8427e",
		}, idx.Digests())

		entries := idx.Entries()
		require.Len(t, entries, 3)
		require.Equal(t, "z", entries[0].BinaryPath)
		require.Equal(t, "empty/top.bit", entries[2].BinaryPath)
	})
}
