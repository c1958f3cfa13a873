// Package metadata implements the digest-keyed index stored at the root of a
// cache repository.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/ryanmoran/bitcache/internal"
)

// Entry records where the bitstream for one source digest is stored.
type Entry struct {
	MD5        string `json:"md5"`
	BinaryPath string `json:"binary_path"` // slash-separated, relative to the repository root
	SourceFile string `json:"source_file"`
	Timestamp  string `json:"timestamp"` // RFC3339, UTC
}

// Index maps a digest to its Entry. Every key equals the MD5 field of its value.
type Index map[string]Entry

// New produces an empty Index.
func New() Index {
	return make(Index)
}

// Load reads the index at path.
// A missing file yields an error matching internal.ErrNotFound,
// malformed content one matching internal.ErrParse.
func Load(path string) (Index, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, internal.Classify(internal.ErrNotFound, errors.Wrapf(err, "loading metadata %s", path))
	}
	if err != nil {
		return nil, internal.Classify(internal.ErrIO, errors.Wrapf(err, "loading metadata %s", path))
	}

	idx := New()
	err = json.Unmarshal(content, &idx)
	if err != nil {
		return nil, internal.Classify(internal.ErrParse, errors.Wrapf(err, "decoding metadata %s", path))
	}
	if idx == nil {
		// The document was a JSON null.
		idx = New()
	}

	for key, entry := range idx {
		if key != entry.MD5 {
			err := fmt.Errorf("key %s holds entry for %q", key, entry.MD5)
			return nil, internal.Classify(internal.ErrParse, errors.Wrapf(err, "decoding metadata %s", path))
		}
	}

	return idx, nil
}

// LoadOrEmpty is like Load but treats a missing file as an empty index.
func LoadOrEmpty(path string) (Index, error) {
	idx, err := Load(path)
	if errors.Is(err, internal.ErrNotFound) {
		return New(), nil
	}
	return idx, err
}

// Save overwrites path with the index.
// Keys are written in sorted order so successive versions diff cleanly.
func (idx Index) Save(path string) error {
	if idx == nil {
		idx = New()
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	err := enc.Encode(idx)
	if err != nil {
		return internal.Classify(internal.ErrIO, errors.Wrap(err, "encoding metadata"))
	}

	err = os.WriteFile(path, buf.Bytes(), 0644)
	return internal.Classify(internal.ErrIO, errors.Wrapf(err, "writing metadata %s", path))
}

// Put inserts e, replacing any entry already stored under the same digest.
func (idx Index) Put(e Entry) {
	idx[e.MD5] = e
}

// Lookup returns the entry for digest, or an error matching internal.ErrNotFound.
func (idx Index) Lookup(digest string) (Entry, error) {
	e, ok := idx[digest]
	if !ok {
		return Entry{}, internal.Classify(internal.ErrNotFound, fmt.Errorf("no binary found for MD5: %s", digest))
	}
	return e, nil
}

// Digests returns the index keys in lexicographic order.
func (idx Index) Digests() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns the entries ordered by digest.
func (idx Index) Entries() []Entry {
	entries := make([]Entry, 0, len(idx))
	for _, k := range idx.Digests() {
		entries = append(entries, idx[k])
	}
	return entries
}
