// Package digest computes the content hashes used as metadata index keys.
//
// The hash is MD5. It serves purely as a content-addressing key; nothing in
// bitcache relies on its collision resistance.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"

	"github.com/ryanmoran/bitcache/internal"
)

// Size is the length of a rendered digest in hex characters.
const Size = 2 * md5.Size

// File reads the whole file at path and returns its digest.
func File(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", internal.Classify(internal.ErrIO, errors.Wrapf(err, "reading %s", path))
	}
	return Bytes(content), nil
}

// Bytes returns the lowercase, zero-padded hex digest of b.
func Bytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether s has the shape of a digest produced by this package.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
