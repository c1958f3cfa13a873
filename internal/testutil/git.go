// Package testutil builds throwaway git remotes for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/bitcache/internal"
)

// User is the identity used for every commit made in tests.
var User = internal.GitUserConfig{
	Name:  "Some User",
	Email: "some@example.com",
}

// Git runs git with args in dir and returns its trimmed stdout.
// The test fails if git exits nonzero.
func Git(t testing.TB, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), User.Env()...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), stderr.String())

	return strings.TrimSpace(string(output))
}

// InitBare creates an empty bare repository named name beneath root and returns its path.
func InitBare(t testing.TB, root, name string) string {
	t.Helper()

	path := filepath.Join(root, name)
	Git(t, root, "init", "--bare", "--quiet", path)
	return path
}

// NewRemote creates a bare repository with one commit containing files
// (relative slash-separated path to content) and returns its path.
func NewRemote(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	remote := InitBare(t, root, "remote.git")

	work := filepath.Join(root, "seed")
	Git(t, root, "clone", "--quiet", remote, work)

	if len(files) == 0 {
		files = map[string]string{"README.md": "bitcache test remote\n"}
	}
	for name, content := range files {
		path := filepath.Join(work, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	Git(t, work, "add", "-A")
	Git(t, work, "commit", "--quiet", "-m", "initial commit")
	Git(t, work, "push", "--quiet", "origin", "HEAD")

	require.NoError(t, os.RemoveAll(work))

	return remote
}

// Show returns the content of path at the head of remote.
func Show(t testing.TB, remote, path string) string {
	t.Helper()
	return Git(t, remote, "show", "HEAD:"+path)
}

// HasPath reports whether path exists at the head of remote.
func HasPath(t testing.TB, remote, path string) bool {
	t.Helper()

	cmd := exec.Command("git", "cat-file", "-e", "HEAD:"+path)
	cmd.Dir = remote
	return cmd.Run() == nil
}

// CommitCount returns the number of commits reachable from the head of remote.
func CommitCount(t testing.TB, remote string) int {
	t.Helper()

	n, err := strconv.Atoi(Git(t, remote, "rev-list", "--count", "HEAD"))
	require.NoError(t, err)
	return n
}

// HeadMessage returns the subject of the commit at the head of remote.
func HeadMessage(t testing.TB, remote string) string {
	t.Helper()
	return Git(t, remote, "log", "-1", "--format=%s")
}
