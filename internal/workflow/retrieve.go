package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryanmoran/bitcache/internal"
	"github.com/ryanmoran/bitcache/internal/git"
	"github.com/ryanmoran/bitcache/internal/metadata"
)

// GetRequest identifies a bitstream to retrieve.
type GetRequest struct {
	Remote string
	Digest string
	Dest   string // directory to copy into; the working directory when empty
}

// GetResult describes a retrieved bitstream.
type GetResult struct {
	Path  string // local path of the copy
	Entry metadata.Entry
}

type Retriever struct {
	gateway  git.Gateway
	writer   internal.Writer
	tempRoot string
}

// NewRetriever returns a Retriever that reaches remotes through gateway and
// clones them beneath tempRoot (the OS temp directory when empty).
func NewRetriever(gateway git.Gateway, w internal.Writer, tempRoot string) *Retriever {
	return &Retriever{
		gateway:  gateway,
		writer:   w,
		tempRoot: tempRoot,
	}
}

// Get copies the bitstream recorded for req.Digest out of the repository at
// req.Remote into req.Dest, under the stored file's own name. A file of that
// name already in req.Dest is replaced.
//
// Get fails with an error matching internal.ErrNotFound when the repository
// has no metadata file, the digest is not in it, or the stored file is
// missing from the checkout.
func (r *Retriever) Get(ctx context.Context, req GetRequest) (GetResult, error) {
	r.writer.Printf("Retrieving bitstream for MD5: %s\n", req.Digest)

	destDir := req.Dest
	if destDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return GetResult{}, fmt.Errorf("failed to get current working directory: %w: %w", internal.ErrIO, err)
		}
		destDir = wd
	}

	cleanup := internal.NewCleanupManager()
	defer cleanup.Execute()

	repoDir, idx, err := r.checkout(ctx, cleanup, req.Remote)
	if err != nil {
		return GetResult{}, err
	}

	entry, err := idx.Lookup(req.Digest)
	if err != nil {
		return GetResult{}, err
	}

	stored, err := storedPath(repoDir, entry.BinaryPath)
	if err != nil {
		return GetResult{}, err
	}

	info, err := os.Stat(stored)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		return GetResult{}, fmt.Errorf("binary file not found: %s: %w\nThe metadata references a file that is not in the repository", entry.BinaryPath, internal.ErrNotFound)
	}
	if err != nil {
		return GetResult{}, fmt.Errorf("failed to stat binary file %s: %w: %w", entry.BinaryPath, internal.ErrIO, err)
	}

	name := filepath.Base(stored)
	dest := filepath.Join(destDir, name)

	r.writer.Printf("Copying %s to %s\n", name, dest)
	err = copyFile(stored, dest)
	if err != nil {
		return GetResult{}, fmt.Errorf("failed to copy %s: %w", dest, err)
	}

	r.writer.Println("Successfully retrieved bitstream:")
	r.writer.Printf("  source_file = %s\n", entry.SourceFile)
	r.writer.Printf("  md5 = %s\n", entry.MD5)
	r.writer.Printf("  timestamp = %s\n", entry.Timestamp)
	r.writer.Printf("  saved_to = %s\n", dest)

	return GetResult{Path: dest, Entry: entry}, nil
}

// List returns every entry of the metadata index at remote, ordered by digest.
// A repository without a metadata file yields an error matching internal.ErrNotFound.
func (r *Retriever) List(ctx context.Context, remote string) ([]metadata.Entry, error) {
	cleanup := internal.NewCleanupManager()
	defer cleanup.Execute()

	_, idx, err := r.checkout(ctx, cleanup, remote)
	if err != nil {
		return nil, err
	}

	return idx.Entries(), nil
}

// checkout clones remote into a temporary directory owned by cleanup and
// loads its metadata index, which must exist.
func (r *Retriever) checkout(ctx context.Context, cleanup *internal.CleanupManager, remote string) (string, metadata.Index, error) {
	tempDir, err := cleanup.TempDir("checkout", r.tempRoot)
	if err != nil {
		return "", nil, err
	}
	repoDir := filepath.Join(tempDir, "repo")

	r.writer.Printf("Cloning repository: %s\n", remote)
	err = r.gateway.Clone(ctx, remote, repoDir)
	if err != nil {
		return "", nil, err
	}

	idx, err := metadata.Load(filepath.Join(repoDir, internal.MetadataFileName))
	if err != nil {
		return "", nil, fmt.Errorf("metadata file not usable in repository %s: %w", remote, err)
	}

	return repoDir, idx, nil
}

// storedPath resolves a slash-separated path from the metadata index inside
// repoDir, rejecting paths that lead outside it.
func storedPath(repoDir, binaryPath string) (string, error) {
	path := filepath.Join(repoDir, filepath.FromSlash(binaryPath))

	rel, err := filepath.Rel(repoDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("stored path %q is outside the repository: %w", binaryPath, internal.ErrInvalidInput)
	}

	return path, nil
}
