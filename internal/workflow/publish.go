package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ryanmoran/bitcache/internal"
	"github.com/ryanmoran/bitcache/internal/digest"
	"github.com/ryanmoran/bitcache/internal/git"
	"github.com/ryanmoran/bitcache/internal/metadata"
)

// PublishRequest describes one bitstream to publish.
type PublishRequest struct {
	Remote    string // URL or path of the cache repository
	Source    string // file whose digest keys the entry
	Bitstream string // artifact to store
	Path      string // directory inside the repository, relative to its root
}

// PublishResult is what Publish recorded.
type PublishResult struct {
	Digest string
	Entry  metadata.Entry
}

type Publisher struct {
	gateway  git.Gateway
	writer   internal.Writer
	tempRoot string
	now      func() time.Time
}

// NewPublisher returns a Publisher that reaches remotes through gateway and
// clones them beneath tempRoot (the OS temp directory when empty).
func NewPublisher(gateway git.Gateway, w internal.Writer, tempRoot string) *Publisher {
	return &Publisher{
		gateway:  gateway,
		writer:   w,
		tempRoot: tempRoot,
		now:      time.Now,
	}
}

// Publish stores req.Bitstream in the repository at req.Remote under
// req.Path and records it in the metadata index keyed by the digest of
// req.Source. An existing entry for the same digest is replaced, as is any
// file already at the destination path. The change is committed and pushed;
// if the push is rejected nothing is kept.
func (p *Publisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	p.writer.Println("Publishing bitstream...")

	name, err := bitstreamName(req.Bitstream)
	if err != nil {
		return PublishResult{}, err
	}

	target, err := targetDir(req.Path)
	if err != nil {
		return PublishResult{}, err
	}

	if filepath.Join(target, name) == internal.MetadataFileName {
		return PublishResult{}, fmt.Errorf("bitstream %q would replace %s: %w", req.Bitstream, internal.MetadataFileName, internal.ErrInvalidInput)
	}

	info, err := os.Stat(req.Bitstream)
	if err != nil {
		return PublishResult{}, fmt.Errorf("failed to read bitstream %q: %w: %w", req.Bitstream, internal.ErrIO, err)
	}
	if info.IsDir() {
		return PublishResult{}, fmt.Errorf("bitstream %q is a directory: %w", req.Bitstream, internal.ErrInvalidInput)
	}

	p.writer.Printf("Computing MD5 of source file: %s\n", req.Source)
	sum, err := digest.File(req.Source)
	if err != nil {
		return PublishResult{}, fmt.Errorf("failed to compute digest of source %q: %w", req.Source, err)
	}
	p.writer.Printf("MD5: %s\n", sum)

	cleanup := internal.NewCleanupManager()
	defer cleanup.Execute()

	tempDir, err := cleanup.TempDir("checkout", p.tempRoot)
	if err != nil {
		return PublishResult{}, err
	}
	repoDir := filepath.Join(tempDir, "repo")

	p.writer.Printf("Cloning repository: %s\n", req.Remote)
	err = p.gateway.Clone(ctx, req.Remote, repoDir)
	if err != nil {
		return PublishResult{}, err
	}

	metadataPath := filepath.Join(repoDir, internal.MetadataFileName)
	idx, err := metadata.LoadOrEmpty(metadataPath)
	if err != nil {
		return PublishResult{}, err
	}

	fullTarget := filepath.Join(repoDir, target)
	err = os.MkdirAll(fullTarget, 0755)
	if err != nil {
		return PublishResult{}, fmt.Errorf("failed to create directory %q in repository: %w: %w", target, internal.ErrIO, err)
	}

	dest := filepath.Join(fullTarget, name)
	rel, err := filepath.Rel(repoDir, dest)
	if err != nil {
		return PublishResult{}, fmt.Errorf("failed to resolve %q in repository: %w: %w", dest, internal.ErrInvalidInput, err)
	}
	rel = filepath.ToSlash(rel)

	p.writer.Printf("Copying bitstream to: %s\n", rel)
	err = copyFile(req.Bitstream, dest)
	if err != nil {
		return PublishResult{}, fmt.Errorf("failed to copy bitstream %q: %w", req.Bitstream, err)
	}

	entry := metadata.Entry{
		MD5:        sum,
		BinaryPath: rel,
		SourceFile: filepath.Base(req.Source),
		Timestamp:  p.now().UTC().Format(time.RFC3339),
	}
	idx.Put(entry)

	p.writer.Println("Updating metadata...")
	err = idx.Save(metadataPath)
	if err != nil {
		return PublishResult{}, err
	}

	p.writer.Println("Committing and pushing changes...")
	err = p.gateway.StageAll(ctx, repoDir)
	if err != nil {
		return PublishResult{}, err
	}

	err = p.gateway.Commit(ctx, repoDir, fmt.Sprintf("Add bitstream for source MD5: %s", sum))
	if err != nil {
		return PublishResult{}, err
	}

	err = p.gateway.Push(ctx, repoDir)
	if err != nil {
		return PublishResult{}, fmt.Errorf("%w\nThe remote may have changed since it was cloned; publish again", err)
	}

	p.writer.Printf("Successfully published bitstream with MD5: %s\n", sum)

	return PublishResult{Digest: sum, Entry: entry}, nil
}

// bitstreamName returns the final element of path, or an error if path has none.
func bitstreamName(path string) (string, error) {
	name := filepath.Base(path)
	if path == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid bitstream path %q: %w\nThe path must name a file", path, internal.ErrInvalidInput)
	}
	return name, nil
}

// targetDir cleans path and rejects locations outside the repository or
// inside its .git directory. The empty path is the repository root.
func targetDir(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid target path %q: %w\nThe path must be relative to the repository root", path, internal.ErrInvalidInput)
	}

	first, _, _ := strings.Cut(cleaned, string(filepath.Separator))
	if first == ".git" {
		return "", fmt.Errorf("invalid target path %q: %w\nThe path must not point into .git", path, internal.ErrInvalidInput)
	}

	return cleaned, nil
}
