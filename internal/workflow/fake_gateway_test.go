package workflow_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// fakeGateway stands in for a git remote with a plain directory. Clone copies
// the directory into the checkout and Push copies the checkout back.
type fakeGateway struct {
	remote string

	cloneErr  error
	stageErr  error
	commitErr error
	pushErr   error

	calls    []string
	messages []string
}

func (f *fakeGateway) Clone(ctx context.Context, remote, dir string) error {
	f.calls = append(f.calls, "clone")
	if f.cloneErr != nil {
		return f.cloneErr
	}
	return copyTree(f.remote, dir)
}

func (f *fakeGateway) StageAll(ctx context.Context, dir string) error {
	f.calls = append(f.calls, "stage")
	return f.stageErr
}

func (f *fakeGateway) Commit(ctx context.Context, dir, message string) error {
	f.calls = append(f.calls, "commit")
	f.messages = append(f.messages, message)
	return f.commitErr
}

func (f *fakeGateway) Push(ctx context.Context, dir string) error {
	f.calls = append(f.calls, "push")
	if f.pushErr != nil {
		return f.pushErr
	}
	return copyTree(dir, f.remote)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0644)
	})
}
