package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/ryanmoran/bitcache/internal"
)

// nothingToCommit is printed by git commit when the index matches HEAD.
// It is only consulted if the exit-code check in Commit was bypassed, for
// example by a concurrent change to the checkout.
const nothingToCommit = "nothing to commit"

var _ Gateway = CLI{}

// CLI implements Gateway by running the git binary as a subprocess.
// Authentication and transport are left entirely to git.
type CLI struct {
	binary string
	env    []string
	writer internal.Writer
}

// NewCLI returns a Gateway running binary (looked up in PATH when it has no
// path separator). When user has fields set, they become the author and
// committer identity of commits made through the gateway.
func NewCLI(binary string, user internal.GitUserConfig, w internal.Writer) CLI {
	return CLI{
		binary: binary,
		env:    user.Env(),
		writer: w,
	}
}

// Clone runs `git clone remote dir`.
func (c CLI) Clone(ctx context.Context, remote, dir string) error {
	_, err := c.run(ctx, "clone repository", "", "clone", remote, dir)
	return err
}

// StageAll runs `git add -A` at the root of the checkout.
func (c CLI) StageAll(ctx context.Context, dir string) error {
	_, err := c.run(ctx, "add files", dir, "add", "-A")
	return err
}

// Commit runs `git commit -m message` unless the index has no changes
// relative to HEAD, as reported by the exit status of `git diff --cached --quiet`.
func (c CLI) Commit(ctx context.Context, dir, message string) error {
	_, err := c.run(ctx, "check staged changes", dir, "diff", "--cached", "--quiet")
	if err == nil {
		c.writer.Println("No changes to commit")
		return nil
	}

	var gitErr *Error
	if !errors.As(err, &gitErr) || gitErr.ExitCode() != 1 {
		return err
	}

	_, err = c.run(ctx, "commit", dir, "commit", "-m", message)
	if errors.As(err, &gitErr) && gitErr.ExitCode() > 0 {
		if strings.Contains(gitErr.Stdout, nothingToCommit) || strings.Contains(gitErr.Stderr, nothingToCommit) {
			c.writer.Println("No changes to commit")
			return nil
		}
	}
	return err
}

// Push runs `git push origin HEAD`, publishing the current branch under its
// own name.
func (c CLI) Push(ctx context.Context, dir string) error {
	_, err := c.run(ctx, "push", dir, "push", "origin", "HEAD")
	return err
}

func (c CLI) run(ctx context.Context, op, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stdout.String(), &Error{
			Op:     op,
			Args:   args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.String(), nil
}
