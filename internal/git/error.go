package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ryanmoran/bitcache/internal"
)

// Error is the failure of a single git invocation.
type Error struct {
	Op     string   // "clone", "add", "commit", "push", ...
	Args   []string // arguments passed to git
	Stdout string
	Stderr string
	Err    error
}

var _ error = &Error{}

func (e *Error) Error() string {
	msg := fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is internal.ErrGateway.
func (e *Error) Is(target error) bool {
	return target == internal.ErrGateway
}

// ExitCode returns the exit status of the git process,
// or -1 if it did not run to completion.
func (e *Error) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
