package git_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/bitcache/internal"
	"github.com/ryanmoran/bitcache/internal/git"
)

func TestError(t *testing.T) {
	t.Run("includes the diagnostic text", func(t *testing.T) {
		err := &git.Error{
			Op:     "push",
			Args:   []string{"push", "origin", "HEAD"},
			Stderr: " ! [rejected]        HEAD -> main (fetch first)\n",
			Err:    errors.New("exit status 1"),
		}

		require.EqualError(t, err, "failed to push: exit status 1\n! [rejected]        HEAD -> main (fetch first)")
	})

	t.Run("omits empty diagnostic text", func(t *testing.T) {
		err := &git.Error{Op: "add files", Err: errors.New("boom")}
		require.EqualError(t, err, "failed to add files: boom")
	})

	t.Run("classifies as a gateway error and unwraps", func(t *testing.T) {
		cause := errors.New("boom")
		err := &git.Error{Op: "clone repository", Err: cause}

		require.ErrorIs(t, err, internal.ErrGateway)
		require.ErrorIs(t, err, cause)
		require.NotErrorIs(t, err, internal.ErrNotFound)
		require.Equal(t, -1, err.ExitCode())
	})
}
