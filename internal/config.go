package internal

import (
	"strings"
)

const (
	// MetadataFileName is the name of the metadata index kept at the root of
	// every cache repository.
	MetadataFileName = "bitcache_metadata.json"

	// DefaultGitBinary is the version-control executable invoked when
	// BITCACHE_GIT is not set. It is resolved through PATH.
	DefaultGitBinary = "git"

	// TempDirPattern is the os.MkdirTemp pattern used for working checkouts.
	TempDirPattern = "bitcache-checkout-*"
)

type Config struct {
	GitBinary string
	GitUser   GitUserConfig
	TempDir   string
	Color     bool
}

// GitUserConfig is the committer identity handed to git when publishing.
// Empty fields leave git to fall back on its own configuration.
type GitUserConfig struct {
	Name  string
	Email string
}

// Env renders the identity as GIT_AUTHOR_* and GIT_COMMITTER_* variables.
// Only fields that are set are rendered.
func (u GitUserConfig) Env() []string {
	var env []string
	if u.Name != "" {
		env = append(env, "GIT_AUTHOR_NAME="+u.Name, "GIT_COMMITTER_NAME="+u.Name)
	}
	if u.Email != "" {
		env = append(env, "GIT_AUTHOR_EMAIL="+u.Email, "GIT_COMMITTER_EMAIL="+u.Email)
	}
	return env
}

// ParseConfig builds the process-wide configuration from environment
// variables. Command-line flags are owned by the individual subcommands and
// are not handled here.
//
// Recognised variables are BITCACHE_GIT, BITCACHE_GIT_USER_NAME,
// BITCACHE_GIT_USER_EMAIL, BITCACHE_TMPDIR, and NO_COLOR.
func ParseConfig(environment []string) Config {
	lookup := make(map[string]string)
	for _, variable := range environment {
		key, value, ok := strings.Cut(variable, "=")
		if ok {
			lookup[key] = value
		}
	}

	gitBinary := lookup["BITCACHE_GIT"]
	if gitBinary == "" {
		gitBinary = DefaultGitBinary
	}

	return Config{
		GitBinary: gitBinary,
		GitUser: GitUserConfig{
			Name:  lookup["BITCACHE_GIT_USER_NAME"],
			Email: lookup["BITCACHE_GIT_USER_EMAIL"],
		},
		TempDir: lookup["BITCACHE_TMPDIR"],
		Color:   lookup["NO_COLOR"] == "", // https://no-color.org
	}
}
