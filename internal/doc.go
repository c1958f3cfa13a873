// Package internal contains shared types and utilities for bitcache.
//
// It provides environment configuration, the error taxonomy shared by every
// workflow, scoped temporary directories with ordered cleanup, and the Writer
// abstraction used for operator-facing output.
package internal
