// Package git provides access to remote cache repositories.
//
// The Gateway interface is the boundary to the version-control tool; the CLI
// type implements it by running the git binary. The Server type serves a
// directory of bare repositories over HTTP so they can be used as remotes.
package git
