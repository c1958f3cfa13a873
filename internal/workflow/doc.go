// Package workflow implements the publish and retrieve operations of bitcache.
//
// Every operation works on its own fresh checkout of the remote, created in a
// temporary directory that is removed before the operation returns. Nothing
// is cached between operations.
package workflow
