package git

import "context"

// Gateway is the set of version-control operations the publish and retrieve
// workflows rely on. Every method blocks until the operation has finished.
// A failure is reported as an *Error, which matches internal.ErrGateway.
//
// The CLI type implements this interface by running the git binary. Tests
// can substitute a fake without touching workflow logic:
//
//	type fakeGateway struct{}
//	func (f *fakeGateway) Clone(ctx context.Context, remote, dir string) error { /* populate dir */ }
//	// ... implement other methods ...
//	p := workflow.NewPublisher(&fakeGateway{}, w, "")
type Gateway interface {
	// Clone creates a checkout of remote at dir. dir must not exist or be empty.
	Clone(ctx context.Context, remote, dir string) error

	// StageAll records every change in the checkout at dir for the next commit.
	StageAll(ctx context.Context, dir string) error

	// Commit records staged changes with message. Having nothing to commit
	// is not an error.
	Commit(ctx context.Context, dir, message string) error

	// Push publishes the current branch of dir to the remote it was cloned
	// from. A push that is not based on the remote head is rejected.
	Push(ctx context.Context, dir string) error
}
