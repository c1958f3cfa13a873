package internal

import "errors"

// Error classes. Components wrap one of these so callers can classify a
// failure with errors.Is without depending on the component that raised it.
var (
	// ErrIO marks a file read, write, or copy failure.
	ErrIO = errors.New("i/o error")

	// ErrParse marks malformed metadata.
	ErrParse = errors.New("parse error")

	// ErrGateway marks a failed invocation of the version-control tool.
	ErrGateway = errors.New("git error")

	// ErrNotFound marks a missing metadata file, digest, or stored binary.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks an unusable argument, such as a path without a
	// filename component.
	ErrInvalidInput = errors.New("invalid input")
)

// Classify marks err as belonging to class while keeping err's message and
// chain intact. It returns nil when err is nil.
func Classify(class, err error) error {
	if err == nil {
		return nil
	}
	return &classified{class: class, err: err}
}

type classified struct {
	class error
	err   error
}

func (c *classified) Error() string {
	return c.err.Error()
}

func (c *classified) Unwrap() error {
	return c.err
}

func (c *classified) Is(target error) bool {
	return target == c.class
}
