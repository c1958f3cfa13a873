package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/moby/term"
)

const (
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Writer provides methods for output operations that library code needs.
// This allows callers to control where and how output is written, rather than
// forcing library code to use global state like fmt.Print or log.Fatal.
type Writer interface {
	// Printf writes a formatted message to the output stream.
	Printf(format string, v ...interface{})

	// Println writes a message with a newline to the output stream.
	Println(v ...interface{})

	// Warningf writes a formatted warning message to the output stream.
	Warningf(format string, v ...interface{})

	// GetWriter returns the underlying io.Writer for direct writing.
	GetWriter() io.Writer
}

// StandardWriter implements Writer using standard output/error streams.
type StandardWriter struct {
	out   io.Writer
	err   io.Writer
	color bool
}

// NewStandardWriter creates a Writer that outputs to stdout and stderr.
// Warning prefixes are coloured when color is set and stderr is a terminal.
func NewStandardWriter(color bool) *StandardWriter {
	_, isTerminal := term.GetFdInfo(os.Stderr)

	return &StandardWriter{
		out:   os.Stdout,
		err:   os.Stderr,
		color: color && isTerminal,
	}
}

// NewCustomWriter creates a Writer with custom output streams.
// The out stream is used for normal output, while err is used for warnings.
// Custom streams are never coloured.
func NewCustomWriter(out, err io.Writer) *StandardWriter {
	return &StandardWriter{
		out: out,
		err: err,
	}
}

// Printf writes a formatted message to the output stream.
func (w *StandardWriter) Printf(format string, v ...interface{}) {
	fmt.Fprintf(w.out, format, v...)
}

// Println writes a message with a newline to the output stream.
func (w *StandardWriter) Println(v ...interface{}) {
	fmt.Fprintln(w.out, v...)
}

// Warningf writes a formatted warning message to the error stream with a "Warning: " prefix.
func (w *StandardWriter) Warningf(format string, v ...interface{}) {
	fmt.Fprintf(w.err, w.prefix("Warning: ")+format+"\n", v...)
}

// GetWriter returns the underlying io.Writer for direct writing to the output stream.
func (w *StandardWriter) GetWriter() io.Writer {
	return w.out
}

func (w *StandardWriter) prefix(p string) string {
	if !w.color {
		return p
	}
	return ansiYellow + p + ansiReset
}
