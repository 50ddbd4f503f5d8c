package transport

import (
	"io"

	"github.com/tidesync/tidesync/pkg/stream"
)

// NewPipe builds a Transport directly over a reader/writer pair, such as a
// process's own standard input/output when it is itself the remote side of
// a session spawned by a parent process (spec.md §5's local-process
// transport realization). reader and writer are closed, if they implement
// io.Closer, when the resulting Transport is closed.
func NewPipe(reader io.Reader, writer io.Writer) (*Transport, error) {
	var closers []io.Closer
	if rc, ok := reader.(io.Closer); ok {
		closers = append(closers, rc)
	}
	if wc, ok := writer.(io.Closer); ok {
		closers = append(closers, wc)
	}
	return New(reader, writer, stream.NewMultiCloser(closers...))
}
