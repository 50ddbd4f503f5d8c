// Package transport provides the bidirectional byte-stream abstraction that
// pkg/protocol's sender and receiver roles exchange framed messages over
// (spec.md §5): two owned handles (a reader and a writer, often the same
// underlying connection), byte counters for diagnostics, and an optional
// compression codec shared by the transport's Encoder/Decoder pair.
package transport

import (
	"io"
	"sync/atomic"

	"github.com/tidesync/tidesync/pkg/compression"
	"github.com/tidesync/tidesync/pkg/wire"
)

// countingReader wraps an io.Reader, tracking the total number of bytes read.
type countingReader struct {
	reader io.Reader
	count  *uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	if n > 0 {
		atomic.AddUint64(c.count, uint64(n))
	}
	return n, err
}

// countingWriter wraps an io.Writer, tracking the total number of bytes
// written.
type countingWriter struct {
	writer io.Writer
	count  *uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	if n > 0 {
		atomic.AddUint64(c.count, uint64(n))
	}
	return n, err
}

// Transport is a single bidirectional, message-framed connection between a
// sender and a receiver. A Transport is used by exactly one role for the
// duration of one session (spec.md §5); it is not safe for concurrent Send
// and Recv calls from multiple goroutines on the same side.
type Transport struct {
	closer    io.Closer
	encoder   *wire.Encoder
	decoder   *wire.Decoder
	codec     *compression.Codec
	bytesSent uint64
	bytesRecv uint64
}

// New wraps a reader and a writer (which may be the same underlying
// connection) as a Transport. closer is invoked by Close; it may be nil if
// the underlying streams require no explicit shutdown.
func New(reader io.Reader, writer io.Writer, closer io.Closer) (*Transport, error) {
	codec, err := compression.NewCodec()
	if err != nil {
		return nil, err
	}

	t := &Transport{closer: closer, codec: codec}
	t.encoder = wire.NewEncoder(&countingWriter{writer: writer, count: &t.bytesSent}, codec)
	t.decoder = wire.NewDecoder(&countingReader{reader: reader, count: &t.bytesRecv}, codec)
	return t, nil
}

// Send frames and writes one message. compress requests best-effort zstd
// compression of the payload (applied only above compression.Threshold, per
// spec.md §4.4); it has no effect on correctness, only on wire size.
func (t *Transport) Send(tag wire.Tag, payload []byte, compress bool) error {
	return t.encoder.Encode(tag, payload, compress)
}

// Recv reads and returns the next framed message.
func (t *Transport) Recv() (wire.Tag, []byte, error) {
	return t.decoder.Decode()
}

// BytesSent returns the total number of wire bytes written so far.
func (t *Transport) BytesSent() uint64 {
	return atomic.LoadUint64(&t.bytesSent)
}

// BytesReceived returns the total number of wire bytes read so far.
func (t *Transport) BytesReceived() uint64 {
	return atomic.LoadUint64(&t.bytesRecv)
}

// Close shuts down the transport's compression codec and, if one was
// provided, the underlying connection.
func (t *Transport) Close() error {
	codecErr := t.codec.Close()
	if t.closer == nil {
		return codecErr
	}
	if closeErr := t.closer.Close(); closeErr != nil {
		return closeErr
	}
	return codecErr
}
