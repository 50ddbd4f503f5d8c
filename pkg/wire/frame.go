package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/compression"
)

const (
	// headerSize is the size, in bytes, of the fixed frame header: tag (1),
	// flags (1), length (4), all big-endian (spec.md §4.4).
	headerSize = 6

	// flagCompressed is set in the header's flags byte when the payload is
	// zstd-compressed.
	flagCompressed = 1 << 0
)

// ErrFraming indicates a framing-layer failure: a short header, a truncated
// payload, or a compression flag whose payload fails to decompress. Framing
// errors are fatal to the session (spec.md §7).
var ErrFraming = errors.New("framing error")

// Encoder writes framed messages to an underlying stream, grounded on
// _examples/mutagen-io-mutagen/framing/framing.go's buffer-reuse approach,
// adapted to the fixed tag/flags/length header of spec.md §4.4.
type Encoder struct {
	writer io.Writer
	codec  *compression.Codec
	header [headerSize]byte
}

// NewEncoder creates an Encoder. codec may be nil, in which case compression
// is never applied regardless of the compress argument to Encode.
func NewEncoder(writer io.Writer, codec *compression.Codec) *Encoder {
	return &Encoder{writer: writer, codec: codec}
}

// Encode frames and writes one message. Compression is applied only when
// compress is true, a codec is available, and the uncompressed payload
// exceeds compression.Threshold bytes (spec.md §4.4).
func (e *Encoder) Encode(tag Tag, payload []byte, compress bool) error {
	flags := byte(0)
	body := payload

	if compress && e.codec != nil && len(payload) > compression.Threshold {
		body = e.codec.Compress(payload)
		flags |= flagCompressed
	}

	if uint64(len(body)) > uint64(^uint32(0)) {
		return errors.New("encoded message too large to frame")
	}

	e.header[0] = byte(tag)
	e.header[1] = flags
	binary.BigEndian.PutUint32(e.header[2:], uint32(len(body)))

	if _, err := e.writer.Write(e.header[:]); err != nil {
		return errors.Wrap(err, "unable to write message header")
	}
	if len(body) > 0 {
		if _, err := e.writer.Write(body); err != nil {
			return errors.Wrap(err, "unable to write message payload")
		}
	}
	return nil
}

// Decoder reads framed messages from an underlying stream.
type Decoder struct {
	reader io.Reader
	codec  *compression.Codec
	header [headerSize]byte
}

// NewDecoder creates a Decoder. codec may be nil, in which case a message
// with the compression flag set will fail to decode.
func NewDecoder(reader io.Reader, codec *compression.Codec) *Decoder {
	return &Decoder{reader: reader, codec: codec}
}

// Decode reads and returns the next framed message. A header that cannot be
// fully read signals end-of-stream: io.EOF is returned only when zero header
// bytes could be read (a clean stream close); any partial header read is an
// ErrFraming condition (spec.md §4.4, §7).
func (d *Decoder) Decode() (Tag, []byte, error) {
	n, err := io.ReadFull(d.reader, d.header[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return 0, nil, io.EOF
		}
		return 0, nil, errors.Wrap(ErrFraming, err.Error())
	}

	tag := Tag(d.header[0])
	flags := d.header[1]
	length := binary.BigEndian.Uint32(d.header[2:])

	body := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(d.reader, body); err != nil {
			return 0, nil, errors.Wrap(ErrFraming, "truncated payload: "+err.Error())
		}
	}

	if flags&flagCompressed != 0 {
		if d.codec == nil {
			return 0, nil, errors.Wrap(ErrFraming, "compressed payload received with no codec configured")
		}
		decompressed, err := d.codec.Decompress(body)
		if err != nil {
			return 0, nil, errors.Wrap(ErrFraming, err.Error())
		}
		body = decompressed
	}

	return tag, body, nil
}
