// Package compression provides the zstd codec used for optional per-message
// compression in pkg/wire (spec.md §4.4). A Codec owns a single reusable
// encoder and decoder, matching spec.md §9's "Global compression contexts"
// design note — reusable, thread-safe codec contexts with a chosen
// compression level and worker-thread count — while scoping that reuse to
// one Transport rather than to the whole process.
package compression

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Threshold is the uncompressed payload size above which compression is
// worth attempting (spec.md §4.4): below this, the zstd frame overhead tends
// to outweigh the savings.
const Threshold = 512

// Codec compresses and decompresses message payloads with zstd. It is safe
// for concurrent use; the underlying zstd encoder/decoder support concurrent
// calls.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a Codec with a default compression level and a worker
// count left to klauspost/compress's own GOMAXPROCS-based default.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(err, "unable to construct zstd encoder")
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, errors.Wrap(err, "unable to construct zstd decoder")
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Compress returns the zstd-compressed form of data.
func (c *Codec) Compress(data []byte) []byte {
	return c.encoder.EncodeAll(data, nil)
}

// Decompress returns the decompressed form of data, which must be a
// complete zstd frame as produced by Compress.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	decoded, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decompress payload")
	}
	return decoded, nil
}

// Close releases the codec's resources. The decoder owns a background
// goroutine pool that must be stopped explicitly; the encoder is flushed and
// closed as well.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}
