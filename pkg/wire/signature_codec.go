package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/rsync"
)

// signatureHeaderSize is the size, in bytes, of the block-size/count prefix
// of an encoded signature (spec.md §4.4).
const signatureHeaderSize = 8

// EncodeSignature renders a signature in the binary layout of spec.md §4.4:
// bs:u32(BE), count:u32(BE), followed by count records of weak:u32(BE) plus
// the strong hash bytes. The strong hash width is whatever the signature's
// entries actually carry (16 bytes for the default algorithm, 20 for SHA-1,
// 32 for SHA-256); EncodeSignature trusts every entry to share that width.
func EncodeSignature(sig *rsync.Signature) ([]byte, error) {
	count := len(sig.Hashes)

	strongSize := 0
	if count > 0 {
		strongSize = len(sig.Hashes[0].Strong)
	}

	recordSize := 4 + strongSize
	out := make([]byte, signatureHeaderSize+count*recordSize)

	binary.BigEndian.PutUint32(out[0:4], uint32(sig.BlockSize))
	binary.BigEndian.PutUint32(out[4:8], uint32(count))

	offset := signatureHeaderSize
	for i, h := range sig.Hashes {
		if len(h.Strong) != strongSize {
			return nil, errors.Errorf("signature entry %d has strong hash width %d, expected %d", i, len(h.Strong), strongSize)
		}
		binary.BigEndian.PutUint32(out[offset:offset+4], h.Weak)
		copy(out[offset+4:offset+recordSize], h.Strong)
		offset += recordSize
	}

	return out, nil
}

// DecodeSignature parses the binary layout produced by EncodeSignature. The
// strong hash width is derived from the payload length rather than assumed
// to be 16 bytes, so that signatures produced under a non-default
// hashing.Algorithm decode correctly without a wire format change.
func DecodeSignature(data []byte) (*rsync.Signature, error) {
	if len(data) < signatureHeaderSize {
		return nil, errors.Wrap(ErrFraming, "signature payload shorter than header")
	}

	blockSize := binary.BigEndian.Uint32(data[0:4])
	count := binary.BigEndian.Uint32(data[4:8])
	remainder := data[signatureHeaderSize:]

	if count == 0 {
		if len(remainder) != 0 {
			return nil, errors.Wrap(ErrFraming, "signature payload has trailing bytes but zero entries")
		}
		return &rsync.Signature{BlockSize: uint64(blockSize)}, nil
	}

	if len(remainder)%int(count) != 0 {
		return nil, errors.Wrap(ErrFraming, "signature payload is not an even multiple of its entry count")
	}
	recordSize := len(remainder) / int(count)
	if recordSize < 5 {
		return nil, errors.Wrap(ErrFraming, "signature record too small to hold a weak hash and a strong hash")
	}
	strongSize := recordSize - 4

	hashes := make([]rsync.BlockHash, count)
	offset := 0
	for i := range hashes {
		weak := binary.BigEndian.Uint32(remainder[offset : offset+4])
		strong := make([]byte, strongSize)
		copy(strong, remainder[offset+4:offset+recordSize])
		hashes[i] = rsync.BlockHash{Weak: weak, Strong: strong}
		offset += recordSize
	}

	return &rsync.Signature{BlockSize: uint64(blockSize), Hashes: hashes}, nil
}
