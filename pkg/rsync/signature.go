package rsync

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/hashing"
)

// Signature walks basis in non-overlapping blocks of exactly blockSize bytes
// starting at offset 0, appending a BlockHash for each block (including a
// final short one, if any). For an empty basis or blockSize == 0, it returns
// a signature with no hashes (spec.md §4.3).
func (e *Engine) Signature(basis io.Reader, blockSize uint64) (*Signature, error) {
	signature := &Signature{BlockSize: blockSize}
	if blockSize == 0 {
		return signature, nil
	}

	buffer := e.scratch(blockSize)
	for {
		n, err := io.ReadFull(basis, buffer)
		if n > 0 {
			block := buffer[:n]
			signature.Hashes = append(signature.Hashes, BlockHash{
				Weak:   hashing.Weak(block),
				Strong: e.strongFn(block),
			})
			signature.Length += uint64(n)
		}
		if err == io.EOF {
			break
		} else if err == io.ErrUnexpectedEOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "unable to read basis block")
		}
	}

	return signature, nil
}

// SignatureBytes is a convenience wrapper around Signature for in-memory
// basis content.
func (e *Engine) SignatureBytes(basis []byte, blockSize uint64) (*Signature, error) {
	return e.Signature(bytes.NewReader(basis), blockSize)
}
