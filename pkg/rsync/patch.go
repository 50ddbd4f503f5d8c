package rsync

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Patch reconstructs the source file by walking the operations yielded by
// receive, writing to dst: for each ref(i), the basis bytes
// [i*bs, i*bs+bs) (fewer for a short final basis block); for each literal,
// the literal bytes verbatim (spec.md §4.3).
//
// basis must support random access (ReadAt) since ref operations may arrive
// in any order relative to the basis layout; basisLength is the basis's
// total size, needed to size the final block reference when it is shorter
// than a full block.
func (e *Engine) Patch(dst io.Writer, basis io.ReaderAt, basisLength uint64, blockSize uint64, receive OperationReceiver) error {
	for {
		op, err := receive()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "unable to receive operation")
		}

		switch op.Kind {
		case OpRef:
			block, err := readBasisBlock(basis, basisLength, blockSize, op.Index)
			if err != nil {
				return err
			}
			if _, err := dst.Write(block); err != nil {
				return errors.Wrap(err, "unable to write referenced block")
			}
		case OpLiteral:
			if _, err := dst.Write(op.Data); err != nil {
				return errors.Wrap(err, "unable to write literal data")
			}
		default:
			return errors.Errorf("unknown operation kind: %d", op.Kind)
		}
	}
}

// readBasisBlock reads the basis block at the given index, truncating to
// basisLength if the index refers to a short final block. It is an error for
// index to be entirely out of range (spec.md §3 invariant 3).
func readBasisBlock(basis io.ReaderAt, basisLength, blockSize uint64, index uint32) ([]byte, error) {
	offset := uint64(index) * blockSize
	if offset >= basisLength {
		return nil, errors.Errorf("block reference %d out of range for basis of length %d", index, basisLength)
	}

	width := blockSize
	if offset+width > basisLength {
		width = basisLength - offset
	}

	buffer := make([]byte, width)
	if _, err := basis.ReadAt(buffer, int64(offset)); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "unable to read basis block")
	}
	return buffer, nil
}

// PatchBytes is a convenience wrapper around Patch for an in-memory basis,
// consuming operations from an already-materialized slice and returning the
// reconstructed content.
func (e *Engine) PatchBytes(basis []byte, blockSize uint64, ops []Operation) ([]byte, error) {
	var out bytes.Buffer
	index := 0
	receive := func() (*Operation, error) {
		if index >= len(ops) {
			return nil, io.EOF
		}
		op := ops[index]
		index++
		return &op, nil
	}
	if err := e.Patch(&out, bytes.NewReader(basis), uint64(len(basis)), blockSize, receive); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
