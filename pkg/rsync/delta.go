package rsync

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/hashing"
)

// signatureTable indexes a signature's block hashes by weak digest, in
// ascending block-index order, so that the first entry scanned for a weak
// hit is always the lowest-index strong match (spec.md §4.3's tie-break).
type signatureTable map[uint32][]indexedStrong

type indexedStrong struct {
	index  uint32
	strong []byte
}

func buildSignatureTable(hashes []BlockHash) signatureTable {
	table := make(signatureTable, len(hashes))
	for i, h := range hashes {
		table[h.Weak] = append(table[h.Weak], indexedStrong{
			index:  uint32(i),
			strong: h.Strong,
		})
	}
	return table
}

// match returns the lowest basis index whose strong hash equals the given
// block's strong hash, scanning only the candidates sharing its weak hash.
func (t signatureTable) match(block []byte, strongFn func([]byte) []byte) (uint32, bool) {
	candidates, ok := t[hashing.Weak(block)]
	if !ok {
		return 0, false
	}
	strong := strongFn(block)
	for _, candidate := range candidates {
		if bytes.Equal(candidate.strong, strong) {
			return candidate.index, true
		}
	}
	return 0, false
}

// Delta matches source against sig (a signature of some basis) and emits one
// Operation per block-aligned chunk of source, per the algorithm in
// spec.md §4.3. It performs no byte-granular search: only offsets
// 0, bs, 2*bs, ... are ever examined.
func (e *Engine) Delta(source io.Reader, sig *Signature, transmit OperationTransmitter) error {
	if sig.BlockSize == 0 || len(sig.Hashes) == 0 {
		return e.deltaWholeFile(source, transmit)
	}

	table := buildSignatureTable(sig.Hashes)
	blockSize := sig.BlockSize
	buffer := e.scratch(blockSize)

	for {
		n, err := io.ReadFull(source, buffer)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return errors.Wrap(err, "unable to read source block")
		}
		if n == 0 {
			return nil
		}

		block := buffer[:n]
		if uint64(n) < blockSize {
			// Final short tail: always a literal, and terminates the scan.
			return transmit(&Operation{Kind: OpLiteral, Data: cloneBytes(block)})
		}

		if index, ok := table.match(block, e.strongFn); ok {
			if err := transmit(&Operation{Kind: OpRef, Index: index}); err != nil {
				return err
			}
		} else if err := transmit(&Operation{Kind: OpLiteral, Data: cloneBytes(block)}); err != nil {
			return err
		}
	}
}

// deltaWholeFile handles the bs == 0 / empty-signature case: the whole source
// is emitted as a single literal, or no instructions at all if source is
// empty (spec.md §4.3 steps 1-2).
func (e *Engine) deltaWholeFile(source io.Reader, transmit OperationTransmitter) error {
	data, err := io.ReadAll(source)
	if err != nil {
		return errors.Wrap(err, "unable to read source")
	}
	if len(data) == 0 {
		return nil
	}
	return transmit(&Operation{Kind: OpLiteral, Data: data})
}

// DeltaBytes is a convenience wrapper around Delta for in-memory source
// content, collecting the emitted operations into a slice.
func (e *Engine) DeltaBytes(source []byte, sig *Signature) ([]Operation, error) {
	var ops []Operation
	err := e.Delta(bytes.NewReader(source), sig, func(op *Operation) error {
		ops = append(ops, *op)
		return nil
	})
	return ops, err
}
