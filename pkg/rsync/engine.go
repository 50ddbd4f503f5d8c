// Package rsync implements the block-signature / delta / patch algorithm of
// spec.md §4.3: given a basis file held by a receiver and a source file held
// by a sender, it computes a compact instruction sequence that lets the
// receiver reconstruct the source from the basis, transferring only the
// blocks that changed.
//
// Unlike the classic rsync algorithm, this engine performs no rolling-hash,
// byte-granular search: it matches only block-aligned offsets in the source
// (spec.md §9). This is a deliberate simplification, not an oversight — see
// spec.md §9 for the rationale.
package rsync

import (
	"github.com/tidesync/tidesync/pkg/hashing"
)

// Engine provides signature/delta/patch operations with a configurable
// strong-hash algorithm. The zero value is not usable; construct with
// NewEngine or NewEngineWithAlgorithm.
type Engine struct {
	// algorithm is the strong-hash algorithm in use.
	algorithm hashing.Algorithm
	// strongFn computes a strong digest for a block.
	strongFn func([]byte) []byte
	// buffer is a reusable scratch buffer for block reads. A single Engine
	// is only ever used by one role, sequentially, for one file at a time
	// (spec.md §5), so reuse across calls is safe without locking.
	buffer []byte
}

// NewEngine creates an Engine using the wire-protocol default strong-hash
// algorithm (128-bit, hashing.Default).
func NewEngine() *Engine {
	return NewEngineWithAlgorithm(hashing.Default)
}

// NewEngineWithAlgorithm creates an Engine using the specified strong-hash
// algorithm. Signatures and deltas produced by engines with different
// algorithms are not mutually comparable, but the wire codec (pkg/wire)
// derives the strong-hash width from the encoded payload, so any algorithm's
// output can still be framed and transmitted (spec.md §4.4's fixed 16-byte
// width is simply what the default algorithm produces).
func NewEngineWithAlgorithm(algorithm hashing.Algorithm) *Engine {
	return &Engine{
		algorithm: algorithm,
		strongFn:  algorithm.Factory(),
	}
}

// scratch returns a reusable buffer of exactly the requested size, growing
// the Engine's backing array if necessary.
func (e *Engine) scratch(size uint64) []byte {
	if uint64(cap(e.buffer)) < size {
		e.buffer = make([]byte, size)
	}
	return e.buffer[:size]
}

func cloneBytes(data []byte) []byte {
	clone := make([]byte, len(data))
	copy(clone, data)
	return clone
}
