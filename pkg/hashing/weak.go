package hashing

import (
	"github.com/cespare/xxhash/v2"
)

// Weak computes a fast, non-rolling 32-bit digest of data. It indexes
// candidate block matches in the signature table; collisions are expected and
// are resolved by a Strong comparison before a match is accepted. Weak is
// deterministic and order-dependent, and runs in O(len(data)).
//
// All match positions considered by this package are block-aligned, so Weak
// is never asked to update incrementally across a sliding window.
func Weak(data []byte) uint32 {
	sum := xxhash.Sum64(data)
	return uint32(sum) ^ uint32(sum>>32)
}
