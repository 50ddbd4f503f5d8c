package hashing

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// StrongSize is the length, in bytes, of a Strong digest.
const StrongSize = 16

// Strong computes a 128-bit digest of data, used to confirm a candidate match
// once two blocks share a Weak digest. It is not required to be
// preimage-resistant, only to give negligible collision probability across
// the largest block counts this package is expected to see.
func Strong(data []byte) [StrongSize]byte {
	var hasher xxh3.Hasher
	hasher.Write(data)
	sum := hasher.Sum128()

	var digest [StrongSize]byte
	binary.BigEndian.PutUint64(digest[:8], sum.Hi)
	binary.BigEndian.PutUint64(digest[8:], sum.Lo)
	return digest
}
