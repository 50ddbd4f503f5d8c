// Package blocksize maps a file length to a block size by a piecewise-
// constant rule, trading finer match granularity on small files for a
// bounded number of signatures (and thus bounded hash-table size) on large
// ones.
package blocksize

const (
	// KiB, MiB and GiB are the binary byte-size units used throughout this
	// package's threshold table.
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30

	// WholeFile is the sentinel block size indicating that a file should
	// take the whole-file transfer path, bypassing delta entirely.
	WholeFile = 0

	// MinimumThreshold is the smallest file length for which a block size
	// other than WholeFile is ever produced.
	MinimumThreshold = 128 * KiB

	// NoBasis is the block size substituted when the receiver needs a
	// block size for a file with no existing basis.
	NoBasis = 128 * KiB
)

// threshold pairs an upper-exclusive file length bound with the block size
// used for lengths falling below it (and at or above the previous bound).
type threshold struct {
	upperBound uint64
	blockSize  uint64
}

// table encodes spec.md §4.2's piecewise-constant rule. Bounds are checked in
// order; the first bound a length falls under determines its block size.
var table = []threshold{
	{16 * MiB, 128 * KiB},
	{256 * MiB, 1 * MiB},
	{4 * GiB, 16 * MiB},
	{64 * GiB, 128 * MiB},
}

// aboveTable is the block size used for file lengths at or above the largest
// bound in table (i.e. >= 64 GiB).
const aboveTable = 1 * GiB

// For computes the block size for a file of the given length. It returns
// WholeFile for any length below MinimumThreshold, signaling that the caller
// should bypass delta transfer entirely.
func For(fileLength uint64) uint64 {
	if fileLength < MinimumThreshold {
		return WholeFile
	}
	for _, t := range table {
		if fileLength < t.upperBound {
			return t.blockSize
		}
	}
	return aboveTable
}

// ForWithOverride computes the block size as For does, except that a
// nonzero override bypasses the piecewise table entirely and is returned
// as-is. This backs a session's optional configured block-size override.
func ForWithOverride(fileLength, override uint64) uint64 {
	if override != 0 {
		return override
	}
	return For(fileLength)
}
