package tidesync

import "fmt"

const (
	// VersionMajor represents the current major version of tidesync.
	VersionMajor = 0
	// VersionMinor represents the current minor version of tidesync.
	VersionMinor = 1
	// VersionPatch represents the current patch version of tidesync.
	VersionPatch = 0

	// ProtocolVersion is the wire protocol version exchanged in the HELLO
	// message (spec.md §4.6, §6, §7). Both sides of a session must agree on
	// this value or the session is aborted as a version mismatch.
	ProtocolVersion uint32 = 1
)

// Version is the human-readable release version string.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
