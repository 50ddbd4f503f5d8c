// Package wire implements the framed message codec of spec.md §4.4: a fixed
// 6-byte header (tag, flags, length) followed by an optional-compression
// payload, plus the binary signature-list and delta-instruction encodings
// layered on top of it.
package wire

// Tag identifies the kind of a framed message (spec.md §4.6).
type Tag uint8

const (
	// TagHello is the handshake message, sent both directions.
	TagHello Tag = 0
	// TagFiles carries the sender's file descriptor list.
	TagFiles Tag = 1
	// TagNeed carries the receiver's need set.
	TagNeed Tag = 2
	// TagSigs carries a signature list for one delta-target path.
	TagSigs Tag = 3
	// TagDelta carries a delta instruction stream for one path.
	TagDelta Tag = 4
	// TagData carries either raw file bytes or a descriptor for a
	// directory/symlink creation.
	TagData Tag = 5
	// TagDel carries the deletion path list.
	TagDel Tag = 6
	// TagDone terminates a session, sent both directions.
	TagDone Tag = 7
	// TagErr is reserved for error signalling; not emitted by this
	// implementation (spec.md §4.6).
	TagErr Tag = 8
)

// String renders the tag's name for diagnostics.
func (t Tag) String() string {
	switch t {
	case TagHello:
		return "HELLO"
	case TagFiles:
		return "FILES"
	case TagNeed:
		return "NEED"
	case TagSigs:
		return "SIGS"
	case TagDelta:
		return "DELTA"
	case TagData:
		return "DATA"
	case TagDel:
		return "DEL"
	case TagDone:
		return "DONE"
	case TagErr:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

// Message is the decoded form of one framed wire message.
type Message struct {
	Tag     Tag
	Payload []byte
}
