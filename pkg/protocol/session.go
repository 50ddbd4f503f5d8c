package protocol

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/hashing"
	"github.com/tidesync/tidesync/pkg/transport"
	"github.com/tidesync/tidesync/pkg/wire"
)

// ErrUnexpectedTag indicates a message arrived with a tag other than the one
// the session state machine expected at that point. It is a protocol error,
// fatal to the session (spec.md §7).
var ErrUnexpectedTag = errors.New("unexpected message tag")

// ErrVersionMismatch indicates the two sides' HELLO exchange disagreed on
// the protocol version. Fatal to the session (spec.md §7).
var ErrVersionMismatch = errors.New("protocol version mismatch")

// Options are the caller-supplied inputs to a sync session (spec.md §6).
type Options struct {
	// Root is the filesystem path to the tree this role operates on.
	Root string
	// Recursive controls whether Walk descends into subdirectories.
	Recursive bool
	// Excludes is a list of doublestar glob patterns; matching entries are
	// omitted from the walk.
	Excludes []string
	// ChecksumMode forces the delta path for any size-matching file rather
	// than trusting modification times (spec.md §6's decision table).
	ChecksumMode bool
	// Delete controls whether the receiver computes, and the sender
	// transmits, the deletion set.
	Delete bool
	// Compress requests best-effort zstd compression for compressible
	// messages (FILES, NEED, SIGS, DELTA, DEL, and DATA payloads, raw file
	// contents included); it has no effect on correctness, only on wire size
	// (spec.md §4.4, transport.Transport.Send's compress argument).
	Compress bool
	// HashAlgorithm selects the strong-hash algorithm the rsync engine uses
	// for this session (pkg/hashing.Algorithm). The zero value,
	// hashing.Default, matches the wire protocol's usual 128-bit digest.
	HashAlgorithm hashing.Algorithm
	// BlockSizeOverride, if nonzero, replaces blocksize.For's piecewise
	// rule for every file in this session (blocksize.ForWithOverride).
	BlockSizeOverride uint64
}

// sendHello writes the HELLO handshake payload (spec.md §4.6: u32 BE
// protocol version).
func sendHello(t *transport.Transport) error {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, ProtocolVersion)
	return t.Send(wire.TagHello, payload, false)
}

// recvHello reads and validates a HELLO handshake payload, returning an
// error if the tag is wrong or the protocol version doesn't match
// ProtocolVersion (spec.md §7's "protocol-version mismatch" failure kind).
func recvHello(t *transport.Transport) error {
	tag, payload, err := t.Recv()
	if err != nil {
		return errors.Wrap(err, "unable to receive HELLO")
	}
	if tag != wire.TagHello {
		return errors.Wrapf(ErrUnexpectedTag, "expected HELLO, received %s", tag)
	}
	if len(payload) != 4 {
		return errors.Wrap(wire.ErrFraming, "malformed HELLO payload")
	}
	if version := binary.BigEndian.Uint32(payload); version != ProtocolVersion {
		return errors.Wrapf(ErrVersionMismatch, "local %d, remote %d", ProtocolVersion, version)
	}
	return nil
}

// sendJSON marshals value and sends it under tag, requesting compression
// when compress is set.
func sendJSON(t *transport.Transport, tag wire.Tag, value interface{}, compress bool) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "unable to marshal message")
	}
	return t.Send(tag, payload, compress)
}

// recvJSON reads the next message, verifies it carries the expected tag, and
// unmarshals its payload into value. Any other tag is a protocol error,
// fatal to the session (spec.md §7).
func recvJSON(t *transport.Transport, expected wire.Tag, value interface{}) error {
	tag, payload, err := t.Recv()
	if err != nil {
		return errors.Wrapf(err, "unable to receive %s", expected)
	}
	if tag != expected {
		return errors.Wrapf(ErrUnexpectedTag, "expected %s, received %s", expected, tag)
	}
	if err := json.Unmarshal(payload, value); err != nil {
		return errors.Wrapf(err, "unable to unmarshal %s payload", expected)
	}
	return nil
}

// expectTag reads the next message and verifies it carries the expected
// tag, returning its payload.
func expectTag(t *transport.Transport, expected wire.Tag) ([]byte, error) {
	tag, payload, err := t.Recv()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to receive %s", expected)
	}
	if tag != expected {
		return nil, errors.Wrapf(ErrUnexpectedTag, "expected %s, received %s", expected, tag)
	}
	return payload, nil
}

// sendDone sends the session terminator.
func sendDone(t *transport.Transport) error {
	return t.Send(wire.TagDone, nil, false)
}

// recvDone waits for the session terminator.
func recvDone(t *transport.Transport) error {
	_, err := expectTag(t, wire.TagDone)
	return err
}

// indexByPath builds a path-keyed lookup table from an ordered descriptor
// list.
func indexByPath(descriptors []Descriptor) map[string]*Descriptor {
	index := make(map[string]*Descriptor, len(descriptors))
	for i := range descriptors {
		index[descriptors[i].Path] = &descriptors[i]
	}
	return index
}
