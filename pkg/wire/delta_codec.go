package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/rsync"
)

const (
	// opKindRef and opKindLiteral are the wire tags for the two operation
	// shapes (spec.md §4.4); they are independent of rsync.OpKind's values so
	// that the wire format stays stable even if the in-memory enum changes.
	opKindRef     = 0
	opKindLiteral = 1

	// refRecordSize is kind:u8 + index:u32(BE).
	refRecordSize = 5
	// literalHeaderSize is kind:u8 + length:u32(BE), preceding the literal's
	// raw bytes.
	literalHeaderSize = 5
)

// EncodeDelta renders a delta instruction stream in the binary layout of
// spec.md §4.4: each ref is 5 bytes (kind, index), each literal is
// 5+length bytes (kind, length, data).
func EncodeDelta(ops []rsync.Operation) []byte {
	size := 0
	for _, op := range ops {
		if op.Kind == rsync.OpRef {
			size += refRecordSize
		} else {
			size += literalHeaderSize + len(op.Data)
		}
	}

	out := make([]byte, size)
	offset := 0
	for _, op := range ops {
		if op.Kind == rsync.OpRef {
			out[offset] = opKindRef
			binary.BigEndian.PutUint32(out[offset+1:offset+5], op.Index)
			offset += refRecordSize
		} else {
			out[offset] = opKindLiteral
			binary.BigEndian.PutUint32(out[offset+1:offset+5], uint32(len(op.Data)))
			copy(out[offset+5:offset+5+len(op.Data)], op.Data)
			offset += literalHeaderSize + len(op.Data)
		}
	}
	return out
}

// DecodeDelta parses the binary layout produced by EncodeDelta. A stream
// that ends mid-record is a framing error (spec.md §7), not a short delta.
func DecodeDelta(data []byte) ([]rsync.Operation, error) {
	var ops []rsync.Operation
	offset := 0
	for offset < len(data) {
		kind := data[offset]
		switch kind {
		case opKindRef:
			if offset+refRecordSize > len(data) {
				return nil, errors.Wrap(ErrFraming, "truncated ref operation")
			}
			index := binary.BigEndian.Uint32(data[offset+1 : offset+5])
			ops = append(ops, rsync.Operation{Kind: rsync.OpRef, Index: index})
			offset += refRecordSize
		case opKindLiteral:
			if offset+literalHeaderSize > len(data) {
				return nil, errors.Wrap(ErrFraming, "truncated literal operation header")
			}
			length := binary.BigEndian.Uint32(data[offset+1 : offset+5])
			start := offset + literalHeaderSize
			end := start + int(length)
			if end > len(data) || end < start {
				return nil, errors.Wrap(ErrFraming, "truncated literal operation payload")
			}
			payload := make([]byte, length)
			copy(payload, data[start:end])
			ops = append(ops, rsync.Operation{Kind: rsync.OpLiteral, Data: payload})
			offset = end
		default:
			return nil, errors.Wrapf(ErrFraming, "unknown operation kind %d", kind)
		}
	}
	return ops, nil
}
