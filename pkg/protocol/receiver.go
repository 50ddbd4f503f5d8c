package protocol

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/blocksize"
	"github.com/tidesync/tidesync/pkg/filesystem"
	"github.com/tidesync/tidesync/pkg/logging"
	"github.com/tidesync/tidesync/pkg/rsync"
	"github.com/tidesync/tidesync/pkg/transport"
	"github.com/tidesync/tidesync/pkg/wire"
)

// defaultFileMode is the permission used for a regular file written from
// DATA when the source descriptor carries no mode; a delta reconstruction
// keeps its basis file's mode.
const defaultFileMode = 0644

// defaultDirectoryMode is the permission used for directories created by a
// DATA descriptor.
const defaultDirectoryMode = 0755

// Receiver drives the receiving side of spec.md §4.6's session state
// machine: it answers FILES with a NEED computed by running Decide against
// its own tree, then drives the delta and data exchanges and applies their
// results to disk, finally applying the deletion set if enabled.
type Receiver struct {
	transport *transport.Transport
	options   Options
	engine    *rsync.Engine
	logger    *logging.Logger
}

// NewReceiver creates a Receiver bound to the given transport and options.
func NewReceiver(t *transport.Transport, options Options, logger *logging.Logger) *Receiver {
	return &Receiver{
		transport: t,
		options:   options,
		engine:    rsync.NewEngineWithAlgorithm(options.HashAlgorithm),
		logger:    logger,
	}
}

// Run executes one full session as the receiving role.
func (r *Receiver) Run() error {
	if err := recvHello(r.transport); err != nil {
		return errors.Wrap(err, "unable to receive HELLO")
	}
	if err := sendHello(r.transport); err != nil {
		return errors.Wrap(err, "unable to send HELLO")
	}

	var sourceDescriptors []Descriptor
	if err := recvJSON(r.transport, wire.TagFiles, &sourceDescriptors); err != nil {
		return errors.Wrap(err, "unable to receive FILES")
	}

	localDescriptors, err := Walk(r.options.Root, r.options.Recursive, r.options.Excludes)
	if err != nil {
		return errors.Wrap(err, "unable to walk local tree")
	}
	localIndex := indexByPath(localDescriptors)

	need := r.decideNeed(sourceDescriptors, localIndex)
	if err := sendJSON(r.transport, wire.TagNeed, need, r.options.Compress); err != nil {
		return errors.Wrap(err, "unable to send NEED")
	}

	for _, path := range need.Delta {
		if err := r.receiveDelta(path); err != nil {
			return errors.Wrapf(err, "unable to process delta for %s", path)
		}
	}

	sourceIndex := indexByPath(sourceDescriptors)
	for _, path := range need.Data {
		descriptor := sourceIndex[path]
		if err := r.receiveData(path, descriptor); err != nil {
			return errors.Wrapf(err, "unable to receive data for %s", path)
		}
	}

	if r.options.Delete {
		var paths []string
		if err := recvJSON(r.transport, wire.TagDel, &paths); err != nil {
			return errors.Wrap(err, "unable to receive DEL")
		}
		if err := r.applyDeletions(paths); err != nil {
			return errors.Wrap(err, "unable to apply deletions")
		}
	}

	if err := recvDone(r.transport); err != nil {
		return errors.Wrap(err, "unable to receive DONE")
	}
	if err := sendDone(r.transport); err != nil {
		return errors.Wrap(err, "unable to send DONE")
	}

	return nil
}

// decideNeed runs Decide for every source descriptor against the matching
// local descriptor (if any), partitioning paths into NEED's three lists in
// source order (spec.md §4.6's ordering discipline). The deletion set is
// every local path absent from the source tree, computed only if deletion
// is enabled.
func (r *Receiver) decideNeed(sourceDescriptors []Descriptor, localIndex map[string]*Descriptor) NeedSet {
	var need NeedSet

	sourcePaths := make(map[string]bool, len(sourceDescriptors))
	for i := range sourceDescriptors {
		source := &sourceDescriptors[i]
		sourcePaths[source.Path] = true

		switch Decide(source, localIndex[source.Path], r.options.ChecksumMode) {
		case DecisionDelta:
			need.Delta = append(need.Delta, source.Path)
		case DecisionData:
			need.Data = append(need.Data, source.Path)
		}
	}

	if r.options.Delete {
		for path := range localIndex {
			if !sourcePaths[path] {
				need.Delete = append(need.Delete, path)
			}
		}
	}

	return need
}

// receiveDelta drives the SIGS/DELTA exchange for one path and applies the
// resulting operations to reconstruct the file from its local basis.
func (r *Receiver) receiveDelta(path string) error {
	fullPath := filepath.Join(r.options.Root, path)

	basis, err := os.Open(fullPath)
	if err != nil {
		return errors.Wrap(err, "unable to open basis file")
	}
	defer basis.Close()

	info, err := basis.Stat()
	if err != nil {
		return errors.Wrap(err, "unable to stat basis file")
	}
	basisLength := uint64(info.Size())
	blockSize := blocksize.ForWithOverride(basisLength, r.options.BlockSizeOverride)
	r.logger.Debugf("computing signature for %s at block size %d", path, blockSize)

	signature, err := r.engine.Signature(basis, blockSize)
	if err != nil {
		return errors.Wrap(err, "unable to compute basis signature")
	}

	signaturePayload, err := wire.EncodeSignature(signature)
	if err != nil {
		return errors.Wrap(err, "unable to encode signature")
	}
	if err := r.transport.Send(wire.TagSigs, signaturePayload, r.options.Compress); err != nil {
		return errors.Wrap(err, "unable to send SIGS")
	}

	deltaPayload, err := expectTag(r.transport, wire.TagDelta)
	if err != nil {
		return err
	}
	ops, err := wire.DecodeDelta(deltaPayload)
	if err != nil {
		return errors.Wrap(err, "unable to decode delta")
	}

	var reconstructed bytes.Buffer
	index := 0
	receive := func() (*rsync.Operation, error) {
		if index >= len(ops) {
			return nil, io.EOF
		}
		op := ops[index]
		index++
		return &op, nil
	}
	if err := r.engine.Patch(&reconstructed, basis, basisLength, blockSize, receive); err != nil {
		return errors.Wrap(err, "unable to reconstruct file")
	}

	return filesystem.WriteFileAtomic(fullPath, reconstructed.Bytes(), info.Mode().Perm())
}

// receiveData reads one DATA message and applies it: a mkdir, a symlink
// creation, or a raw-bytes file write, disambiguated per spec.md §4.6 by
// attempting to parse the payload as UTF-8 JSON matching the descriptor
// schema.
func (r *Receiver) receiveData(path string, sourceDescriptor *Descriptor) error {
	payload, err := expectTag(r.transport, wire.TagData)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(r.options.Root, path)

	if descriptor, ok := tryDecodeDescriptor(payload); ok {
		switch descriptor.Kind() {
		case KindDirectory:
			return os.MkdirAll(fullPath, defaultDirectoryMode)
		case KindSymlink:
			if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, "unable to remove existing entry")
			}
			return os.Symlink(descriptor.LinkTarget, fullPath)
		}
	}

	mode := os.FileMode(defaultFileMode)
	if sourceDescriptor != nil && sourceDescriptor.Mode != 0 {
		mode = os.FileMode(sourceDescriptor.Mode).Perm()
	}
	return filesystem.WriteFileAtomic(fullPath, payload, mode)
}

// tryDecodeDescriptor attempts the DATA disambiguation of spec.md §4.6: a
// payload that is valid UTF-8 and unmarshals as a descriptor describing a
// directory or symlink is treated as a creation instruction. This
// intentionally reproduces the ambiguity spec.md §9 documents: file content
// that happens to match the schema is misinterpreted the same way.
func tryDecodeDescriptor(payload []byte) (*Descriptor, bool) {
	if !utf8.Valid(payload) {
		return nil, false
	}
	var descriptor Descriptor
	if err := json.Unmarshal(payload, &descriptor); err != nil {
		return nil, false
	}
	if !descriptor.IsDir && !descriptor.IsLink {
		return nil, false
	}
	return &descriptor, true
}

// applyDeletions removes the given paths in reverse lexicographic order, as
// spec.md §4.6 requires so that a well-formed tree's directories are always
// empty by the time they're reached.
func (r *Receiver) applyDeletions(paths []string) error {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	for _, path := range sorted {
		fullPath := filepath.Join(r.options.Root, path)
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to remove %s", path)
		}
	}
	return nil
}
