package protocol

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tidesync/tidesync/pkg/logging"
	"github.com/tidesync/tidesync/pkg/rsync"
	"github.com/tidesync/tidesync/pkg/transport"
	"github.com/tidesync/tidesync/pkg/wire"
)

// Sender drives the sending side of spec.md §4.6's session state machine: it
// offers its own tree via FILES, then answers the receiver's NEED with SIGS
// responses (DELTA) and DATA for whatever the receiver asked for, forwarding
// the receiver's own computed deletion set back as DEL.
type Sender struct {
	transport *transport.Transport
	options   Options
	engine    *rsync.Engine
	logger    *logging.Logger
}

// NewSender creates a Sender bound to the given transport and options.
func NewSender(t *transport.Transport, options Options, logger *logging.Logger) *Sender {
	return &Sender{
		transport: t,
		options:   options,
		engine:    rsync.NewEngineWithAlgorithm(options.HashAlgorithm),
		logger:    logger,
	}
}

// Run executes one full session as the sending role.
func (s *Sender) Run() error {
	if err := sendHello(s.transport); err != nil {
		return errors.Wrap(err, "unable to send HELLO")
	}
	if err := recvHello(s.transport); err != nil {
		return errors.Wrap(err, "unable to receive HELLO")
	}

	descriptors, err := Walk(s.options.Root, s.options.Recursive, s.options.Excludes)
	if err != nil {
		return errors.Wrap(err, "unable to walk local tree")
	}
	if err := sendJSON(s.transport, wire.TagFiles, descriptors, s.options.Compress); err != nil {
		return errors.Wrap(err, "unable to send FILES")
	}

	var need NeedSet
	if err := recvJSON(s.transport, wire.TagNeed, &need); err != nil {
		return errors.Wrap(err, "unable to receive NEED")
	}

	index := indexByPath(descriptors)

	for _, path := range need.Delta {
		if err := s.sendDelta(path); err != nil {
			return errors.Wrapf(err, "unable to process delta for %s", path)
		}
	}

	for _, path := range need.Data {
		descriptor, ok := index[path]
		if !ok {
			return errors.Errorf("receiver requested unknown path %s", path)
		}
		if err := s.sendData(descriptor); err != nil {
			return errors.Wrapf(err, "unable to send data for %s", path)
		}
	}

	if s.options.Delete {
		if err := sendJSON(s.transport, wire.TagDel, need.Delete, s.options.Compress); err != nil {
			return errors.Wrap(err, "unable to send DEL")
		}
	}

	if err := sendDone(s.transport); err != nil {
		return errors.Wrap(err, "unable to send DONE")
	}
	if err := recvDone(s.transport); err != nil {
		return errors.Wrap(err, "unable to receive DONE")
	}

	return nil
}

// sendDelta answers one path's SIGS request with a DELTA response, matching
// the source file against the receiver-supplied basis signature.
func (s *Sender) sendDelta(path string) error {
	payload, err := expectTag(s.transport, wire.TagSigs)
	if err != nil {
		return err
	}
	signature, err := wire.DecodeSignature(payload)
	if err != nil {
		return errors.Wrap(err, "unable to decode signature")
	}

	data, err := os.ReadFile(filepath.Join(s.options.Root, path))
	if err != nil {
		return errors.Wrap(err, "unable to read source file")
	}

	ops, err := s.engine.DeltaBytes(data, signature)
	if err != nil {
		return errors.Wrap(err, "unable to compute delta")
	}
	s.logger.Debugf("computed %d delta operations for %s", len(ops), path)

	return s.transport.Send(wire.TagDelta, wire.EncodeDelta(ops), s.options.Compress)
}

// sendData answers one path's data request: a directory or symlink is
// described with a JSON descriptor (spec.md §4.6's DATA disambiguation),
// everything else is transmitted as raw bytes.
func (s *Sender) sendData(descriptor *Descriptor) error {
	if descriptor.Kind() == KindDirectory || descriptor.Kind() == KindSymlink {
		payload, err := json.Marshal(descriptor)
		if err != nil {
			return errors.Wrap(err, "unable to marshal descriptor")
		}
		return s.transport.Send(wire.TagData, payload, s.options.Compress)
	}

	data, err := os.ReadFile(filepath.Join(s.options.Root, descriptor.Path))
	if err != nil {
		return errors.Wrap(err, "unable to read source file")
	}
	return s.transport.Send(wire.TagData, data, s.options.Compress)
}
