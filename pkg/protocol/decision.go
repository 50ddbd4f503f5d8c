package protocol

// Decision is the outcome of the per-file sync predicate (spec.md §6).
type Decision uint8

const (
	// DecisionSkip means the destination already matches and nothing is
	// transferred.
	DecisionSkip Decision = iota
	// DecisionData means the sender should transmit the full file (or a
	// directory/symlink descriptor) via DATA.
	DecisionData
	// DecisionDelta means the receiver should request a delta transfer via
	// SIGS/DELTA.
	DecisionDelta
)

// String renders the decision's name for diagnostics.
func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionData:
		return "data"
	case DecisionDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Decide implements the exact decision table of spec.md §6, in the order the
// table lists its rules. source is always non-nil; dest is nil when the
// destination has no corresponding entry. checksumMode, when set, forces any
// file with a matching size to take the delta path rather than trusting
// modification times.
func Decide(source, dest *Descriptor, checksumMode bool) Decision {
	if dest == nil {
		return DecisionData
	}

	sourceIsDir := source.Kind() == KindDirectory
	destIsDir := dest.Kind() == KindDirectory
	if sourceIsDir && destIsDir {
		return DecisionSkip
	}
	if sourceIsDir || destIsDir {
		return DecisionData
	}

	if source.Kind() == KindSymlink {
		if dest.Kind() == KindSymlink && source.LinkTarget == dest.LinkTarget {
			return DecisionSkip
		}
		return DecisionData
	}
	if dest.Kind() == KindSymlink {
		return DecisionData
	}

	if source.Size != dest.Size {
		return DecisionData
	}

	if checksumMode {
		return DecisionDelta
	}

	if source.ModTime <= dest.ModTime {
		return DecisionSkip
	}

	return DecisionDelta
}
