package filesystem

const (
	// TemporaryNamePrefix is the file name prefix used for all temporary
	// files created during an atomic write. Using this prefix guarantees
	// that any such files left behind by an interrupted session are
	// identifiable and excluded from subsequent tree walks.
	TemporaryNamePrefix = ".tidesync-temporary-"
)
