// Package config provides the YAML-based per-session configuration that
// cmd/tidesync loads before starting a sender or receiver role: checksum
// mode, delete mode, exclude patterns, an optional block-size override,
// hashing algorithm selection and a compression on/off switch (spec.md §6's decision-table
// inputs, spec.md §4.2's block-size rule, and spec.md §4.1/§4.4's algorithm
// choices).
package config

import (
	"os"

	"github.com/tidesync/tidesync/pkg/comparison"
	"github.com/tidesync/tidesync/pkg/configuration"
	"github.com/tidesync/tidesync/pkg/encoding"
	"github.com/tidesync/tidesync/pkg/hashing"
	"github.com/tidesync/tidesync/pkg/logging"
	"github.com/tidesync/tidesync/pkg/protocol"
	"github.com/tidesync/tidesync/pkg/utility"
)

// Config holds the options that govern one sync session, as loaded from a
// YAML configuration file. The zero value is a usable configuration:
// non-recursive sync, no deletion, no excludes, the default block size rule,
// the default (128-bit) hash algorithm, and no compression. Default() turns
// recursion and compression on.
type Config struct {
	// Recursive controls whether a walked tree descends into
	// subdirectories.
	Recursive bool `yaml:"recursive"`
	// ChecksumMode forces delta comparison by content rather than
	// modification time (spec.md §6).
	ChecksumMode bool `yaml:"checksumMode"`
	// Delete enables computing and applying the deletion set for paths
	// present at the destination but absent from the source.
	Delete bool `yaml:"delete"`
	// Compress enables best-effort zstd compression of compressible
	// wire messages (spec.md §4.4). pkg/compression implements exactly
	// one compression algorithm, so this is an on/off switch rather than
	// a choice among algorithms.
	Compress bool `yaml:"compress"`
	// Excludes is a list of doublestar glob patterns; matching entries
	// are omitted from the walk (spec.md §6).
	Excludes []string `yaml:"excludes"`
	// BlockSize, if nonzero, overrides blocksize.For's piecewise rule for
	// every file in the session. It accepts human-friendly sizes (e.g.
	// "128 KB") as well as plain byte counts.
	BlockSize configuration.ByteSize `yaml:"blockSize"`
	// HashAlgorithm selects the strong-hash algorithm the rsync engine
	// uses (pkg/hashing.Algorithm). The zero value is the wire-protocol
	// default, 128-bit XXH3.
	HashAlgorithm hashing.Algorithm `yaml:"hashAlgorithm"`
}

// Default returns the zero-value Config with Recursive and Compress set,
// the configuration a new session uses if no file is loaded.
func Default() *Config {
	return &Config{Recursive: true, Compress: true}
}

// Load reads a YAML configuration from path. A missing file is not an
// error: Load returns Default() in that case, matching the teacher's
// loadFromPath behavior of tolerating an absent configuration file.
func Load(path string) (*Config, error) {
	config := Default()
	if err := encoding.LoadAndUnmarshalYAML(path, config); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to path as YAML, atomically. logger
// receives a warning if the write fails after a successful marshal; it may
// be nil.
func (c *Config) Save(path string, logger *logging.Logger) error {
	return encoding.MarshalAndSaveYAML(path, logger, c)
}

// Equal reports whether two configurations hold identical values, following
// the teacher's Configuration.Equal pattern of comparing slice fields with
// comparison.StringSlicesEqual alongside direct scalar comparisons.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Recursive == other.Recursive &&
		c.ChecksumMode == other.ChecksumMode &&
		c.Delete == other.Delete &&
		c.Compress == other.Compress &&
		c.BlockSize == other.BlockSize &&
		c.HashAlgorithm == other.HashAlgorithm &&
		comparison.StringSlicesEqual(c.Excludes, other.Excludes)
}

// ToOptions converts the configuration into a protocol.Options bound to
// root, defensively copying Excludes so that later mutation of the
// Config's slice can't alias into a session already in flight.
func (c *Config) ToOptions(root string) protocol.Options {
	return protocol.Options{
		Root:              root,
		Recursive:         c.Recursive,
		Excludes:          utility.CopyStringSlice(c.Excludes),
		ChecksumMode:      c.ChecksumMode,
		Delete:            c.Delete,
		Compress:          c.Compress,
		HashAlgorithm:     c.HashAlgorithm,
		BlockSizeOverride: uint64(c.BlockSize),
	}
}
