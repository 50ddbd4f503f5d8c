package main

import (
	"github.com/spf13/pflag"

	"github.com/tidesync/tidesync/pkg/config"
	"github.com/tidesync/tidesync/pkg/configuration"
	"github.com/tidesync/tidesync/pkg/hashing"
)

// sessionFlags holds the command-line overrides shared by the sync and
// serve commands. Zero values mean "use whatever the loaded configuration
// file says"; a boolean flag can only turn its setting on, and the separate
// --no-recursive and --no-compress flags turn those two settings off, so a
// flag's absence never overrides a configuration file's value.
type sessionFlags struct {
	configPath    string
	recursive     bool
	noRecursive   bool
	checksumMode  bool
	delete        bool
	compress      bool
	noCompress    bool
	excludes      []string
	blockSize     string
	hashAlgorithm string
}

// bind registers the shared session flags on flags, following the teacher's
// habit (cmd/mutagen/version.go) of disabling alphabetical flag sorting so
// related flags stay grouped in --help output.
func (f *sessionFlags) bind(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.StringVar(&f.configPath, "config", "", "Path to a YAML session configuration file")
	flags.BoolVar(&f.recursive, "recursive", false, "Descend into subdirectories")
	flags.BoolVar(&f.noRecursive, "no-recursive", false, "Only synchronize a tree's immediate children")
	flags.BoolVar(&f.checksumMode, "checksum", false, "Force content comparison instead of trusting modification times")
	flags.BoolVar(&f.delete, "delete", false, "Remove destination entries absent from the source")
	flags.BoolVar(&f.compress, "compress", false, "Request zstd compression for compressible messages")
	flags.BoolVar(&f.noCompress, "no-compress", false, "Disable compression regardless of the configuration file")
	flags.StringArrayVar(&f.excludes, "exclude", nil, "Doublestar glob pattern to exclude (may be repeated)")
	flags.StringVar(&f.blockSize, "block-size", "", "Override the rsync block size (e.g. \"256 KB\")")
	flags.StringVar(&f.hashAlgorithm, "hash-algorithm", "", "Strong-hash algorithm: xxh128, sha1, or sha256")
}

// resolve loads the configuration at f.configPath (or the default
// configuration if configPath is empty and no file exists there) and
// applies any flags the caller explicitly set on top of it.
func (f *sessionFlags) resolve() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f.recursive {
		cfg.Recursive = true
	}
	if f.noRecursive {
		cfg.Recursive = false
	}
	if f.checksumMode {
		cfg.ChecksumMode = true
	}
	if f.delete {
		cfg.Delete = true
	}
	if f.compress {
		cfg.Compress = true
	}
	if f.noCompress {
		cfg.Compress = false
	}
	if len(f.excludes) > 0 {
		cfg.Excludes = f.excludes
	}
	if f.blockSize != "" {
		var size configuration.ByteSize
		if err := size.UnmarshalText([]byte(f.blockSize)); err != nil {
			return nil, err
		}
		cfg.BlockSize = size
	}
	if f.hashAlgorithm != "" {
		var algorithm hashing.Algorithm
		if err := algorithm.UnmarshalText([]byte(f.hashAlgorithm)); err != nil {
			return nil, err
		}
		cfg.HashAlgorithm = algorithm
	}

	return cfg, nil
}
